package services

import (
	"errors"
	"testing"

	"github.com/huangang/teamtask/internal/models"
	"github.com/huangang/teamtask/internal/repository"
	"github.com/huangang/teamtask/pkg/response"
)

func TestResolveTaskStatus(t *testing.T) {
	project := &models.Project{TaskStatuses: []string{"Todo", "Doing", "Done"}}

	tests := []struct {
		name    string
		project *models.Project
		status  string
		keep    string
		want    string
		wantErr bool
	}{
		{"no project, nothing supplied", nil, "", "", "Todo", false},
		{"no project, free text", nil, "Whenever", "", "Whenever", false},
		{"no project keeps current", nil, "", "Later", "Later", false},
		{"project default", project, "", "", "Todo", false},
		{"project allowed", project, "Doing", "", "Doing", false},
		{"project rejects unknown", project, "Blocked", "", "", true},
		{"project keeps valid current", project, "", "Done", "Done", false},
		{"project resets stale current", project, "", "Archived", "Todo", false},
		{"project without statuses", &models.Project{}, "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveTaskStatus(tt.project, tt.status, tt.keep)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveTaskStatus() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveTaskStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveTaskStatus_EmptyListMessage(t *testing.T) {
	_, err := resolveTaskStatus(&models.Project{}, "Todo", "")

	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Fields["project"] != "The project does not have defined task statuses." {
		t.Errorf("unexpected project message: %q", appErr.Fields["project"])
	}
}

func TestStoreError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", repository.ErrNotFound, 404},
		{"duplicate", repository.ErrDuplicate, 409},
		{"referenced", repository.ErrReferenced, 409},
		{"status hook", &models.StatusError{Allowed: []string{"A"}}, 400},
		{"missing project", models.ErrProjectMissing, 400},
		{"app error passes through", response.NewForbidden("no"), 403},
		{"unexpected", errors.New("disk full"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var appErr *response.AppError
			if !errors.As(storeError(tt.err, "gone"), &appErr) {
				t.Fatal("expected AppError")
			}
			if appErr.HTTPStatus != tt.status {
				t.Errorf("status = %d, want %d", appErr.HTTPStatus, tt.status)
			}
		})
	}

	if storeError(nil, "gone") != nil {
		t.Error("nil error should stay nil")
	}
}
