package services

import (
	"errors"
	"strings"

	"github.com/huangang/teamtask/internal/models"
	"github.com/huangang/teamtask/internal/repository"
	"github.com/huangang/teamtask/pkg/logger"
	"github.com/huangang/teamtask/pkg/response"
)

const msgNoTaskStatuses = "The project does not have defined task statuses."

// resolveTaskStatus applies the project's status rules to a task write.
// An empty status means none was supplied. keep is the current status of an
// existing task, kept when still valid.
func resolveTaskStatus(project *models.Project, status, keep string) (string, error) {
	if project == nil {
		switch {
		case status != "":
			return status, nil
		case keep != "":
			return keep, nil
		}
		return models.DefaultTaskStatus, nil
	}

	if len(project.TaskStatuses) == 0 {
		return "", response.NewValidation(map[string]string{"project": msgNoTaskStatuses})
	}
	if status != "" {
		if !project.AllowsStatus(status) {
			return "", statusValidation(project.TaskStatuses)
		}
		return status, nil
	}
	if keep != "" && project.AllowsStatus(keep) {
		return keep, nil
	}
	return project.DefaultStatus(), nil
}

func statusValidation(allowed []string) *response.AppError {
	return response.NewValidation(map[string]string{
		"status": (&models.StatusError{Allowed: allowed}).Error(),
	})
}

func validatePriority(p models.Priority) error {
	if !p.Valid() {
		return response.NewValidation(map[string]string{"priority": "Priority must be one of: low, medium, high"})
	}
	return nil
}

func validateProjectStatus(s models.ProjectStatus) error {
	if !s.Valid() {
		return response.NewValidation(map[string]string{"status": "Status must be one of: active, completed, on_hold"})
	}
	return nil
}

func cleanStatuses(statuses []string) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// storeError turns repository and hook errors into AppErrors. notFound is
// the message used when the row is missing.
func storeError(err error, notFound string) error {
	var appErr *response.AppError
	var statusErr *models.StatusError

	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return response.NewNotFound(notFound)
	case errors.Is(err, repository.ErrDuplicate):
		return response.NewConflict("resource already exists")
	case errors.Is(err, repository.ErrReferenced):
		return response.NewConflict("resource is still referenced")
	case errors.As(err, &statusErr):
		return statusValidation(statusErr.Allowed)
	case errors.Is(err, models.ErrProjectMissing):
		return response.NewValidation(map[string]string{"project": "Project does not exist."})
	}

	logger.Error().Err(err).Msg("store operation failed")
	return response.NewServerError(err.Error())
}
