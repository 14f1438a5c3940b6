package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/huangang/teamtask/internal/identity"
	"github.com/huangang/teamtask/internal/models"
	"github.com/huangang/teamtask/internal/repository"
	"github.com/huangang/teamtask/internal/repository/gormstore"
	"github.com/huangang/teamtask/internal/testdb"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	users map[string]identity.User
	fail  error
}

func (d *fakeDirectory) LookupUser(_ context.Context, id string) (*identity.User, error) {
	if d.fail != nil {
		return nil, d.fail
	}
	u, ok := d.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return &u, nil
}

func (d *fakeDirectory) FindUserByEmail(_ context.Context, email string) (*identity.User, error) {
	if d.fail != nil {
		return nil, d.fail
	}
	for _, u := range d.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (d *fakeDirectory) ListUsers(context.Context) ([]identity.User, error) {
	out := make([]identity.User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u)
	}
	return out, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []InviteNotification
}

func (n *recordingNotifier) NotifyInvite(in InviteNotification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, in)
}

type testEnv struct {
	ctx      context.Context
	store    *repository.Store
	dir      *fakeDirectory
	notifier *recordingNotifier
	scope    *Scope
	teams    *TeamService
	projects *ProjectService
	tasks    *TaskService
	comments *CommentService
	invites  *InviteService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := gormstore.New(testdb.Open(t))
	dir := &fakeDirectory{users: map[string]identity.User{
		"alice": {ID: "alice", Email: "alice@example.com", FirstName: "Alice"},
		"bob":   {ID: "bob", Email: "bob@example.com", FirstName: "Bob"},
		"carol": {ID: "carol", Email: "carol@example.com", FirstName: "Carol"},
	}}
	notifier := &recordingNotifier{}

	scope := NewScope(store)
	roster := NewRosterService(store, dir)
	projects := NewProjectService(store, scope, roster)

	return &testEnv{
		ctx:      context.Background(),
		store:    store,
		dir:      dir,
		notifier: notifier,
		scope:    scope,
		teams:    NewTeamService(store, scope),
		projects: projects,
		tasks:    NewTaskService(store, scope, projects),
		comments: NewCommentService(store, scope),
		invites:  NewInviteService(store, dir, notifier),
	}
}

func (e *testEnv) project(t *testing.T, userID, name string, statuses ...string) *models.Project {
	t.Helper()
	p, err := e.projects.Create(e.ctx, userID, &CreateProjectRequest{
		Name:         name,
		Status:       models.ProjectActive,
		TaskStatuses: statuses,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) task(t *testing.T, userID string, projectID *string, assignee string) *models.Task {
	t.Helper()
	req := &CreateTaskRequest{
		Title:    "task",
		Priority: models.PriorityMedium,
		DueDate:  time.Now().Add(48 * time.Hour),
		Project:  projectID,
	}
	if assignee != "" {
		req.AssignedTo = &assignee
	}
	task, err := e.tasks.Create(e.ctx, userID, req)
	require.NoError(t, err)
	return task
}

func (e *testEnv) join(t *testing.T, teamID, userID string, role models.Role) {
	t.Helper()
	require.NoError(t, e.store.Members.Create(e.ctx, &models.TeamMember{TeamID: teamID, UserID: userID, Role: role}))
}

func taskIDs(tasks []models.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}
