package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/huangang/teamtask/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectCreate_AutoTeam(t *testing.T) {
	e := newTestEnv(t)
	e.projects.now = func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) }

	before, err := e.scope.Teams(e.ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, before)

	p := e.project(t, "alice", "Apollo")
	require.NotNil(t, p.TeamID)
	assert.Equal(t, models.DefaultTaskStatuses(), p.TaskStatuses)

	teams, err := e.scope.Teams(e.ctx, "alice")
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, *p.TeamID, teams[0].ID)
	assert.Equal(t, "Team for Apollo (2024-03-09)", teams[0].Name)
	assert.Equal(t, "Auto-generated team for project: Apollo (2024-03-09)", teams[0].Description)

	members, err := e.store.Members.ListByTeam(e.ctx, teams[0].ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].UserID)
	assert.Equal(t, models.RoleOwner, members[0].Role)
}

func TestProjectCreate_WithTeamHasNoMembershipSideEffect(t *testing.T) {
	e := newTestEnv(t)
	team, err := e.teams.Create(e.ctx, "bob", &CreateTeamRequest{Name: "Bob's"})
	require.NoError(t, err)

	p, err := e.projects.Create(e.ctx, "alice", &CreateProjectRequest{
		Name:   "Borrowed",
		Status: models.ProjectOnHold,
		Team:   &team.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, team.ID, *p.TeamID)

	_, err = e.store.Members.Get(e.ctx, team.ID, "alice")
	assert.Error(t, err)

	// Not a member, so the project stays invisible to alice.
	_, err = e.projects.Get(e.ctx, "alice", p.ID)
	requireAppError(t, err, http.StatusNotFound)
}

func TestProjectCreate_UnknownTeamAndStatus(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.projects.Create(e.ctx, "alice", &CreateProjectRequest{
		Name:   "x",
		Status: models.ProjectActive,
		Team:   strPtr("00000000-0000-0000-0000-000000000000"),
	})
	appErr := requireAppError(t, err, http.StatusBadRequest)
	assert.Contains(t, appErr.Fields, "team")

	_, err = e.projects.Create(e.ctx, "alice", &CreateProjectRequest{Name: "x", Status: "archived"})
	requireAppError(t, err, http.StatusBadRequest)
}

func TestProjectDelete_RefusedWhileTasksExist(t *testing.T) {
	e := newTestEnv(t)
	p := e.project(t, "alice", "Alpha")
	task := e.task(t, "alice", &p.ID, "")

	err := e.projects.Delete(e.ctx, "alice", p.ID)
	requireAppError(t, err, http.StatusConflict)

	require.NoError(t, e.tasks.Delete(e.ctx, "alice", task.ID))
	require.NoError(t, e.projects.Delete(e.ctx, "alice", p.ID))

	_, err = e.projects.Get(e.ctx, "alice", p.ID)
	requireAppError(t, err, http.StatusNotFound)
}

func TestProjectUpdate_Partial(t *testing.T) {
	e := newTestEnv(t)
	p := e.project(t, "alice", "Alpha")

	status := models.ProjectCompleted
	empty := []string{}
	updated, err := e.projects.Update(e.ctx, "alice", p.ID, &UpdateProjectRequest{
		Status:       &status,
		TaskStatuses: &empty,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alpha", updated.Name)
	assert.Equal(t, models.ProjectCompleted, updated.Status)
	assert.Equal(t, models.DefaultTaskStatuses(), updated.TaskStatuses)

	_, err = e.projects.Update(e.ctx, "bob", p.ID, &UpdateProjectRequest{Name: strPtr("hijack")})
	requireAppError(t, err, http.StatusNotFound)
}

func TestProjectBasicProjects_Roster(t *testing.T) {
	e := newTestEnv(t)
	p := e.project(t, "alice", "Alpha")
	e.join(t, *p.TeamID, "bob", models.RoleMember)
	// Unknown to the directory, left out of the roster.
	e.join(t, *p.TeamID, "ghost", models.RoleMember)

	basics, err := e.projects.BasicProjects(e.ctx, "bob")
	require.NoError(t, err)
	require.Len(t, basics, 1)

	byUser := map[string]RosterMember{}
	for _, m := range basics[0].Members {
		byUser[m.UserID] = m
	}
	assert.Len(t, byUser, 2)
	assert.Equal(t, models.RoleOwner, byUser["alice"].Role)
	assert.Equal(t, "bob@example.com", byUser["bob"].Email)
}
