package services

import (
	"net/http"
	"testing"

	"github.com/huangang/teamtask/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamCreate_CreatorBecomesAdmin(t *testing.T) {
	e := newTestEnv(t)

	team, err := e.teams.Create(e.ctx, "alice", &CreateTeamRequest{Name: "Core", Description: "core team"})
	require.NoError(t, err)

	member, err := e.store.Members.Get(e.ctx, team.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, member.Role)
}

func TestTeamGetAndUpdate_MembersOnly(t *testing.T) {
	e := newTestEnv(t)
	team, err := e.teams.Create(e.ctx, "alice", &CreateTeamRequest{Name: "Core"})
	require.NoError(t, err)

	_, err = e.teams.Get(e.ctx, "bob", team.ID)
	requireAppError(t, err, http.StatusNotFound)

	_, err = e.teams.Update(e.ctx, "bob", team.ID, &UpdateTeamRequest{Name: strPtr("Taken")})
	requireAppError(t, err, http.StatusNotFound)

	updated, err := e.teams.Update(e.ctx, "alice", team.ID, &UpdateTeamRequest{Description: strPtr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Core", updated.Name)
	assert.Equal(t, "renamed", updated.Description)

	_, err = e.teams.Update(e.ctx, "alice", team.ID, &UpdateTeamRequest{Name: strPtr("")})
	requireAppError(t, err, http.StatusBadRequest)
}

func TestTeamDelete_RemovesProjectsAndMemberships(t *testing.T) {
	e := newTestEnv(t)
	p := e.project(t, "alice", "Alpha")
	_, err := e.invites.InviteUser(e.ctx, "alice", &InviteUserRequest{Email: "x@example.com", ProjectID: p.ID})
	require.NoError(t, err)

	require.NoError(t, e.teams.Delete(e.ctx, "alice", *p.TeamID))

	teams, err := e.scope.Teams(e.ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, teams)

	_, err = e.store.Projects.GetByID(e.ctx, p.ID)
	assert.Error(t, err)
}

func TestTeamDelete_RefusedWhileTasksExist(t *testing.T) {
	e := newTestEnv(t)
	p := e.project(t, "alice", "Alpha")
	e.task(t, "alice", &p.ID, "")

	err := e.teams.Delete(e.ctx, "alice", *p.TeamID)
	requireAppError(t, err, http.StatusConflict)

	team, err := e.teams.Get(e.ctx, "alice", *p.TeamID)
	require.NoError(t, err)
	assert.Equal(t, *p.TeamID, team.ID)
}
