package services

import (
	"context"

	"github.com/huangang/teamtask/internal/models"
	"github.com/huangang/teamtask/internal/repository"
	"github.com/huangang/teamtask/pkg/response"
)

const msgTeamNotFound = "team not found"

type TeamService struct {
	store *repository.Store
	scope *Scope
}

func NewTeamService(store *repository.Store, scope *Scope) *TeamService {
	return &TeamService{store: store, scope: scope}
}

type CreateTeamRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

type UpdateTeamRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description"`
}

func (s *TeamService) List(ctx context.Context, userID string) ([]models.Team, error) {
	teams, err := s.scope.Teams(ctx, userID)
	return teams, storeError(err, msgTeamNotFound)
}

// Get returns a team the user belongs to.
func (s *TeamService) Get(ctx context.Context, userID, id string) (*models.Team, error) {
	ok, err := s.scope.CanSeeTeam(ctx, userID, id)
	if err != nil {
		return nil, storeError(err, msgTeamNotFound)
	}
	if !ok {
		return nil, response.NewNotFound(msgTeamNotFound)
	}

	team, err := s.store.Teams.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, msgTeamNotFound)
	}
	return team, nil
}

// Create stores the team and makes its creator an admin.
func (s *TeamService) Create(ctx context.Context, userID string, req *CreateTeamRequest) (*models.Team, error) {
	team := &models.Team{
		Name:        req.Name,
		Description: req.Description,
	}

	err := s.store.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.Teams.Create(ctx, team); err != nil {
			return err
		}
		return s.store.Members.Create(ctx, &models.TeamMember{
			TeamID: team.ID,
			UserID: userID,
			Role:   models.RoleAdmin,
		})
	})
	if err != nil {
		return nil, storeError(err, msgTeamNotFound)
	}
	return team, nil
}

func (s *TeamService) Update(ctx context.Context, userID, id string, req *UpdateTeamRequest) (*models.Team, error) {
	team, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, response.NewValidation(map[string]string{"name": "This field may not be blank."})
		}
		team.Name = *req.Name
	}
	if req.Description != nil {
		team.Description = *req.Description
	}

	if err := s.store.Teams.Update(ctx, team); err != nil {
		return nil, storeError(err, msgTeamNotFound)
	}
	return team, nil
}

// Delete removes the team with its invites, memberships and projects. It
// is refused while any of those projects still has tasks.
func (s *TeamService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	err := s.store.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		projectIDs, err := s.store.Projects.IDsByTeamIDs(ctx, []string{id})
		if err != nil {
			return err
		}
		count, err := s.store.Projects.CountTasks(ctx, projectIDs)
		if err != nil {
			return err
		}
		if count > 0 {
			return response.NewConflict("Cannot delete a team whose projects still have tasks")
		}

		if err := s.store.Invites.DeleteByTeam(ctx, id); err != nil {
			return err
		}
		if err := s.store.Members.DeleteByTeam(ctx, id); err != nil {
			return err
		}
		if err := s.store.Projects.DeleteByTeam(ctx, id); err != nil {
			return err
		}
		return s.store.Teams.Delete(ctx, id)
	})
	return storeError(err, msgTeamNotFound)
}
