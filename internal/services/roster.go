package services

import (
	"context"

	"github.com/huangang/teamtask/internal/identity"
	"github.com/huangang/teamtask/internal/models"
	"github.com/huangang/teamtask/internal/repository"
	"github.com/huangang/teamtask/pkg/logger"
)

// RosterMember is a team membership enriched with the identity profile.
type RosterMember struct {
	UserID    string      `json:"user_id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	ImageURL  string      `json:"image_url"`
	Role      models.Role `json:"role"`
}

type RosterService struct {
	store     *repository.Store
	directory identity.Directory
}

func NewRosterService(store *repository.Store, directory identity.Directory) *RosterService {
	return &RosterService{store: store, directory: directory}
}

// Members lists the team's members. Members the directory cannot resolve
// are logged and left out.
func (s *RosterService) Members(ctx context.Context, teamID *string) []RosterMember {
	roster := []RosterMember{}
	if teamID == nil {
		return roster
	}

	members, err := s.store.Members.ListByTeam(ctx, *teamID)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("team_id", *teamID).Msg("list team members")
		return roster
	}

	for _, m := range members {
		user, err := s.directory.LookupUser(ctx, m.UserID)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("user_id", m.UserID).Msg("lookup team member")
			continue
		}
		roster = append(roster, RosterMember{
			UserID:    user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
			ImageURL:  user.ImageURL,
			Role:      m.Role,
		})
	}
	return roster
}
