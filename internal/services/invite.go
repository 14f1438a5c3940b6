package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangang/teamtask/internal/identity"
	"github.com/huangang/teamtask/internal/models"
	"github.com/huangang/teamtask/internal/repository"
	"github.com/huangang/teamtask/pkg/logger"
	"github.com/huangang/teamtask/pkg/response"
)

const (
	msgInviteNoAccess   = "Project not found or you do not have access"
	msgInviteProcessed  = "Invite not found or already processed"
	msgAlreadyMember    = "User is already a member of this project"
	msgPendingExists    = "User already has a pending invite"
	msgNoEmail          = "No email found for user"
	msgOwnerInviteAdmin = "Only admin users can send invites"
)

type InviteService struct {
	store     *repository.Store
	directory identity.Directory
	notifier  InviteNotifier
	now       func() time.Time
}

func NewInviteService(store *repository.Store, directory identity.Directory, notifier InviteNotifier) *InviteService {
	return &InviteService{store: store, directory: directory, notifier: notifier, now: time.Now}
}

type InviteUserRequest struct {
	Email     string      `json:"email" binding:"required,email"`
	ProjectID string      `json:"project_id" binding:"required,uuid"`
	Role      models.Role `json:"role"`
}

type RespondInviteRequest struct {
	InviteID string              `json:"invite_id" binding:"required,uuid"`
	Response models.InviteStatus `json:"response" binding:"required"`
}

type InviteResult struct {
	Message  string `json:"message"`
	InviteID string `json:"invite_id,omitempty"`
}

// PendingInvite is an invite addressed to the caller, with the team and the
// team's first project.
type PendingInvite struct {
	InviteID    string      `json:"invite_id"`
	ProjectID   *string     `json:"project_id"`
	ProjectName string      `json:"project_name"`
	TeamID      string      `json:"team_id"`
	TeamName    string      `json:"team_name"`
	Role        models.Role `json:"role"`
	InvitedAt   time.Time   `json:"invited_at"`
}

// InviteUser proposes that email join the team of the given project.
func (s *InviteService) InviteUser(ctx context.Context, userID string, req *InviteUserRequest) (*InviteResult, error) {
	role := req.Role
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() {
		return nil, response.NewValidation(map[string]string{"role": fmt.Sprintf("%q is not a valid choice.", role)})
	}

	project, err := s.store.Projects.GetByID(ctx, req.ProjectID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && project.TeamID == nil) {
		return nil, response.NewNotFound(msgInviteNoAccess)
	}
	if err != nil {
		return nil, storeError(err, msgInviteNoAccess)
	}
	teamID := *project.TeamID

	inviter, err := s.store.Members.Get(ctx, teamID, userID)
	if err != nil {
		return nil, storeError(err, msgInviteNoAccess)
	}
	if role == models.RoleOwner && inviter.Role != models.RoleAdmin {
		return nil, response.NewForbidden(msgOwnerInviteAdmin)
	}

	email := models.NormalizeEmail(req.Email)

	invitee, err := s.directory.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		_, err := s.store.Members.Get(ctx, teamID, invitee.ID)
		if err == nil {
			return nil, response.NewConflict(msgAlreadyMember)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, storeError(err, msgInviteNoAccess)
		}
	case !errors.Is(err, identity.ErrUserNotFound):
		return nil, identityFault(err)
	}

	pending, err := s.store.Invites.HasPending(ctx, teamID, email)
	if err != nil {
		return nil, storeError(err, msgInviteNoAccess)
	}
	if pending {
		return nil, response.NewConflict(msgPendingExists)
	}

	invite := &models.ProjectInvite{
		TeamID:    teamID,
		Email:     email,
		Role:      role,
		InvitedBy: userID,
		InvitedAt: s.now(),
	}
	if err := s.store.Invites.Create(ctx, invite); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, response.NewConflict(msgPendingExists)
		}
		return nil, storeError(err, msgInviteNoAccess)
	}

	logger.Ctx(ctx).Info().Str("invite_id", invite.ID).Str("team_id", teamID).Str("invited_by", userID).Msg("invite created")
	s.notify(ctx, invite, project)

	return &InviteResult{Message: "Invitation sent successfully", InviteID: invite.ID}, nil
}

func (s *InviteService) notify(ctx context.Context, invite *models.ProjectInvite, project *models.Project) {
	if s.notifier == nil {
		return
	}

	n := InviteNotification{
		InviteID:    invite.ID,
		Email:       invite.Email,
		ProjectName: project.Name,
		Role:        string(invite.Role),
	}
	if team, err := s.store.Teams.GetByID(ctx, invite.TeamID); err == nil {
		n.TeamName = team.Name
	}
	s.notifier.NotifyInvite(n)
}

// PendingInvites lists the pending invites addressed to the caller's email.
func (s *InviteService) PendingInvites(ctx context.Context, userID string) ([]PendingInvite, error) {
	email, err := s.callerEmail(ctx, userID)
	if err != nil {
		return nil, err
	}

	invites, err := s.store.Invites.ListPendingByEmail(ctx, email)
	if err != nil {
		return nil, storeError(err, msgInviteProcessed)
	}

	out := make([]PendingInvite, 0, len(invites))
	for _, inv := range invites {
		item := PendingInvite{
			InviteID:  inv.ID,
			TeamID:    inv.TeamID,
			Role:      inv.Role,
			InvitedAt: inv.InvitedAt,
		}

		team, err := s.store.Teams.GetByID(ctx, inv.TeamID)
		if err != nil {
			return nil, storeError(err, msgInviteProcessed)
		}
		item.TeamName = team.Name

		project, err := s.store.Projects.FirstByTeam(ctx, inv.TeamID)
		switch {
		case err == nil:
			item.ProjectID = &project.ID
			item.ProjectName = project.Name
		case !errors.Is(err, repository.ErrNotFound):
			return nil, storeError(err, msgInviteProcessed)
		}

		out = append(out, item)
	}
	return out, nil
}

// RespondToInvite accepts or declines a pending invite addressed to the
// caller. Accepting adds the caller to the team with the invite's role.
func (s *InviteService) RespondToInvite(ctx context.Context, userID string, req *RespondInviteRequest) (*InviteResult, error) {
	if req.Response != models.InviteAccepted && req.Response != models.InviteDeclined {
		return nil, response.NewValidation(map[string]string{
			"response": fmt.Sprintf("%q is not a valid choice.", req.Response),
		})
	}

	email, err := s.callerEmail(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.store.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		invite, err := s.store.Invites.GetByID(ctx, req.InviteID)
		if err != nil {
			return err
		}

		resolved, err := s.store.Invites.Resolve(ctx, invite.ID, email, req.Response, s.now())
		if err != nil {
			return err
		}
		if !resolved {
			return response.NewNotFound(msgInviteProcessed)
		}

		if req.Response != models.InviteAccepted {
			return nil
		}
		err = s.store.Members.Create(ctx, &models.TeamMember{
			TeamID: invite.TeamID,
			UserID: userID,
			Role:   invite.Role,
		})
		if errors.Is(err, repository.ErrDuplicate) {
			return response.NewConflict("You are already a member of this team")
		}
		return err
	})
	if err != nil {
		return nil, storeError(err, msgInviteProcessed)
	}

	logger.Ctx(ctx).Info().Str("invite_id", req.InviteID).Str("user_id", userID).Str("response", string(req.Response)).Msg("invite resolved")
	return &InviteResult{Message: fmt.Sprintf("Invite %s successfully", req.Response)}, nil
}

func (s *InviteService) callerEmail(ctx context.Context, userID string) (string, error) {
	user, err := s.directory.LookupUser(ctx, userID)
	if errors.Is(err, identity.ErrUserNotFound) {
		return "", response.NewBadRequest(msgNoEmail)
	}
	if err != nil {
		return "", identityFault(err)
	}
	if user.Email == "" {
		return "", response.NewBadRequest(msgNoEmail)
	}
	return models.NormalizeEmail(user.Email), nil
}

func identityFault(err error) error {
	logger.Error().Err(err).Msg("identity service call failed")
	return response.NewServerError(err.Error())
}
