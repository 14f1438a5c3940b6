package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/teamtask/internal/middleware"
	"github.com/huangang/teamtask/internal/services"
	"github.com/huangang/teamtask/pkg/response"
)

type InviteHandler struct {
	inviteService *services.InviteService
}

func NewInviteHandler(inviteService *services.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

// InviteUser invites an email address to a project's team
// POST /api/invites/invite_user
func (h *InviteHandler) InviteUser(c *gin.Context) {
	var req services.InviteUserRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.inviteService.InviteUser(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// PendingInvites lists invites addressed to the caller's email
// GET /api/invites/pending_invites
func (h *InviteHandler) PendingInvites(c *gin.Context) {
	invites, err := h.inviteService.PendingInvites(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"invites": invites})
}

// RespondToInvite accepts or declines a pending invite
// POST /api/invites/respond_to_invite
func (h *InviteHandler) RespondToInvite(c *gin.Context) {
	var req services.RespondInviteRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.inviteService.RespondToInvite(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
