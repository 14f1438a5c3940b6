package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/teamtask/internal/middleware"
	"github.com/huangang/teamtask/internal/services"
	"github.com/huangang/teamtask/pkg/response"
)

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// List returns comments on visible tasks, optionally narrowed by ?task=
// GET /api/comments
func (h *CommentHandler) List(c *gin.Context) {
	comments, err := h.commentService.List(c.Request.Context(), middleware.GetUserID(c), c.Query("task"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comments)
}

// GET /api/comments/:id
func (h *CommentHandler) GetByID(c *gin.Context) {
	comment, err := h.commentService.Get(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

// POST /api/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req services.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment)
}

// PUT/PATCH /api/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	var req services.UpdateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

// DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.commentService.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
