package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangang/teamtask/internal/models"
	"github.com/huangang/teamtask/internal/repository"
	"github.com/huangang/teamtask/pkg/response"
)

const msgCommentNotFound = "comment not found"

type CommentService struct {
	store *repository.Store
	scope *Scope
}

func NewCommentService(store *repository.Store, scope *Scope) *CommentService {
	return &CommentService{store: store, scope: scope}
}

type CreateCommentRequest struct {
	Task    string `json:"task" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type UpdateCommentRequest struct {
	Task    *string `json:"task"`
	Content *string `json:"content"`
}

// List returns comments on visible tasks, optionally for one task only.
func (s *CommentService) List(ctx context.Context, userID, taskID string) ([]models.Comment, error) {
	comments, err := s.scope.Comments(ctx, userID, taskID)
	return comments, storeError(err, msgCommentNotFound)
}

func (s *CommentService) Get(ctx context.Context, userID, id string) (*models.Comment, error) {
	comment, err := s.store.Comments.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, msgCommentNotFound)
	}
	if _, err := s.visibleTask(ctx, userID, comment.TaskID); err != nil {
		var appErr *response.AppError
		if errors.As(err, &appErr) && appErr.Fields != nil {
			return nil, response.NewNotFound(msgCommentNotFound)
		}
		return nil, err
	}
	return comment, nil
}

// visibleTask reports a task outside the caller's scope the same way as a
// missing one.
func (s *CommentService) visibleTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	invalid := response.NewValidation(map[string]string{
		"task": fmt.Sprintf("Invalid pk %q - object does not exist.", taskID),
	})

	task, err := s.store.Tasks.GetByID(ctx, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, storeError(err, msgTaskNotFound)
	}

	ok, err := s.scope.CanSeeTask(ctx, userID, task)
	if err != nil {
		return nil, storeError(err, msgTaskNotFound)
	}
	if !ok {
		return nil, invalid
	}
	return task, nil
}

func (s *CommentService) Create(ctx context.Context, userID string, req *CreateCommentRequest) (*models.Comment, error) {
	if _, err := s.visibleTask(ctx, userID, req.Task); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		TaskID:    req.Task,
		Content:   req.Content,
		CreatedBy: userID,
	}
	if err := s.store.Comments.Create(ctx, comment); err != nil {
		return nil, storeError(err, msgCommentNotFound)
	}
	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, userID, id string, req *UpdateCommentRequest) (*models.Comment, error) {
	comment, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Content != nil {
		if *req.Content == "" {
			return nil, response.NewValidation(map[string]string{"content": "This field may not be blank."})
		}
		comment.Content = *req.Content
	}
	if req.Task != nil && *req.Task != comment.TaskID {
		if _, err := s.visibleTask(ctx, userID, *req.Task); err != nil {
			return nil, err
		}
		comment.TaskID = *req.Task
	}

	if err := s.store.Comments.Update(ctx, comment); err != nil {
		return nil, storeError(err, msgCommentNotFound)
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return storeError(s.store.Comments.Delete(ctx, id), msgCommentNotFound)
}
