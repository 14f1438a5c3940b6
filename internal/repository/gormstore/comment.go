package gormstore

import (
	"context"

	"github.com/huangang/teamtask/internal/models"
	"github.com/huangang/teamtask/internal/repository"
	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return translate(getConn(ctx, r.db).Create(comment).Error)
}

func (r *CommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := getConn(ctx, r.db).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r *CommentRepository) ListByTaskIDs(ctx context.Context, taskIDs []string) ([]models.Comment, error) {
	comments := []models.Comment{}
	if len(taskIDs) == 0 {
		return comments, nil
	}
	err := getConn(ctx, r.db).
		Where("task_id IN ?", taskIDs).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, translate(err)
}

func (r *CommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return translate(getConn(ctx, r.db).Save(comment).Error)
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	result := getConn(ctx, r.db).Where("id = ?", id).Delete(&models.Comment{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CommentRepository) DeleteByTask(ctx context.Context, taskID string) error {
	return translate(getConn(ctx, r.db).Where("task_id = ?", taskID).Delete(&models.Comment{}).Error)
}
