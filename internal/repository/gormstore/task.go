package gormstore

import (
	"context"

	"github.com/huangang/teamtask/internal/models"
	"github.com/huangang/teamtask/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	return translate(getConn(ctx, r.db).Omit(clause.Associations).Create(task).Error)
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := getConn(ctx, r.db).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

// List runs one query over tasks, so a task matched by several OR-ed
// clauses is returned once.
func (r *TaskRepository) List(ctx context.Context, f repository.TaskFilter) ([]models.Task, error) {
	conn := getConn(ctx, r.db)
	query := conn.Model(&models.Task{})

	var anyOf *gorm.DB
	if f.AssignedOrCreatedBy != "" {
		anyOf = conn.Where("assigned_to = ?", f.AssignedOrCreatedBy).
			Or("created_by = ?", f.AssignedOrCreatedBy)
	}
	if len(f.InProjects) > 0 {
		if anyOf == nil {
			anyOf = conn.Where("project_id IN ?", f.InProjects)
		} else {
			anyOf = anyOf.Or("project_id IN ?", f.InProjects)
		}
	}
	if anyOf != nil {
		query = query.Where(anyOf)
	}

	if f.ProjectID != "" {
		query = query.Where("project_id = ?", f.ProjectID)
	}
	if f.AssignedTo != "" {
		query = query.Where("assigned_to = ?", f.AssignedTo)
	}
	if f.PersonalOnly {
		query = query.Where("project_id IS NULL")
	}

	tasks := []models.Task{}
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, translate(err)
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	return translate(getConn(ctx, r.db).Omit(clause.Associations).Save(task).Error)
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result := getConn(ctx, r.db).Where("id = ?", id).Delete(&models.Task{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
