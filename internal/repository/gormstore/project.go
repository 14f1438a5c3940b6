package gormstore

import (
	"context"

	"github.com/huangang/teamtask/internal/models"
	"github.com/huangang/teamtask/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return translate(getConn(ctx, r.db).Omit(clause.Associations).Create(project).Error)
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	err := getConn(ctx, r.db).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, translate(err)
	}
	return &project, nil
}

func (r *ProjectRepository) ListByTeamIDs(ctx context.Context, teamIDs []string, withTasks bool) ([]models.Project, error) {
	projects := []models.Project{}
	if len(teamIDs) == 0 {
		return projects, nil
	}

	query := getConn(ctx, r.db).Where("team_id IN ?", teamIDs).Order("created_at DESC")
	if withTasks {
		query = query.Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") })
	}
	if err := query.Find(&projects).Error; err != nil {
		return nil, translate(err)
	}
	return projects, nil
}

func (r *ProjectRepository) IDsByTeamIDs(ctx context.Context, teamIDs []string) ([]string, error) {
	var ids []string
	if len(teamIDs) == 0 {
		return ids, nil
	}
	err := getConn(ctx, r.db).Model(&models.Project{}).
		Where("team_id IN ?", teamIDs).
		Pluck("id", &ids).Error
	return ids, translate(err)
}

// FirstByTeam returns the oldest project of a team.
func (r *ProjectRepository) FirstByTeam(ctx context.Context, teamID string) (*models.Project, error) {
	var project models.Project
	err := getConn(ctx, r.db).
		Where("team_id = ?", teamID).
		Order("created_at ASC").
		First(&project).Error
	if err != nil {
		return nil, translate(err)
	}
	return &project, nil
}

func (r *ProjectRepository) CountTasks(ctx context.Context, projectIDs []string) (int64, error) {
	var count int64
	if len(projectIDs) == 0 {
		return 0, nil
	}
	err := getConn(ctx, r.db).Model(&models.Task{}).
		Where("project_id IN ?", projectIDs).
		Count(&count).Error
	return count, translate(err)
}

func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	return translate(getConn(ctx, r.db).Omit(clause.Associations).Save(project).Error)
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result := getConn(ctx, r.db).Where("id = ?", id).Delete(&models.Project{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) DeleteByTeam(ctx context.Context, teamID string) error {
	return translate(getConn(ctx, r.db).Where("team_id = ?", teamID).Delete(&models.Project{}).Error)
}
