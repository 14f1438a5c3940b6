package gormstore

import (
	"context"

	"github.com/huangang/teamtask/internal/models"
	"github.com/huangang/teamtask/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	return translate(getConn(ctx, r.db).Omit(clause.Associations).Create(team).Error)
}

func (r *TeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	var team models.Team
	if err := getConn(ctx, r.db).Where("id = ?", id).First(&team).Error; err != nil {
		return nil, translate(err)
	}
	return &team, nil
}

func (r *TeamRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Team, error) {
	teams := []models.Team{}
	if len(ids) == 0 {
		return teams, nil
	}
	err := getConn(ctx, r.db).Where("id IN ?", ids).Order("created_at DESC").Find(&teams).Error
	return teams, translate(err)
}

func (r *TeamRepository) Update(ctx context.Context, team *models.Team) error {
	return translate(getConn(ctx, r.db).Omit(clause.Associations).Save(team).Error)
}

func (r *TeamRepository) Delete(ctx context.Context, id string) error {
	result := getConn(ctx, r.db).Where("id = ?", id).Delete(&models.Team{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type TeamMemberRepository struct {
	db *gorm.DB
}

func NewTeamMemberRepository(db *gorm.DB) *TeamMemberRepository {
	return &TeamMemberRepository{db: db}
}

func (r *TeamMemberRepository) Create(ctx context.Context, member *models.TeamMember) error {
	return translate(getConn(ctx, r.db).Create(member).Error)
}

func (r *TeamMemberRepository) Get(ctx context.Context, teamID, userID string) (*models.TeamMember, error) {
	var member models.TeamMember
	err := getConn(ctx, r.db).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error
	if err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

func (r *TeamMemberRepository) ListByTeam(ctx context.Context, teamID string) ([]models.TeamMember, error) {
	members := []models.TeamMember{}
	err := getConn(ctx, r.db).Where("team_id = ?", teamID).Order("created_at ASC").Find(&members).Error
	return members, translate(err)
}

func (r *TeamMemberRepository) TeamIDsByUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := getConn(ctx, r.db).Model(&models.TeamMember{}).
		Where("user_id = ?", userID).
		Pluck("team_id", &ids).Error
	return ids, translate(err)
}

func (r *TeamMemberRepository) DeleteByTeam(ctx context.Context, teamID string) error {
	return translate(getConn(ctx, r.db).Where("team_id = ?", teamID).Delete(&models.TeamMember{}).Error)
}
