package gormstore

import (
	"context"
	"time"

	"github.com/huangang/teamtask/internal/models"
	"gorm.io/gorm"
)

type InviteRepository struct {
	db *gorm.DB
}

func NewInviteRepository(db *gorm.DB) *InviteRepository {
	return &InviteRepository{db: db}
}

// Create stores the invite. A second pending invite for the same team and
// email fails with repository.ErrDuplicate.
func (r *InviteRepository) Create(ctx context.Context, invite *models.ProjectInvite) error {
	return translate(getConn(ctx, r.db).Create(invite).Error)
}

func (r *InviteRepository) GetByID(ctx context.Context, id string) (*models.ProjectInvite, error) {
	var invite models.ProjectInvite
	if err := getConn(ctx, r.db).Where("id = ?", id).First(&invite).Error; err != nil {
		return nil, translate(err)
	}
	return &invite, nil
}

func (r *InviteRepository) HasPending(ctx context.Context, teamID, email string) (bool, error) {
	var count int64
	err := getConn(ctx, r.db).Model(&models.ProjectInvite{}).
		Where("team_id = ? AND email = ? AND status = ?", teamID, models.NormalizeEmail(email), models.InvitePending).
		Count(&count).Error
	return count > 0, translate(err)
}

func (r *InviteRepository) ListPendingByEmail(ctx context.Context, email string) ([]models.ProjectInvite, error) {
	invites := []models.ProjectInvite{}
	err := getConn(ctx, r.db).
		Where("email = ? AND status = ?", models.NormalizeEmail(email), models.InvitePending).
		Order("invited_at DESC").
		Find(&invites).Error
	return invites, translate(err)
}

// Resolve only touches a row that is still pending, so two concurrent
// responses cannot both succeed.
func (r *InviteRepository) Resolve(ctx context.Context, id, email string, status models.InviteStatus, at time.Time) (bool, error) {
	result := getConn(ctx, r.db).Model(&models.ProjectInvite{}).
		Where("id = ? AND email = ? AND status = ?", id, models.NormalizeEmail(email), models.InvitePending).
		Updates(map[string]interface{}{
			"status":       status,
			"responded_at": at,
			"pending_key":  nil,
		})
	if result.Error != nil {
		return false, translate(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *InviteRepository) DeleteByTeam(ctx context.Context, teamID string) error {
	return translate(getConn(ctx, r.db).Where("team_id = ?", teamID).Delete(&models.ProjectInvite{}).Error)
}
