package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ProjectInvite is a proposal, addressed to an email, to join a team.
// Several invites may exist for the same email; at most one of them is
// pending per team, enforced by the unique PendingKey.
type ProjectInvite struct {
	ID          string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	TeamID      string       `gorm:"type:varchar(36);index;not null" json:"team"`
	Email       string       `gorm:"size:255;index:idx_invite_email_status;not null" json:"email"`
	Role        Role         `gorm:"size:10;not null" json:"role"`
	Status      InviteStatus `gorm:"size:10;index:idx_invite_email_status;default:pending" json:"status"`
	InvitedBy   string       `gorm:"size:255" json:"invited_by"`
	InvitedAt   time.Time    `json:"invited_at"`
	RespondedAt *time.Time   `json:"responded_at"`
	PendingKey  *string      `gorm:"size:300;uniqueIndex" json:"-"`
}

func (ProjectInvite) TableName() string { return "project_invites" }

func (i *ProjectInvite) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	if i.Status == "" {
		i.Status = InvitePending
	}
	if i.InvitedAt.IsZero() {
		i.InvitedAt = time.Now()
	}
	if i.Status == InvitePending {
		key := PendingInviteKey(i.TeamID, i.Email)
		i.PendingKey = &key
	}
	return nil
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PendingInviteKey identifies the single pending invite slot of a team for
// an email.
func PendingInviteKey(teamID, email string) string {
	return teamID + "|" + NormalizeEmail(email)
}
