package models

import (
	"time"

	"gorm.io/gorm"
)

// TeamMember represents a user's membership and role within a team.
// UserID is the opaque identifier issued by the identity provider.
type TeamMember struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	TeamID    string    `gorm:"type:varchar(36);uniqueIndex:idx_team_user;not null" json:"team"`
	UserID    string    `gorm:"size:255;uniqueIndex:idx_team_user;index;not null" json:"user_id"`
	Role      Role      `gorm:"size:10;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (TeamMember) TableName() string { return "team_members" }

func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	assignID(&m.ID)
	return nil
}
