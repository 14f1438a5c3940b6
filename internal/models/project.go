package models

import (
	"slices"
	"time"

	"gorm.io/gorm"
)

// Project belongs to one team and defines the statuses its tasks may use.
type Project struct {
	ID           string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name         string        `gorm:"size:255;not null" json:"name"`
	Description  string        `gorm:"type:text" json:"description"`
	Status       ProjectStatus `gorm:"size:20;index;not null" json:"status"`
	TaskStatuses []string      `gorm:"type:text;serializer:json" json:"task_statuses"`
	CreatedAt    time.Time     `json:"created_at"`
	DueDate      *time.Time    `json:"due_date"`
	TeamID       *string       `gorm:"type:varchar(36);index" json:"team"`

	// Tasks keep their project alive: deleting a project that still has
	// tasks is rejected by the store.
	Tasks []Task `gorm:"foreignKey:ProjectID;constraint:OnDelete:RESTRICT" json:"tasks"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	if len(p.TaskStatuses) == 0 {
		p.TaskStatuses = DefaultTaskStatuses()
	}
	return nil
}

// AllowsStatus reports whether status is in the project's allowed list.
func (p *Project) AllowsStatus(status string) bool {
	return slices.Contains(p.TaskStatuses, status)
}

// DefaultStatus is the first allowed status, or "" when none are defined.
func (p *Project) DefaultStatus() string {
	if len(p.TaskStatuses) == 0 {
		return ""
	}
	return p.TaskStatuses[0]
}
