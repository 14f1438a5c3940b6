package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Task is either personal (no project) or belongs to a project, in which
// case its status must be one of the project's TaskStatuses.
type Task struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Status      string    `gorm:"size:255;index" json:"status"`
	Priority    Priority  `gorm:"size:10;not null" json:"priority"`
	DueDate     time.Time `gorm:"index" json:"due_date"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	ProjectID   *string   `gorm:"type:varchar(36);index" json:"project"`
	AssignedTo  *string   `gorm:"size:255;index" json:"assigned_to"`
	CreatedBy   string    `gorm:"size:255;index" json:"created_by"`
	Tags        []string  `gorm:"type:text;serializer:json" json:"tags"`

	Comments []Comment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Task) TableName() string { return "tasks" }

// StatusError reports a task status outside its project's allowed list.
type StatusError struct {
	Allowed []string
}

func (e *StatusError) Error() string {
	return "Status must be one of: " + strings.Join(e.Allowed, ", ")
}

// ErrProjectMissing is returned when a task references a project that does
// not exist.
var ErrProjectMissing = errors.New("project does not exist")

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return nil
}

// BeforeSave re-checks the status against the project as stored, so writes
// that bypass the service layer cannot persist an unknown status.
func (t *Task) BeforeSave(tx *gorm.DB) error {
	if t.ProjectID == nil {
		return nil
	}

	var project Project
	err := tx.Session(&gorm.Session{NewDB: true}).
		Select("id", "task_statuses").
		Where("id = ?", *t.ProjectID).
		First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProjectMissing
	}
	if err != nil {
		return err
	}

	if !project.AllowsStatus(t.Status) {
		return &StatusError{Allowed: project.TaskStatuses}
	}
	return nil
}
