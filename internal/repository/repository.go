package repository

import (
	"context"
	"errors"
	"time"

	"github.com/huangang/teamtask/internal/models"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate record")
	// ErrReferenced is returned when a delete would orphan protected rows.
	ErrReferenced = errors.New("record is still referenced")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id string) (*models.Team, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id string) error
}

type TeamMemberRepository interface {
	Create(ctx context.Context, member *models.TeamMember) error
	Get(ctx context.Context, teamID, userID string) (*models.TeamMember, error)
	ListByTeam(ctx context.Context, teamID string) ([]models.TeamMember, error)
	TeamIDsByUser(ctx context.Context, userID string) ([]string, error)
	DeleteByTeam(ctx context.Context, teamID string) error
}

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id string) (*models.Project, error)
	// ListByTeamIDs returns the projects of the given teams, newest first,
	// with their tasks loaded when withTasks is set.
	ListByTeamIDs(ctx context.Context, teamIDs []string, withTasks bool) ([]models.Project, error)
	IDsByTeamIDs(ctx context.Context, teamIDs []string) ([]string, error)
	FirstByTeam(ctx context.Context, teamID string) (*models.Project, error)
	CountTasks(ctx context.Context, projectIDs []string) (int64, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id string) error
	DeleteByTeam(ctx context.Context, teamID string) error
}

// TaskFilter selects tasks. Non-empty clauses in the "any of" group are
// OR-ed together; the remaining fields are AND-ed with that group.
type TaskFilter struct {
	// any of
	AssignedOrCreatedBy string
	InProjects          []string

	// all of
	ProjectID    string
	AssignedTo   string
	PersonalOnly bool
}

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByTaskIDs(ctx context.Context, taskIDs []string) ([]models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id string) error
	DeleteByTask(ctx context.Context, taskID string) error
}

type InviteRepository interface {
	Create(ctx context.Context, invite *models.ProjectInvite) error
	GetByID(ctx context.Context, id string) (*models.ProjectInvite, error)
	HasPending(ctx context.Context, teamID, email string) (bool, error)
	ListPendingByEmail(ctx context.Context, email string) ([]models.ProjectInvite, error)
	// Resolve moves a pending invite addressed to email into status. It
	// reports false when no such pending invite exists.
	Resolve(ctx context.Context, id, email string, status models.InviteStatus, at time.Time) (bool, error)
	DeleteByTeam(ctx context.Context, teamID string) error
}

type TransactionManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store bundles every repository of one backing database.
type Store struct {
	Teams    TeamRepository
	Members  TeamMemberRepository
	Projects ProjectRepository
	Tasks    TaskRepository
	Comments CommentRepository
	Invites  InviteRepository
	Tx       TransactionManager
}
