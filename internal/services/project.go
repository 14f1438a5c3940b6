package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangang/teamtask/internal/models"
	"github.com/huangang/teamtask/internal/repository"
	"github.com/huangang/teamtask/pkg/response"
)

const msgProjectNotFound = "project not found"

type ProjectService struct {
	store  *repository.Store
	scope  *Scope
	roster *RosterService
	now    func() time.Time
}

func NewProjectService(store *repository.Store, scope *Scope, roster *RosterService) *ProjectService {
	return &ProjectService{store: store, scope: scope, roster: roster, now: time.Now}
}

type CreateProjectRequest struct {
	Name         string               `json:"name" binding:"required,max=255"`
	Description  string               `json:"description"`
	Status       models.ProjectStatus `json:"status" binding:"required"`
	TaskStatuses []string             `json:"task_statuses"`
	DueDate      *time.Time           `json:"due_date"`
	Team         *string              `json:"team"`
}

type UpdateProjectRequest struct {
	Name         *string               `json:"name" binding:"omitempty,max=255"`
	Description  *string               `json:"description"`
	Status       *models.ProjectStatus `json:"status"`
	TaskStatuses *[]string             `json:"task_statuses"`
	DueDate      *time.Time            `json:"due_date"`
	Team         *string               `json:"team"`
}

// ProjectBasic is a project without its tasks, with the team roster.
type ProjectBasic struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Status       models.ProjectStatus `json:"status"`
	TaskStatuses []string             `json:"task_statuses"`
	CreatedAt    time.Time            `json:"created_at"`
	DueDate      *time.Time           `json:"due_date"`
	TeamID       *string              `json:"team"`
	Members      []RosterMember       `json:"members"`
}

// List returns the visible projects with their tasks.
func (s *ProjectService) List(ctx context.Context, userID string) ([]models.Project, error) {
	projects, err := s.scope.Projects(ctx, userID, true)
	return projects, storeError(err, msgProjectNotFound)
}

func (s *ProjectService) Get(ctx context.Context, userID, id string) (*models.Project, error) {
	project, err := s.store.Projects.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, msgProjectNotFound)
	}

	ok, err := s.scope.CanSeeProject(ctx, userID, project)
	if err != nil {
		return nil, storeError(err, msgProjectNotFound)
	}
	if !ok {
		return nil, response.NewNotFound(msgProjectNotFound)
	}
	return project, nil
}

// BasicProjects lists the visible projects with each team's roster.
func (s *ProjectService) BasicProjects(ctx context.Context, userID string) ([]ProjectBasic, error) {
	projects, err := s.scope.Projects(ctx, userID, false)
	if err != nil {
		return nil, storeError(err, msgProjectNotFound)
	}

	rosters := make(map[string][]RosterMember)
	out := make([]ProjectBasic, 0, len(projects))
	for i := range projects {
		p := &projects[i]
		basic := s.basic(p)
		if p.TeamID != nil {
			members, ok := rosters[*p.TeamID]
			if !ok {
				members = s.roster.Members(ctx, p.TeamID)
				rosters[*p.TeamID] = members
			}
			basic.Members = members
		}
		out = append(out, basic)
	}
	return out, nil
}

// Basic returns one project with its roster.
func (s *ProjectService) Basic(ctx context.Context, p *models.Project) ProjectBasic {
	basic := s.basic(p)
	basic.Members = s.roster.Members(ctx, p.TeamID)
	return basic
}

func (s *ProjectService) basic(p *models.Project) ProjectBasic {
	return ProjectBasic{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Status:       p.Status,
		TaskStatuses: p.TaskStatuses,
		CreatedAt:    p.CreatedAt,
		DueDate:      p.DueDate,
		TeamID:       p.TeamID,
		Members:      []RosterMember{},
	}
}

// Create attaches the project to the given team, or to a fresh team owned
// by the caller when none is given.
func (s *ProjectService) Create(ctx context.Context, userID string, req *CreateProjectRequest) (*models.Project, error) {
	if err := validateProjectStatus(req.Status); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:         req.Name,
		Description:  req.Description,
		Status:       req.Status,
		TaskStatuses: cleanStatuses(req.TaskStatuses),
		DueDate:      req.DueDate,
	}

	err := s.store.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if req.Team != nil && *req.Team != "" {
			if err := s.requireTeam(ctx, *req.Team); err != nil {
				return err
			}
			project.TeamID = req.Team
			return s.store.Projects.Create(ctx, project)
		}

		team, err := s.createDefaultTeam(ctx, userID, req.Name)
		if err != nil {
			return err
		}
		project.TeamID = &team.ID
		return s.store.Projects.Create(ctx, project)
	})
	if err != nil {
		return nil, storeError(err, msgProjectNotFound)
	}

	project.Tasks = []models.Task{}
	return project, nil
}

func (s *ProjectService) createDefaultTeam(ctx context.Context, userID, projectName string) (*models.Team, error) {
	if projectName == "" {
		projectName = "Unnamed Project"
	}
	today := s.now().Format("2006-01-02")

	team := &models.Team{
		Name:        fmt.Sprintf("Team for %s (%s)", projectName, today),
		Description: fmt.Sprintf("Auto-generated team for project: %s (%s)", projectName, today),
	}
	if err := s.store.Teams.Create(ctx, team); err != nil {
		return nil, err
	}

	err := s.store.Members.Create(ctx, &models.TeamMember{
		TeamID: team.ID,
		UserID: userID,
		Role:   models.RoleOwner,
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (s *ProjectService) requireTeam(ctx context.Context, teamID string) error {
	_, err := s.store.Teams.GetByID(ctx, teamID)
	if errors.Is(err, repository.ErrNotFound) {
		return response.NewValidation(map[string]string{
			"team": fmt.Sprintf("Invalid pk %q - object does not exist.", teamID),
		})
	}
	return err
}

func (s *ProjectService) Update(ctx context.Context, userID, id string, req *UpdateProjectRequest) (*models.Project, error) {
	project, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, response.NewValidation(map[string]string{"name": "This field may not be blank."})
		}
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		if err := validateProjectStatus(*req.Status); err != nil {
			return nil, err
		}
		project.Status = *req.Status
	}
	if req.TaskStatuses != nil {
		project.TaskStatuses = cleanStatuses(*req.TaskStatuses)
		if len(project.TaskStatuses) == 0 {
			project.TaskStatuses = models.DefaultTaskStatuses()
		}
	}
	if req.DueDate != nil {
		project.DueDate = req.DueDate
	}
	if req.Team != nil && *req.Team != "" && (project.TeamID == nil || *project.TeamID != *req.Team) {
		if err := s.requireTeam(ctx, *req.Team); err != nil {
			return nil, storeError(err, msgProjectNotFound)
		}
		project.TeamID = req.Team
	}

	if err := s.store.Projects.Update(ctx, project); err != nil {
		return nil, storeError(err, msgProjectNotFound)
	}
	return project, nil
}

// Delete refuses projects that still own tasks.
func (s *ProjectService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	count, err := s.store.Projects.CountTasks(ctx, []string{id})
	if err != nil {
		return storeError(err, msgProjectNotFound)
	}
	if count > 0 {
		return response.NewConflict("Cannot delete a project that still has tasks")
	}

	return storeError(s.store.Projects.Delete(ctx, id), msgProjectNotFound)
}
