package services

import (
	"context"
	"errors"

	"github.com/huangang/teamtask/internal/models"
	"github.com/huangang/teamtask/internal/repository"
)

// Scope computes the rows a user may read. Missing access yields an empty
// result, never an error.
type Scope struct {
	store *repository.Store
}

func NewScope(store *repository.Store) *Scope {
	return &Scope{store: store}
}

// TeamIDs returns the teams the user has a membership row in.
func (s *Scope) TeamIDs(ctx context.Context, userID string) ([]string, error) {
	return s.store.Members.TeamIDsByUser(ctx, userID)
}

func (s *Scope) Teams(ctx context.Context, userID string) ([]models.Team, error) {
	ids, err := s.TeamIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.Teams.ListByIDs(ctx, ids)
}

func (s *Scope) ProjectIDs(ctx context.Context, userID string) ([]string, error) {
	teamIDs, err := s.TeamIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.Projects.IDsByTeamIDs(ctx, teamIDs)
}

func (s *Scope) Projects(ctx context.Context, userID string, withTasks bool) ([]models.Project, error) {
	teamIDs, err := s.TeamIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.Projects.ListByTeamIDs(ctx, teamIDs, withTasks)
}

// TaskFilter is the visibility rule for tasks: assigned to or created by the
// user, or in a project the user can see.
func (s *Scope) TaskFilter(ctx context.Context, userID string) (repository.TaskFilter, error) {
	projectIDs, err := s.ProjectIDs(ctx, userID)
	if err != nil {
		return repository.TaskFilter{}, err
	}
	return repository.TaskFilter{
		AssignedOrCreatedBy: userID,
		InProjects:          projectIDs,
	}, nil
}

func (s *Scope) Tasks(ctx context.Context, userID string) ([]models.Task, error) {
	filter, err := s.TaskFilter(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.Tasks.List(ctx, filter)
}

// PersonalTasks are the user's own tasks that have no project.
func (s *Scope) PersonalTasks(ctx context.Context, userID string) ([]models.Task, error) {
	return s.store.Tasks.List(ctx, repository.TaskFilter{
		AssignedOrCreatedBy: userID,
		PersonalOnly:        true,
	})
}

// ProjectTasks are all tasks of the projects the user can see.
func (s *Scope) ProjectTasks(ctx context.Context, userID string) ([]models.Task, error) {
	projectIDs, err := s.ProjectIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(projectIDs) == 0 {
		return []models.Task{}, nil
	}
	return s.store.Tasks.List(ctx, repository.TaskFilter{InProjects: projectIDs})
}

// Comments returns the comments on visible tasks, narrowed to taskID when
// it is set.
func (s *Scope) Comments(ctx context.Context, userID, taskID string) ([]models.Comment, error) {
	tasks, err := s.Tasks(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if taskID == "" || t.ID == taskID {
			ids = append(ids, t.ID)
		}
	}
	return s.store.Comments.ListByTaskIDs(ctx, ids)
}

func (s *Scope) CanSeeTeam(ctx context.Context, userID, teamID string) (bool, error) {
	_, err := s.store.Members.Get(ctx, teamID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Scope) CanSeeProject(ctx context.Context, userID string, project *models.Project) (bool, error) {
	if project.TeamID == nil {
		return false, nil
	}
	return s.CanSeeTeam(ctx, userID, *project.TeamID)
}

func (s *Scope) CanSeeTask(ctx context.Context, userID string, task *models.Task) (bool, error) {
	if task.CreatedBy == userID || (task.AssignedTo != nil && *task.AssignedTo == userID) {
		return true, nil
	}
	if task.ProjectID == nil {
		return false, nil
	}

	project, err := s.store.Projects.GetByID(ctx, *task.ProjectID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.CanSeeProject(ctx, userID, project)
}

// UserVisibleTasks groups what the user works on: personal tasks, and every
// visible project holding at least one task assigned to the user, listing
// only those tasks.
type UserVisibleTasks struct {
	PersonalTasks []models.Task    `json:"personal_tasks"`
	ProjectTasks  []models.Project `json:"project_tasks"`
}

func (s *Scope) UserVisibleTasks(ctx context.Context, userID string) (*UserVisibleTasks, error) {
	personal, err := s.PersonalTasks(ctx, userID)
	if err != nil {
		return nil, err
	}

	projects, err := s.Projects(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	result := &UserVisibleTasks{
		PersonalTasks: personal,
		ProjectTasks:  []models.Project{},
	}
	if len(projects) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	assigned, err := s.store.Tasks.List(ctx, repository.TaskFilter{
		InProjects: ids,
		AssignedTo: userID,
	})
	if err != nil {
		return nil, err
	}

	byProject := make(map[string][]models.Task)
	for _, t := range assigned {
		byProject[*t.ProjectID] = append(byProject[*t.ProjectID], t)
	}

	for _, p := range projects {
		tasks, ok := byProject[p.ID]
		if !ok {
			continue
		}
		p.Tasks = tasks
		result.ProjectTasks = append(result.ProjectTasks, p)
	}
	return result, nil
}
