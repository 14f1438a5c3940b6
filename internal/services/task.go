package services

import (
	"context"
	"errors"
	"time"

	"github.com/huangang/teamtask/internal/models"
	"github.com/huangang/teamtask/internal/repository"
	"github.com/huangang/teamtask/pkg/response"
)

const msgTaskNotFound = "task not found"

type TaskService struct {
	store    *repository.Store
	scope    *Scope
	projects *ProjectService
}

func NewTaskService(store *repository.Store, scope *Scope, projects *ProjectService) *TaskService {
	return &TaskService{store: store, scope: scope, projects: projects}
}

type CreateTaskRequest struct {
	Title       string          `json:"title" binding:"required,max=255"`
	Description string          `json:"description"`
	Status      string          `json:"status" binding:"max=255"`
	Priority    models.Priority `json:"priority" binding:"required"`
	DueDate     time.Time       `json:"due_date" binding:"required"`
	Project     *string         `json:"project"`
	AssignedTo  *string         `json:"assigned_to" binding:"omitempty,max=255"`
	Tags        []string        `json:"tags"`
}

// UpdateTaskRequest is a partial update. An empty project or assignee
// clears it.
type UpdateTaskRequest struct {
	Title       *string          `json:"title" binding:"omitempty,max=255"`
	Description *string          `json:"description"`
	Status      *string          `json:"status" binding:"omitempty,max=255"`
	Priority    *models.Priority `json:"priority"`
	DueDate     *time.Time       `json:"due_date"`
	Project     *string          `json:"project"`
	AssignedTo  *string          `json:"assigned_to" binding:"omitempty,max=255"`
	Tags        *[]string        `json:"tags"`
}

// TaskDetail embeds the task's project, with roster, in place of its id.
type TaskDetail struct {
	models.Task
	Project *ProjectBasic `json:"project"`
}

func (s *TaskService) List(ctx context.Context, userID string) ([]models.Task, error) {
	tasks, err := s.scope.Tasks(ctx, userID)
	return tasks, storeError(err, msgTaskNotFound)
}

func (s *TaskService) PersonalTasks(ctx context.Context, userID string) ([]models.Task, error) {
	tasks, err := s.scope.PersonalTasks(ctx, userID)
	return tasks, storeError(err, msgTaskNotFound)
}

func (s *TaskService) ProjectTasks(ctx context.Context, userID string) ([]models.Task, error) {
	tasks, err := s.scope.ProjectTasks(ctx, userID)
	return tasks, storeError(err, msgTaskNotFound)
}

func (s *TaskService) UserVisibleTasks(ctx context.Context, userID string) (*UserVisibleTasks, error) {
	grouped, err := s.scope.UserVisibleTasks(ctx, userID)
	return grouped, storeError(err, msgTaskNotFound)
}

func (s *TaskService) get(ctx context.Context, userID, id string) (*models.Task, error) {
	task, err := s.store.Tasks.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, msgTaskNotFound)
	}

	ok, err := s.scope.CanSeeTask(ctx, userID, task)
	if err != nil {
		return nil, storeError(err, msgTaskNotFound)
	}
	if !ok {
		return nil, response.NewNotFound(msgTaskNotFound)
	}
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id string) (*TaskDetail, error) {
	task, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	detail := &TaskDetail{Task: *task}
	if task.ProjectID != nil {
		project, err := s.store.Projects.GetByID(ctx, *task.ProjectID)
		if err != nil {
			return nil, storeError(err, msgProjectNotFound)
		}
		basic := s.projects.Basic(ctx, project)
		detail.Project = &basic
	}
	return detail, nil
}

func (s *TaskService) loadProject(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.store.Projects.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, response.NewValidation(map[string]string{"project": "Project does not exist."})
	}
	if err != nil {
		return nil, storeError(err, msgProjectNotFound)
	}
	return project, nil
}

// Create stamps the caller as creator and settles the status against the
// project's allowed list.
func (s *TaskService) Create(ctx context.Context, userID string, req *CreateTaskRequest) (*models.Task, error) {
	if err := validatePriority(req.Priority); err != nil {
		return nil, err
	}

	var project *models.Project
	if req.Project != nil && *req.Project != "" {
		p, err := s.loadProject(ctx, *req.Project)
		if err != nil {
			return nil, err
		}
		project = p
	}

	status, err := resolveTaskStatus(project, req.Status, "")
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		AssignedTo:  nonEmpty(req.AssignedTo),
		CreatedBy:   userID,
		Tags:        req.Tags,
	}
	if project != nil {
		task.ProjectID = &project.ID
	}

	if err := s.store.Tasks.Create(ctx, task); err != nil {
		return nil, storeError(err, msgTaskNotFound)
	}
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, userID, id string, req *UpdateTaskRequest) (*models.Task, error) {
	task, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, response.NewValidation(map[string]string{"title": "This field may not be blank."})
		}
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		if err := validatePriority(*req.Priority); err != nil {
			return nil, err
		}
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = *req.DueDate
	}
	if req.AssignedTo != nil {
		task.AssignedTo = nonEmpty(req.AssignedTo)
	}
	if req.Tags != nil {
		task.Tags = *req.Tags
		if task.Tags == nil {
			task.Tags = []string{}
		}
	}
	if req.Project != nil {
		task.ProjectID = nonEmpty(req.Project)
	}

	var project *models.Project
	if task.ProjectID != nil {
		if project, err = s.loadProject(ctx, *task.ProjectID); err != nil {
			return nil, err
		}
	}

	var status string
	if req.Status != nil {
		status = *req.Status
	}
	if task.Status, err = resolveTaskStatus(project, status, task.Status); err != nil {
		return nil, err
	}

	if err := s.store.Tasks.Update(ctx, task); err != nil {
		return nil, storeError(err, msgTaskNotFound)
	}
	return task, nil
}

// Delete removes the task and its comments together.
func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.get(ctx, userID, id); err != nil {
		return err
	}

	err := s.store.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.Comments.DeleteByTask(ctx, id); err != nil {
			return err
		}
		return s.store.Tasks.Delete(ctx, id)
	})
	return storeError(err, msgTaskNotFound)
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
