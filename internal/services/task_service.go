package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskmanager/taskmanager-api/internal/access"
	"github.com/taskmanager/taskmanager-api/internal/constants"
	"github.com/taskmanager/taskmanager-api/internal/models"
	"github.com/taskmanager/taskmanager-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrProjectIDRequired      = errors.New("project is required")
	ErrTaskFieldsRequired     = errors.New("name and description are required")
	ErrInvalidPriority        = errors.New("priority must be Low, Medium or High")
	ErrSuggestTextRequired    = errors.New("text is required")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	suggester   TaskSuggester
}

// NewTaskService creates a new TaskService. suggester may be nil.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, suggester TaskSuggester) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		suggester:   suggester,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Name         string
	Description  string
	Priority     string
	DeliveryDate *time.Time
	ProjectID    uint64
	ActorID      uint64
}

// UpdateTaskInput represents input for updating a task. Nil or blank fields
// keep their stored value.
type UpdateTaskInput struct {
	Name         *string
	Description  *string
	Priority     *string
	DeliveryDate *time.Time
}

// SuggestTasksInput represents input for AI task suggestions
type SuggestTasksInput struct {
	ProjectID uint64
	ActorID   uint64
	Text      string
}

// CreateTask creates a task in a project; only the project creator may create
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if input.ProjectID == 0 {
		return nil, ErrProjectIDRequired
	}

	project, err := s.projectRepo.FindByID(input.ProjectID)
	if err != nil {
		return nil, wrapProjectLookup(err)
	}
	if err := authorize(project, input.ActorID, access.RequireCreator); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)
	if name == "" || description == "" {
		return nil, ErrTaskFieldsRequired
	}

	priority, ok := models.ParsePriority(input.Priority)
	if !ok {
		return nil, ErrInvalidPriority
	}

	deliveryDate := time.Now()
	if input.DeliveryDate != nil {
		deliveryDate = *input.DeliveryDate
	}

	task := &models.Task{
		Name:         name,
		Description:  description,
		Priority:     priority,
		DeliveryDate: deliveryDate,
		ProjectID:    project.ID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	task.Project = *project
	return task, nil
}

// GetTask returns a task with its project and completer if the actor is a
// member of the owning project
func (s *TaskService) GetTask(taskID, actorID uint64) (*models.Task, error) {
	return s.loadTask(taskID, actorID, access.RequireMember)
}

// UpdateTask applies a partial update; only the project creator may update
func (s *TaskService) UpdateTask(taskID, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.loadTask(taskID, actorID, access.RequireCreator)
	if err != nil {
		return nil, err
	}

	mergeString(&task.Name, input.Name)
	mergeString(&task.Description, input.Description)
	if input.Priority != nil && strings.TrimSpace(*input.Priority) != "" {
		priority, ok := models.ParsePriority(*input.Priority)
		if !ok {
			return nil, ErrInvalidPriority
		}
		task.Priority = priority
	}
	if input.DeliveryDate != nil {
		task.DeliveryDate = *input.DeliveryDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask deletes a task; only the project creator may delete
func (s *TaskService) DeleteTask(taskID, actorID uint64) error {
	if _, err := s.loadTask(taskID, actorID, access.RequireCreator); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// ToggleTaskStatus flips a task between done and not done. The creator and
// every collaborator may toggle. The completer is recorded when the task
// becomes done and cleared when it is reopened.
func (s *TaskService) ToggleTaskStatus(taskID, actorID uint64) (*models.Task, error) {
	task, err := s.loadTask(taskID, actorID, access.RequireMember)
	if err != nil {
		return nil, err
	}

	task.Status = !task.Status
	if task.Status {
		completer := actorID
		task.CompletedByID = &completer
	} else {
		task.CompletedByID = nil
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to toggle status: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Project", "CompletedBy")
}

// SuggestTasks uses AI to draft tasks for a project from text. Drafts are
// returned to the caller and never stored.
func (s *TaskService) SuggestTasks(ctx context.Context, input SuggestTasksInput) ([]SuggestedTask, error) {
	if s.suggester == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, ErrSuggestTextRequired
	}
	if input.ProjectID == 0 {
		return nil, ErrProjectIDRequired
	}

	project, err := s.projectRepo.FindByID(input.ProjectID)
	if err != nil {
		return nil, wrapProjectLookup(err)
	}
	if err := authorize(project, input.ActorID, access.RequireCreator); err != nil {
		return nil, err
	}

	suggestions, err := s.suggester.SuggestTasks(ctx, project.Name, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(suggestions) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(suggestions) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	valid := make([]SuggestedTask, 0, len(suggestions))
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, suggestion := range suggestions {
		suggestion.Name = strings.TrimSpace(suggestion.Name)
		if suggestion.Name == "" {
			continue
		}

		if priority, ok := models.ParsePriority(string(suggestion.Priority)); ok {
			suggestion.Priority = priority
		} else {
			suggestion.Priority = models.PriorityMedium
		}

		if suggestion.DeliveryDate != nil && suggestion.DeliveryDate.Before(cutoff) {
			suggestion.DeliveryDate = nil
		}

		valid = append(valid, suggestion)
	}

	if len(valid) == 0 {
		return nil, ErrAINoValidTasks
	}

	return valid, nil
}

// loadTask fetches a task with its project, collaborators and completer and
// checks the actor's relationship to the owning project.
func (s *TaskService) loadTask(taskID, actorID uint64, need access.Relationship) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Project", "Project.Collaborators", "CompletedBy")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	// A task whose project is gone is unreachable.
	if task.Project.ID == 0 {
		return nil, ErrTaskNotFound
	}

	if err := authorize(&task.Project, actorID, need); err != nil {
		return nil, err
	}

	return task, nil
}
