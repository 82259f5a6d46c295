package dto

import (
	"time"

	"github.com/taskmanager/taskmanager-api/internal/models"
)

// CompleterDTO identifies who last completed a task
type CompleterDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           uint64              `json:"id"`
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Status       bool                `json:"status"`
	DeliveryDate time.Time           `json:"delivery_date"`
	Priority     models.TaskPriority `json:"priority"`
	ProjectID    uint64              `json:"project_id"`
	Project      *ProjectSummaryDTO  `json:"project,omitempty"`
	Completed    *CompleterDTO       `json:"completed"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// ToTaskDTO converts a Task model to TaskDTO. The project is included when
// it was loaded.
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:           task.ID,
		Name:         task.Name,
		Description:  task.Description,
		Status:       task.Status,
		DeliveryDate: task.DeliveryDate,
		Priority:     task.Priority,
		ProjectID:    task.ProjectID,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}

	if task.Project.ID != 0 {
		project := ToProjectSummaryDTO(task.Project)
		dto.Project = &project
	}

	if task.Status && task.CompletedBy != nil {
		dto.Completed = &CompleterDTO{
			ID:   task.CompletedBy.ID,
			Name: task.CompletedBy.Name,
		}
	}

	return dto
}
