package dto

import (
	"time"

	"github.com/taskmanager/taskmanager-api/internal/models"
)

// ProjectSummaryDTO represents a project without its tasks
type ProjectSummaryDTO struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Client       string    `json:"client"`
	DeliveryDate time.Time `json:"delivery_date"`
	Creator      uint64    `json:"creator"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProjectDetailDTO is a project with its collaborators and ordered tasks
type ProjectDetailDTO struct {
	ProjectSummaryDTO
	Collaborators []UserDTO `json:"collaborators"`
	Tasks         []TaskDTO `json:"tasks"`
}

// ToProjectSummaryDTO converts a Project model to ProjectSummaryDTO
func ToProjectSummaryDTO(project models.Project) ProjectSummaryDTO {
	return ProjectSummaryDTO{
		ID:           project.ID,
		Name:         project.Name,
		Description:  project.Description,
		Client:       project.Client,
		DeliveryDate: project.DeliveryDate,
		Creator:      project.CreatorID,
		CreatedAt:    project.CreatedAt,
		UpdatedAt:    project.UpdatedAt,
	}
}

// ToProjectSummaryDTOs converts a slice of projects
func ToProjectSummaryDTOs(projects []models.Project) []ProjectSummaryDTO {
	items := make([]ProjectSummaryDTO, len(projects))
	for i, project := range projects {
		items[i] = ToProjectSummaryDTO(project)
	}
	return items
}

// ToProjectDetailDTO converts a fully loaded project. Tasks are rendered
// without repeating the project they belong to.
func ToProjectDetailDTO(project models.Project) ProjectDetailDTO {
	collaborators := make([]UserDTO, len(project.Collaborators))
	for i, user := range project.Collaborators {
		collaborators[i] = ToUserDTO(user)
	}

	tasks := make([]TaskDTO, len(project.Tasks))
	for i, task := range project.Tasks {
		task.Project = models.Project{}
		tasks[i] = ToTaskDTO(task)
	}

	return ProjectDetailDTO{
		ProjectSummaryDTO: ToProjectSummaryDTO(project),
		Collaborators:     collaborators,
		Tasks:             tasks,
	}
}
