package repository

import (
	"github.com/taskmanager/taskmanager-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// Update persists every column of an existing user
	Update(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindByToken finds the user holding a confirmation or reset token
	FindByToken(token string) (*models.User, error)

	// EmailExists reports whether any user row, deleted or not, holds email
	EmailExists(email string) (bool, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// FindDetail finds a project with its creator, collaborators and
	// ordered tasks (each with its completer) loaded
	FindDetail(id uint64) (*models.Project, error)

	// ListForUser lists projects the user created or collaborates on
	ListForUser(userID uint64) ([]models.Project, error)

	// Update updates a project's own columns
	Update(project *models.Project) error

	// Delete deletes a project together with its tasks and collaborator links
	Delete(id uint64) error

	// AddCollaborator links a user to a project
	AddCollaborator(project *models.Project, user *models.User) error

	// RemoveCollaborator unlinks a user from a project; unknown users are ignored
	RemoveCollaborator(project *models.Project, userID uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// Update updates a task's own columns
	Update(task *models.Task) error

	// Delete soft deletes a task
	Delete(id uint64) error
}
