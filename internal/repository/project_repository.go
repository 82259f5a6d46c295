package repository

import (
	"github.com/taskmanager/taskmanager-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Omit(clause.Associations).Create(project).Error
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// FindDetail finds a project with creator, collaborators and ordered tasks
func (r *GormProjectRepository) FindDetail(id uint64) (*models.Project, error) {
	var project models.Project
	err := r.db.
		Preload("Creator").
		Preload("Collaborators", func(db *gorm.DB) *gorm.DB {
			return db.Order("users.name ASC")
		}).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("tasks.created_at ASC, tasks.id ASC")
		}).
		Preload("Tasks.CompletedBy").
		First(&project, id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// ListForUser lists projects the user created or collaborates on
func (r *GormProjectRepository) ListForUser(userID uint64) ([]models.Project, error) {
	collaborating := r.db.Table("project_collaborators").
		Select("project_id").
		Where("user_id = ?", userID)

	var projects []models.Project
	if err := r.db.
		Where("(projects.creator_id = ? OR projects.id IN (?))", userID, collaborating).
		Order("projects.created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Update updates a project's own columns
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Omit(clause.Associations, "CreatorID").Save(project).Error
}

// Delete deletes a project and all related data in a transaction
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Soft delete all tasks in the project
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		// Drop collaborator links
		if err := tx.Exec("DELETE FROM project_collaborators WHERE project_id = ?", id).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}

// AddCollaborator links a user to a project
func (r *GormProjectRepository) AddCollaborator(project *models.Project, user *models.User) error {
	return r.db.Model(project).Association("Collaborators").Append(user)
}

// RemoveCollaborator unlinks a user from a project
func (r *GormProjectRepository) RemoveCollaborator(project *models.Project, userID uint64) error {
	return r.db.Model(project).Association("Collaborators").Delete(&models.User{ID: userID})
}
