package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskmanager/taskmanager-api/internal/access"
	"github.com/taskmanager/taskmanager-api/internal/models"
	"github.com/taskmanager/taskmanager-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound          = errors.New("project not found")
	ErrNotProjectCreator        = errors.New("only the project creator can perform this action")
	ErrProjectAccessDenied      = errors.New("user does not have access to this project")
	ErrProjectFieldsRequired    = errors.New("name, description and client are required")
	ErrCreatorCannotCollaborate = errors.New("the project creator cannot be a collaborator")
	ErrAlreadyCollaborator      = errors.New("user is already a collaborator of this project")
)

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name         string
	Description  string
	Client       string
	DeliveryDate *time.Time
	CreatorID    uint64
}

// UpdateProjectInput represents input for updating a project. Nil or blank
// fields keep their stored value.
type UpdateProjectInput struct {
	Name         *string
	Description  *string
	Client       *string
	DeliveryDate *time.Time
}

// ListProjects returns the projects a user created or collaborates on
func (s *ProjectService) ListProjects(userID uint64) ([]models.Project, error) {
	projects, err := s.projectRepo.ListForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// CreateProject creates a project owned by the acting user
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)
	client := strings.TrimSpace(input.Client)
	if name == "" || description == "" || client == "" {
		return nil, ErrProjectFieldsRequired
	}

	deliveryDate := time.Now()
	if input.DeliveryDate != nil {
		deliveryDate = *input.DeliveryDate
	}

	project := &models.Project{
		Name:         name,
		Description:  description,
		Client:       client,
		DeliveryDate: deliveryDate,
		CreatorID:    input.CreatorID,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// GetProject returns the project detail if the actor is a member
func (s *ProjectService) GetProject(projectID, actorID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindDetail(projectID)
	if err != nil {
		return nil, wrapProjectLookup(err)
	}

	if err := authorize(project, actorID, access.RequireMember); err != nil {
		return nil, err
	}

	return project, nil
}

// UpdateProject applies a partial update; only the creator may update
func (s *ProjectService) UpdateProject(projectID, actorID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.loadProject(projectID, actorID, access.RequireCreator)
	if err != nil {
		return nil, err
	}

	mergeString(&project.Name, input.Name)
	mergeString(&project.Description, input.Description)
	mergeString(&project.Client, input.Client)
	if input.DeliveryDate != nil {
		project.DeliveryDate = *input.DeliveryDate
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject removes a project together with its tasks
func (s *ProjectService) DeleteProject(projectID, actorID uint64) error {
	if _, err := s.loadProject(projectID, actorID, access.RequireCreator); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// SearchCollaborator looks up a candidate collaborator by email
func (s *ProjectService) SearchCollaborator(email string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// AddCollaborator adds the user identified by email to the project
func (s *ProjectService) AddCollaborator(projectID, actorID uint64, email string) (*models.User, error) {
	project, err := s.loadProject(projectID, actorID, access.RequireCreator)
	if err != nil {
		return nil, err
	}

	user, err := s.SearchCollaborator(email)
	if err != nil {
		return nil, err
	}

	if user.ID == project.CreatorID {
		return nil, ErrCreatorCannotCollaborate
	}
	if project.HasCollaborator(user.ID) {
		return nil, ErrAlreadyCollaborator
	}

	if err := s.projectRepo.AddCollaborator(project, user); err != nil {
		return nil, fmt.Errorf("failed to add collaborator: %w", err)
	}

	return user, nil
}

// RemoveCollaborator removes a user from the collaborator set. Removing a
// user who is not a collaborator succeeds without changes.
func (s *ProjectService) RemoveCollaborator(projectID, actorID, userID uint64) error {
	project, err := s.loadProject(projectID, actorID, access.RequireCreator)
	if err != nil {
		return err
	}

	if !project.HasCollaborator(userID) {
		return nil
	}

	if err := s.projectRepo.RemoveCollaborator(project, userID); err != nil {
		return fmt.Errorf("failed to remove collaborator: %w", err)
	}

	return nil
}

// loadProject fetches a project with its collaborators and checks that the
// actor holds the required relationship.
func (s *ProjectService) loadProject(projectID, actorID uint64, need access.Relationship) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID, "Collaborators")
	if err != nil {
		return nil, wrapProjectLookup(err)
	}

	if err := authorize(project, actorID, need); err != nil {
		return nil, err
	}

	return project, nil
}

func authorize(project *models.Project, actorID uint64, need access.Relationship) error {
	if access.Check(project, actorID, need).Allowed {
		return nil
	}
	if need == access.RequireCreator {
		return ErrNotProjectCreator
	}
	return ErrProjectAccessDenied
}

func wrapProjectLookup(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProjectNotFound
	}
	return fmt.Errorf("failed to find project: %w", err)
}

func mergeString(dst *string, value *string) {
	if value == nil {
		return
	}
	if trimmed := strings.TrimSpace(*value); trimmed != "" {
		*dst = trimmed
	}
}
