package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskmanager/taskmanager-api/internal/dto"
	apierrors "github.com/taskmanager/taskmanager-api/internal/errors"
	"github.com/taskmanager/taskmanager-api/internal/middleware"
	"github.com/taskmanager/taskmanager-api/internal/services"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// ListProjects returns the projects the user created or collaborates on
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projects, err := h.projectService.ListProjects(userID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectSummaryDTOs(projects))
}

// CreateProject creates a project owned by the current user
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateProjectRequest struct {
		Name         string     `json:"name" binding:"required"`
		Description  string     `json:"description" binding:"required"`
		Client       string     `json:"client" binding:"required"`
		DeliveryDate *time.Time `json:"delivery_date"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Name, description and client are required")
		return
	}

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		Name:         req.Name,
		Description:  req.Description,
		Client:       req.Client,
		DeliveryDate: req.DeliveryDate,
		CreatorID:    userID,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectSummaryDTO(*project))
}

// GetProject returns a project with its collaborators and tasks
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, projectID, ok := actorAndID(c, "Project")
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(projectID, userID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDetailDTO(*project))
}

// UpdateProject applies a partial update to a project
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, projectID, ok := actorAndID(c, "Project")
	if !ok {
		return
	}

	type UpdateProjectRequest struct {
		Name         *string    `json:"name"`
		Description  *string    `json:"description"`
		Client       *string    `json:"client"`
		DeliveryDate *time.Time `json:"delivery_date"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateProject(projectID, userID, services.UpdateProjectInput{
		Name:         req.Name,
		Description:  req.Description,
		Client:       req.Client,
		DeliveryDate: req.DeliveryDate,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectSummaryDTO(*project))
}

// DeleteProject deletes a project and its tasks
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, projectID, ok := actorAndID(c, "Project")
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(projectID, userID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Project deleted"})
}

// SearchCollaborator finds a user by email
func (h *ProjectHandler) SearchCollaborator(c *gin.Context) {
	type SearchRequest struct {
		Email string `json:"email" binding:"required"`
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Email is required")
		return
	}

	user, err := h.projectService.SearchCollaborator(req.Email)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// AddCollaborator adds a user to the project by email
func (h *ProjectHandler) AddCollaborator(c *gin.Context) {
	userID, projectID, ok := actorAndID(c, "Project")
	if !ok {
		return
	}

	type AddCollaboratorRequest struct {
		Email string `json:"email" binding:"required"`
	}

	var req AddCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Email is required")
		return
	}

	user, err := h.projectService.AddCollaborator(projectID, userID, req.Email)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// RemoveCollaborator removes a user from the project
func (h *ProjectHandler) RemoveCollaborator(c *gin.Context) {
	userID, projectID, ok := actorAndID(c, "Project")
	if !ok {
		return
	}

	type RemoveCollaboratorRequest struct {
		ID uint64 `json:"id" binding:"required"`
	}

	var req RemoveCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Collaborator id is required")
		return
	}

	if err := h.projectService.RemoveCollaborator(projectID, userID, req.ID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Collaborator removed"})
}

// actorAndID reads the authenticated user and the validated :id parameter,
// writing the error response itself when either is missing. resource names
// the entity in the not-found message.
func actorAndID(c *gin.Context, resource string) (uint64, uint64, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, 0, false
	}

	id, exists := middleware.GetIDParam(c)
	if !exists {
		apierrors.NotFound(c, resource+" not found")
		return 0, 0, false
	}

	return userID, id, true
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrNotProjectCreator),
		errors.Is(err, services.ErrProjectAccessDenied):
		apierrors.Forbidden(c, "Invalid action")
	case errors.Is(err, services.ErrProjectFieldsRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrCreatorCannotCollaborate):
		apierrors.InvalidOperation(c, "The project creator cannot be a collaborator")
	case errors.Is(err, services.ErrAlreadyCollaborator):
		apierrors.AlreadyExists(c, "The user already belongs to the project")
	default:
		apierrors.InternalError(c, err)
	}
}
