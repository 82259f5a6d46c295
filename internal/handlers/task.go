package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskmanager/taskmanager-api/internal/dto"
	apierrors "github.com/taskmanager/taskmanager-api/internal/errors"
	"github.com/taskmanager/taskmanager-api/internal/middleware"
	"github.com/taskmanager/taskmanager-api/internal/services"
)

const suggestTimeout = 60 * time.Second

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTask creates a task in the project named by the request body
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Name         string     `json:"name" binding:"required"`
		Description  string     `json:"description" binding:"required"`
		Priority     string     `json:"priority" binding:"required"`
		DeliveryDate *time.Time `json:"delivery_date"`
		Project      uint64     `json:"project"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Name, description and priority are required")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Name:         req.Name,
		Description:  req.Description,
		Priority:     req.Priority,
		DeliveryDate: req.DeliveryDate,
		ProjectID:    req.Project,
		ActorID:      userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns a single task with its project
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, taskID, ok := actorAndID(c, "Task")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(taskID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update to a task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, taskID, ok := actorAndID(c, "Task")
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Name         *string    `json:"name"`
		Description  *string    `json:"description"`
		Priority     *string    `json:"priority"`
		DeliveryDate *time.Time `json:"delivery_date"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(taskID, userID, services.UpdateTaskInput{
		Name:         req.Name,
		Description:  req.Description,
		Priority:     req.Priority,
		DeliveryDate: req.DeliveryDate,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, taskID, ok := actorAndID(c, "Task")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(taskID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Task deleted"})
}

// ToggleStatus flips a task between done and not done
func (h *TaskHandler) ToggleStatus(c *gin.Context) {
	userID, taskID, ok := actorAndID(c, "Task")
	if !ok {
		return
	}

	task, err := h.taskService.ToggleTaskStatus(taskID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// SuggestTasks drafts tasks for a project from free-form text
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type SuggestTasksRequest struct {
		Project uint64 `json:"project"`
		Text    string `json:"text" binding:"required"`
	}

	var req SuggestTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Text is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), suggestTimeout)
	defer cancel()

	suggestions, err := h.taskService.SuggestTasks(ctx, services.SuggestTasksInput{
		ProjectID: req.Project,
		ActorID:   userID,
		Text:      req.Text,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": suggestions,
	})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrProjectIDRequired):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrNotProjectCreator),
		errors.Is(err, services.ErrProjectAccessDenied):
		apierrors.Forbidden(c, "Invalid action")
	case errors.Is(err, services.ErrTaskFieldsRequired),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrSuggestTextRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "Task suggestions are not available")
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.InvalidOperation(c, err.Error())
	default:
		if errors.Is(err, context.DeadlineExceeded) {
			apierrors.ServiceUnavailable(c, fmt.Sprintf("Task suggestions timed out after %s", suggestTimeout))
			return
		}
		apierrors.InternalError(c, err)
	}
}
