package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/taskmanager/taskmanager-api/internal/constants"
	"github.com/taskmanager/taskmanager-api/internal/dto"
	apierrors "github.com/taskmanager/taskmanager-api/internal/errors"
	"github.com/taskmanager/taskmanager-api/internal/middleware"
	"github.com/taskmanager/taskmanager-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup registers a new user and sends the confirmation mail.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Name, a valid email and a password are required", fieldErrors(err))
		return
	}

	if _, err := h.authService.Signup(services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{
		Message: "Account created, check your email to confirm it",
	})
}

// Login authenticates a user and issues a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToLoginResponse(*result.User, result.SessionToken))
}

// ConfirmAccount consumes a confirmation token.
func (h *AuthHandler) ConfirmAccount(c *gin.Context) {
	if err := h.authService.ConfirmAccount(c.Param("token")); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Account confirmed"})
}

// RequestPasswordReset mails a password reset link.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	type ResetRequest struct {
		Email string `json:"email" binding:"required"`
	}

	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Email is required")
		return
	}

	if err := h.authService.RequestPasswordReset(req.Email); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "We sent an email with instructions"})
}

// ValidateResetToken reports whether a reset token is usable.
func (h *AuthHandler) ValidateResetToken(c *gin.Context) {
	if err := h.authService.ValidateResetToken(c.Param("token")); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Valid token"})
}

// ResetPassword sets a new password using a reset token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	type NewPasswordRequest struct {
		Password string `json:"password" binding:"required"`
	}

	var req NewPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Password is required")
		return
	}

	if err := h.authService.ResetPassword(c.Param("token"), req.Password); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password updated"})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(user))
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrPasswordTooLong):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at most %d characters", constants.MaxPasswordLength))
	case errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrEmailRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.AlreadyExists(c, "User already registered")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.LoginFailed(c, apierrors.ErrCodeNotFound, "User does not exist")
	case errors.Is(err, services.ErrAccountNotConfirmed):
		apierrors.LoginFailed(c, apierrors.ErrCodeNotConfirmed, "Your account has not been confirmed")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.LoginFailed(c, apierrors.ErrCodeInvalidCredentials, "Incorrect password")
	case errors.Is(err, services.ErrInvalidToken):
		apierrors.NotFound(c, "Invalid token")
	default:
		apierrors.InternalError(c, err)
	}
}

// fieldErrors maps each rejected request field to the rule it failed. Errors
// that are not validation errors, such as malformed JSON, yield no details.
func fieldErrors(err error) interface{} {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return fields
}
