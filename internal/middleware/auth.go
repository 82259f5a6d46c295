package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskmanager/taskmanager-api/internal/auth"
	"github.com/taskmanager/taskmanager-api/internal/constants"
	apierrors "github.com/taskmanager/taskmanager-api/internal/errors"
	"github.com/taskmanager/taskmanager-api/internal/models"
	"github.com/taskmanager/taskmanager-api/internal/repository"
)

// RequireAuth checks the bearer session credential and loads the user it
// names.
func RequireAuth(tokens *auth.TokenIssuer, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(constants.HeaderAuthorization)
		if !strings.HasPrefix(header, constants.BearerPrefix) {
			apierrors.Unauthorized(c, "Invalid or missing session token")
			c.Abort()
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(strings.TrimPrefix(header, constants.BearerPrefix)))
		if err != nil {
			apierrors.Unauthorized(c, "Invalid or expired session token")
			c.Abort()
			return
		}

		user, err := users.FindByID(claims.UserID)
		if err != nil {
			apierrors.Unauthorized(c, "Invalid or expired session token")
			c.Abort()
			return
		}

		// Store user in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, *user)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// CurrentUser retrieves the authenticated user from context
func CurrentUser(c *gin.Context) (models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return models.User{}, false
	}
	user, ok := value.(models.User)
	return user, ok
}
