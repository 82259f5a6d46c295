package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/taskmanager/taskmanager-api/internal/constants"
	apierrors "github.com/taskmanager/taskmanager-api/internal/errors"
	"github.com/taskmanager/taskmanager-api/internal/utils"
)

// RequireIDParam validates the :id path parameter. A malformed id is
// reported the same way as a missing resource.
func RequireIDParam(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := utils.ParseID(c.Param("id"))
		if !ok {
			apierrors.NotFound(c, resource+" not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyResourceID, id)
		c.Next()
	}
}

// GetIDParam retrieves the id validated by RequireIDParam
func GetIDParam(c *gin.Context) (uint64, bool) {
	value, exists := c.Get(constants.ContextKeyResourceID)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint64)
	return id, ok
}
