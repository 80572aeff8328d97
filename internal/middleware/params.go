package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/sponsorship-backoffice/internal/errors"
)

const taskIDKey = "task_id"

// ParseTaskID validates the :id path parameter. Visibility is checked by
// the services, so this only rejects malformed ids.
func ParseTaskID() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || taskID == 0 {
			apierrors.BadRequest(c, "Invalid task ID")
			c.Abort()
			return
		}

		c.Set(taskIDKey, taskID)
		c.Next()
	}
}

// GetTaskID returns the id stored by ParseTaskID
func GetTaskID(c *gin.Context) uint64 {
	return c.GetUint64(taskIDKey)
}
