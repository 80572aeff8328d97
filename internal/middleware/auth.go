package middleware

import (
	"errors"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sponsorship-backoffice/internal/authz"
	"github.com/yukikurage/sponsorship-backoffice/internal/constants"
	apierrors "github.com/yukikurage/sponsorship-backoffice/internal/errors"
	"github.com/yukikurage/sponsorship-backoffice/internal/logger"
	"github.com/yukikurage/sponsorship-backoffice/internal/services"
	"go.uber.org/zap"
)

// RequireAuth checks the session, loads the user's roles and stores the
// resulting capabilities in the context
func RequireAuth(auth *services.AuthService, gate *authz.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := toUint64(session.Get(constants.ContextKeyUserID))
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		principal, err := auth.Principal(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				// the account is gone, drop the stale session
				session.Clear()
				_ = session.Save()
				apierrors.Unauthorized(c, "")
			} else {
				logger.FromGin(c).Error("Failed to load principal", zap.Error(err))
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, principal.UserID)
		c.Set(constants.ContextKeyCapabilities, gate.Capabilities(principal))
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUint64(userID)
}

// GetCapabilities returns the caller's capabilities. Anonymous callers get
// the zero value, which fails every check.
func GetCapabilities(c *gin.Context) authz.Capabilities {
	if v, ok := c.Get(constants.ContextKeyCapabilities); ok {
		if caps, ok := v.(authz.Capabilities); ok {
			return caps
		}
	}
	return authz.Capabilities{}
}

func toUint64(v interface{}) (uint64, bool) {
	switch v := v.(type) {
	case uint64:
		return v, v != 0
	case uint:
		return uint64(v), v != 0
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
