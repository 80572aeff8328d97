package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sponsorship-backoffice/internal/dto"
	apierrors "github.com/yukikurage/sponsorship-backoffice/internal/errors"
	"github.com/yukikurage/sponsorship-backoffice/internal/middleware"
	"github.com/yukikurage/sponsorship-backoffice/internal/services"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// ListUsers returns the assignment candidates
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.ListAssignableUsers(c.Request.Context(), middleware.GetCapabilities(c))
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": dto.ToUserDTOs(users)})
}
