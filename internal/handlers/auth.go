package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sponsorship-backoffice/internal/authz"
	"github.com/yukikurage/sponsorship-backoffice/internal/constants"
	"github.com/yukikurage/sponsorship-backoffice/internal/dto"
	apierrors "github.com/yukikurage/sponsorship-backoffice/internal/errors"
	"github.com/yukikurage/sponsorship-backoffice/internal/logger"
	"github.com/yukikurage/sponsorship-backoffice/internal/middleware"
	"github.com/yukikurage/sponsorship-backoffice/internal/models"
	"github.com/yukikurage/sponsorship-backoffice/internal/services"
	"go.uber.org/zap"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	gate        *authz.Gate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, gate *authz.Gate) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		gate:        gate,
	}
}

// CurrentUserResponse describes the logged-in user
type CurrentUserResponse struct {
	User      dto.UserDTO `json:"user"`
	Roles     []string    `json:"roles"`
	CanManage bool        `json:"can_manage"`
}

func (h *AuthHandler) currentUser(user models.User) CurrentUserResponse {
	roles := user.RoleNames()
	caps := h.gate.Capabilities(authz.Principal{UserID: user.ID, Roles: roles})
	return CurrentUserResponse{
		User:      dto.ToUserDTO(user),
		Roles:     roles,
		CanManage: caps.CanManage(),
	}
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	user, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		logger.FromGin(c).Error("Failed to save session", zap.Error(err))
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	logger.FromGin(c).Info("User logged in", zap.Uint64("user_id", user.ID))
	c.JSON(http.StatusOK, h.currentUser(*user))
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.currentUser(*user))
}
