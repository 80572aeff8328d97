package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sponsorship-backoffice/internal/middleware"
)

// Handlers groups every HTTP handler of the API
type Handlers struct {
	Auth    *AuthHandler
	Tasks   *TaskHandler
	Catalog *CatalogHandler
	Reports *ReportHandler
	Users   *UserHandler
}

// RegisterRoutes mounts the API. requireAuth guards everything except
// login and logout.
func RegisterRoutes(r *gin.Engine, h Handlers, requireAuth gin.HandlerFunc) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", requireAuth, h.Auth.GetCurrentUser)
	}

	protected := api.Group("")
	protected.Use(requireAuth)
	{
		protected.GET("/task-object-types", h.Catalog.ListObjectTypes)
		protected.POST("/task-object-types", h.Catalog.CreateObjectType)

		protected.GET("/users", h.Users.ListUsers)

		tasks := protected.Group("/tasks")
		{
			tasks.GET("", h.Tasks.ListTasks)
			tasks.POST("", h.Tasks.CreateTask)
			tasks.GET("/summary", h.Reports.Summary)
			tasks.GET("/report/open", h.Reports.OpenTasks)

			task := tasks.Group("/:id", middleware.ParseTaskID())
			{
				task.GET("", h.Tasks.GetTask)
				task.PUT("", h.Tasks.UpdateTask)
				task.PUT("/assignees", h.Tasks.AssignTask)
				task.POST("/comments", h.Tasks.AddComment)
			}
		}
	}
}
