package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sponsorship-backoffice/internal/constants"
	"github.com/yukikurage/sponsorship-backoffice/internal/dto"
	apierrors "github.com/yukikurage/sponsorship-backoffice/internal/errors"
	"github.com/yukikurage/sponsorship-backoffice/internal/middleware"
	"github.com/yukikurage/sponsorship-backoffice/internal/models"
	"github.com/yukikurage/sponsorship-backoffice/internal/services"
	"github.com/yukikurage/sponsorship-backoffice/internal/utils"
)

type TaskHandler struct {
	tasks    *services.TaskService
	comments *services.CommentService
	targets  *services.TargetResolver
}

func NewTaskHandler(tasks *services.TaskService, comments *services.CommentService, targets *services.TargetResolver) *TaskHandler {
	return &TaskHandler{
		tasks:    tasks,
		comments: comments,
		targets:  targets,
	}
}

// TaskRequest is the full state of a task. Create and update both replace
// every field, so an omitted end_date or assignee list clears it.
type TaskRequest struct {
	Title        string   `json:"title" binding:"required,max=255"`
	Description  string   `json:"description"`
	ObjectTypeID uint64   `json:"object_type_id"`
	ObjectType   string   `json:"object_type"`
	Status       string   `json:"status" binding:"required"`
	StartDate    string   `json:"start_date" binding:"required"`
	EndDate      string   `json:"end_date"`
	TargetType   string   `json:"target_type" binding:"required"`
	TargetID     *uint64  `json:"target_id"`
	AssigneeIDs  []uint64 `json:"assignee_ids"`
}

func (r TaskRequest) input() services.TaskInput {
	return services.TaskInput{
		Title:          r.Title,
		Description:    r.Description,
		ObjectTypeID:   r.ObjectTypeID,
		ObjectTypeCode: r.ObjectType,
		Status:         r.Status,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		TargetType:     r.TargetType,
		TargetID:       r.TargetID,
		AssigneeIDs:    r.AssigneeIDs,
	}
}

// ListTasks returns a page of tasks.
// scope=all lists every task, scope=mine the caller's assigned tasks.
// Managers may pass assigned_to to see another user's tasks.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	caps := middleware.GetCapabilities(c)

	scope, ok := parseScope(c)
	if !ok {
		return
	}

	input := services.ListTasksInput{Scope: scope}
	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		if !s.Valid() {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		input.Status = &s
	}

	params := utils.GetPaginationParams(c)
	input.Page = params.Page
	input.PageSize = params.Limit

	tasks, total, err := h.tasks.ListTasks(c.Request.Context(), caps, input)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	labels, err := h.targets.TaskLabels(c.Request.Context(), tasks)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, labels, params.Page, params.Limit, total))
}

// GetTask returns a task with its comments
func (h *TaskHandler) GetTask(c *gin.Context) {
	caps := middleware.GetCapabilities(c)
	taskID := middleware.GetTaskID(c)

	task, err := h.tasks.GetTask(c.Request.Context(), caps, taskID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	comments, err := h.comments.ListComments(c.Request.Context(), caps, taskID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	label, err := h.targets.Label(c.Request.Context(), task.Target())
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDetailDTO(*task, label, comments, caps))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), middleware.GetCapabilities(c), req.input())
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	h.respondTask(c, http.StatusCreated, task)
}

// UpdateTask replaces a task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), middleware.GetCapabilities(c), middleware.GetTaskID(c), req.input())
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	h.respondTask(c, http.StatusOK, task)
}

// AssignTask replaces the assignee set of a task
func (h *TaskHandler) AssignTask(c *gin.Context) {
	type AssignRequest struct {
		UserIDs []uint64 `json:"user_ids"`
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	task, err := h.tasks.AssignTask(c.Request.Context(), middleware.GetCapabilities(c), middleware.GetTaskID(c), req.UserIDs)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	h.respondTask(c, http.StatusOK, task)
}

// AddComment appends a comment authored by the caller
func (h *TaskHandler) AddComment(c *gin.Context) {
	type CommentRequest struct {
		Content string `json:"content" binding:"required"`
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	caps := middleware.GetCapabilities(c)
	authorID := caps.UserID
	comment, err := h.comments.AddComment(c.Request.Context(), caps, middleware.GetTaskID(c), &authorID, req.Content)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         comment.ID,
		"task_id":    comment.TaskID,
		"author_id":  comment.AuthorID,
		"content":    comment.Content,
		"created_at": comment.CreatedAt,
	})
}

func (h *TaskHandler) respondTask(c *gin.Context, status int, task *models.Task) {
	label, err := h.targets.Label(c.Request.Context(), task.Target())
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(status, dto.ToTaskDTO(*task, label))
}

// parseScope reads scope and assigned_to. The default is every task for
// managers and the caller's own tasks otherwise.
func parseScope(c *gin.Context) (services.TaskScope, bool) {
	caps := middleware.GetCapabilities(c)

	if assignedTo := c.Query("assigned_to"); assignedTo != "" {
		userID, err := strconv.ParseUint(assignedTo, 10, 64)
		if err != nil || userID == 0 {
			apierrors.BadRequest(c, "Invalid assigned_to")
			return services.TaskScope{}, false
		}
		return services.ScopeAssignedTo(userID), true
	}

	switch c.Query("scope") {
	case constants.ScopeAll:
		return services.ScopeAll(), true
	case constants.ScopeMine:
		return services.ScopeAssignedTo(caps.UserID), true
	case "":
		if caps.CanManage() {
			return services.ScopeAll(), true
		}
		return services.ScopeAssignedTo(caps.UserID), true
	}
	apierrors.BadRequest(c, "Invalid scope")
	return services.TaskScope{}, false
}
