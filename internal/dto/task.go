package dto

import (
	"time"

	"github.com/yukikurage/sponsorship-backoffice/internal/authz"
	"github.com/yukikurage/sponsorship-backoffice/internal/models"
	"github.com/yukikurage/sponsorship-backoffice/internal/services"
	"github.com/yukikurage/sponsorship-backoffice/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64  `json:"id"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name"`
	Label    string  `json:"label"`
}

// ObjectTypeDTO represents a task object type in API responses
type ObjectTypeDTO struct {
	ID    uint64 `json:"id"`
	Code  string `json:"code"`
	Label string `json:"label"`
}

// TargetDTO represents the entity a task is about
type TargetDTO struct {
	Type  models.TargetType `json:"type"`
	ID    *uint64           `json:"id"`
	Label string            `json:"label"`
}

// CommentDTO represents a task comment in API responses
type CommentDTO struct {
	ID        uint64    `json:"id"`
	AuthorID  *uint64   `json:"author_id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	ObjectType  *ObjectTypeDTO    `json:"object_type,omitempty"`
	Status      models.TaskStatus `json:"status"`
	StartDate   string            `json:"start_date"`
	EndDate     *string           `json:"end_date"`
	Target      TargetDTO         `json:"target"`
	CreatedByID *uint64           `json:"created_by_id"`
	CreatedBy   *UserDTO          `json:"created_by,omitempty"`
	Assignees   []UserDTO         `json:"assignees"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TaskDetailDTO is a task with its thread and what the caller may do with it
type TaskDetailDTO struct {
	TaskDTO
	Comments   []CommentDTO `json:"comments"`
	CanManage  bool         `json:"can_manage"`
	CanComment bool         `json:"can_comment"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Label:    user.Label(),
	}
}

// ToUserDTOs converts users in order
func ToUserDTOs(users []models.User) []UserDTO {
	result := make([]UserDTO, len(users))
	for i, u := range users {
		result[i] = ToUserDTO(u)
	}
	return result
}

// ToObjectTypeDTO converts a TaskObjectType model to ObjectTypeDTO
func ToObjectTypeDTO(objectType models.TaskObjectType) ObjectTypeDTO {
	return ObjectTypeDTO{
		ID:    objectType.ID,
		Code:  objectType.Code,
		Label: objectType.Label,
	}
}

// ToCommentDTO converts a TaskComment model to CommentDTO
func ToCommentDTO(comment models.TaskComment) CommentDTO {
	return CommentDTO{
		ID:        comment.ID,
		AuthorID:  comment.AuthorID,
		Author:    services.CommentAuthorLabel(comment),
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}

// ToTaskDTO converts a Task model to TaskDTO. targetLabel comes from the
// target resolver.
func ToTaskDTO(task models.Task, targetLabel string) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		StartDate:   task.StartDate.Format(services.DateLayout),
		Target: TargetDTO{
			Type:  task.TargetType,
			ID:    task.TargetID,
			Label: targetLabel,
		},
		CreatedByID: task.CreatedByID,
		Assignees:   make([]UserDTO, len(task.Assignments)),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	if task.EndDate != nil {
		end := task.EndDate.Format(services.DateLayout)
		dto.EndDate = &end
	}

	// Include object type if preloaded
	if task.ObjectType.ID != 0 {
		objectType := ToObjectTypeDTO(task.ObjectType)
		dto.ObjectType = &objectType
	}

	// Include creator if preloaded
	if task.CreatedBy != nil {
		creator := ToUserDTO(*task.CreatedBy)
		dto.CreatedBy = &creator
	}

	for i, assignment := range task.Assignments {
		dto.Assignees[i] = ToUserDTO(assignment.User)
	}

	return dto
}

// ToTaskDetailDTO converts a visible task and its thread
func ToTaskDetailDTO(task models.Task, targetLabel string, comments []models.TaskComment, caps authz.Capabilities) TaskDetailDTO {
	detail := TaskDetailDTO{
		TaskDTO:    ToTaskDTO(task, targetLabel),
		Comments:   make([]CommentDTO, len(comments)),
		CanManage:  caps.CanManage(),
		CanComment: services.IsVisible(caps, task),
	}
	for i, c := range comments {
		detail.Comments[i] = ToCommentDTO(c)
	}
	return detail
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, labels map[uint64]string, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task, labels[task.ID])
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: utils.TotalPages(totalCount, pageSize),
	}
}
