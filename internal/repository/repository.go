package repository

import (
	"context"

	"github.com/yukikurage/sponsorship-backoffice/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create inserts a task and its assignee set in one transaction
	Create(ctx context.Context, task *models.Task, assigneeIDs []uint64) error

	// Save replaces every column of an existing task and its assignee set in one transaction
	Save(ctx context.Context, task *models.Task, assigneeIDs []uint64) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// CountByStatus counts tasks per status
	CountByStatus(ctx context.Context, filter TaskFilter) (map[models.TaskStatus]int64, error)

	// ReplaceAssignees swaps the whole assignee set and touches the task row
	ReplaceAssignees(ctx context.Context, taskID uint64, userIDs []uint64) error

	// IsAssigned reports whether a user is assigned to a task
	IsAssigned(ctx context.Context, taskID, userID uint64) (bool, error)
}

// TaskOrder selects the listing order
type TaskOrder int

const (
	// OrderRecentFirst sorts by start date then id, both descending
	OrderRecentFirst TaskOrder = iota
	// OrderChronological sorts by start date then id, both ascending
	OrderChronological
)

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	AssignedUserID *uint64
	Statuses       []models.TaskStatus
	Order          TaskOrder
	Preload        []string
	Page           int
	PageSize       int
}

// TaskObjectTypeRepository defines the interface for catalog data access.
// There is deliberately no delete.
type TaskObjectTypeRepository interface {
	List(ctx context.Context) ([]models.TaskObjectType, error)
	FindByID(ctx context.Context, id uint64) (*models.TaskObjectType, error)
	FindByCode(ctx context.Context, code string) (*models.TaskObjectType, error)
	Create(ctx context.Context, objectType *models.TaskObjectType) error
	// CreateMissing inserts entries whose code does not exist yet
	CreateMissing(ctx context.Context, objectTypes []models.TaskObjectType) error
}

// CommentRepository defines the interface for task comments. Comments are
// append-only so there is no update or delete.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.TaskComment) error
	ListByTask(ctx context.Context, taskID uint64) ([]models.TaskComment, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// FindByID finds a user by ID with roles preloaded
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by email with roles preloaded
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByIDs returns the users that exist among ids
	FindByIDs(ctx context.Context, ids []uint64) ([]models.User, error)

	// List returns every user
	List(ctx context.Context) ([]models.User, error)
}

// PartyPool is a read-only view over one pool of target records
// (beneficiaries, sponsors or referents)
type PartyPool interface {
	// Exists reports whether the record is present
	Exists(ctx context.Context, id uint64) (bool, error)

	// Labels returns a display label per found id. Missing ids are absent from the map.
	Labels(ctx context.Context, ids []uint64) (map[uint64]string, error)
}
