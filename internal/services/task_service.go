package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/sponsorship-backoffice/internal/authz"
	"github.com/yukikurage/sponsorship-backoffice/internal/models"
	"github.com/yukikurage/sponsorship-backoffice/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DateLayout is the wire format of start and end dates
const DateLayout = "2006-01-02"

// taskDetailPreloads are loaded whenever a task is returned to a caller
var taskDetailPreloads = []string{"ObjectType", "CreatedBy", "Assignments.User"}

// TaskService handles the task lifecycle
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	catalog  *CatalogService
	targets  *TargetResolver
	logger   *zap.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	catalog *CatalogService,
	targets *TargetResolver,
	logger *zap.Logger,
) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		catalog:  catalog,
		targets:  targets,
		logger:   logger,
	}
}

// TaskInput is the full editable state of a task. Create and Update both
// take the whole record: omitted optional fields are cleared.
type TaskInput struct {
	Title       string
	Description string
	// ObjectTypeID wins over ObjectTypeCode when both are set
	ObjectTypeID   uint64
	ObjectTypeCode string
	Status         string
	StartDate      string
	EndDate        string
	TargetType     string
	TargetID       *uint64
	AssigneeIDs    []uint64
}

// TaskScope selects which tasks a listing covers
type TaskScope struct {
	// AssignedTo restricts the listing to one assignee. Nil means every task.
	AssignedTo *uint64
}

// ScopeAll covers every task
func ScopeAll() TaskScope { return TaskScope{} }

// ScopeAssignedTo covers the tasks userID is assigned to
func ScopeAssignedTo(userID uint64) TaskScope { return TaskScope{AssignedTo: &userID} }

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Scope    TaskScope
	Status   *models.TaskStatus
	Page     int
	PageSize int
}

// validatedTask is a TaskInput that passed every check
type validatedTask struct {
	title       string
	description *string
	objectType  *models.TaskObjectType
	status      models.TaskStatus
	startDate   time.Time
	endDate     *time.Time
	target      models.Target
	assigneeIDs []uint64
}

func (v validatedTask) apply(task *models.Task) {
	task.Title = v.title
	task.Description = v.description
	task.ObjectTypeID = v.objectType.ID
	task.Status = v.status
	task.StartDate = v.startDate
	task.EndDate = v.endDate
	task.SetTarget(v.target)
	normalizeEndDate(task)
}

// normalizeEndDate enforces that only a Done task carries an end date.
// Every write goes through it.
func normalizeEndDate(task *models.Task) {
	if task.Status != models.TaskStatusDone {
		task.EndDate = nil
	}
}

// CreateTask validates input and stores a new task with its assignees
func (s *TaskService) CreateTask(ctx context.Context, caps authz.Capabilities, input TaskInput) (*models.Task, error) {
	if err := requireManage(caps); err != nil {
		return nil, err
	}

	v, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}

	creatorID := caps.UserID
	task := &models.Task{CreatedByID: &creatorID}
	v.apply(task)

	if err := s.taskRepo.Create(ctx, task, v.assigneeIDs); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("Task created",
		zap.Uint64("task_id", task.ID),
		zap.Uint64("actor_id", caps.UserID),
		zap.String("status", string(task.Status)),
		zap.Int("assignees", len(v.assigneeIDs)),
	)
	return s.reload(ctx, task.ID)
}

// UpdateTask replaces every editable field and the assignee set of a task
func (s *TaskService) UpdateTask(ctx context.Context, caps authz.Capabilities, taskID uint64, input TaskInput) (*models.Task, error) {
	if err := requireManage(caps); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	v, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}
	v.apply(task)

	if err := s.taskRepo.Save(ctx, task, v.assigneeIDs); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Info("Task updated",
		zap.Uint64("task_id", task.ID),
		zap.Uint64("actor_id", caps.UserID),
		zap.String("status", string(task.Status)),
	)
	return s.reload(ctx, task.ID)
}

// GetTask returns a task the caller may see. Callers without the manage
// capability get ErrForbidden for unknown tasks too.
func (s *TaskService) GetTask(ctx context.Context, caps authz.Capabilities, taskID uint64) (*models.Task, error) {
	return s.visibleTask(ctx, caps, taskID, taskDetailPreloads...)
}

// ListTasks returns the tasks of a scope, most recent start date first
func (s *TaskService) ListTasks(ctx context.Context, caps authz.Capabilities, input ListTasksInput) ([]models.Task, int64, error) {
	filter, err := scopeFilter(caps, input.Scope)
	if err != nil {
		return nil, 0, err
	}
	if input.Status != nil {
		filter.Statuses = []models.TaskStatus{*input.Status}
	}
	filter.Order = repository.OrderRecentFirst
	filter.Preload = []string{"ObjectType", "Assignments.User"}
	filter.Page = input.Page
	filter.PageSize = input.PageSize

	tasks, total, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// visibleTask loads a task and checks the caller may act on it
func (s *TaskService) visibleTask(ctx context.Context, caps authz.Capabilities, taskID uint64, preload ...string) (*models.Task, error) {
	if !caps.Authenticated() {
		return nil, ErrUnauthenticated
	}

	if !caps.CanManage() {
		assigned, err := s.taskRepo.IsAssigned(ctx, taskID, caps.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to check assignment: %w", err)
		}
		// Missing tasks are never assigned, so their existence stays hidden
		if !assigned {
			return nil, ErrForbidden
		}
	}

	task, err := s.taskRepo.FindByID(ctx, taskID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) reload(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, taskDetailPreloads...)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}
	return task, nil
}

// validate checks the whole input before anything is written
func (s *TaskService) validate(ctx context.Context, input TaskInput) (*validatedTask, error) {
	v := &validatedTask{}

	v.title = strings.TrimSpace(input.Title)
	if v.title == "" {
		return nil, invalid("title", "title is required")
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		v.description = &desc
	}

	if input.ObjectTypeID == 0 && strings.TrimSpace(input.ObjectTypeCode) == "" {
		return nil, invalid("object_type", "object type is required")
	}
	objectType, err := s.catalog.Resolve(ctx, input.ObjectTypeID, input.ObjectTypeCode)
	if err != nil {
		if errors.Is(err, ErrObjectTypeNotFound) {
			return nil, invalid("object_type", "unknown object type")
		}
		return nil, err
	}
	v.objectType = objectType

	v.status = models.TaskStatus(strings.TrimSpace(input.Status))
	if !v.status.Valid() {
		return nil, invalid("status", fmt.Sprintf("invalid status %q", input.Status))
	}

	start, err := parseDate(input.StartDate)
	if err != nil {
		return nil, invalid("start_date", err.Error())
	}
	if start == nil {
		return nil, invalid("start_date", "start date is required")
	}
	v.startDate = *start

	end, err := parseDate(input.EndDate)
	if err != nil {
		return nil, invalid("end_date", err.Error())
	}
	if end != nil && end.Before(v.startDate) {
		return nil, invalid("end_date", "end date must not precede start date")
	}
	if v.status == models.TaskStatusDone && end == nil {
		return nil, invalid("end_date", "end date is required when status is Done")
	}
	v.endDate = end

	targetType := models.TargetType(strings.TrimSpace(input.TargetType))
	if targetType == "" {
		return nil, invalid("target_type", "target type is required")
	}
	target, err := models.NewTarget(targetType, input.TargetID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnknownTargetType):
			return nil, invalid("target_type", fmt.Sprintf("unknown target type %q", input.TargetType))
		case errors.Is(err, models.ErrTargetIDRequired):
			return nil, invalid("target_id", err.Error())
		}
		return nil, err
	}
	exists, err := s.targets.Exists(ctx, target)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, invalid("target_id", fmt.Sprintf("%s not found", target.Type()))
	}
	v.target = target

	v.assigneeIDs, err = s.checkAssignees(ctx, input.AssigneeIDs)
	if err != nil {
		return nil, err
	}

	return v, nil
}

// checkAssignees dedupes ids and verifies every user exists
func (s *TaskService) checkAssignees(ctx context.Context, userIDs []uint64) ([]uint64, error) {
	ids := uniqueUint64(userIDs)
	if len(ids) == 0 {
		return ids, nil
	}
	for _, id := range ids {
		if id == 0 {
			return nil, invalid("assignee_ids", "assignee id must be positive")
		}
	}

	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find assignees: %w", err)
	}
	if len(users) != len(ids) {
		known := make(map[uint64]struct{}, len(users))
		for _, u := range users {
			known[u.ID] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := known[id]; !ok {
				return nil, invalid("assignee_ids", fmt.Sprintf("user %d does not exist", id))
			}
		}
	}
	return ids, nil
}

// parseDate reads a YYYY-MM-DD date. Empty input yields nil.
func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return &d, nil
}

func requireManage(caps authz.Capabilities) error {
	if !caps.Authenticated() {
		return ErrUnauthenticated
	}
	if !caps.CanManage() {
		return ErrForbidden
	}
	return nil
}

// scopeFilter authorizes a listing scope. Listing every task or another
// user's tasks needs the manage capability.
func scopeFilter(caps authz.Capabilities, scope TaskScope) (repository.TaskFilter, error) {
	if !caps.Authenticated() {
		return repository.TaskFilter{}, ErrUnauthenticated
	}
	if scope.AssignedTo == nil {
		if !caps.CanManage() {
			return repository.TaskFilter{}, ErrForbidden
		}
		return repository.TaskFilter{}, nil
	}
	if *scope.AssignedTo != caps.UserID && !caps.CanManage() {
		return repository.TaskFilter{}, ErrForbidden
	}
	userID := *scope.AssignedTo
	return repository.TaskFilter{AssignedUserID: &userID}, nil
}

func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
