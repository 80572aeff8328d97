package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/sponsorship-backoffice/internal/authz"
	"github.com/yukikurage/sponsorship-backoffice/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IsVisible reports whether the caller may view and comment on task.
// Assignments must be preloaded.
func IsVisible(caps authz.Capabilities, task models.Task) bool {
	if caps.CanManage() {
		return true
	}
	return caps.Authenticated() && task.IsAssigned(caps.UserID)
}

// AssignTask replaces the whole assignee set of a task. An empty list
// unassigns everyone. The task's updated_at moves in the same transaction.
func (s *TaskService) AssignTask(ctx context.Context, caps authz.Capabilities, taskID uint64, userIDs []uint64) (*models.Task, error) {
	if err := requireManage(caps); err != nil {
		return nil, err
	}

	ids, err := s.checkAssignees(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	if err := s.taskRepo.ReplaceAssignees(ctx, taskID, ids); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to assign users: %w", err)
	}

	s.logger.Info("Task assignees replaced",
		zap.Uint64("task_id", taskID),
		zap.Uint64("actor_id", caps.UserID),
		zap.Uint64s("assignee_ids", ids),
	)
	return s.reload(ctx, taskID)
}
