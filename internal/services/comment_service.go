package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yukikurage/sponsorship-backoffice/internal/authz"
	"github.com/yukikurage/sponsorship-backoffice/internal/models"
	"github.com/yukikurage/sponsorship-backoffice/internal/repository"
	"go.uber.org/zap"
)

// UnknownAuthorLabel stands in for comments whose author is gone
const UnknownAuthorLabel = "Utilisateur"

// CommentService manages the append-only comment thread of a task
type CommentService struct {
	tasks       *TaskService
	commentRepo repository.CommentRepository
	logger      *zap.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(tasks *TaskService, commentRepo repository.CommentRepository, logger *zap.Logger) *CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{
		tasks:       tasks,
		commentRepo: commentRepo,
		logger:      logger,
	}
}

// AddComment appends a comment to a task the caller can see. Content is
// trimmed and must not be empty. A nil authorID stores an anonymous comment,
// otherwise it must be the caller.
func (s *CommentService) AddComment(ctx context.Context, caps authz.Capabilities, taskID uint64, authorID *uint64, content string) (*models.TaskComment, error) {
	if _, err := s.tasks.visibleTask(ctx, caps, taskID); err != nil {
		return nil, err
	}

	if authorID != nil && *authorID != caps.UserID {
		return nil, invalid("author_id", "comments can only be posted as yourself")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("content", "comment cannot be empty")
	}

	comment := &models.TaskComment{
		TaskID:   taskID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.logger.Info("Comment added",
		zap.Uint64("task_id", taskID),
		zap.Uint64("comment_id", comment.ID),
	)
	return comment, nil
}

// ListComments returns the thread of a visible task, oldest first
func (s *CommentService) ListComments(ctx context.Context, caps authz.Capabilities, taskID uint64) ([]models.TaskComment, error) {
	if _, err := s.tasks.visibleTask(ctx, caps, taskID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// CommentAuthorLabel names the author of a comment
func CommentAuthorLabel(comment models.TaskComment) string {
	if comment.Author == nil {
		return UnknownAuthorLabel
	}
	return comment.Author.Label()
}

// RenderThread flattens comments into one "[YYYY-MM-DD HH:MM] Author: content"
// line each. Comments must already be in thread order.
func RenderThread(comments []models.TaskComment) string {
	lines := make([]string, len(comments))
	for i, c := range comments {
		lines[i] = fmt.Sprintf("[%s] %s: %s",
			c.CreatedAt.Format("2006-01-02 15:04"),
			CommentAuthorLabel(c),
			c.Content,
		)
	}
	return strings.Join(lines, "\n")
}
