package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yukikurage/sponsorship-backoffice/internal/authz"
	"github.com/yukikurage/sponsorship-backoffice/internal/models"
	"github.com/yukikurage/sponsorship-backoffice/internal/repository"
)

// OpenStatuses are the statuses listed by the open tasks report, in order
var OpenStatuses = []models.TaskStatus{
	models.TaskStatusToDo,
	models.TaskStatusInProgress,
	models.TaskStatusWaiting,
}

// ReportService builds read-only projections over tasks
type ReportService struct {
	taskRepo repository.TaskRepository
	targets  *TargetResolver
}

// NewReportService creates a new ReportService
func NewReportService(taskRepo repository.TaskRepository, targets *TargetResolver) *ReportService {
	return &ReportService{
		taskRepo: taskRepo,
		targets:  targets,
	}
}

// TaskSummary counts tasks per status. Every status is present.
type TaskSummary struct {
	Counts map[models.TaskStatus]int64
	Total  int64
}

// ReportRow is one task of the open tasks report
type ReportRow struct {
	Task          models.Task
	TargetLabel   string
	Assignees     string
	CommentThread string
}

// DateSection groups the rows sharing a start date
type DateSection struct {
	StartDate time.Time
	Rows      []ReportRow
}

// StatusGroup groups the sections of one status
type StatusGroup struct {
	Status   models.TaskStatus
	Sections []DateSection
}

// OpenTasksReport lists every unfinished task visible to the caller
type OpenTasksReport struct {
	GeneratedAt time.Time
	Groups      []StatusGroup
}

// reportScope is every task for managers and the caller's own tasks otherwise
func reportScope(caps authz.Capabilities) TaskScope {
	if caps.CanManage() {
		return ScopeAll()
	}
	return ScopeAssignedTo(caps.UserID)
}

// Summary counts tasks per status within scope
func (s *ReportService) Summary(ctx context.Context, caps authz.Capabilities, scope TaskScope) (*TaskSummary, error) {
	filter, err := scopeFilter(caps, scope)
	if err != nil {
		return nil, err
	}

	counts, err := s.taskRepo.CountByStatus(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	summary := &TaskSummary{Counts: make(map[models.TaskStatus]int64, len(models.TaskStatuses))}
	for _, status := range models.TaskStatuses {
		summary.Counts[status] = counts[status]
		summary.Total += counts[status]
	}
	return summary, nil
}

// OpenTasks builds the open tasks report for the caller
func (s *ReportService) OpenTasks(ctx context.Context, caps authz.Capabilities) (*OpenTasksReport, error) {
	filter, err := scopeFilter(caps, reportScope(caps))
	if err != nil {
		return nil, err
	}
	filter.Statuses = OpenStatuses
	filter.Order = repository.OrderChronological
	filter.Preload = []string{"ObjectType", "Assignments.User", "Comments.Author"}

	tasks, _, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list open tasks: %w", err)
	}

	labels, err := s.targets.TaskLabels(ctx, tasks)
	if err != nil {
		return nil, err
	}

	report := &OpenTasksReport{GeneratedAt: time.Now()}
	for _, status := range OpenStatuses {
		group := StatusGroup{Status: status}
		for _, task := range tasks {
			if task.Status != status {
				continue
			}
			sortThread(task.Comments)
			row := ReportRow{
				Task:          task,
				TargetLabel:   labels[task.ID],
				Assignees:     AssigneesLabel(task),
				CommentThread: RenderThread(task.Comments),
			}
			n := len(group.Sections)
			if n == 0 || !sameDay(group.Sections[n-1].StartDate, task.StartDate) {
				group.Sections = append(group.Sections, DateSection{StartDate: task.StartDate})
				n++
			}
			group.Sections[n-1].Rows = append(group.Sections[n-1].Rows, row)
		}
		if len(group.Sections) > 0 {
			report.Groups = append(report.Groups, group)
		}
	}
	return report, nil
}

// AssigneesLabel joins the labels of the preloaded assignees, or "-" when
// nobody is assigned
func AssigneesLabel(task models.Task) string {
	if len(task.Assignments) == 0 {
		return NoTargetLabel
	}
	names := make([]string, len(task.Assignments))
	for i, a := range task.Assignments {
		names[i] = a.User.Label()
	}
	sortLabels(names)
	return strings.Join(names, ", ")
}

func sortThread(comments []models.TaskComment) {
	sort.SliceStable(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		}
		return comments[i].ID < comments[j].ID
	})
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
