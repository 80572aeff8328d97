package dto

import (
	"time"

	"github.com/yukikurage/sponsorship-backoffice/internal/models"
	"github.com/yukikurage/sponsorship-backoffice/internal/services"
)

// SummaryDTO is the per-status task count
type SummaryDTO struct {
	Counts map[models.TaskStatus]int64 `json:"counts"`
	Total  int64                       `json:"total"`
}

type ReportRowDTO struct {
	ID            uint64  `json:"id"`
	Title         string  `json:"title"`
	ObjectType    string  `json:"object_type"`
	Description   *string `json:"description"`
	Target        string  `json:"target"`
	Assignees     string  `json:"assignees"`
	CommentThread string  `json:"comment_thread"`
}

type ReportSectionDTO struct {
	StartDate string         `json:"start_date"`
	Tasks     []ReportRowDTO `json:"tasks"`
}

type ReportGroupDTO struct {
	Status   models.TaskStatus  `json:"status"`
	Sections []ReportSectionDTO `json:"sections"`
}

// OpenTasksReportDTO is the printable list of unfinished tasks
type OpenTasksReportDTO struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Groups      []ReportGroupDTO `json:"groups"`
}

func ToSummaryDTO(summary services.TaskSummary) SummaryDTO {
	return SummaryDTO{Counts: summary.Counts, Total: summary.Total}
}

// ToOpenTasksReportDTO flattens the report for JSON
func ToOpenTasksReportDTO(report services.OpenTasksReport) OpenTasksReportDTO {
	out := OpenTasksReportDTO{
		GeneratedAt: report.GeneratedAt,
		Groups:      make([]ReportGroupDTO, len(report.Groups)),
	}
	for i, group := range report.Groups {
		g := ReportGroupDTO{Status: group.Status, Sections: make([]ReportSectionDTO, len(group.Sections))}
		for j, section := range group.Sections {
			s := ReportSectionDTO{
				StartDate: section.StartDate.Format(services.DateLayout),
				Tasks:     make([]ReportRowDTO, len(section.Rows)),
			}
			for k, row := range section.Rows {
				s.Tasks[k] = ReportRowDTO{
					ID:            row.Task.ID,
					Title:         row.Task.Title,
					ObjectType:    row.Task.ObjectType.Label,
					Description:   row.Task.Description,
					Target:        row.TargetLabel,
					Assignees:     row.Assignees,
					CommentThread: row.CommentThread,
				}
			}
			g.Sections[j] = s
		}
		out.Groups[i] = g
	}
	return out
}
