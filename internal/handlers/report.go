package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sponsorship-backoffice/internal/dto"
	apierrors "github.com/yukikurage/sponsorship-backoffice/internal/errors"
	"github.com/yukikurage/sponsorship-backoffice/internal/middleware"
	"github.com/yukikurage/sponsorship-backoffice/internal/services"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Summary counts tasks per status within the requested scope
func (h *ReportHandler) Summary(c *gin.Context) {
	scope, ok := parseScope(c)
	if !ok {
		return
	}

	summary, err := h.reports.Summary(c.Request.Context(), middleware.GetCapabilities(c), scope)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSummaryDTO(*summary))
}

// OpenTasks returns the unfinished tasks grouped for printing
func (h *ReportHandler) OpenTasks(c *gin.Context) {
	report, err := h.reports.OpenTasks(c.Request.Context(), middleware.GetCapabilities(c))
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOpenTasksReportDTO(*report))
}
