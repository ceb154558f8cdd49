package handler

import (
	"github.com/gin-gonic/gin"

	"martapp/kiosk/internal/journal"
	"martapp/kiosk/internal/model"
	"martapp/kiosk/internal/service"
	"martapp/kiosk/pkg/response"
)

type ReportHandler struct {
	journal       *journal.Journal
	reportService service.ReportService
}

func NewReportHandler(j *journal.Journal, reportService service.ReportService) *ReportHandler {
	return &ReportHandler{journal: j, reportService: reportService}
}

type InteractionRequest struct {
	Type model.InteractionType `json:"type" binding:"required"`
	Key  string                `json:"key" binding:"required"`
}

// RecordInteraction appends one event to the journal. Kiosk surfaces call
// this on every tracked tap.
func (h *ReportHandler) RecordInteraction(c *gin.Context) {
	var req InteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !model.ValidInteractionType(req.Type) {
		response.BadRequest(c, "unknown interaction type")
		return
	}

	h.journal.Record(req.Type, req.Key)
	response.Success(c, nil)
}

func (h *ReportHandler) Interactions(c *gin.Context) {
	metric := model.InteractionType(c.Query("metric"))
	period := c.DefaultQuery("period", service.Period7d)

	rows, err := h.reportService.Interactions(metric, period)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, rows)
}

func (h *ReportHandler) Insights(c *gin.Context) {
	insights, err := h.reportService.Insights(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to generate insights")
		return
	}
	response.Success(c, insights)
}
