package handler

import (
	apptax "github.com/billing/backend/internal/application/tax"
	"github.com/billing/backend/internal/domain/currency"
	"github.com/billing/backend/internal/domain/tax"
	"github.com/billing/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// TaxReportHandler serves per-jurisdiction tax reports to the
// dashboard layer
type TaxReportHandler struct {
	BaseHandler
	reports          *apptax.ReportService
	engineConfig     tax.EngineConfig
	defaultReporting currency.Code
}

// NewTaxReportHandler creates a new tax report handler
func NewTaxReportHandler(reports *apptax.ReportService, engineConfig tax.EngineConfig, defaultReporting currency.Code) *TaxReportHandler {
	return &TaxReportHandler{
		reports:          reports,
		engineConfig:     engineConfig,
		defaultReporting: defaultReporting,
	}
}

// RegisterRoutes registers tax report routes on the group
func (h *TaxReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/accounts/:account_id/tax/report", h.GetReport)
}

// GetReport builds the jurisdiction tax report for one account and
// period. The period end is exclusive; the optional currency parameter
// overrides the configured reporting currency for the grand total.
func (h *TaxReportHandler) GetReport(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var req dto.TaxReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid report query: "+err.Error())
		return
	}
	if !req.PeriodStart.Before(req.PeriodEnd) {
		h.BadRequest(c, "period_start must be before period_end")
		return
	}

	reporting := h.defaultReporting
	if req.Currency != "" {
		reporting = currency.Code(req.Currency)
	}

	report, err := h.reports.GenerateReport(
		c.Request.Context(),
		accountID,
		req.PeriodStart, req.PeriodEnd,
		h.engineConfig,
		reporting,
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}
