package handler

import (
	appbilling "github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/currency"
	"github.com/billing/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// UsageHandler serves account usage rollups and allocation budget
// states
type UsageHandler struct {
	BaseHandler
	usage  *appbilling.UsageReportingService
	alerts *appbilling.BudgetAlertService
}

// NewUsageHandler creates a new usage handler
func NewUsageHandler(usage *appbilling.UsageReportingService, alerts *appbilling.BudgetAlertService) *UsageHandler {
	return &UsageHandler{usage: usage, alerts: alerts}
}

// RegisterRoutes registers usage routes on the group
func (h *UsageHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/accounts/:account_id/usage/stats", h.GetUsageStats)
	rg.GET("/accounts/:account_id/usage/allocations/state", h.GetAllocationState)
	rg.POST("/accounts/:account_id/usage/allocations/evaluate", h.EvaluateAllocations)
}

// GetUsageStats returns the account's usage rollup: recency buckets,
// totals, and the quota band against the optional quota_limit. With
// period_start and period_end the rollup covers only that window.
func (h *UsageHandler) GetUsageStats(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var req dto.UsageStatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid usage query: "+err.Error())
		return
	}

	var stats billing.UsageStats
	if req.PeriodStart.IsZero() && req.PeriodEnd.IsZero() {
		stats, err = h.usage.GetUsageStats(c.Request.Context(), accountID, req.QuotaLimit)
	} else {
		if req.PeriodStart.IsZero() || req.PeriodEnd.IsZero() {
			h.BadRequest(c, "period_start and period_end must be supplied together")
			return
		}
		if !req.PeriodStart.Before(req.PeriodEnd) {
			h.BadRequest(c, "period_start must be before period_end")
			return
		}
		stats, err = h.usage.GetUsageStatsForPeriod(c.Request.Context(), accountID, req.QuotaLimit, req.PeriodStart, req.PeriodEnd)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// GetAllocationState recomputes one allocation's budget state from its
// usage in the period. The allocation scope and limits come from the
// query; the state is derived fresh on every call.
func (h *UsageHandler) GetAllocationState(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var req dto.AllocationStateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid allocation query: "+err.Error())
		return
	}
	if !req.PeriodStart.Before(req.PeriodEnd) {
		h.BadRequest(c, "period_start must be before period_end")
		return
	}

	alloc := billing.Allocation{
		Key: billing.AllocationKey{
			ClientID:  req.ClientID,
			BranchID:  req.BranchID,
			ProductID: req.ProductID,
		},
		Currency:              currency.Code(req.Currency),
		BudgetLimit:           req.BudgetLimit,
		QuotaLimit:            req.QuotaLimit,
		AlertThresholdPercent: req.AlertThresholdPercent,
	}
	if alloc.Key.IsZero() {
		h.BadRequest(c, "At least one of client_id, branch_id, product_id is required")
		return
	}

	state, alertDue, err := h.usage.GetAllocationState(c.Request.Context(), accountID, alloc, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, allocationStateResponse(state, alertDue))
}

// EvaluateAllocations recomputes the budget state for every allocation
// in the body and publishes an alert for each one at or past its
// threshold. Intended for the scheduler that sweeps account budgets.
func (h *UsageHandler) EvaluateAllocations(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var req dto.EvaluateAllocationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid evaluation request: "+err.Error())
		return
	}
	if !req.PeriodStart.Before(req.PeriodEnd) {
		h.BadRequest(c, "period_start must be before period_end")
		return
	}

	allocations := make([]billing.Allocation, 0, len(req.Allocations))
	for _, a := range req.Allocations {
		alloc := billing.Allocation{
			Key: billing.AllocationKey{
				ClientID:  a.ClientID,
				BranchID:  a.BranchID,
				ProductID: a.ProductID,
			},
			Currency:              currency.Code(a.Currency),
			BudgetLimit:           a.BudgetLimit,
			QuotaLimit:            a.QuotaLimit,
			AlertThresholdPercent: a.AlertThresholdPercent,
		}
		if alloc.Key.IsZero() {
			h.BadRequest(c, "Each allocation needs at least one of client_id, branch_id, product_id")
			return
		}
		allocations = append(allocations, alloc)
	}

	results, err := h.alerts.EvaluateAllocations(c.Request.Context(), accountID, allocations, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	states := make([]dto.AllocationStateResponse, 0, len(results))
	for _, result := range results {
		states = append(states, allocationStateResponse(result.Allocation, result.AlertDue))
	}
	h.Success(c, states)
}

func allocationStateResponse(state billing.Allocation, alertDue bool) dto.AllocationStateResponse {
	return dto.AllocationStateResponse{
		ClientID:               state.Key.ClientID,
		BranchID:               state.Key.BranchID,
		ProductID:              state.Key.ProductID,
		Currency:               string(state.Currency),
		BudgetLimit:            state.BudgetLimit,
		QuotaLimit:             state.QuotaLimit,
		UsageCurrentPeriod:     state.UsageCurrentPeriod,
		UsageCostCurrentPeriod: state.UsageCostCurrentPeriod,
		RemainingBudget:        state.RemainingBudget,
		State:                  state.State.String(),
		AlertDue:               alertDue,
	}
}
