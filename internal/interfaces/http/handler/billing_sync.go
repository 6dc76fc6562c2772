package handler

import (
	appbilling "github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BillingSyncHandler triggers billing record imports from the payment
// provider
type BillingSyncHandler struct {
	BaseHandler
	ingestion *appbilling.IngestionService
}

// NewBillingSyncHandler creates a new billing sync handler
func NewBillingSyncHandler(ingestion *appbilling.IngestionService) *BillingSyncHandler {
	return &BillingSyncHandler{ingestion: ingestion}
}

// RegisterRoutes registers billing sync routes on the group
func (h *BillingSyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/accounts/:account_id/billing/sync", h.Sync)
}

// Sync pulls the provider customer's invoices and payments for the
// period into local storage. Re-running a period is safe: records are
// upserted by ID.
func (h *BillingSyncHandler) Sync(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var req dto.BillingSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid sync request: "+err.Error())
		return
	}
	if !req.PeriodStart.Before(req.PeriodEnd) {
		h.BadRequest(c, "period_start must be before period_end")
		return
	}

	result, err := h.ingestion.SyncAccount(c.Request.Context(), accountID, req.CustomerID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
