package handler

import (
	"fmt"

	apptax "github.com/billing/backend/internal/application/tax"
	"github.com/billing/backend/internal/domain/currency"
	"github.com/billing/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CurrencyHandler exposes the conversion helper used by the dashboard
// to preview amounts in another currency
type CurrencyHandler struct {
	BaseHandler
	rateSource apptax.RateSource
}

// NewCurrencyHandler creates a new currency handler
func NewCurrencyHandler(rateSource apptax.RateSource) *CurrencyHandler {
	return &CurrencyHandler{rateSource: rateSource}
}

// RegisterRoutes registers currency routes on the group
func (h *CurrencyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/currency/convert", h.Convert)
}

// Convert converts a minor-unit amount between two currencies using
// the current rate snapshot
func (h *CurrencyHandler) Convert(c *gin.Context) {
	var req dto.ConvertRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid conversion query: "+err.Error())
		return
	}

	table, err := h.rateSource.Current(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	converted, err := table.Convert(req.Amount, currency.Code(req.From), currency.Code(req.To))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.ConvertResponse{
		Amount:    req.Amount,
		From:      req.From,
		To:        req.To,
		Converted: converted,
		Formatted: formatOrCode(converted, currency.Code(req.To)),
	})
}

// formatOrCode formats an amount for display, falling back to the raw
// code for currencies outside the supported symbol set
func formatOrCode(amount int64, code currency.Code) string {
	formatted, err := currency.FormatAmount(amount, code)
	if err != nil {
		major := decimal.NewFromInt(amount).Div(decimal.NewFromInt(currency.MinorUnitDivisor))
		return fmt.Sprintf("%s %s", code, major.StringFixed(2))
	}
	return formatted
}
