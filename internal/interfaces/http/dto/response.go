package dto

import "time"

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Meta represents pagination metadata
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewSuccessResponseWithMeta creates a success response with pagination meta
func NewSuccessResponseWithMeta(data interface{}, total int64, page, pageSize int) Response {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithRequestID creates an error response carrying the
// request ID so dashboard errors can be correlated with server logs
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	}
}

// PeriodRequest carries the reporting period shared by report and
// allocation queries. Both bounds are required; the end is exclusive.
type PeriodRequest struct {
	PeriodStart time.Time `form:"period_start" time_format:"2006-01-02" binding:"required"`
	PeriodEnd   time.Time `form:"period_end" time_format:"2006-01-02" binding:"required"`
}

// TaxReportRequest represents the query parameters for a tax report
type TaxReportRequest struct {
	PeriodRequest
	Currency string `form:"currency" binding:"omitempty,currency_code"`
}

// UsageStatsRequest represents the query parameters for a usage
// rollup. The period bounds are optional and scope the rollup to a
// historical window; omitting both aggregates the full history.
type UsageStatsRequest struct {
	QuotaLimit  *int64    `form:"quota_limit" binding:"omitempty,min=0"`
	PeriodStart time.Time `form:"period_start" time_format:"2006-01-02"`
	PeriodEnd   time.Time `form:"period_end" time_format:"2006-01-02"`
}

// AllocationStateRequest represents the query parameters for one
// allocation's budget state
type AllocationStateRequest struct {
	PeriodRequest
	ClientID              string  `form:"client_id"`
	BranchID              string  `form:"branch_id"`
	ProductID             string  `form:"product_id"`
	BudgetLimit           *int64  `form:"budget_limit" binding:"omitempty,min=0"`
	QuotaLimit            *int64  `form:"quota_limit" binding:"omitempty,min=0"`
	AlertThresholdPercent float64 `form:"alert_threshold_percent,default=80" binding:"omitempty,gt=0,lte=100"`
	Currency              string  `form:"currency" binding:"omitempty,currency_code"`
}

// ConvertRequest represents the query parameters for the currency
// conversion helper
type ConvertRequest struct {
	Amount int64  `form:"amount" binding:"required"`
	From   string `form:"from" binding:"required,currency_code"`
	To     string `form:"to" binding:"required,currency_code"`
}

// ConvertResponse is the conversion helper's result
type ConvertResponse struct {
	Amount    int64  `json:"amount"`
	From      string `json:"from"`
	To        string `json:"to"`
	Converted int64  `json:"converted"`
	Formatted string `json:"formatted"`
}

// BillingSyncRequest is the JSON body of a billing sync run: which
// provider customer to pull and for which period
type BillingSyncRequest struct {
	CustomerID  string    `json:"customer_id" binding:"required"`
	PeriodStart time.Time `json:"period_start" binding:"required"`
	PeriodEnd   time.Time `json:"period_end" binding:"required"`
}

// AllocationRequest is one allocation definition inside an evaluation
// request
type AllocationRequest struct {
	ClientID              string  `json:"client_id"`
	BranchID              string  `json:"branch_id"`
	ProductID             string  `json:"product_id"`
	Currency              string  `json:"currency" binding:"omitempty,currency_code"`
	BudgetLimit           *int64  `json:"budget_limit" binding:"omitempty,min=0"`
	QuotaLimit            *int64  `json:"quota_limit" binding:"omitempty,min=0"`
	AlertThresholdPercent float64 `json:"alert_threshold_percent" binding:"omitempty,gt=0,lte=100"`
}

// EvaluateAllocationsRequest is the JSON body of a budget evaluation
// run over a set of allocation definitions
type EvaluateAllocationsRequest struct {
	PeriodStart time.Time           `json:"period_start" binding:"required"`
	PeriodEnd   time.Time           `json:"period_end" binding:"required"`
	Allocations []AllocationRequest `json:"allocations" binding:"required,min=1,dive"`
}

// AllocationStateResponse is one allocation's recomputed budget state
type AllocationStateResponse struct {
	ClientID               string `json:"client_id,omitempty"`
	BranchID               string `json:"branch_id,omitempty"`
	ProductID              string `json:"product_id,omitempty"`
	Currency               string `json:"currency,omitempty"`
	BudgetLimit            *int64 `json:"budget_limit"`
	QuotaLimit             *int64 `json:"quota_limit"`
	UsageCurrentPeriod     int64  `json:"usage_current_period"`
	UsageCostCurrentPeriod int64  `json:"usage_cost_current_period"`
	RemainingBudget        *int64 `json:"remaining_budget"`
	State                  string `json:"state"`
	AlertDue               bool   `json:"alert_due"`
}
