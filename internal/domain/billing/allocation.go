package billing

import (
	"github.com/billing/backend/internal/domain/currency"
)

// BudgetState represents where an allocation sits relative to its
// budget within the current billing period
type BudgetState string

const (
	// BudgetStateUnderThreshold indicates spend is below the alert threshold
	BudgetStateUnderThreshold BudgetState = "UNDER_THRESHOLD"

	// BudgetStateWarning indicates spend has crossed the alert threshold
	BudgetStateWarning BudgetState = "WARNING"

	// BudgetStateOverBudget indicates spend has reached or passed the budget
	BudgetStateOverBudget BudgetState = "OVER_BUDGET"
)

// String returns the string representation of BudgetState
func (s BudgetState) String() string {
	return string(s)
}

// Allocation is a sub-budget scoped to a client, branch, or product
// within an account. Limits are nil when unlimited.
type Allocation struct {
	Key                    AllocationKey
	Currency               currency.Code
	BudgetLimit            *int64 `json:"budget_limit"`
	QuotaLimit             *int64 `json:"quota_limit"`
	UsageCurrentPeriod     int64  `json:"usage_current_period"`
	UsageCostCurrentPeriod int64  `json:"usage_cost_current_period"`
	RemainingBudget        *int64 `json:"remaining_budget"`
	AlertThresholdPercent  float64
	State                  BudgetState `json:"state"`
}

// PeriodUsage is the accumulated usage count and cost for one
// allocation scope in a billing period
type PeriodUsage struct {
	Quantity int64
	Cost     int64
}

// ComputeAllocationState returns a fresh Allocation with the period's
// usage applied, plus whether a budget alert is due. The alert
// decision is only a boolean: delivery and repeat-alert debouncing
// belong to the notification collaborator, and no "already alerted"
// state is kept here. The state is re-derived from the spend
// percentage on every call.
func ComputeAllocationState(alloc Allocation, usage PeriodUsage) (Allocation, bool) {
	alloc.UsageCurrentPeriod = usage.Quantity
	alloc.UsageCostCurrentPeriod = usage.Cost

	if alloc.BudgetLimit == nil {
		alloc.RemainingBudget = nil
		alloc.State = BudgetStateUnderThreshold
		return alloc, false
	}

	remaining := *alloc.BudgetLimit - usage.Cost
	alloc.RemainingBudget = &remaining

	if *alloc.BudgetLimit <= 0 {
		alloc.State = BudgetStateUnderThreshold
		return alloc, false
	}

	spentPercent := float64(usage.Cost) / float64(*alloc.BudgetLimit) * 100

	switch {
	case spentPercent >= 100:
		alloc.State = BudgetStateOverBudget
	case spentPercent >= alloc.AlertThresholdPercent:
		alloc.State = BudgetStateWarning
	default:
		alloc.State = BudgetStateUnderThreshold
	}

	alertDue := spentPercent >= alloc.AlertThresholdPercent
	return alloc, alertDue
}
