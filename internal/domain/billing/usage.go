package billing

import (
	"time"

	"github.com/billing/backend/internal/domain/currency"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AllocationKey identifies the sub-account scope a usage event belongs
// to. Any of the fields may be empty when the event is not attributed
// to that dimension.
type AllocationKey struct {
	ClientID  string
	BranchID  string
	ProductID string
}

// IsZero returns true when the event is not attributed to any scope
func (k AllocationKey) IsZero() bool {
	return k == AllocationKey{}
}

// UsageRecord represents an immutable record of a single usage event
// with its cost. Corrections are made with new records, never by
// mutating existing ones.
type UsageRecord struct {
	AccountID  uuid.UUID
	Allocation AllocationKey
	OccurredAt time.Time
	Quantity   int64
	Cost       int64 // minor currency units
	Currency   currency.Code
}

// Validate checks the invariants required before the record can be
// folded into an aggregation
func (r UsageRecord) Validate() error {
	if r.AccountID == uuid.Nil {
		return shared.NewDomainError("INVALID_RECORD", "Usage record has no account ID")
	}
	if r.OccurredAt.IsZero() {
		return shared.NewDomainError("INVALID_RECORD", "Usage record has no timestamp")
	}
	if r.Quantity < 0 {
		return shared.NewDomainError("INVALID_RECORD", "Usage record has negative quantity")
	}
	if r.Cost < 0 {
		return shared.NewDomainError("INVALID_RECORD", "Usage record has negative cost")
	}
	if r.Currency == "" {
		return shared.NewDomainError("INVALID_RECORD", "Usage record has no currency")
	}
	return nil
}

// UsageStats is a per-account rollup snapshot. Recency buckets are
// measured against the aggregation run's "now"; totals cover every
// record supplied, with no time filter.
type UsageStats struct {
	CurrentMonth   int64  `json:"current_month"`
	CurrentWeek    int64  `json:"current_week"`
	Today          int64  `json:"today"`
	TotalUsage     int64  `json:"total_usage"`
	TotalCost      int64  `json:"total_cost"`
	QuotaLimit     *int64 `json:"quota_limit"`
	QuotaUsed      int64  `json:"quota_used"`
	QuotaRemaining *int64 `json:"quota_remaining"`
	Band           Band   `json:"band"`
}

// ComputeUsageStats rolls up usage records into a per-account
// snapshot. Callers must pass a consistent snapshot of records for the
// run; the rollup is recomputed from scratch on every call and carries
// no state between calls.
//
// A single malformed record fails the whole call rather than silently
// under-reporting usage.
func ComputeUsageStats(records []UsageRecord, quotaLimit *int64, now time.Time, thresholds Thresholds) (UsageStats, error) {
	stats := UsageStats{QuotaLimit: quotaLimit}

	nowYear, nowMonth, nowDay := now.Date()
	isoYear, isoWeek := now.ISOWeek()

	for _, record := range records {
		if err := record.Validate(); err != nil {
			return UsageStats{}, err
		}

		stats.TotalUsage += record.Quantity
		stats.TotalCost += record.Cost

		occurred := record.OccurredAt.In(now.Location())
		year, month, day := occurred.Date()

		if year == nowYear && month == nowMonth {
			stats.CurrentMonth += record.Quantity
			if day == nowDay {
				stats.Today += record.Quantity
			}
		}
		if recordISOYear, recordISOWeek := occurred.ISOWeek(); recordISOYear == isoYear && recordISOWeek == isoWeek {
			stats.CurrentWeek += record.Quantity
		}
	}

	stats.QuotaUsed = stats.TotalUsage
	if quotaLimit != nil {
		remaining := *quotaLimit - stats.QuotaUsed
		if remaining < 0 {
			remaining = 0
		}
		stats.QuotaRemaining = &remaining
	}
	stats.Band = thresholds.Classify(stats.QuotaUsed, quotaLimit)

	return stats, nil
}
