package billing

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UsageReportingService rolls usage records up into per-account stats
// and per-allocation budget states for the dashboard layer
type UsageReportingService struct {
	usageRepo  billing.UsageRecordRepository
	logger     *zap.Logger
	thresholds billing.Thresholds
	now        func() time.Time
}

// UsageReportingServiceConfig contains configuration for UsageReportingService
type UsageReportingServiceConfig struct {
	Thresholds billing.Thresholds
}

// DefaultUsageReportingServiceConfig returns default configuration
func DefaultUsageReportingServiceConfig() UsageReportingServiceConfig {
	return UsageReportingServiceConfig{
		Thresholds: billing.DefaultThresholds(),
	}
}

// NewUsageReportingService creates a new UsageReportingService
func NewUsageReportingService(
	usageRepo billing.UsageRecordRepository,
	logger *zap.Logger,
	config UsageReportingServiceConfig,
) *UsageReportingService {
	if config.Thresholds == (billing.Thresholds{}) {
		config.Thresholds = billing.DefaultThresholds()
	}

	return &UsageReportingService{
		usageRepo:  usageRepo,
		logger:     logger,
		thresholds: config.Thresholds,
		now:        time.Now,
	}
}

// WithClock overrides the aggregation clock. Intended for tests and
// for replaying historical periods.
func (s *UsageReportingService) WithClock(now func() time.Time) *UsageReportingService {
	s.now = now
	return s
}

// GetUsageStats computes the usage rollup for an account against its
// quota limit. The full record set is re-aggregated on every call; a
// consistent snapshot comes from the repository read.
func (s *UsageReportingService) GetUsageStats(ctx context.Context, accountID uuid.UUID, quotaLimit *int64) (billing.UsageStats, error) {
	if accountID == uuid.Nil {
		return billing.UsageStats{}, shared.NewDomainError("INVALID_INPUT", "Account ID cannot be empty")
	}

	records, err := s.usageRepo.FindByAccount(ctx, accountID)
	if err != nil {
		s.logger.Error("Failed to load usage records",
			zap.String("account_id", accountID.String()),
			zap.Error(err))
		return billing.UsageStats{}, err
	}

	stats, err := billing.ComputeUsageStats(records, quotaLimit, s.now(), s.thresholds)
	if err != nil {
		s.logger.Error("Usage aggregation failed",
			zap.String("account_id", accountID.String()),
			zap.Error(err))
		return billing.UsageStats{}, err
	}

	if stats.Band != billing.BandNormal {
		s.logger.Info("Account usage crossed threshold",
			zap.String("account_id", accountID.String()),
			zap.String("band", stats.Band.String()),
			zap.Int64("quota_used", stats.QuotaUsed))
	}

	return stats, nil
}

// GetUsageStatsForPeriod computes the rollup from only the records
// inside the period, for historical re-aggregation. Recency buckets
// are still measured against the aggregation clock, so they are empty
// for past periods.
func (s *UsageReportingService) GetUsageStatsForPeriod(
	ctx context.Context,
	accountID uuid.UUID,
	quotaLimit *int64,
	periodStart, periodEnd time.Time,
) (billing.UsageStats, error) {
	if accountID == uuid.Nil {
		return billing.UsageStats{}, shared.NewDomainError("INVALID_INPUT", "Account ID cannot be empty")
	}

	records, err := s.usageRepo.FindByAccountInPeriod(ctx, accountID, periodStart, periodEnd)
	if err != nil {
		s.logger.Error("Failed to load usage records for period",
			zap.String("account_id", accountID.String()),
			zap.Time("period_start", periodStart),
			zap.Time("period_end", periodEnd),
			zap.Error(err))
		return billing.UsageStats{}, err
	}

	stats, err := billing.ComputeUsageStats(records, quotaLimit, s.now(), s.thresholds)
	if err != nil {
		s.logger.Error("Usage aggregation failed",
			zap.String("account_id", accountID.String()),
			zap.Error(err))
		return billing.UsageStats{}, err
	}

	return stats, nil
}

// GetAllocationState recomputes one allocation's budget state from its
// period usage
func (s *UsageReportingService) GetAllocationState(
	ctx context.Context,
	accountID uuid.UUID,
	alloc billing.Allocation,
	periodStart, periodEnd time.Time,
) (billing.Allocation, bool, error) {
	if accountID == uuid.Nil {
		return billing.Allocation{}, false, shared.NewDomainError("INVALID_INPUT", "Account ID cannot be empty")
	}

	records, err := s.usageRepo.FindByAllocation(ctx, accountID, alloc.Key, periodStart, periodEnd)
	if err != nil {
		s.logger.Error("Failed to load allocation usage",
			zap.String("account_id", accountID.String()),
			zap.Error(err))
		return billing.Allocation{}, false, err
	}

	var usage billing.PeriodUsage
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return billing.Allocation{}, false, err
		}
		usage.Quantity += record.Quantity
		usage.Cost += record.Cost
	}

	state, alertDue := billing.ComputeAllocationState(alloc, usage)
	return state, alertDue, nil
}
