package billing

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AllocationEvaluation is the outcome of evaluating one allocation
type AllocationEvaluation struct {
	Allocation billing.Allocation
	AlertDue   bool
}

// BudgetAlertService evaluates allocations against their budgets and
// hands alert decisions to the notification collaborator. It keeps no
// "already alerted" state: repeat-alert debouncing is entirely the
// subscriber's concern.
type BudgetAlertService struct {
	usageRepo billing.UsageRecordRepository
	publisher billing.AlertPublisher
	logger    *zap.Logger
}

// NewBudgetAlertService creates a new BudgetAlertService
func NewBudgetAlertService(
	usageRepo billing.UsageRecordRepository,
	publisher billing.AlertPublisher,
	logger *zap.Logger,
) *BudgetAlertService {
	return &BudgetAlertService{
		usageRepo: usageRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// EvaluateAllocations recomputes every allocation's budget state for
// the period and publishes an alert for each one at or past its
// threshold. Publish failures are logged and do not fail the
// evaluation; the recomputed states are still returned.
func (s *BudgetAlertService) EvaluateAllocations(
	ctx context.Context,
	accountID uuid.UUID,
	allocations []billing.Allocation,
	periodStart, periodEnd time.Time,
) ([]AllocationEvaluation, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account ID cannot be empty")
	}

	results := make([]AllocationEvaluation, 0, len(allocations))

	for _, alloc := range allocations {
		records, err := s.usageRepo.FindByAllocation(ctx, accountID, alloc.Key, periodStart, periodEnd)
		if err != nil {
			s.logger.Error("Failed to load allocation usage",
				zap.String("account_id", accountID.String()),
				zap.String("client_id", alloc.Key.ClientID),
				zap.Error(err))
			return nil, err
		}

		var usage billing.PeriodUsage
		for _, record := range records {
			if err := record.Validate(); err != nil {
				return nil, err
			}
			usage.Quantity += record.Quantity
			usage.Cost += record.Cost
		}

		state, alertDue := billing.ComputeAllocationState(alloc, usage)
		results = append(results, AllocationEvaluation{Allocation: state, AlertDue: alertDue})

		if alertDue && s.publisher != nil {
			if err := s.publisher.PublishBudgetAlert(ctx, accountID, state); err != nil {
				s.logger.Warn("Failed to publish budget alert",
					zap.String("account_id", accountID.String()),
					zap.String("client_id", alloc.Key.ClientID),
					zap.Error(err))
			} else {
				s.logger.Info("Budget alert published",
					zap.String("account_id", accountID.String()),
					zap.String("client_id", alloc.Key.ClientID),
					zap.String("state", state.State.String()),
					zap.Int64("cost", state.UsageCostCurrentPeriod))
			}
		}
	}

	return results, nil
}
