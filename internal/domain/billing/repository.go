package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InvoiceRepository provides access to normalized invoices
type InvoiceRepository interface {
	// FindByAccount finds all invoices for an account in a period
	FindByAccount(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd time.Time) ([]NormalizedInvoice, error)

	// Save creates or updates a normalized invoice
	Save(ctx context.Context, accountID uuid.UUID, invoice NormalizedInvoice) error
}

// PaymentRepository provides access to normalized payments
type PaymentRepository interface {
	// FindByAccount finds all payments for an account in a period
	FindByAccount(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd time.Time) ([]NormalizedPayment, error)

	// Save creates or updates a normalized payment
	Save(ctx context.Context, accountID uuid.UUID, payment NormalizedPayment) error
}

// UsageRecordRepository provides access to usage events
type UsageRecordRepository interface {
	// FindByAccount finds all usage records for an account.
	// Recency bucketing happens in the domain, so this returns the
	// account's full history unless a period is supplied.
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]UsageRecord, error)

	// FindByAccountInPeriod finds usage records for an account within a period
	FindByAccountInPeriod(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd time.Time) ([]UsageRecord, error)

	// FindByAllocation finds usage records for one allocation scope within a period
	FindByAllocation(ctx context.Context, accountID uuid.UUID, key AllocationKey, periodStart, periodEnd time.Time) ([]UsageRecord, error)

	// Save persists a usage record
	Save(ctx context.Context, record UsageRecord) error
}

// AlertPublisher publishes budget alert decisions to the notification
// collaborator. Debouncing repeat alerts is the subscriber's concern.
type AlertPublisher interface {
	// PublishBudgetAlert announces that an allocation crossed its alert threshold
	PublishBudgetAlert(ctx context.Context, accountID uuid.UUID, alloc Allocation) error
}
