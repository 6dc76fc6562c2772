package billing

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecordSource pulls normalized billing records from the upstream
// payment provider. The provider adapter owns all normalization;
// records arriving here are already in canonical shape.
type RecordSource interface {
	FetchInvoices(ctx context.Context, customerID string, periodStart, periodEnd time.Time) ([]billing.NormalizedInvoice, error)
	FetchPayments(ctx context.Context, customerID string, periodStart, periodEnd time.Time) ([]billing.NormalizedPayment, error)
}

// SyncResult reports how many records a sync run persisted
type SyncResult struct {
	InvoicesSynced int `json:"invoices_synced"`
	PaymentsSynced int `json:"payments_synced"`
}

// IngestionService copies a customer's billing records from the
// provider into local storage so aggregation runs never call the
// provider directly
type IngestionService struct {
	source      RecordSource
	invoiceRepo billing.InvoiceRepository
	paymentRepo billing.PaymentRepository
	logger      *zap.Logger
}

// NewIngestionService creates a new IngestionService
func NewIngestionService(
	source RecordSource,
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	logger *zap.Logger,
) *IngestionService {
	return &IngestionService{
		source:      source,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		logger:      logger,
	}
}

// SyncAccount fetches the customer's invoices and payments for the
// period and upserts them. A record that fails validation aborts the
// sync: a partial import would silently skew every report built on it.
func (s *IngestionService) SyncAccount(
	ctx context.Context,
	accountID uuid.UUID,
	customerID string,
	periodStart, periodEnd time.Time,
) (*SyncResult, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account ID cannot be empty")
	}
	if customerID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Customer ID cannot be empty")
	}

	s.logger.Info("Syncing billing records",
		zap.String("account_id", accountID.String()),
		zap.String("customer_id", customerID),
		zap.Time("period_start", periodStart),
		zap.Time("period_end", periodEnd))

	invoices, err := s.source.FetchInvoices(ctx, customerID, periodStart, periodEnd)
	if err != nil {
		s.logger.Error("Failed to fetch invoices",
			zap.String("customer_id", customerID),
			zap.Error(err))
		return nil, err
	}
	payments, err := s.source.FetchPayments(ctx, customerID, periodStart, periodEnd)
	if err != nil {
		s.logger.Error("Failed to fetch payments",
			zap.String("customer_id", customerID),
			zap.Error(err))
		return nil, err
	}

	result := &SyncResult{}

	for _, inv := range invoices {
		if err := inv.Validate(); err != nil {
			return nil, err
		}
		if err := s.invoiceRepo.Save(ctx, accountID, inv); err != nil {
			s.logger.Error("Failed to save invoice",
				zap.String("invoice_id", inv.ID),
				zap.Error(err))
			return nil, err
		}
		result.InvoicesSynced++
	}

	for _, payment := range payments {
		if err := payment.Validate(); err != nil {
			return nil, err
		}
		if err := s.paymentRepo.Save(ctx, accountID, payment); err != nil {
			s.logger.Error("Failed to save payment",
				zap.String("payment_id", payment.ID),
				zap.Error(err))
			return nil, err
		}
		result.PaymentsSynced++
	}

	s.logger.Info("Billing sync completed",
		zap.String("account_id", accountID.String()),
		zap.Int("invoices", result.InvoicesSynced),
		zap.Int("payments", result.PaymentsSynced))

	return result, nil
}
