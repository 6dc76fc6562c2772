package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/currency"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRecordSource struct {
	invoices []billing.NormalizedInvoice
	payments []billing.NormalizedPayment
	err      error
}

func (s *fakeRecordSource) FetchInvoices(ctx context.Context, customerID string, periodStart, periodEnd time.Time) ([]billing.NormalizedInvoice, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.invoices, nil
}

func (s *fakeRecordSource) FetchPayments(ctx context.Context, customerID string, periodStart, periodEnd time.Time) ([]billing.NormalizedPayment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.payments, nil
}

type fakeInvoiceStore struct {
	saved []billing.NormalizedInvoice
	err   error
}

func (s *fakeInvoiceStore) FindByAccount(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd time.Time) ([]billing.NormalizedInvoice, error) {
	return s.saved, nil
}

func (s *fakeInvoiceStore) Save(ctx context.Context, accountID uuid.UUID, invoice billing.NormalizedInvoice) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, invoice)
	return nil
}

type fakePaymentStore struct {
	saved []billing.NormalizedPayment
	err   error
}

func (s *fakePaymentStore) FindByAccount(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd time.Time) ([]billing.NormalizedPayment, error) {
	return s.saved, nil
}

func (s *fakePaymentStore) Save(ctx context.Context, accountID uuid.UUID, payment billing.NormalizedPayment) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, payment)
	return nil
}

func TestIngestionService_SyncAccount(t *testing.T) {
	accountID := uuid.New()
	periodStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	paidAt := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	validInvoice := billing.NormalizedInvoice{
		ID:       "in_001",
		Status:   billing.InvoiceStatusPaid,
		Amount:   10000,
		Currency: currency.USD,
		PaidAt:   &paidAt,
	}
	validPayment := billing.NormalizedPayment{
		ID:         "ch_001",
		Status:     billing.PaymentStatusSucceeded,
		Amount:     5000,
		Currency:   currency.USD,
		OccurredAt: paidAt,
	}

	t.Run("persists fetched invoices and payments", func(t *testing.T) {
		source := &fakeRecordSource{
			invoices: []billing.NormalizedInvoice{validInvoice},
			payments: []billing.NormalizedPayment{validPayment},
		}
		invoiceStore := &fakeInvoiceStore{}
		paymentStore := &fakePaymentStore{}
		service := NewIngestionService(source, invoiceStore, paymentStore, zap.NewNop())

		result, err := service.SyncAccount(context.Background(), accountID, "cus_123", periodStart, periodEnd)

		require.NoError(t, err)
		assert.Equal(t, 1, result.InvoicesSynced)
		assert.Equal(t, 1, result.PaymentsSynced)
		require.Len(t, invoiceStore.saved, 1)
		assert.Equal(t, "in_001", invoiceStore.saved[0].ID)
		require.Len(t, paymentStore.saved, 1)
		assert.Equal(t, "ch_001", paymentStore.saved[0].ID)
	})

	t.Run("invalid record aborts the sync", func(t *testing.T) {
		source := &fakeRecordSource{
			invoices: []billing.NormalizedInvoice{{Status: billing.InvoiceStatusPaid, Amount: 100, Currency: currency.USD}},
		}
		service := NewIngestionService(source, &fakeInvoiceStore{}, &fakePaymentStore{}, zap.NewNop())

		_, err := service.SyncAccount(context.Background(), accountID, "cus_123", periodStart, periodEnd)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_RECORD", domainErr.Code)
	})

	t.Run("provider failure propagates", func(t *testing.T) {
		source := &fakeRecordSource{err: errors.New("stripe: rate limited")}
		service := NewIngestionService(source, &fakeInvoiceStore{}, &fakePaymentStore{}, zap.NewNop())

		_, err := service.SyncAccount(context.Background(), accountID, "cus_123", periodStart, periodEnd)

		require.Error(t, err)
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		source := &fakeRecordSource{invoices: []billing.NormalizedInvoice{validInvoice}}
		invoiceStore := &fakeInvoiceStore{err: errors.New("connection reset")}
		service := NewIngestionService(source, invoiceStore, &fakePaymentStore{}, zap.NewNop())

		_, err := service.SyncAccount(context.Background(), accountID, "cus_123", periodStart, periodEnd)

		require.Error(t, err)
	})

	t.Run("rejects empty customer ID", func(t *testing.T) {
		service := NewIngestionService(&fakeRecordSource{}, &fakeInvoiceStore{}, &fakePaymentStore{}, zap.NewNop())

		_, err := service.SyncAccount(context.Background(), accountID, "", periodStart, periodEnd)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})

	t.Run("rejects empty account ID", func(t *testing.T) {
		service := NewIngestionService(&fakeRecordSource{}, &fakeInvoiceStore{}, &fakePaymentStore{}, zap.NewNop())

		_, err := service.SyncAccount(context.Background(), uuid.Nil, "cus_123", periodStart, periodEnd)

		require.Error(t, err)
	})
}
