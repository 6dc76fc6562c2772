package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/currency"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/charge"
	"github.com/stripe/stripe-go/v81/invoice"
	"go.uber.org/zap"
)

// metadata key carrying the jurisdiction computed by the provider's tax
// integration. Only honored when third-party tax is enabled in the
// engine config.
const taxJurisdictionKey = "tax_jurisdiction"

// metadata key carrying the tax portion of a charge, in minor units.
// Charges without it contribute no tax signal.
const taxAmountKey = "tax_amount"

// StripeAdapter pulls billing records from Stripe and normalizes them
// into the platform's canonical shapes. Normalization is the only place
// provider metadata is interpreted; everything downstream sees typed
// records.
type StripeAdapter struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeAdapter creates a new Stripe adapter
func NewStripeAdapter(config *StripeConfig, logger *zap.Logger) (*StripeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Initialize Stripe client
	config.InitStripeClient()

	return &StripeAdapter{
		config: config,
		logger: logger,
	}, nil
}

// FetchInvoices lists a customer's invoices created in the period and
// normalizes them
func (a *StripeAdapter) FetchInvoices(ctx context.Context, customerID string, periodStart, periodEnd time.Time) ([]billing.NormalizedInvoice, error) {
	a.logger.Debug("Fetching Stripe invoices",
		zap.String("customer_id", customerID),
		zap.Time("period_start", periodStart),
		zap.Time("period_end", periodEnd))

	params := &stripe.InvoiceListParams{
		Customer: stripe.String(customerID),
		CreatedRange: &stripe.RangeQueryParams{
			GreaterThanOrEqual: periodStart.Unix(),
			LesserThan:         periodEnd.Unix(),
		},
	}
	params.Context = ctx

	var invoices []billing.NormalizedInvoice
	iter := invoice.List(params)
	for iter.Next() {
		invoices = append(invoices, NormalizeInvoice(iter.Invoice()))
	}
	if err := iter.Err(); err != nil {
		a.logger.Error("Failed to list Stripe invoices",
			zap.String("customer_id", customerID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to list invoices: %w", err)
	}

	return invoices, nil
}

// FetchPayments lists a customer's charges created in the period and
// normalizes them
func (a *StripeAdapter) FetchPayments(ctx context.Context, customerID string, periodStart, periodEnd time.Time) ([]billing.NormalizedPayment, error) {
	a.logger.Debug("Fetching Stripe charges",
		zap.String("customer_id", customerID),
		zap.Time("period_start", periodStart),
		zap.Time("period_end", periodEnd))

	params := &stripe.ChargeListParams{
		Customer: stripe.String(customerID),
		CreatedRange: &stripe.RangeQueryParams{
			GreaterThanOrEqual: periodStart.Unix(),
			LesserThan:         periodEnd.Unix(),
		},
	}
	params.Context = ctx

	var payments []billing.NormalizedPayment
	iter := charge.List(params)
	for iter.Next() {
		payments = append(payments, NormalizeCharge(iter.Charge()))
	}
	if err := iter.Err(); err != nil {
		a.logger.Error("Failed to list Stripe charges",
			zap.String("customer_id", customerID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to list charges: %w", err)
	}

	return payments, nil
}

// NormalizeInvoice converts a Stripe invoice into the canonical shape
func NormalizeInvoice(inv *stripe.Invoice) billing.NormalizedInvoice {
	normalized := billing.NormalizedInvoice{
		ID:           inv.ID,
		Status:       mapInvoiceStatus(inv.Status),
		Amount:       inv.Total,
		Currency:     currency.Code(strings.ToUpper(string(inv.Currency))),
		TaxAmount:    invoiceTax(inv),
		Jurisdiction: invoiceJurisdiction(inv),
	}

	if inv.StatusTransitions != nil && inv.StatusTransitions.PaidAt > 0 {
		paidAt := time.Unix(inv.StatusTransitions.PaidAt, 0).UTC()
		normalized.PaidAt = &paidAt
	}

	return normalized
}

// NormalizeCharge converts a Stripe charge into the canonical shape.
// The tax portion comes from charge metadata; charges without it carry
// no tax signal and are skipped by the rollup, not rejected.
func NormalizeCharge(ch *stripe.Charge) billing.NormalizedPayment {
	normalized := billing.NormalizedPayment{
		ID:           ch.ID,
		Status:       mapChargeStatus(ch),
		Amount:       ch.Amount,
		Currency:     currency.Code(strings.ToUpper(string(ch.Currency))),
		OccurredAt:   time.Unix(ch.Created, 0).UTC(),
		Jurisdiction: chargeJurisdiction(ch),
	}

	if raw, ok := ch.Metadata[taxAmountKey]; ok {
		if tax, err := strconv.ParseInt(raw, 10, 64); err == nil && tax > 0 {
			normalized.TaxAmount = tax
		}
	}

	return normalized
}

func mapInvoiceStatus(status stripe.InvoiceStatus) billing.InvoiceStatus {
	switch status {
	case stripe.InvoiceStatusDraft:
		return billing.InvoiceStatusDraft
	case stripe.InvoiceStatusOpen:
		return billing.InvoiceStatusOpen
	case stripe.InvoiceStatusPaid:
		return billing.InvoiceStatusPaid
	case stripe.InvoiceStatusVoid:
		return billing.InvoiceStatusVoid
	case stripe.InvoiceStatusUncollectible:
		return billing.InvoiceStatusUncollectible
	default:
		return billing.InvoiceStatus(strings.ToUpper(string(status)))
	}
}

func mapChargeStatus(ch *stripe.Charge) billing.PaymentStatus {
	if ch.Refunded {
		return billing.PaymentStatusRefunded
	}
	switch ch.Status {
	case stripe.ChargeStatusSucceeded:
		return billing.PaymentStatusSucceeded
	case stripe.ChargeStatusPending:
		return billing.PaymentStatusPending
	case stripe.ChargeStatusFailed:
		return billing.PaymentStatusFailed
	default:
		return billing.PaymentStatus(strings.ToUpper(string(ch.Status)))
	}
}

func invoiceTax(inv *stripe.Invoice) int64 {
	var total int64
	for _, taxAmount := range inv.TotalTaxAmounts {
		total += taxAmount.Amount
	}
	return total
}

func invoiceJurisdiction(inv *stripe.Invoice) billing.JurisdictionHint {
	hint := billing.JurisdictionHint{
		ExplicitTag: inv.Metadata[taxJurisdictionKey],
	}
	if inv.CustomerAddress != nil {
		hint.Country = inv.CustomerAddress.Country
		hint.Region = inv.CustomerAddress.State
	}
	return hint
}

func chargeJurisdiction(ch *stripe.Charge) billing.JurisdictionHint {
	hint := billing.JurisdictionHint{
		ExplicitTag: ch.Metadata[taxJurisdictionKey],
	}
	if ch.BillingDetails != nil && ch.BillingDetails.Address != nil {
		hint.Country = ch.BillingDetails.Address.Country
		hint.Region = ch.BillingDetails.Address.State
	}
	return hint
}
