package billing

import (
	"time"

	"github.com/billing/backend/internal/domain/currency"
	"github.com/billing/backend/internal/domain/shared"
)

// InvoiceStatus represents the lifecycle status of a normalized invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusOpen          InvoiceStatus = "OPEN"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusVoid          InvoiceStatus = "VOID"
	InvoiceStatusUncollectible InvoiceStatus = "UNCOLLECTIBLE"
)

// IsValid returns true if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusOpen, InvoiceStatusPaid,
		InvoiceStatusVoid, InvoiceStatusUncollectible:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice can no longer transition.
// Terminal invoices are never mutated after reaching this state.
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusVoid || s == InvoiceStatusUncollectible
}

// PaymentStatus represents the outcome of a payment attempt
type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "SUCCEEDED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// IsValid returns true if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusPending, PaymentStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// JurisdictionHint carries the tax-jurisdiction signal extracted from a
// billing record at normalization time. It replaces the open metadata
// bag the gateway exposes: the fields are validated once upstream so
// the aggregation engine operates on a closed, typed shape.
//
// ExplicitTag is the jurisdiction computed by a dedicated tax service
// (authoritative when third-party tax is enabled). Country and Region
// are coarse customer geography used as the fallback.
type JurisdictionHint struct {
	Country     string
	Region      string
	ExplicitTag string
}

// IsZero returns true when no jurisdiction signal is present
func (h JurisdictionHint) IsZero() bool {
	return h.Country == "" && h.Region == "" && h.ExplicitTag == ""
}

// NormalizedInvoice is a settled or pending billing document in the
// platform's canonical shape. Amounts are integer minor currency units.
type NormalizedInvoice struct {
	ID           string
	Status       InvoiceStatus
	Amount       int64
	Currency     currency.Code
	TaxAmount    int64
	PaidAt       *time.Time
	Jurisdiction JurisdictionHint
}

// Validate checks the invariants required before the invoice can be
// folded into an aggregation. A failure here fails the whole run;
// partial tax reports are worse than a visible error.
func (i NormalizedInvoice) Validate() error {
	if i.ID == "" {
		return shared.NewDomainError("INVALID_RECORD", "Invoice ID cannot be empty")
	}
	if !i.Status.IsValid() {
		return shared.NewDomainError("INVALID_RECORD", "Invoice has invalid status: "+string(i.Status))
	}
	if i.Currency == "" {
		return shared.NewDomainError("INVALID_RECORD", "Invoice "+i.ID+" has no currency")
	}
	if i.Amount < 0 {
		return shared.NewDomainError("INVALID_RECORD", "Invoice "+i.ID+" has negative amount")
	}
	if i.TaxAmount < 0 {
		return shared.NewDomainError("INVALID_RECORD", "Invoice "+i.ID+" has negative tax amount")
	}
	if i.TaxAmount > i.Amount {
		return shared.NewDomainError("INVALID_RECORD", "Invoice "+i.ID+" has tax amount exceeding total amount")
	}
	return nil
}

// ContributesTax returns true if the invoice carries a tax signal for
// jurisdiction rollups: it must be paid and carry a settlement time.
func (i NormalizedInvoice) ContributesTax() bool {
	return i.Status == InvoiceStatusPaid && i.PaidAt != nil
}

// NormalizedPayment is a payment attempt in the platform's canonical
// shape. TaxAmount is the gateway-reported tax portion, zero when the
// payment carries no tax signal.
type NormalizedPayment struct {
	ID           string
	Status       PaymentStatus
	Amount       int64
	Currency     currency.Code
	TaxAmount    int64
	OccurredAt   time.Time
	Jurisdiction JurisdictionHint
}

// Validate checks the invariants required before the payment can be
// folded into an aggregation
func (p NormalizedPayment) Validate() error {
	if p.ID == "" {
		return shared.NewDomainError("INVALID_RECORD", "Payment ID cannot be empty")
	}
	if !p.Status.IsValid() {
		return shared.NewDomainError("INVALID_RECORD", "Payment has invalid status: "+string(p.Status))
	}
	if p.Currency == "" {
		return shared.NewDomainError("INVALID_RECORD", "Payment "+p.ID+" has no currency")
	}
	if p.Amount < 0 {
		return shared.NewDomainError("INVALID_RECORD", "Payment "+p.ID+" has negative amount")
	}
	return nil
}

// ContributesTax returns true if the payment carries a tax signal:
// only succeeded payments with a positive tax amount count. Payments
// without tax metadata are skipped, not errors.
func (p NormalizedPayment) ContributesTax() bool {
	return p.Status == PaymentStatusSucceeded && p.TaxAmount > 0
}
