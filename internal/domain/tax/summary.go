package tax

import (
	"sort"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/currency"
	"github.com/shopspring/decimal"
)

// Summary is the per-jurisdiction tax rollup for one aggregation run.
// TaxRate is informational (looked up from configuration, never
// derived from collected/amount). The currency is carried through from
// the contributing records without validation; rejecting malformed
// codes is upstream normalization's responsibility.
type Summary struct {
	Jurisdiction     string          `json:"jurisdiction"`
	Country          string          `json:"country"`
	Region           string          `json:"region,omitempty"`
	TaxCollected     int64           `json:"tax_collected"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	TransactionCount int64           `json:"transaction_count"`
	Currency         currency.Code   `json:"currency"`
}

// CalculateSummaries folds invoices and payments into per-jurisdiction
// tax summaries. Summaries are recomputed from scratch on every call;
// no state is carried between runs, so re-running over the same
// snapshot is idempotent.
//
// Paid invoices with a settlement time contribute their tax amount.
// Succeeded payments with a positive tax amount contribute theirs.
// The engine does not deduplicate across the two streams: callers must
// ensure at most one stream carries tax metadata per commercial event.
//
// A single malformed record fails the whole call. Partial tax reports
// are worse than a visible failure.
func CalculateSummaries(
	invoices []billing.NormalizedInvoice,
	payments []billing.NormalizedPayment,
	cfg EngineConfig,
) ([]Summary, error) {
	byJurisdiction := make(map[string]*Summary)

	fetchOrCreate := func(key string, code currency.Code) *Summary {
		if summary, ok := byJurisdiction[key]; ok {
			return summary
		}
		country, region := splitJurisdiction(key)
		summary := &Summary{
			Jurisdiction: key,
			Country:      country,
			Region:       region,
			TaxRate:      cfg.RateFor(key),
			Currency:     code,
		}
		byJurisdiction[key] = summary
		return summary
	}

	for _, invoice := range invoices {
		if err := invoice.Validate(); err != nil {
			return nil, err
		}
		if !invoice.ContributesTax() {
			continue
		}

		key := ResolveJurisdiction(invoice.Jurisdiction, cfg)
		summary := fetchOrCreate(key, invoice.Currency)
		summary.TaxCollected += invoice.TaxAmount
		summary.TransactionCount++
	}

	for _, payment := range payments {
		if err := payment.Validate(); err != nil {
			return nil, err
		}
		if !payment.ContributesTax() {
			continue
		}

		key := ResolveJurisdiction(payment.Jurisdiction, cfg)
		summary := fetchOrCreate(key, payment.Currency)
		summary.TaxCollected += payment.TaxAmount
		summary.TransactionCount++
	}

	summaries := make([]Summary, 0, len(byJurisdiction))
	for _, summary := range byJurisdiction {
		summaries = append(summaries, *summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Country != summaries[j].Country {
			return summaries[i].Country < summaries[j].Country
		}
		return summaries[i].Region < summaries[j].Region
	})

	return summaries, nil
}
