package currency

import (
	"fmt"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RateTable holds exchange rates expressed relative to the pivot currency.
// rate[c] is the pivot-currency value of one unit of c, so the pivot
// itself always carries a rate of exactly 1.
//
// A RateTable is an immutable snapshot for one aggregation run. It is
// refreshed by an out-of-core scheduled job, never by this package.
type RateTable struct {
	rates map[Code]decimal.Decimal
}

// NewRateTable creates a rate table from pivot-relative rates.
// The pivot entry is added automatically if absent.
func NewRateTable(rates map[Code]decimal.Decimal) (*RateTable, error) {
	table := make(map[Code]decimal.Decimal, len(rates)+1)
	for code, rate := range rates {
		if !rate.IsPositive() {
			return nil, shared.NewDomainError("INVALID_RATE", fmt.Sprintf("Rate for %s must be positive", code))
		}
		table[code] = rate
	}
	if _, ok := table[PivotCurrency]; !ok {
		table[PivotCurrency] = decimal.NewFromInt(1)
	}
	return &RateTable{rates: table}, nil
}

// MustNewRateTable creates a rate table, panicking on invalid rates.
// Intended for static snapshots known at compile time.
func MustNewRateTable(rates map[Code]decimal.Decimal) *RateTable {
	table, err := NewRateTable(rates)
	if err != nil {
		panic(err)
	}
	return table
}

// Rate returns the pivot-relative rate for a currency code
func (t *RateTable) Rate(code Code) (decimal.Decimal, error) {
	rate, ok := t.rates[code]
	if !ok {
		return decimal.Decimal{}, shared.NewDomainError("UNKNOWN_CURRENCY", fmt.Sprintf("Unknown currency code: %s", code))
	}
	return rate, nil
}

// Has returns true if the table carries a rate for the code
func (t *RateTable) Has(code Code) bool {
	_, ok := t.rates[code]
	return ok
}

// Codes returns all currency codes present in the table
func (t *RateTable) Codes() []Code {
	codes := make([]Code, 0, len(t.rates))
	for code := range t.rates {
		codes = append(codes, code)
	}
	return codes
}

// DefaultRateTable returns a static snapshot suitable for development
// and tests. Production deployments load the snapshot through the
// rates provider instead.
func DefaultRateTable() *RateTable {
	return MustNewRateTable(map[Code]decimal.Decimal{
		USD: decimal.NewFromFloat(1.0),
		EUR: decimal.NewFromFloat(1.08),
		GBP: decimal.NewFromFloat(1.26),
		CAD: decimal.NewFromFloat(0.73),
		AUD: decimal.NewFromFloat(0.65),
		SGD: decimal.NewFromFloat(0.74),
		INR: decimal.NewFromFloat(0.012),
		BDT: decimal.NewFromFloat(0.0091),
	})
}
