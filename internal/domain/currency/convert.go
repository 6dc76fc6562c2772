package currency

import (
	"github.com/shopspring/decimal"
)

// Convert converts an integer minor-unit amount between two currency
// codes by routing through the pivot currency. Rounding (half away
// from zero) happens exactly once, on the final result; the
// intermediate pivot value stays at full decimal precision to avoid
// compounding error.
//
// Identity conversions return the amount unchanged without consulting
// the rate table, so a stale or missing rate entry can never corrupt
// a same-currency passthrough.
func (t *RateTable) Convert(amount int64, from, to Code) (int64, error) {
	if from == to {
		return amount, nil
	}

	fromRate, err := t.Rate(from)
	if err != nil {
		return 0, err
	}
	toRate, err := t.Rate(to)
	if err != nil {
		return 0, err
	}

	pivot := decimal.NewFromInt(amount).Mul(fromRate)
	return pivot.Div(toRate).Round(0).IntPart(), nil
}

// ExchangeRate returns the rate from one currency to another as
// rate[from] / rate[to]. Identity pairs return exactly 1 regardless of
// the table contents.
func (t *RateTable) ExchangeRate(from, to Code) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	fromRate, err := t.Rate(from)
	if err != nil {
		return decimal.Decimal{}, err
	}
	toRate, err := t.Rate(to)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return fromRate.Div(toRate), nil
}
