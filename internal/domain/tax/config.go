package tax

import (
	"github.com/shopspring/decimal"
)

// EngineConfig holds the tax settings for one aggregation run. It is
// built once from environment/tenant settings and stays immutable for
// the duration of the run.
type EngineConfig struct {
	// ThirdPartyEnabled marks a dedicated tax service as the
	// authoritative source of jurisdiction tags on records
	ThirdPartyEnabled bool

	// ManualRates maps jurisdiction keys to informational tax-rate
	// percentages maintained by the tenant
	ManualRates map[string]decimal.Decimal

	// DefaultRate is the fallback percentage for jurisdictions with
	// no manual entry
	DefaultRate decimal.Decimal
}

// RateFor returns the informational tax rate for a jurisdiction key.
// A missing manual entry falls back to the default rate; a missing
// default yields zero. Revenue recognition never halts on a missing
// rate entry, so this cannot fail.
func (c EngineConfig) RateFor(jurisdiction string) decimal.Decimal {
	if rate, ok := c.ManualRates[jurisdiction]; ok {
		return rate
	}
	return c.DefaultRate
}
