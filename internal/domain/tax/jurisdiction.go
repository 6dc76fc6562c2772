package tax

import (
	"strings"

	"github.com/billing/backend/internal/domain/billing"
)

// DefaultCountry is assumed when a record carries no customer
// geography at all. Aggregation proceeds with lower precision rather
// than failing.
const DefaultCountry = "US"

// ResolveJurisdiction derives the jurisdiction key for a billing
// record's hint. Precedence:
//
//  1. The explicit tax-engine tag, verbatim, when third-party tax is
//     enabled and the record carries one.
//  2. Customer country (default "US"), suffixed with "-REGION" when a
//     region is present.
func ResolveJurisdiction(hint billing.JurisdictionHint, cfg EngineConfig) string {
	if cfg.ThirdPartyEnabled && hint.ExplicitTag != "" {
		return hint.ExplicitTag
	}

	country := hint.Country
	if country == "" {
		country = DefaultCountry
	}
	if hint.Region != "" {
		return country + "-" + hint.Region
	}
	return country
}

// splitJurisdiction breaks a jurisdiction key into country and region.
// Keys are either a bare country code or COUNTRY-REGION; anything past
// the first dash belongs to the region.
func splitJurisdiction(key string) (country, region string) {
	if i := strings.Index(key, "-"); i >= 0 {
		return key[:i], key[i+1:]
	}
	return key, ""
}
