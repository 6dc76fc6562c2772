package currency

import (
	"fmt"

	"github.com/billing/backend/internal/domain/shared"
)

// Code represents a currency code (ISO 4217)
type Code string

const (
	USD Code = "USD" // US Dollar (pivot)
	EUR Code = "EUR" // Euro
	GBP Code = "GBP" // British Pound
	CAD Code = "CAD" // Canadian Dollar
	AUD Code = "AUD" // Australian Dollar
	SGD Code = "SGD" // Singapore Dollar
	INR Code = "INR" // Indian Rupee
	BDT Code = "BDT" // Bangladeshi Taka
)

// PivotCurrency is the reference currency all conversions are routed through.
// Keeping a single pivot keeps the rate table O(n) instead of O(n^2) pairs.
const PivotCurrency = USD

// MinorUnitDivisor converts minor units (cents) to major units.
// Every currency in the supported set uses a two-decimal minor unit.
// If a zero-decimal currency is ever added this must become a
// per-currency property on the rate table.
const MinorUnitDivisor = 100

// symbols maps supported currency codes to their display symbols
var symbols = map[Code]string{
	USD: "$",
	EUR: "€",
	GBP: "£",
	CAD: "CA$",
	AUD: "A$",
	SGD: "S$",
	INR: "₹",
	BDT: "৳",
}

// String returns the string representation of the code
func (c Code) String() string {
	return string(c)
}

// IsValid returns true if the code is in the supported set
func (c Code) IsValid() bool {
	_, ok := symbols[c]
	return ok
}

// Symbol returns the display symbol for a currency code.
// It fails for codes outside the supported set; falling back to the
// raw code is a caller-level display decision, not done here.
func Symbol(code Code) (string, error) {
	symbol, ok := symbols[code]
	if !ok {
		return "", shared.NewDomainError("UNKNOWN_CURRENCY", fmt.Sprintf("Unknown currency code: %s", code))
	}
	return symbol, nil
}

// SupportedCodes returns all currency codes in the supported set
func SupportedCodes() []Code {
	codes := make([]Code, 0, len(symbols))
	for code := range symbols {
		codes = append(codes, code)
	}
	return codes
}
