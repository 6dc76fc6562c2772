package currency

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer renders numbers with English grouping separators. Tax and
// budget summaries must format identically across the dashboard, so
// the locale is fixed here rather than negotiated per request.
var printer = message.NewPrinter(language.English)

// FormatAmount renders an integer minor-unit amount for display with
// the currency's symbol and thousands separators, e.g. 1098901 BDT
// becomes "৳10,989.01". This is a presentation helper; it performs no
// business logic.
func FormatAmount(amount int64, code Code) (string, error) {
	symbol, err := Symbol(code)
	if err != nil {
		return "", err
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	major := float64(amount) / float64(MinorUnitDivisor)
	return printer.Sprintf("%s%s%.2f", sign, symbol, major), nil
}
