package currency

import (
	"errors"
	"testing"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDomainErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, code, domainErr.Code)
}

func TestNewRateTable(t *testing.T) {
	t.Run("adds pivot entry when absent", func(t *testing.T) {
		table, err := NewRateTable(map[Code]decimal.Decimal{
			BDT: decimal.NewFromFloat(0.0091),
		})

		require.NoError(t, err)
		assert.True(t, table.Has(PivotCurrency))
		rate, err := table.Rate(PivotCurrency)
		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.NewFromInt(1)))
	})

	t.Run("rejects non-positive rates", func(t *testing.T) {
		_, err := NewRateTable(map[Code]decimal.Decimal{
			EUR: decimal.Zero,
		})

		require.Error(t, err)
		assertDomainErrorCode(t, err, "INVALID_RATE")
	})
}

func TestRateTable_Convert(t *testing.T) {
	table := DefaultRateTable()

	t.Run("identity conversion returns amount unchanged", func(t *testing.T) {
		for _, code := range SupportedCodes() {
			for _, amount := range []int64{0, 1, -250, 10000, 999999999} {
				result, err := table.Convert(amount, code, code)
				require.NoError(t, err)
				assert.Equal(t, amount, result)
			}
		}
	})

	t.Run("identity conversion skips rate lookup", func(t *testing.T) {
		// An empty table still converts XXX -> XXX; only the pivot is present.
		empty := MustNewRateTable(nil)
		result, err := empty.Convert(500, Code("XXX"), Code("XXX"))

		require.NoError(t, err)
		assert.Equal(t, int64(500), result)
	})

	t.Run("converts USD to BDT through pivot", func(t *testing.T) {
		// round(10000 * 1.0 / 0.0091) = round(1098901.0989) = 1098901
		result, err := table.Convert(10000, USD, BDT)

		require.NoError(t, err)
		assert.Equal(t, int64(1098901), result)
	})

	t.Run("round trip stays within one minor unit", func(t *testing.T) {
		amounts := []int64{1, 99, 10000, 123456789}
		codes := []Code{USD, EUR, GBP, BDT, INR}

		for _, x := range amounts {
			for _, c1 := range codes {
				for _, c2 := range codes {
					there, err := table.Convert(x, c1, c2)
					require.NoError(t, err)
					back, err := table.Convert(there, c2, c1)
					require.NoError(t, err)

					diff := back - x
					if diff < 0 {
						diff = -diff
					}
					assert.LessOrEqual(t, diff, int64(1),
						"round trip %d %s->%s->%s drifted by %d", x, c1, c2, c1, diff)
				}
			}
		}
	})

	t.Run("rounds half away from zero", func(t *testing.T) {
		half := MustNewRateTable(map[Code]decimal.Decimal{
			EUR: decimal.NewFromInt(2),
		})

		// 1 USD -> 0.5 EUR rounds to 1, not 0
		result, err := half.Convert(1, USD, EUR)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result)

		result, err = half.Convert(-1, USD, EUR)
		require.NoError(t, err)
		assert.Equal(t, int64(-1), result)
	})

	t.Run("fails on unknown source currency", func(t *testing.T) {
		_, err := table.Convert(100, Code("XXX"), USD)

		require.Error(t, err)
		assertDomainErrorCode(t, err, "UNKNOWN_CURRENCY")
	})

	t.Run("fails on unknown target currency", func(t *testing.T) {
		_, err := table.Convert(100, USD, Code("XXX"))

		require.Error(t, err)
		assertDomainErrorCode(t, err, "UNKNOWN_CURRENCY")
	})
}

func TestRateTable_ExchangeRate(t *testing.T) {
	table := DefaultRateTable()

	t.Run("identity rate is exactly one", func(t *testing.T) {
		rate, err := table.ExchangeRate(BDT, BDT)

		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.NewFromInt(1)))
	})

	t.Run("returns ratio of pivot rates", func(t *testing.T) {
		rate, err := table.ExchangeRate(GBP, EUR)

		require.NoError(t, err)
		expected := decimal.NewFromFloat(1.26).Div(decimal.NewFromFloat(1.08))
		assert.True(t, rate.Equal(expected))
	})

	t.Run("fails on unknown currency", func(t *testing.T) {
		_, err := table.ExchangeRate(Code("XXX"), USD)

		require.Error(t, err)
		assertDomainErrorCode(t, err, "UNKNOWN_CURRENCY")
	})
}

func TestSymbol(t *testing.T) {
	t.Run("returns symbol for supported code", func(t *testing.T) {
		symbol, err := Symbol(USD)

		require.NoError(t, err)
		assert.Equal(t, "$", symbol)
	})

	t.Run("fails for unknown code instead of falling back", func(t *testing.T) {
		_, err := Symbol(Code("XXX"))

		require.Error(t, err)
		assertDomainErrorCode(t, err, "UNKNOWN_CURRENCY")
	})
}

func TestFormatAmount(t *testing.T) {
	t.Run("formats with symbol and grouping", func(t *testing.T) {
		formatted, err := FormatAmount(1098901, BDT)

		require.NoError(t, err)
		assert.Equal(t, "৳10,989.01", formatted)
	})

	t.Run("formats small amounts", func(t *testing.T) {
		formatted, err := FormatAmount(875, USD)

		require.NoError(t, err)
		assert.Equal(t, "$8.75", formatted)
	})

	t.Run("places sign before symbol", func(t *testing.T) {
		formatted, err := FormatAmount(-150000, EUR)

		require.NoError(t, err)
		assert.Equal(t, "-€1,500.00", formatted)
	})

	t.Run("fails for unknown code", func(t *testing.T) {
		_, err := FormatAmount(100, Code("XXX"))

		require.Error(t, err)
		assertDomainErrorCode(t, err, "UNKNOWN_CURRENCY")
	})
}
