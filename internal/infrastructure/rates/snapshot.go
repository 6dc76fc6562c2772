package rates

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/billing/backend/internal/domain/currency"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// SnapshotProvider serves the exchange-rate table from a TOML snapshot
// file. The file is produced by a scheduled refresh job; every
// aggregation run within one load sees the same consistent table.
//
// Snapshot format:
//
//	[rates]
//	USD = "1.0"
//	EUR = "1.08"
type SnapshotProvider struct {
	path   string
	logger *zap.Logger

	mu    sync.RWMutex
	table *currency.RateTable
}

// NewSnapshotProvider creates a provider reading from the given path
func NewSnapshotProvider(path string, logger *zap.Logger) *SnapshotProvider {
	return &SnapshotProvider{
		path:   path,
		logger: logger,
	}
}

// Current returns the loaded rate table, loading the snapshot on first
// use. A missing snapshot file falls back to the built-in pivot table
// so development setups work without one.
func (p *SnapshotProvider) Current(ctx context.Context) (*currency.RateTable, error) {
	p.mu.RLock()
	table := p.table
	p.mu.RUnlock()
	if table != nil {
		return table, nil
	}
	return p.Reload(ctx)
}

// Reload re-reads the snapshot file and swaps the served table
func (p *SnapshotProvider) Reload(_ context.Context) (*currency.RateTable, error) {
	table, err := p.load()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.table = table
	p.mu.Unlock()

	p.logger.Info("Exchange rate snapshot loaded",
		zap.String("path", p.path),
		zap.Int("currencies", len(table.Codes())))
	return table, nil
}

func (p *SnapshotProvider) load() (*currency.RateTable, error) {
	v := viper.New()
	v.SetConfigFile(p.path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		p.logger.Warn("Rate snapshot unreadable, using built-in table",
			zap.String("path", p.path),
			zap.Error(err))
		return currency.DefaultRateTable(), nil
	}

	raw := v.GetStringMapString("rates")
	if len(raw) == 0 {
		p.logger.Warn("Rate snapshot has no rates table, using built-in table",
			zap.String("path", p.path))
		return currency.DefaultRateTable(), nil
	}

	parsed := make(map[currency.Code]decimal.Decimal, len(raw))
	for code, value := range raw {
		rate, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid rate for %s in %s: %w", code, p.path, err)
		}
		// viper lower-cases TOML keys
		parsed[currency.Code(strings.ToUpper(code))] = rate
	}

	return currency.NewRateTable(parsed)
}
