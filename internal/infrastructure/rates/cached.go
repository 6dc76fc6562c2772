package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apptax "github.com/billing/backend/internal/application/tax"
	"github.com/billing/backend/internal/domain/currency"
	"github.com/billing/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const rateSnapshotKey = "billing:rates:snapshot"

// CachedSource wraps a RateSource with a shared Redis cache so a fleet
// of aggregation workers serves one snapshot without each re-reading
// the file. Redis failures degrade to the inner source, never to an
// error.
type CachedSource struct {
	inner  apptax.RateSource
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSource creates a Redis-backed rate source cache
func NewCachedSource(inner apptax.RateSource, cfg config.RedisConfig, ttl time.Duration, logger *zap.Logger) *CachedSource {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &CachedSource{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Current returns the cached rate table, falling through to the inner
// source on a miss
func (c *CachedSource) Current(ctx context.Context) (*currency.RateTable, error) {
	payload, err := c.client.Get(ctx, rateSnapshotKey).Result()
	if err == nil {
		table, decodeErr := decodeTable([]byte(payload))
		if decodeErr == nil {
			return table, nil
		}
		c.logger.Warn("Discarding undecodable cached rate snapshot", zap.Error(decodeErr))
	} else if err != redis.Nil {
		c.logger.Warn("Rate cache unavailable, reading snapshot directly", zap.Error(err))
	}

	table, err := c.inner.Current(ctx)
	if err != nil {
		return nil, err
	}

	if payload, encodeErr := encodeTable(table); encodeErr == nil {
		if setErr := c.client.Set(ctx, rateSnapshotKey, payload, c.ttl).Err(); setErr != nil {
			c.logger.Warn("Failed to cache rate snapshot", zap.Error(setErr))
		}
	}

	return table, nil
}

// Invalidate drops the cached snapshot so the next read re-loads
func (c *CachedSource) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, rateSnapshotKey).Err()
}

// Close releases the Redis client
func (c *CachedSource) Close() error {
	return c.client.Close()
}

func encodeTable(table *currency.RateTable) ([]byte, error) {
	out := make(map[string]string)
	for _, code := range table.Codes() {
		rate, err := table.Rate(code)
		if err != nil {
			return nil, err
		}
		out[string(code)] = rate.String()
	}
	return json.Marshal(out)
}

func decodeTable(payload []byte) (*currency.RateTable, error) {
	var raw map[string]string
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}

	parsed := make(map[currency.Code]decimal.Decimal, len(raw))
	for code, value := range raw {
		rate, err := decimal.NewFromString(value)
		if err != nil {
			return nil, err
		}
		parsed[currency.Code(code)] = rate
	}
	return currency.NewRateTable(parsed)
}

// Ensure both sources satisfy the application contract
var (
	_ apptax.RateSource = (*SnapshotProvider)(nil)
	_ apptax.RateSource = (*CachedSource)(nil)
)
