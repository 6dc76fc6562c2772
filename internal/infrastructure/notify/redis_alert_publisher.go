package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const budgetAlertChannel = "billing:alerts:budget"

// budgetAlertMessage is the wire shape published to the notification
// collaborator. Debouncing repeat alerts happens on the subscriber
// side, so every threshold crossing is published as-is.
type budgetAlertMessage struct {
	AccountID       string    `json:"account_id"`
	ClientID        string    `json:"client_id,omitempty"`
	BranchID        string    `json:"branch_id,omitempty"`
	ProductID       string    `json:"product_id,omitempty"`
	Currency        string    `json:"currency,omitempty"`
	BudgetLimit     *int64    `json:"budget_limit"`
	SpentCost       int64     `json:"spent_cost"`
	RemainingBudget *int64    `json:"remaining_budget"`
	State           string    `json:"state"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// RedisAlertPublisher publishes budget alert decisions on a Redis
// pub/sub channel
type RedisAlertPublisher struct {
	client *redis.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewRedisAlertPublisher creates a Redis-backed alert publisher
func NewRedisAlertPublisher(cfg config.RedisConfig, logger *zap.Logger) *RedisAlertPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisAlertPublisher{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// PublishBudgetAlert announces that an allocation crossed its alert threshold
func (p *RedisAlertPublisher) PublishBudgetAlert(ctx context.Context, accountID uuid.UUID, alloc billing.Allocation) error {
	payload, err := encodeAlert(accountID, alloc, p.now().UTC())
	if err != nil {
		return fmt.Errorf("notify: failed to encode budget alert: %w", err)
	}

	if err := p.client.Publish(ctx, budgetAlertChannel, payload).Err(); err != nil {
		return fmt.Errorf("notify: failed to publish budget alert: %w", err)
	}

	p.logger.Debug("Budget alert published",
		zap.String("account_id", accountID.String()),
		zap.String("state", alloc.State.String()))
	return nil
}

// Close releases the Redis client
func (p *RedisAlertPublisher) Close() error {
	return p.client.Close()
}

func encodeAlert(accountID uuid.UUID, alloc billing.Allocation, occurredAt time.Time) ([]byte, error) {
	return json.Marshal(budgetAlertMessage{
		AccountID:       accountID.String(),
		ClientID:        alloc.Key.ClientID,
		BranchID:        alloc.Key.BranchID,
		ProductID:       alloc.Key.ProductID,
		Currency:        string(alloc.Currency),
		BudgetLimit:     alloc.BudgetLimit,
		SpentCost:       alloc.UsageCostCurrentPeriod,
		RemainingBudget: alloc.RemainingBudget,
		State:           alloc.State.String(),
		OccurredAt:      occurredAt,
	})
}

var _ billing.AlertPublisher = (*RedisAlertPublisher)(nil)
