package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/currency"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// UsageRecordModelSQLite is a SQLite-compatible version of UsageRecordModel for testing
type UsageRecordModelSQLite struct {
	ID         string    `gorm:"primaryKey"`
	AccountID  string    `gorm:"index;not null"`
	ClientID   string    `gorm:"index"`
	BranchID   string
	ProductID  string
	OccurredAt time.Time `gorm:"not null"`
	Quantity   int64     `gorm:"not null"`
	Cost       int64     `gorm:"not null;default:0"`
	Currency   string    `gorm:"not null"`
	CreatedAt  time.Time
}

func (UsageRecordModelSQLite) TableName() string {
	return "usage_records"
}

func setupUsageRecordTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&UsageRecordModelSQLite{})
	require.NoError(t, err)

	return db
}

func testUsageRecord(accountID uuid.UUID, key billing.AllocationKey, occurredAt time.Time, quantity, cost int64) billing.UsageRecord {
	return billing.UsageRecord{
		AccountID:  accountID,
		Allocation: key,
		OccurredAt: occurredAt,
		Quantity:   quantity,
		Cost:       cost,
		Currency:   currency.USD,
	}
}

func TestUsageRecordRepository_Save(t *testing.T) {
	db := setupUsageRecordTestDB(t)
	repo := NewUsageRecordRepository(db)
	ctx := context.Background()

	t.Run("saves usage record", func(t *testing.T) {
		accountID := uuid.New()
		occurredAt := time.Date(2026, 8, 19, 12, 0, 0, 0, time.UTC)
		record := testUsageRecord(accountID, billing.AllocationKey{ClientID: "client-1"}, occurredAt, 42, 4200)

		err := repo.Save(ctx, record)
		require.NoError(t, err)

		found, err := repo.FindByAccount(ctx, accountID)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, accountID, found[0].AccountID)
		assert.Equal(t, "client-1", found[0].Allocation.ClientID)
		assert.Equal(t, int64(42), found[0].Quantity)
		assert.Equal(t, int64(4200), found[0].Cost)
		assert.Equal(t, currency.USD, found[0].Currency)
	})

	t.Run("identical records are kept as separate rows", func(t *testing.T) {
		accountID := uuid.New()
		occurredAt := time.Date(2026, 8, 19, 12, 0, 0, 0, time.UTC)
		record := testUsageRecord(accountID, billing.AllocationKey{}, occurredAt, 1, 100)

		require.NoError(t, repo.Save(ctx, record))
		require.NoError(t, repo.Save(ctx, record))

		found, err := repo.FindByAccount(ctx, accountID)
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("rejects malformed record", func(t *testing.T) {
		record := testUsageRecord(uuid.New(), billing.AllocationKey{}, time.Now(), -1, 0)

		err := repo.Save(ctx, record)
		require.Error(t, err)
	})
}

func TestUsageRecordRepository_FindByAccountInPeriod(t *testing.T) {
	db := setupUsageRecordTestDB(t)
	repo := NewUsageRecordRepository(db)
	ctx := context.Background()

	periodStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("period bounds are start-inclusive end-exclusive", func(t *testing.T) {
		accountID := uuid.New()
		key := billing.AllocationKey{}

		require.NoError(t, repo.Save(ctx, testUsageRecord(accountID, key, periodStart, 1, 100)))
		require.NoError(t, repo.Save(ctx, testUsageRecord(accountID, key, periodEnd.Add(-time.Second), 2, 200)))
		require.NoError(t, repo.Save(ctx, testUsageRecord(accountID, key, periodEnd, 4, 400)))

		found, err := repo.FindByAccountInPeriod(ctx, accountID, periodStart, periodEnd)
		require.NoError(t, err)
		require.Len(t, found, 2)

		var total int64
		for _, record := range found {
			total += record.Quantity
		}
		assert.Equal(t, int64(3), total)
	})
}

func TestUsageRecordRepository_FindByAllocation(t *testing.T) {
	db := setupUsageRecordTestDB(t)
	repo := NewUsageRecordRepository(db)
	ctx := context.Background()

	periodStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("matches the exact allocation scope", func(t *testing.T) {
		accountID := uuid.New()
		occurredAt := periodStart.AddDate(0, 0, 5)

		clientOnly := billing.AllocationKey{ClientID: "client-1"}
		clientBranch := billing.AllocationKey{ClientID: "client-1", BranchID: "branch-1"}

		require.NoError(t, repo.Save(ctx, testUsageRecord(accountID, clientOnly, occurredAt, 10, 1000)))
		require.NoError(t, repo.Save(ctx, testUsageRecord(accountID, clientBranch, occurredAt, 20, 2000)))

		found, err := repo.FindByAllocation(ctx, accountID, clientOnly, periodStart, periodEnd)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, int64(10), found[0].Quantity)
	})

	t.Run("respects the period window", func(t *testing.T) {
		accountID := uuid.New()
		key := billing.AllocationKey{ClientID: "client-2"}

		require.NoError(t, repo.Save(ctx, testUsageRecord(accountID, key, periodStart.AddDate(0, -1, 0), 5, 500)))
		require.NoError(t, repo.Save(ctx, testUsageRecord(accountID, key, periodStart.AddDate(0, 0, 1), 7, 700)))

		found, err := repo.FindByAllocation(ctx, accountID, key, periodStart, periodEnd)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, int64(7), found[0].Quantity)
	})
}
