package persistence

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/currency"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UsageRecordModel is the GORM model for usage records. Records are
// append-only; corrections are new rows.
type UsageRecordModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID  uuid.UUID `gorm:"type:uuid;index;not null"`
	ClientID   string    `gorm:"type:varchar(255);index"`
	BranchID   string    `gorm:"type:varchar(255)"`
	ProductID  string    `gorm:"type:varchar(255)"`
	OccurredAt time.Time `gorm:"not null;index"`
	Quantity   int64     `gorm:"not null"`
	Cost       int64     `gorm:"not null;default:0"`
	Currency   string    `gorm:"type:varchar(3);not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for the model
func (UsageRecordModel) TableName() string {
	return "usage_records"
}

// ToEntity converts the model to a domain entity
func (m *UsageRecordModel) ToEntity() billing.UsageRecord {
	return billing.UsageRecord{
		AccountID: m.AccountID,
		Allocation: billing.AllocationKey{
			ClientID:  m.ClientID,
			BranchID:  m.BranchID,
			ProductID: m.ProductID,
		},
		OccurredAt: m.OccurredAt,
		Quantity:   m.Quantity,
		Cost:       m.Cost,
		Currency:   currency.Code(m.Currency),
	}
}

// UsageRecordModelFromEntity creates a model from a domain entity
func UsageRecordModelFromEntity(e billing.UsageRecord) *UsageRecordModel {
	return &UsageRecordModel{
		ID:         uuid.New(),
		AccountID:  e.AccountID,
		ClientID:   e.Allocation.ClientID,
		BranchID:   e.Allocation.BranchID,
		ProductID:  e.Allocation.ProductID,
		OccurredAt: e.OccurredAt,
		Quantity:   e.Quantity,
		Cost:       e.Cost,
		Currency:   string(e.Currency),
	}
}

// UsageRecordRepository implements the billing.UsageRecordRepository interface
type UsageRecordRepository struct {
	db *gorm.DB
}

// NewUsageRecordRepository creates a new usage record repository
func NewUsageRecordRepository(db *gorm.DB) *UsageRecordRepository {
	return &UsageRecordRepository{db: db}
}

// Save persists a usage record
func (r *UsageRecordRepository) Save(ctx context.Context, record billing.UsageRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	model := UsageRecordModelFromEntity(record)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByAccount retrieves the full usage history for an account
func (r *UsageRecordRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]billing.UsageRecord, error) {
	var models []UsageRecordModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("occurred_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toUsageRecords(models), nil
}

// FindByAccountInPeriod finds usage records for an account within a period
func (r *UsageRecordRepository) FindByAccountInPeriod(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd time.Time) ([]billing.UsageRecord, error) {
	var models []UsageRecordModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Where("occurred_at >= ? AND occurred_at < ?", periodStart, periodEnd).
		Order("occurred_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toUsageRecords(models), nil
}

// FindByAllocation finds usage records for one allocation scope within a
// period. Empty key fields match only rows with that field unset, so a
// client-level scope does not absorb branch-level records.
func (r *UsageRecordRepository) FindByAllocation(ctx context.Context, accountID uuid.UUID, key billing.AllocationKey, periodStart, periodEnd time.Time) ([]billing.UsageRecord, error) {
	var models []UsageRecordModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Where("client_id = ?", key.ClientID).
		Where("branch_id = ?", key.BranchID).
		Where("product_id = ?", key.ProductID).
		Where("occurred_at >= ? AND occurred_at < ?", periodStart, periodEnd).
		Order("occurred_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toUsageRecords(models), nil
}

func toUsageRecords(models []UsageRecordModel) []billing.UsageRecord {
	records := make([]billing.UsageRecord, len(models))
	for i, model := range models {
		records[i] = model.ToEntity()
	}
	return records
}

// Ensure UsageRecordRepository implements the interface
var _ billing.UsageRecordRepository = (*UsageRecordRepository)(nil)
