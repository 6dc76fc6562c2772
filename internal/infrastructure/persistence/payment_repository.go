package persistence

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/currency"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentModel is the GORM model for normalized payments
type PaymentModel struct {
	AccountID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	ID              string    `gorm:"type:varchar(255);primaryKey"`
	Status          string    `gorm:"type:varchar(20);not null"`
	Amount          int64     `gorm:"not null"`
	Currency        string    `gorm:"type:varchar(3);not null"`
	TaxAmount       int64     `gorm:"not null;default:0"`
	OccurredAt      time.Time `gorm:"not null;index"`
	Country         string    `gorm:"type:varchar(2)"`
	Region          string    `gorm:"type:varchar(10)"`
	JurisdictionTag string    `gorm:"type:varchar(20)"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (PaymentModel) TableName() string {
	return "payments"
}

// ToEntity converts the model to a domain entity
func (m *PaymentModel) ToEntity() billing.NormalizedPayment {
	return billing.NormalizedPayment{
		ID:         m.ID,
		Status:     billing.PaymentStatus(m.Status),
		Amount:     m.Amount,
		Currency:   currency.Code(m.Currency),
		TaxAmount:  m.TaxAmount,
		OccurredAt: m.OccurredAt,
		Jurisdiction: billing.JurisdictionHint{
			Country:     m.Country,
			Region:      m.Region,
			ExplicitTag: m.JurisdictionTag,
		},
	}
}

// PaymentModelFromEntity creates a model from a domain entity
func PaymentModelFromEntity(accountID uuid.UUID, e billing.NormalizedPayment) *PaymentModel {
	return &PaymentModel{
		AccountID:       accountID,
		ID:              e.ID,
		Status:          string(e.Status),
		Amount:          e.Amount,
		Currency:        string(e.Currency),
		TaxAmount:       e.TaxAmount,
		OccurredAt:      e.OccurredAt,
		Country:         e.Jurisdiction.Country,
		Region:          e.Jurisdiction.Region,
		JurisdictionTag: e.Jurisdiction.ExplicitTag,
	}
}

// PaymentRepository implements the billing.PaymentRepository interface
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Save creates or updates a normalized payment
func (r *PaymentRepository) Save(ctx context.Context, accountID uuid.UUID, payment billing.NormalizedPayment) error {
	if err := payment.Validate(); err != nil {
		return err
	}
	model := PaymentModelFromEntity(accountID, payment)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}, {Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// FindByAccount finds all payments for an account in a period
func (r *PaymentRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd time.Time) ([]billing.NormalizedPayment, error) {
	var models []PaymentModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Where("occurred_at >= ? AND occurred_at < ?", periodStart, periodEnd).
		Order("occurred_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	payments := make([]billing.NormalizedPayment, len(models))
	for i, model := range models {
		payments[i] = model.ToEntity()
	}
	return payments, nil
}

// Ensure PaymentRepository implements the interface
var _ billing.PaymentRepository = (*PaymentRepository)(nil)
