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

// InvoiceModel is the GORM model for normalized invoices. The primary
// key is the provider invoice ID scoped to the owning account, so
// replayed webhook deliveries overwrite instead of duplicating.
type InvoiceModel struct {
	AccountID       uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ID              string     `gorm:"type:varchar(255);primaryKey"`
	Status          string     `gorm:"type:varchar(20);not null"`
	Amount          int64      `gorm:"not null"`
	Currency        string     `gorm:"type:varchar(3);not null"`
	TaxAmount       int64      `gorm:"not null;default:0"`
	PaidAt          *time.Time `gorm:"index"`
	Country         string     `gorm:"type:varchar(2)"`
	Region          string     `gorm:"type:varchar(10)"`
	JurisdictionTag string     `gorm:"type:varchar(20)"`
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToEntity converts the model to a domain entity
func (m *InvoiceModel) ToEntity() billing.NormalizedInvoice {
	return billing.NormalizedInvoice{
		ID:        m.ID,
		Status:    billing.InvoiceStatus(m.Status),
		Amount:    m.Amount,
		Currency:  currency.Code(m.Currency),
		TaxAmount: m.TaxAmount,
		PaidAt:    m.PaidAt,
		Jurisdiction: billing.JurisdictionHint{
			Country:     m.Country,
			Region:      m.Region,
			ExplicitTag: m.JurisdictionTag,
		},
	}
}

// InvoiceModelFromEntity creates a model from a domain entity
func InvoiceModelFromEntity(accountID uuid.UUID, e billing.NormalizedInvoice) *InvoiceModel {
	return &InvoiceModel{
		AccountID:       accountID,
		ID:              e.ID,
		Status:          string(e.Status),
		Amount:          e.Amount,
		Currency:        string(e.Currency),
		TaxAmount:       e.TaxAmount,
		PaidAt:          e.PaidAt,
		Country:         e.Jurisdiction.Country,
		Region:          e.Jurisdiction.Region,
		JurisdictionTag: e.Jurisdiction.ExplicitTag,
	}
}

// InvoiceRepository implements the billing.InvoiceRepository interface
type InvoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Save creates or updates a normalized invoice
func (r *InvoiceRepository) Save(ctx context.Context, accountID uuid.UUID, invoice billing.NormalizedInvoice) error {
	if err := invoice.Validate(); err != nil {
		return err
	}
	model := InvoiceModelFromEntity(accountID, invoice)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}, {Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// FindByAccount finds all invoices for an account in a period. An
// invoice belongs to the period it was settled in; unsettled invoices
// are matched on creation time so aggregation can still reject or skip
// them by status.
func (r *InvoiceRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd time.Time) ([]billing.NormalizedInvoice, error) {
	var models []InvoiceModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Where(r.db.Where("paid_at >= ? AND paid_at < ?", periodStart, periodEnd).
			Or("paid_at IS NULL AND created_at >= ? AND created_at < ?", periodStart, periodEnd)).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	invoices := make([]billing.NormalizedInvoice, len(models))
	for i, model := range models {
		invoices[i] = model.ToEntity()
	}
	return invoices, nil
}

// Ensure InvoiceRepository implements the interface
var _ billing.InvoiceRepository = (*InvoiceRepository)(nil)
