package tax

import (
	"context"
	"fmt"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/currency"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RateSource supplies the exchange-rate snapshot for an aggregation
// run. Snapshots are refreshed by a scheduled job outside this
// service; a run always sees one consistent table.
type RateSource interface {
	Current(ctx context.Context) (*currency.RateTable, error)
}

// SummaryDTO is one jurisdiction row of a tax report, with the
// display-formatted amount attached for the dashboard layer
type SummaryDTO struct {
	Jurisdiction     string          `json:"jurisdiction"`
	Country          string          `json:"country"`
	Region           string          `json:"region,omitempty"`
	TaxCollected     int64           `json:"tax_collected"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	TransactionCount int64           `json:"transaction_count"`
	Currency         string          `json:"currency"`
	Formatted        string          `json:"formatted"`
}

// ReportDTO is a full tax report for one account and period
type ReportDTO struct {
	AccountID         uuid.UUID    `json:"account_id"`
	PeriodStart       time.Time    `json:"period_start"`
	PeriodEnd         time.Time    `json:"period_end"`
	Summaries         []SummaryDTO `json:"summaries"`
	ReportingCurrency string       `json:"reporting_currency"`
	TotalCollected    int64        `json:"total_collected"`
	TotalFormatted    string       `json:"total_formatted"`
}

// ReportService builds jurisdiction tax reports from normalized
// billing records
type ReportService struct {
	invoiceRepo billing.InvoiceRepository
	paymentRepo billing.PaymentRepository
	rateSource  RateSource
	logger      *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	rateSource RateSource,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		rateSource:  rateSource,
		logger:      logger,
	}
}

// GenerateReport aggregates an account's invoices and payments for a
// period into per-jurisdiction tax summaries, converting the grand
// total into the reporting currency.
//
// Aggregation failures propagate as-is: the dashboard must show a
// retryable error state rather than partial figures.
func (s *ReportService) GenerateReport(
	ctx context.Context,
	accountID uuid.UUID,
	periodStart, periodEnd time.Time,
	cfg tax.EngineConfig,
	reportingCurrency currency.Code,
) (*ReportDTO, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account ID cannot be empty")
	}

	s.logger.Debug("Generating tax report",
		zap.String("account_id", accountID.String()),
		zap.Time("period_start", periodStart),
		zap.Time("period_end", periodEnd))

	invoices, err := s.invoiceRepo.FindByAccount(ctx, accountID, periodStart, periodEnd)
	if err != nil {
		s.logger.Error("Failed to load invoices", zap.Error(err))
		return nil, err
	}
	payments, err := s.paymentRepo.FindByAccount(ctx, accountID, periodStart, periodEnd)
	if err != nil {
		s.logger.Error("Failed to load payments", zap.Error(err))
		return nil, err
	}

	summaries, err := tax.CalculateSummaries(invoices, payments, cfg)
	if err != nil {
		s.logger.Error("Tax aggregation failed",
			zap.String("account_id", accountID.String()),
			zap.Error(err))
		return nil, err
	}

	rates, err := s.rateSource.Current(ctx)
	if err != nil {
		s.logger.Error("Failed to load exchange rates", zap.Error(err))
		return nil, err
	}

	report := &ReportDTO{
		AccountID:         accountID,
		PeriodStart:       periodStart,
		PeriodEnd:         periodEnd,
		Summaries:         make([]SummaryDTO, 0, len(summaries)),
		ReportingCurrency: string(reportingCurrency),
	}

	for _, summary := range summaries {
		report.Summaries = append(report.Summaries, SummaryDTO{
			Jurisdiction:     summary.Jurisdiction,
			Country:          summary.Country,
			Region:           summary.Region,
			TaxCollected:     summary.TaxCollected,
			TaxRate:          summary.TaxRate,
			TransactionCount: summary.TransactionCount,
			Currency:         string(summary.Currency),
			Formatted:        displayAmount(summary.TaxCollected, summary.Currency),
		})

		converted, err := rates.Convert(summary.TaxCollected, summary.Currency, reportingCurrency)
		if err != nil {
			// Summaries can carry currency codes the rate table has
			// never seen; the core refuses to guess, so the report
			// surfaces the conversion failure instead of a wrong total.
			s.logger.Error("Cannot convert summary to reporting currency",
				zap.String("jurisdiction", summary.Jurisdiction),
				zap.String("currency", string(summary.Currency)),
				zap.Error(err))
			return nil, err
		}
		report.TotalCollected += converted
	}

	report.TotalFormatted = displayAmount(report.TotalCollected, reportingCurrency)

	s.logger.Info("Tax report generated",
		zap.String("account_id", accountID.String()),
		zap.Int("jurisdictions", len(report.Summaries)),
		zap.Int64("total_collected", report.TotalCollected))

	return report, nil
}

// displayAmount formats an amount for display, falling back to the
// raw code for currencies outside the supported symbol set. The
// fallback lives here, not in the core: the conversion unit refuses
// to guess symbols.
func displayAmount(amount int64, code currency.Code) string {
	formatted, err := currency.FormatAmount(amount, code)
	if err != nil {
		major := decimal.NewFromInt(amount).Div(decimal.NewFromInt(currency.MinorUnitDivisor))
		return fmt.Sprintf("%s %s", code, major.StringFixed(2))
	}
	return formatted
}
