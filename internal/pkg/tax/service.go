package tax

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/resumedesk/ResumeDesk/app/models"
)

// Service wraps tax configuration management and the invoice correction
// paths around the pure calculator.
type Service struct {
	repo Repository
}

// NewService creates a tax service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a tax service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// BatchResult reports the outcome of a loop of independent row operations.
// The loops never abort on a single failure; callers must inspect the counts
// instead of assuming atomicity.
type BatchResult struct {
	Deleted int64    `json:"deleted"`
	Created int      `json:"created"`
	Fixed   int      `json:"fixed"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// ComputeForSale runs the conventional tax selection and exclusive/inclusive
// computation for a sale amount. For inclusive pricing the amount is the
// gross total, otherwise the net subtotal.
func (s *Service) ComputeForSale(ctx context.Context, amount decimal.Decimal, country, state, region, currency string, inclusive bool) (Breakdown, error) {
	_ = ctx
	settings, err := s.repo.ListEnabledSettings()
	if err != nil {
		return Breakdown{}, err
	}
	selected := SelectForSale(settings, country, state, region, currency)
	if inclusive {
		return ComputeInclusive(amount, country, state, region, currency, selected), nil
	}
	return ComputeExclusive(amount, country, state, region, currency, selected), nil
}

// ListSettings returns all tax settings ordered by id.
func (s *Service) ListSettings(ctx context.Context) ([]models.TaxSetting, error) {
	_ = ctx
	return s.repo.ListSettings()
}

// SaveSetting validates and persists a tax setting, creating or updating.
func (s *Service) SaveSetting(ctx context.Context, ts *models.TaxSetting) error {
	_ = ctx
	ts.Type = strings.ToUpper(strings.TrimSpace(ts.Type))
	ts.Country = strings.ToUpper(strings.TrimSpace(ts.Country))
	if err := ts.Validate(); err != nil {
		return err
	}
	if ts.Percentage.IsNegative() {
		return errors.New("tax percentage must not be negative")
	}
	if ts.ID == 0 {
		return s.repo.CreateSetting(ts)
	}
	return s.repo.UpdateSetting(ts)
}

// DeleteSetting removes a tax setting.
func (s *Service) DeleteSetting(ctx context.Context, id uint) error {
	_ = ctx
	if id == 0 {
		return errors.New("tax setting id is required")
	}
	return s.repo.DeleteSetting(id)
}

// CreateDefaultIndiaGST wipes all existing tax settings and inserts the
// standard four Indian GST rows scoped to the seller state. The delete and
// the four inserts run as independent statements: a failure mid-sequence is
// logged, counted and left behind as a mixed state for the operator to
// resolve, never silently retried.
func (s *Service) CreateDefaultIndiaGST(ctx context.Context, sellerState string) (BatchResult, error) {
	_ = ctx
	var result BatchResult

	state := strings.TrimSpace(sellerState)
	if state == "" {
		return result, errors.New("seller state is required for the CGST/SGST split")
	}

	deleted, err := s.repo.DeleteAllSettings()
	result.Deleted = deleted
	if err != nil {
		return result, fmt.Errorf("failed to clear existing tax settings: %w", err)
	}

	for _, ts := range DefaultIndiaGST(state) {
		ts := ts
		if err := s.repo.CreateSetting(&ts); err != nil {
			log.Printf("[Tax] failed to create default %s setting: %v", ts.Type, err)
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", ts.Type, err))
			continue
		}
		result.Created++
	}

	if result.Failed > 0 {
		return result, fmt.Errorf("default GST creation finished with %d of 4 rows failed", result.Failed)
	}
	return result, nil
}

// RecalculateInvoiceInclusive re-derives subtotal, tax amount, tax breakdown
// and item unit prices from the invoice's authoritative total, treating the
// total as tax-inclusive. The total itself is never touched. Re-running the
// correction on an already-fixed invoice yields the same values.
func RecalculateInvoiceInclusive(inv *models.Invoice, rate decimal.Decimal) error {
	if inv == nil {
		return errors.New("invoice is required")
	}
	if rate.IsNegative() {
		return errors.New("tax rate must not be negative")
	}

	b := InclusiveFromRate(inv.Total, rate, inv.TaxDetails.TaxBreakdown)

	inv.TaxAmount = b.TaxAmount.Round(2)
	// Derive the subtotal from the rounded tax so the three columns always
	// add up exactly.
	inv.Subtotal = inv.Total.Sub(inv.TaxAmount)
	inv.TaxDetails = b.Details()

	for i := range inv.Items {
		item := &inv.Items[i]
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		netTotal := item.Total.Sub(InclusiveTax(item.Total, rate).Round(2))
		item.UnitPrice = netTotal.Div(decimal.NewFromInt(int64(qty))).Round(2)
	}
	return nil
}

// FixInvoicesByCurrency walks every invoice in the given currency and
// reapplies the inclusive back-computation. Invoices whose stored breakdown
// carries no rate fall back to the current effective rate for that sale.
// Each invoice is fixed independently; failures are logged and counted.
func (s *Service) FixInvoicesByCurrency(ctx context.Context, currency string) (BatchResult, error) {
	var result BatchResult

	invoices, err := s.repo.ListInvoicesByCurrency(currency)
	if err != nil {
		return result, err
	}
	settings, err := s.repo.ListEnabledSettings()
	if err != nil {
		return result, err
	}

	for i := range invoices {
		inv := &invoices[i]

		rate := inv.TaxDetails.TaxPercentage
		if rate.IsZero() {
			region := models.RegionForCountry(inv.BillingCountry)
			rate = EffectiveRate(SelectForSale(settings, inv.BillingCountry, inv.BillingState, region, currency))
		}
		if rate.IsZero() {
			result.Skipped++
			continue
		}

		before := inv.TaxAmount
		if err := RecalculateInvoiceInclusive(inv, rate); err != nil {
			log.Printf("[Tax] invoice %s: recalculation failed: %v", inv.InvoiceNumber, err)
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", inv.InvoiceNumber, err))
			continue
		}
		if inv.TaxAmount.Equal(before) {
			result.Skipped++
			continue
		}

		if err := s.repo.SaveInvoice(inv); err != nil {
			log.Printf("[Tax] invoice %s: save failed: %v", inv.InvoiceNumber, err)
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", inv.InvoiceNumber, err))
			continue
		}
		result.Fixed++

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
	}

	return result, nil
}
