package tax

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumedesk/ResumeDesk/app/models"
)

type fakeRepo struct {
	settings   []models.TaxSetting
	invoices   []models.Invoice
	nextID     uint
	deleteErr  error
	failCreate map[string]error // keyed by tax type
	saved      int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, failCreate: map[string]error{}}
}

func (f *fakeRepo) ListSettings() ([]models.TaxSetting, error) { return f.settings, nil }

func (f *fakeRepo) ListEnabledSettings() ([]models.TaxSetting, error) {
	var enabled []models.TaxSetting
	for _, ts := range f.settings {
		if ts.Enabled {
			enabled = append(enabled, ts)
		}
	}
	return enabled, nil
}

func (f *fakeRepo) GetSetting(id uint) (*models.TaxSetting, error) {
	for i := range f.settings {
		if f.settings[i].ID == id {
			return &f.settings[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeRepo) CreateSetting(ts *models.TaxSetting) error {
	if err := f.failCreate[ts.Type]; err != nil {
		return err
	}
	ts.ID = f.nextID
	f.nextID++
	f.settings = append(f.settings, *ts)
	return nil
}

func (f *fakeRepo) UpdateSetting(ts *models.TaxSetting) error {
	for i := range f.settings {
		if f.settings[i].ID == ts.ID {
			f.settings[i] = *ts
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeRepo) DeleteSetting(id uint) error {
	for i := range f.settings {
		if f.settings[i].ID == id {
			f.settings = append(f.settings[:i], f.settings[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeRepo) DeleteAllSettings() (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	n := int64(len(f.settings))
	f.settings = nil
	return n, nil
}

func (f *fakeRepo) ListInvoicesByCurrency(currency string) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, inv := range f.invoices {
		if inv.Currency == currency {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeRepo) SaveInvoice(inv *models.Invoice) error {
	for i := range f.invoices {
		if f.invoices[i].ID == inv.ID {
			f.invoices[i] = *inv
			f.saved++
			return nil
		}
	}
	return errors.New("not found")
}

func TestCreateDefaultIndiaGST_ReplacesEverything(t *testing.T) {
	repo := newFakeRepo()
	repo.settings = []models.TaxSetting{
		{ID: 90, Name: "Old VAT", Type: models.TaxTypeGST, Percentage: decimal.NewFromInt(15), Country: "IN", Enabled: true, ApplyToRegion: models.RegionIndia, ApplyCurrency: models.CurrencyINR},
		{ID: 91, Name: "US Sales", Type: models.TaxTypeGST, Percentage: decimal.NewFromInt(7), Country: "US", Enabled: true, ApplyToRegion: models.RegionGlobal, ApplyCurrency: models.CurrencyUSD},
	}
	svc := NewService(repo)

	result, err := svc.CreateDefaultIndiaGST(context.Background(), "Karnataka")
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.Deleted)
	assert.Equal(t, 4, result.Created)
	assert.Equal(t, 0, result.Failed)

	require.Len(t, repo.settings, 4)
	for _, ts := range repo.settings {
		assert.Equal(t, "IN", ts.Country)
		assert.True(t, ts.Enabled)
	}
}

func TestCreateDefaultIndiaGST_RequiresSellerState(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.CreateDefaultIndiaGST(context.Background(), "  ")
	require.Error(t, err)
}

func TestCreateDefaultIndiaGST_PartialFailureContinues(t *testing.T) {
	repo := newFakeRepo()
	repo.failCreate[models.TaxTypeSGST] = errors.New("insert blew up")
	svc := NewService(repo)

	result, err := svc.CreateDefaultIndiaGST(context.Background(), "Karnataka")

	// The loop keeps going past the failed row and the caller gets counts.
	require.Error(t, err)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], models.TaxTypeSGST)

	// IGST comes after SGST in the default order and must still exist.
	var haveIGST bool
	for _, ts := range repo.settings {
		if ts.Type == models.TaxTypeIGST {
			haveIGST = true
		}
	}
	assert.True(t, haveIGST)
}

func TestCreateDefaultIndiaGST_DeleteFailureAborts(t *testing.T) {
	repo := newFakeRepo()
	repo.deleteErr = errors.New("table locked")
	svc := NewService(repo)

	result, err := svc.CreateDefaultIndiaGST(context.Background(), "Karnataka")
	require.Error(t, err)
	assert.Equal(t, 0, result.Created)
}

func inclusiveInvoice(id uint, total, tax string, rate int) models.Invoice {
	return models.Invoice{
		ID:             id,
		InvoiceNumber:  models.FormatInvoiceNumber(2026, id),
		Subtotal:       decimal.RequireFromString(total).Sub(decimal.RequireFromString(tax)),
		TaxAmount:      decimal.RequireFromString(tax),
		Total:          decimal.RequireFromString(total),
		Currency:       models.CurrencyINR,
		BillingCountry: "IN",
		BillingState:   "Karnataka",
		TaxDetails: models.TaxDetails{
			TaxPercentage: decimal.NewFromInt(int64(rate)),
			TaxBreakdown:  []models.TaxLine{{Type: models.TaxTypeGST, Percentage: decimal.NewFromInt(int64(rate)), Amount: decimal.RequireFromString(tax)}},
		},
		Items: models.InvoiceItems{{Description: "Pro plan", Quantity: 1, UnitPrice: decimal.RequireFromString(total), Total: decimal.RequireFromString(total)}},
	}
}

func TestRecalculateInvoiceInclusive_PreservesTotal(t *testing.T) {
	// Historical bug shape: the exclusive formula was applied to the
	// tax-inclusive 1180 total, storing 212.40 tax instead of 180.
	inv := inclusiveInvoice(1, "1180", "212.40", 18)

	err := RecalculateInvoiceInclusive(&inv, decimal.NewFromInt(18))
	require.NoError(t, err)

	assert.True(t, inv.Total.Equal(decimal.NewFromInt(1180)), "total must never change")
	assert.True(t, inv.TaxAmount.Equal(decimal.NewFromInt(180)), "tax = %s", inv.TaxAmount)
	assert.True(t, inv.Subtotal.Equal(decimal.NewFromInt(1000)), "subtotal = %s", inv.Subtotal)
	assert.True(t, inv.Subtotal.Add(inv.TaxAmount).Equal(inv.Total))

	// Item keeps its gross total but gets the net unit price.
	require.Len(t, inv.Items, 1)
	assert.True(t, inv.Items[0].Total.Equal(decimal.NewFromInt(1180)))
	assert.True(t, inv.Items[0].UnitPrice.Equal(decimal.NewFromInt(1000)), "unit price = %s", inv.Items[0].UnitPrice)
}

func TestRecalculateInvoiceInclusive_Idempotent(t *testing.T) {
	inv := inclusiveInvoice(2, "1180", "212.40", 18)

	require.NoError(t, RecalculateInvoiceInclusive(&inv, decimal.NewFromInt(18)))
	firstTax := inv.TaxAmount
	firstSubtotal := inv.Subtotal
	firstUnit := inv.Items[0].UnitPrice

	require.NoError(t, RecalculateInvoiceInclusive(&inv, decimal.NewFromInt(18)))

	assert.True(t, inv.TaxAmount.Equal(firstTax))
	assert.True(t, inv.Subtotal.Equal(firstSubtotal))
	assert.True(t, inv.Items[0].UnitPrice.Equal(firstUnit))
}

func TestFixInvoicesByCurrency_Counts(t *testing.T) {
	repo := newFakeRepo()
	repo.invoices = []models.Invoice{
		inclusiveInvoice(1, "1180", "212.40", 18), // broken, needs fix
		inclusiveInvoice(2, "1180", "180", 18),    // already correct, skipped
		inclusiveInvoice(3, "500", "0", 0),        // no rate anywhere, skipped
	}
	// USD invoice outside the target currency, must be untouched.
	repo.invoices = append(repo.invoices, models.Invoice{ID: 4, Currency: models.CurrencyUSD, Total: decimal.NewFromInt(12)})

	svc := NewService(repo)
	result, err := svc.FixInvoicesByCurrency(context.Background(), models.CurrencyINR)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Fixed)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 1, repo.saved)

	fixed := repo.invoices[0]
	assert.True(t, fixed.TaxAmount.Equal(decimal.NewFromInt(180)))
	assert.True(t, fixed.Total.Equal(decimal.NewFromInt(1180)))
}

func TestComputeForSale_InclusiveIntraState(t *testing.T) {
	repo := newFakeRepo()
	for _, ts := range DefaultIndiaGST("Karnataka") {
		ts := ts
		require.NoError(t, repo.CreateSetting(&ts))
	}
	svc := NewService(repo)

	b, err := svc.ComputeForSale(context.Background(), decimal.NewFromInt(1180), "IN", "Karnataka", models.RegionIndia, models.CurrencyINR, true)
	require.NoError(t, err)

	// Intra-state: CGST+SGST split, 18% effective.
	assert.True(t, b.EffectiveRate.Equal(decimal.NewFromInt(18)))
	assert.True(t, b.TaxAmount.Equal(decimal.NewFromInt(180)))
	assert.True(t, b.Subtotal.Equal(decimal.NewFromInt(1000)))
	assert.Len(t, b.Lines, 2)
}

func TestSaveSetting_RejectsNegativePercentage(t *testing.T) {
	svc := NewService(newFakeRepo())

	ts := &models.TaxSetting{Name: "Broken", Type: models.TaxTypeGST, Percentage: decimal.NewFromInt(-1), Country: "IN", ApplyToRegion: models.RegionIndia, ApplyCurrency: models.CurrencyINR}
	err := svc.SaveSetting(context.Background(), ts)
	require.Error(t, err)
}
