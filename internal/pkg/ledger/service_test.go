package ledger

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
	txs    []models.PaymentTransaction
	nextID uint
	saves  int
}

func newFakeRepo() *fakeRepo { return &fakeRepo{nextID: 1} }

func (f *fakeRepo) CreateTransaction(tx *models.PaymentTransaction) error {
	tx.ID = f.nextID
	f.nextID++
	f.txs = append(f.txs, *tx)
	return nil
}

func (f *fakeRepo) GetTransaction(id uint) (*models.PaymentTransaction, error) {
	for i := range f.txs {
		if f.txs[i].ID == id {
			cp := f.txs[i]
			return &cp, nil
		}
	}
	return nil, errors.New("record not found")
}

func (f *fakeRepo) SaveTransaction(tx *models.PaymentTransaction) error {
	for i := range f.txs {
		if f.txs[i].ID == tx.ID {
			f.txs[i] = *tx
			f.saves++
			return nil
		}
	}
	return errors.New("record not found")
}

func (f *fakeRepo) ListTransactions(offset, limit int) ([]models.PaymentTransaction, error) {
	return f.txs, nil
}

func (f *fakeRepo) ListTransactionsByUser(userID uint) ([]models.PaymentTransaction, error) {
	var out []models.PaymentTransaction
	for _, tx := range f.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountTransactions() (int64, error) { return int64(len(f.txs)), nil }

func (f *fakeRepo) FindByGatewayTransactionID(gatewayTxID string) ([]models.PaymentTransaction, error) {
	var out []models.PaymentTransaction
	for _, tx := range f.txs {
		if tx.GatewayTransactionID == gatewayTxID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func TestRecordTransaction_NormalizesInput(t *testing.T) {
	svc := NewService(newFakeRepo())

	tx, err := svc.RecordTransaction(context.Background(), TransactionInput{
		UserID:               7,
		Amount:               decimal.NewFromInt(500),
		Currency:             " inr ",
		Gateway:              "Stripe",
		GatewayTransactionID: " pay_123 ",
	})
	require.NoError(t, err)

	assert.Equal(t, "INR", tx.Currency)
	assert.Equal(t, "stripe", tx.Gateway)
	assert.Equal(t, "pay_123", tx.GatewayTransactionID)
	assert.Equal(t, models.TxStatusPending, tx.Status)
}

func TestRecordTransaction_RejectsBadCurrency(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.RecordTransaction(context.Background(), TransactionInput{
		UserID:   7,
		Amount:   decimal.NewFromInt(5),
		Currency: "RUPEES",
	})
	require.Error(t, err)
}

func TestCorrectTransactionCurrency_RewritesOnlyCurrency(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.RecordTransaction(context.Background(), TransactionInput{
		UserID:               7,
		Amount:               decimal.RequireFromString("6.20"),
		Currency:             "USD",
		Gateway:              "stripe",
		GatewayTransactionID: "pay_mismatch",
		Status:               models.TxStatusCompleted,
		Details:              models.PaymentDetails{ExpectedCurrency: "INR", HasCurrencyMismatch: true},
	})
	require.NoError(t, err)

	fixed, err := svc.CorrectTransactionCurrency(context.Background(), created.ID, "INR", "ops@resumedesk.app")
	require.NoError(t, err)

	assert.Equal(t, "INR", fixed.Currency)
	assert.True(t, fixed.Amount.Equal(decimal.RequireFromString("6.20")), "amount must stay untouched")
	assert.Equal(t, "USD", fixed.Details.OriginalCurrency)
	assert.Equal(t, "ops@resumedesk.app", fixed.Details.CorrectedBy)
	assert.NotNil(t, fixed.Details.CorrectedAt)
	assert.False(t, fixed.Details.HasCurrencyMismatch)
}

func TestCorrectTransactionCurrency_Idempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.RecordTransaction(context.Background(), TransactionInput{
		UserID:   7,
		Amount:   decimal.NewFromInt(500),
		Currency: "USD",
		Details:  models.PaymentDetails{ExpectedCurrency: "INR"},
	})
	require.NoError(t, err)

	first, err := svc.CorrectTransactionCurrency(context.Background(), created.ID, "INR", "ops@resumedesk.app")
	require.NoError(t, err)
	savesAfterFirst := repo.saves

	second, err := svc.CorrectTransactionCurrency(context.Background(), created.ID, "INR", "someone-else@resumedesk.app")
	require.NoError(t, err)

	// Second application is a no-op: same state, no extra write, the
	// original audit trail survives.
	assert.Equal(t, savesAfterFirst, repo.saves)
	assert.Equal(t, first.Currency, second.Currency)
	assert.Equal(t, "USD", second.Details.OriginalCurrency)
	assert.Equal(t, "ops@resumedesk.app", second.Details.CorrectedBy)
}

func TestCorrectTransactionCurrency_RejectsBadInput(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.CorrectTransactionCurrency(context.Background(), 0, "INR", "a@b.c")
	require.Error(t, err)

	_, err = svc.CorrectTransactionCurrency(context.Background(), 1, "IN", "a@b.c")
	require.Error(t, err)
}

func TestListAnnotatedByUser_ClassifiesDuplicates(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.RecordTransaction(context.Background(), TransactionInput{
		UserID: 7, Amount: decimal.Zero, Currency: "USD",
		GatewayTransactionID: "pay_123", Status: models.TxStatusCompleted,
		Details: models.PaymentDetails{ExpectedCurrency: "INR"},
	})
	require.NoError(t, err)
	_, err = svc.RecordTransaction(context.Background(), TransactionInput{
		UserID: 7, Amount: decimal.NewFromInt(500), Currency: "INR",
		GatewayTransactionID: "pay_123", Status: models.TxStatusCompleted,
		Details: models.PaymentDetails{ExpectedCurrency: "INR"},
	})
	require.NoError(t, err)

	out, err := svc.ListAnnotatedByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, out, 2)

	primary := findByID(t, out, 2)
	duplicate := findByID(t, out, 1)
	assert.True(t, primary.IsPrimary)
	assert.True(t, duplicate.IsDuplicate)
	assert.Equal(t, "₹500.00", primary.DisplayAmount)
	assert.Equal(t, "$0.00", duplicate.DisplayAmount)
}
