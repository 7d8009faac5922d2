package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/resumedesk/ResumeDesk/app/models"
)

// Service owns the payment transaction ledger: recording rows from webhook
// input, classifying duplicates at read time and the administrative
// currency repair.
type Service struct {
	repo Repository
}

// NewService creates a ledger service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a ledger service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// TransactionInput is the normalized shape a webhook or checkout callback
// hands to the ledger for persistence.
type TransactionInput struct {
	UserID               uint
	SubscriptionID       *uint
	Amount               decimal.Decimal
	Currency             string
	Gateway              string
	GatewayTransactionID string
	Status               string
	Details              models.PaymentDetails
}

// RecordTransaction persists one ledger row. Duplicate gateway transaction
// ids are allowed on purpose; classification happens later at read time.
func (s *Service) RecordTransaction(ctx context.Context, in TransactionInput) (*models.PaymentTransaction, error) {
	_ = ctx
	if in.UserID == 0 {
		return nil, errors.New("user_id is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if len(currency) != 3 {
		return nil, fmt.Errorf("invalid currency code %q", in.Currency)
	}
	status := strings.ToUpper(strings.TrimSpace(in.Status))
	if status == "" {
		status = models.TxStatusPending
	}

	tx := &models.PaymentTransaction{
		UserID:               in.UserID,
		SubscriptionID:       in.SubscriptionID,
		Amount:               in.Amount,
		Currency:             currency,
		Gateway:              strings.ToLower(strings.TrimSpace(in.Gateway)),
		GatewayTransactionID: strings.TrimSpace(in.GatewayTransactionID),
		Status:               status,
		Details:              in.Details,
	}
	if err := s.repo.CreateTransaction(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// ListAnnotated returns a page of transactions with derived duplicate and
// primary flags plus display-formatted amounts.
func (s *Service) ListAnnotated(ctx context.Context, offset, limit int) ([]AnnotatedTransaction, int64, error) {
	_ = ctx
	txs, err := s.repo.ListTransactions(offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountTransactions()
	if err != nil {
		return nil, 0, err
	}
	return GroupAndMarkPrimary(txs), total, nil
}

// ListAnnotatedByUser returns every transaction of one user, classified.
func (s *Service) ListAnnotatedByUser(ctx context.Context, userID uint) ([]AnnotatedTransaction, error) {
	_ = ctx
	if userID == 0 {
		return nil, errors.New("user_id is required")
	}
	txs, err := s.repo.ListTransactionsByUser(userID)
	if err != nil {
		return nil, err
	}
	return GroupAndMarkPrimary(txs), nil
}

// CorrectTransactionCurrency reclassifies the currency column of one ledger
// row to the value the operator asserts is correct. The amount is never
// touched; the previous currency and the acting admin land in the metadata.
// Reapplying the same correction is a no-op.
func (s *Service) CorrectTransactionCurrency(ctx context.Context, txID uint, correctCurrency, adminEmail string) (*models.PaymentTransaction, error) {
	_ = ctx
	if txID == 0 {
		return nil, errors.New("transaction id is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(correctCurrency))
	if len(currency) != 3 {
		return nil, fmt.Errorf("invalid currency code %q", correctCurrency)
	}

	tx, err := s.repo.GetTransaction(txID)
	if err != nil {
		return nil, err
	}

	if tx.Currency == currency {
		return tx, nil
	}

	if tx.Details.OriginalCurrency == "" {
		tx.Details.OriginalCurrency = tx.Currency
	}
	now := time.Now()
	tx.Details.CorrectedBy = strings.TrimSpace(adminEmail)
	tx.Details.CorrectedAt = &now
	tx.Details.HasCurrencyMismatch = false
	tx.Currency = currency

	if err := s.repo.SaveTransaction(tx); err != nil {
		return nil, err
	}
	return tx, nil
}
