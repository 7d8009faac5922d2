package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TxStatusPending   = "PENDING"
	TxStatusCompleted = "COMPLETED"
	TxStatusFailed    = "FAILED"
)

// PaymentDetails is the metadata blob the webhook handler stores alongside a
// transaction. The gateway occasionally books one real-world payment as
// several rows with diverging currencies; these fields carry what the charge
// should have looked like so the ledger can classify the rows later.
type PaymentDetails struct {
	ExpectedCurrency    string           `json:"expected_currency,omitempty"`
	CorrectPlanPrice    *decimal.Decimal `json:"correct_plan_price,omitempty"`
	CorrectPlanCurrency string           `json:"correct_plan_currency,omitempty"`
	HasCurrencyMismatch bool             `json:"has_currency_mismatch,omitempty"`
	IsUpgrade           bool             `json:"is_upgrade,omitempty"`
	PaymentMethod       string           `json:"payment_method,omitempty"`
	// Set by the admin currency-correction action, empty otherwise.
	OriginalCurrency string     `json:"original_currency,omitempty"`
	CorrectedBy      string     `json:"corrected_by,omitempty"`
	CorrectedAt      *time.Time `json:"corrected_at,omitempty"`
}

// Value implements driver.Valuer so gorm can persist the details as JSON.
func (d PaymentDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner.
func (d *PaymentDetails) Scan(value interface{}) error {
	if value == nil {
		*d = PaymentDetails{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("invalid scan source for payment details")
	}
	if len(bytes) == 0 {
		*d = PaymentDetails{}
		return nil
	}
	return json.Unmarshal(bytes, d)
}

// PaymentTransaction is one ledger row as reported by the payment gateway.
// GatewayTransactionID is deliberately NOT unique: duplicate rows per gateway
// id are an observed gateway behavior and resolving them is the ledger's job.
type PaymentTransaction struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	UserID               uint            `gorm:"not null;index" json:"user_id"`
	User                 User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	SubscriptionID       *uint           `gorm:"default:null;index" json:"subscription_id,omitempty"`
	Amount               decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency             string          `gorm:"type:varchar(3);not null" json:"currency"`
	Gateway              string          `gorm:"type:varchar(20);not null;default:'stripe'" json:"gateway"`
	GatewayTransactionID string          `gorm:"type:varchar(191);index" json:"gateway_transaction_id"`
	Status               string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Details              PaymentDetails  `gorm:"type:json" json:"details"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsCompleted reports whether the gateway confirmed the charge.
func (t *PaymentTransaction) IsCompleted() bool {
	return t.Status == TxStatusCompleted
}

// CurrencyMatchesExpected reports whether the row's booked currency equals
// the currency the user's plan pricing called for.
func (t *PaymentTransaction) CurrencyMatchesExpected() bool {
	return t.Details.ExpectedCurrency != "" && t.Details.ExpectedCurrency == t.Currency
}
