package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	InvoiceStatusPaid      = "paid"
	InvoiceStatusPending   = "pending"
	InvoiceStatusCancelled = "cancelled"
)

// InvoiceNumberPrefix is the fixed prefix of generated invoice numbers,
// followed by a zero-padded per-year sequence, e.g. RD-2026-000042.
const InvoiceNumberPrefix = "RD"

// TaxLine is one component of the tax charged on an invoice.
type TaxLine struct {
	Type       string          `json:"type"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
}

// TaxDetails is the persisted tax breakdown. TaxPercentage holds the summed
// effective rate; TaxBreakdown lists the individual components (CGST+SGST or
// IGST for Indian invoices, usually a single line elsewhere).
type TaxDetails struct {
	TaxPercentage decimal.Decimal `json:"tax_percentage"`
	TaxBreakdown  []TaxLine       `json:"tax_breakdown,omitempty"`
	Inclusive     bool            `json:"inclusive,omitempty"`
}

func (d TaxDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *TaxDetails) Scan(value interface{}) error {
	return scanJSON(value, d, "tax details")
}

// InvoiceItem is one line on an invoice.
type InvoiceItem struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// InvoiceItems is the persisted items array.
type InvoiceItems []InvoiceItem

func (it InvoiceItems) Value() (driver.Value, error) {
	return json.Marshal(it)
}

func (it *InvoiceItems) Scan(value interface{}) error {
	return scanJSON(value, it, "invoice items")
}

func scanJSON(value interface{}, dst interface{}, what string) error {
	if value == nil {
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("invalid scan source for " + what)
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, dst)
}

// Invoice is the billing document created at payment completion. Total is
// authoritative: nothing recomputes it after creation except the explicit
// inclusive-tax correction path, which preserves Total and only re-derives
// Subtotal, TaxAmount and item unit prices.
type Invoice struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	InvoiceNumber  string          `gorm:"type:varchar(30);not null;uniqueIndex" json:"invoice_number"`
	UserID         uint            `gorm:"not null;index" json:"user_id"`
	User           User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	SubscriptionID *uint           `gorm:"default:null;index" json:"subscription_id,omitempty"`
	TransactionID  *uint           `gorm:"default:null;index" json:"transaction_id,omitempty"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Currency       string          `gorm:"type:varchar(3);not null" json:"currency"`
	TaxDetails     TaxDetails      `gorm:"type:json" json:"tax_details"`
	Items          InvoiceItems    `gorm:"type:json" json:"items"`
	Status         string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	BillingName    string          `gorm:"type:varchar(200)" json:"billing_name"`
	BillingCountry string          `gorm:"type:varchar(2)" json:"billing_country"`
	BillingState   string          `gorm:"type:varchar(100)" json:"billing_state"`
	IssuedAt       time.Time       `gorm:"not null" json:"issued_at"`
	PaidAt         *time.Time      `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// FormatInvoiceNumber renders the canonical invoice number for a sequence
// value issued in the given year.
func FormatInvoiceNumber(year int, seq uint) string {
	return fmt.Sprintf("%s-%d-%06d", InvoiceNumberPrefix, year, seq)
}
