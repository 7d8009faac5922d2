package repository

import (
	"fmt"
	"time"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// invoiceRepository implements the InvoiceRepository interface
type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository instance
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

// Create creates a new invoice
func (r *invoiceRepository) Create(invoice *models.Invoice) error {
	return r.db.Create(invoice).Error
}

// GetByID retrieves an invoice by its ID
func (r *invoiceRepository) GetByID(id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.Preload("User").First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetByNumber retrieves an invoice by its invoice number
func (r *invoiceRepository) GetByNumber(number string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.Where("invoice_number = ?", number).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetByUserID retrieves a user's invoices, newest first
func (r *invoiceRepository) GetByUserID(userID uint, offset, limit int) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Where("user_id = ?", userID).
		Order("id DESC").Offset(offset).Limit(limit).Find(&invoices).Error
	return invoices, err
}

// List retrieves a paginated list of all invoices (admin view)
func (r *invoiceRepository) List(offset, limit int) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Preload("User").
		Order("id DESC").Offset(offset).Limit(limit).Find(&invoices).Error
	return invoices, err
}

// Count returns the total number of invoices
func (r *invoiceRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Invoice{}).Count(&count).Error
	return count, err
}

// Update updates an existing invoice
func (r *invoiceRepository) Update(invoice *models.Invoice) error {
	return r.db.Save(invoice).Error
}

// NextSequence returns the next free invoice sequence number for a year by
// parsing the numeric tail of the highest number issued so far.
func (r *invoiceRepository) NextSequence(year int) (int, error) {
	prefix := fmt.Sprintf("%s-%d-%%", models.InvoiceNumberPrefix, year)

	var max int64
	err := r.db.Model(&models.Invoice{}).
		Where("invoice_number LIKE ?", prefix).
		Select("COALESCE(MAX(CAST(SUBSTRING_INDEX(invoice_number, '-', -1) AS UNSIGNED)), 0)").
		Row().Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to read invoice sequence for %d: %w", year, err)
	}

	return int(max) + 1, nil
}

// SumPaidTotals sums the totals of paid invoices in one currency since the
// given time. Used by the admin dashboard revenue figure.
func (r *invoiceRepository) SumPaidTotals(since time.Time, currency string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.Model(&models.Invoice{}).
		Where("status = ? AND currency = ? AND issued_at >= ?", models.InvoiceStatusPaid, currency, since).
		Select("COALESCE(SUM(total), 0)").
		Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum paid invoices: %w", err)
	}
	return sum, nil
}
