package tax

import (
	"github.com/resumedesk/ResumeDesk/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the tax service.
type Repository interface {
	ListSettings() ([]models.TaxSetting, error)
	ListEnabledSettings() ([]models.TaxSetting, error)
	GetSetting(id uint) (*models.TaxSetting, error)
	CreateSetting(ts *models.TaxSetting) error
	UpdateSetting(ts *models.TaxSetting) error
	DeleteSetting(id uint) error
	DeleteAllSettings() (int64, error)
	ListInvoicesByCurrency(currency string) ([]models.Invoice, error)
	SaveInvoice(inv *models.Invoice) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a tax repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) ListSettings() ([]models.TaxSetting, error) {
	var settings []models.TaxSetting
	err := r.db.Order("id ASC").Find(&settings).Error
	return settings, err
}

func (r *gormRepository) ListEnabledSettings() ([]models.TaxSetting, error) {
	var settings []models.TaxSetting
	err := r.db.Where("enabled = ?", true).Order("id ASC").Find(&settings).Error
	return settings, err
}

func (r *gormRepository) GetSetting(id uint) (*models.TaxSetting, error) {
	var ts models.TaxSetting
	if err := r.db.First(&ts, id).Error; err != nil {
		return nil, err
	}
	return &ts, nil
}

func (r *gormRepository) CreateSetting(ts *models.TaxSetting) error {
	return r.db.Create(ts).Error
}

func (r *gormRepository) UpdateSetting(ts *models.TaxSetting) error {
	return r.db.Save(ts).Error
}

func (r *gormRepository) DeleteSetting(id uint) error {
	return r.db.Delete(&models.TaxSetting{}, id).Error
}

func (r *gormRepository) DeleteAllSettings() (int64, error) {
	tx := r.db.Where("1 = 1").Delete(&models.TaxSetting{})
	return tx.RowsAffected, tx.Error
}

func (r *gormRepository) ListInvoicesByCurrency(currency string) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Where("currency = ?", currency).Order("id ASC").Find(&invoices).Error
	return invoices, err
}

func (r *gormRepository) SaveInvoice(inv *models.Invoice) error {
	return r.db.Save(inv).Error
}
