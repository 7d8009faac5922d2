package ledger

import (
	"github.com/resumedesk/ResumeDesk/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the ledger service.
type Repository interface {
	CreateTransaction(tx *models.PaymentTransaction) error
	GetTransaction(id uint) (*models.PaymentTransaction, error)
	SaveTransaction(tx *models.PaymentTransaction) error
	ListTransactions(offset, limit int) ([]models.PaymentTransaction, error)
	ListTransactionsByUser(userID uint) ([]models.PaymentTransaction, error)
	CountTransactions() (int64, error)
	FindByGatewayTransactionID(gatewayTxID string) ([]models.PaymentTransaction, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a ledger repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateTransaction(tx *models.PaymentTransaction) error {
	return r.db.Create(tx).Error
}

func (r *gormRepository) GetTransaction(id uint) (*models.PaymentTransaction, error) {
	var tx models.PaymentTransaction
	if err := r.db.First(&tx, id).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *gormRepository) SaveTransaction(tx *models.PaymentTransaction) error {
	return r.db.Save(tx).Error
}

func (r *gormRepository) ListTransactions(offset, limit int) ([]models.PaymentTransaction, error) {
	var txs []models.PaymentTransaction
	err := r.db.Preload("User").Order("id DESC").Offset(offset).Limit(limit).Find(&txs).Error
	return txs, err
}

func (r *gormRepository) ListTransactionsByUser(userID uint) ([]models.PaymentTransaction, error) {
	var txs []models.PaymentTransaction
	err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&txs).Error
	return txs, err
}

func (r *gormRepository) CountTransactions() (int64, error) {
	var count int64
	err := r.db.Model(&models.PaymentTransaction{}).Count(&count).Error
	return count, err
}

func (r *gormRepository) FindByGatewayTransactionID(gatewayTxID string) ([]models.PaymentTransaction, error) {
	var txs []models.PaymentTransaction
	err := r.db.Where("gateway_transaction_id = ?", gatewayTxID).Order("id ASC").Find(&txs).Error
	return txs, err
}
