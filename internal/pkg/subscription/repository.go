package subscription

import (
	"time"

	"github.com/resumedesk/ResumeDesk/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the subscription service.
type Repository interface {
	GetSubscription(id uint) (*models.UserSubscription, error)
	GetLiveSubscriptionByUser(userID uint) (*models.UserSubscription, error)
	ListSubscriptionsByUser(userID uint) ([]models.UserSubscription, error)
	ListSubscriptions(offset, limit int) ([]models.UserSubscription, error)
	CountSubscriptions() (int64, error)
	CreateSubscription(sub *models.UserSubscription) error
	SaveSubscription(sub *models.UserSubscription) error
	ListDuePlanChanges(now time.Time) ([]models.UserSubscription, error)
	ListLapsedGracePeriods(now time.Time) ([]models.UserSubscription, error)
	ListDueRenewals(now time.Time) ([]models.UserSubscription, error)
	GetUser(id uint) (*models.User, error)
	GetPlan(id uint) (*models.SubscriptionPlan, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a subscription repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetSubscription(id uint) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.Preload("Plan").First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetLiveSubscriptionByUser returns the row occupying the user's single live
// slot. CANCELLED and EXPIRED rows are history and never returned here.
func (r *gormRepository) GetLiveSubscriptionByUser(userID uint) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.Preload("Plan").
		Where("user_id = ? AND status IN ?", userID, []string{
			models.SubStatusActive,
			models.SubStatusGracePeriod,
		}).
		Order("id DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) ListSubscriptionsByUser(userID uint) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := r.db.Preload("Plan").Where("user_id = ?", userID).Order("id DESC").Find(&subs).Error
	return subs, err
}

func (r *gormRepository) ListSubscriptions(offset, limit int) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := r.db.Preload("User").Preload("Plan").
		Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&subs).Error
	return subs, err
}

func (r *gormRepository) CountSubscriptions() (int64, error) {
	var count int64
	err := r.db.Model(&models.UserSubscription{}).Count(&count).Error
	return count, err
}

func (r *gormRepository) CreateSubscription(sub *models.UserSubscription) error {
	return r.db.Create(sub).Error
}

func (r *gormRepository) SaveSubscription(sub *models.UserSubscription) error {
	return r.db.Save(sub).Error
}

func (r *gormRepository) ListDuePlanChanges(now time.Time) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := r.db.Preload("Plan").
		Where("pending_plan_change_to IS NOT NULL AND pending_plan_change_date <= ?", now).
		Where("status IN ?", []string{models.SubStatusActive, models.SubStatusGracePeriod}).
		Find(&subs).Error
	return subs, err
}

func (r *gormRepository) ListLapsedGracePeriods(now time.Time) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := r.db.
		Where("status = ? AND grace_period_end IS NOT NULL AND grace_period_end <= ?", models.SubStatusGracePeriod, now).
		Find(&subs).Error
	return subs, err
}

func (r *gormRepository) ListDueRenewals(now time.Time) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := r.db.
		Where("status = ? AND end_date <= ?", models.SubStatusActive, now).
		Find(&subs).Error
	return subs, err
}

func (r *gormRepository) GetUser(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) GetPlan(id uint) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
