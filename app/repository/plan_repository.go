package repository

import (
	"github.com/resumedesk/ResumeDesk/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// Create creates a new subscription plan
func (r *planRepository) Create(plan *models.SubscriptionPlan) error {
	return r.db.Create(plan).Error
}

// GetByID retrieves a plan with its pricing rows
func (r *planRepository) GetByID(id uint) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.Preload("Pricing").First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetBySlug retrieves a plan by its slug with pricing rows
func (r *planRepository) GetBySlug(slug string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.Preload("Pricing").Where("slug = ?", slug).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetAll retrieves every plan including retired ones (admin view)
func (r *planRepository) GetAll() ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := r.db.Preload("Pricing").Order("tier ASC, id ASC").Find(&plans).Error
	return plans, err
}

// GetActive retrieves the plans open for subscription, pricing preloaded
func (r *planRepository) GetActive() ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := r.db.Preload("Pricing").Where("active = ?", true).Order("tier ASC, id ASC").Find(&plans).Error
	return plans, err
}

// Update updates an existing plan
func (r *planRepository) Update(plan *models.SubscriptionPlan) error {
	return r.db.Save(plan).Error
}

// Delete soft deletes a plan by its ID
func (r *planRepository) Delete(id uint) error {
	return r.db.Delete(&models.SubscriptionPlan{}, id).Error
}

// SlugExists reports whether a slug is already taken
func (r *planRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.SubscriptionPlan{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// SlugExistsExceptID reports whether a slug is taken by another plan
func (r *planRepository) SlugExistsExceptID(slug string, id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.SubscriptionPlan{}).Where("slug = ? AND id <> ?", slug, id).Count(&count).Error
	return count > 0, err
}

// UpsertPricing writes one region's pricing row for a plan, updating in place
// when the (plan, region) pair already exists.
func (r *planRepository) UpsertPricing(pricing *models.PlanPricing) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "plan_id"},
			{Name: "target_region"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"currency",
			"price",
			"tax_inclusive",
			"updated_at",
		}),
	}).Create(pricing).Error; err != nil {
		return err
	}

	return r.db.Where("plan_id = ? AND target_region = ?", pricing.PlanID, pricing.TargetRegion).
		First(pricing).Error
}

// DeletePricing removes one region's pricing row for a plan
func (r *planRepository) DeletePricing(planID uint, region string) error {
	return r.db.Where("plan_id = ? AND target_region = ?", planID, region).
		Delete(&models.PlanPricing{}).Error
}

// CountLiveSubscriptions counts live subscriptions still referencing a plan.
// Plans with live subscribers must not be deleted or hard-changed.
func (r *planRepository) CountLiveSubscriptions(planID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.UserSubscription{}).
		Where("plan_id = ? AND status IN ?", planID, []string{models.SubStatusActive, models.SubStatusGracePeriod}).
		Count(&count).Error
	return count, err
}
