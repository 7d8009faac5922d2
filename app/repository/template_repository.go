package repository

import (
	"github.com/resumedesk/ResumeDesk/app/models"
	"gorm.io/gorm"
)

// templateRepository implements the TemplateRepository interface
type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new template repository instance
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

// Create creates a new document template catalog row
func (r *templateRepository) Create(tpl *models.DocumentTemplate) error {
	return r.db.Create(tpl).Error
}

// GetByID retrieves a template by its ID
func (r *templateRepository) GetByID(id uint) (*models.DocumentTemplate, error) {
	var tpl models.DocumentTemplate
	err := r.db.First(&tpl, id).Error
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// GetByKindAndKey retrieves an active template by kind and key
func (r *templateRepository) GetByKindAndKey(kind, key string) (*models.DocumentTemplate, error) {
	return models.FindTemplateByKey(r.db, kind, key)
}

// GetAll retrieves every template including inactive ones (admin view)
func (r *templateRepository) GetAll() ([]models.DocumentTemplate, error) {
	return models.GetAllTemplates(r.db)
}

// GetActive retrieves the active templates of one kind for the picker
func (r *templateRepository) GetActive(kind string) ([]models.DocumentTemplate, error) {
	return models.GetActiveTemplates(r.db, kind)
}

// Update updates an existing template
func (r *templateRepository) Update(tpl *models.DocumentTemplate) error {
	return r.db.Save(tpl).Error
}

// Delete soft deletes a template by its ID
func (r *templateRepository) Delete(id uint) error {
	return r.db.Delete(&models.DocumentTemplate{}, id).Error
}

// KeyExists reports whether a (kind, key) pair is already taken
func (r *templateRepository) KeyExists(kind, key string) (bool, error) {
	var count int64
	err := r.db.Model(&models.DocumentTemplate{}).
		Where("kind = ? AND `key` = ?", kind, key).Count(&count).Error
	return count > 0, err
}

// KeyExistsExceptID reports whether a (kind, key) pair is taken by another row
func (r *templateRepository) KeyExistsExceptID(kind, key string, id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.DocumentTemplate{}).
		Where("kind = ? AND `key` = ? AND id <> ?", kind, key, id).Count(&count).Error
	return count > 0, err
}
