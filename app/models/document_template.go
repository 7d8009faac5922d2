package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	TemplateKindResume      = "resume"
	TemplateKindCoverLetter = "cover_letter"
)

// DocumentTemplate is the catalog row behind a renderer key. The preview
// layer only renders keys that are registered in code; this table carries
// the marketing side (name, premium flag, ordering) for the template picker
// and the admin screens.
type DocumentTemplate struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Key         string         `gorm:"type:varchar(50);not null;index:ux_document_templates_kind_key,unique,priority:2" json:"key" validate:"required,min=1,max=50"`
	Name        string         `gorm:"type:varchar(100);not null" json:"name" validate:"required,min=1,max=100"`
	Kind        string         `gorm:"type:varchar(20);not null;default:'resume';index:ux_document_templates_kind_key,unique,priority:1" json:"kind" validate:"oneof=resume cover_letter"`
	Description string         `gorm:"type:text" json:"description"`
	PreviewPath string         `gorm:"type:varchar(255)" json:"preview_path"`
	IsPremium   bool           `gorm:"default:false" json:"is_premium"`
	Active      bool           `gorm:"default:true;index" json:"active"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *DocumentTemplate) Validate() error {
	v := validator.New()
	return v.Struct(t)
}

func FindTemplateByKey(db *gorm.DB, kind, key string) (*DocumentTemplate, error) {
	var tpl DocumentTemplate
	err := db.Where("kind = ? AND `key` = ? AND active = ?", kind, key, true).First(&tpl).Error
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func GetActiveTemplates(db *gorm.DB, kind string) ([]DocumentTemplate, error) {
	var templates []DocumentTemplate
	err := db.Where("kind = ? AND active = ?", kind, true).Order("sort_order ASC, id ASC").Find(&templates).Error
	return templates, err
}

func GetAllTemplates(db *gorm.DB) ([]DocumentTemplate, error) {
	var templates []DocumentTemplate
	err := db.Order("kind ASC, sort_order ASC").Find(&templates).Error
	return templates, err
}
