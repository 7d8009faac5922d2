package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/resumedesk/ResumeDesk/internal/pkg/shortener"
)

// CoverLetterContent is the structured body of a cover letter.
type CoverLetterContent struct {
	Contact        ContactInfo `json:"contact"`
	RecipientName  string      `json:"recipient_name,omitempty"`
	RecipientTitle string      `json:"recipient_title,omitempty"`
	Company        string      `json:"company,omitempty"`
	JobTitle       string      `json:"job_title,omitempty"`
	Date           string      `json:"date,omitempty"`
	Greeting       string      `json:"greeting,omitempty"`
	Paragraphs     []string    `json:"paragraphs,omitempty"`
	Closing        string      `json:"closing,omitempty"`
}

func (c CoverLetterContent) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *CoverLetterContent) Scan(value interface{}) error {
	return scanJSON(value, c, "cover letter content")
}

type CoverLetter struct {
	ID            uint               `gorm:"primaryKey" json:"id"`
	UUID          string             `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"uuid"`
	UserID        uint               `gorm:"index" json:"user_id"`
	User          User               `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title         string             `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=1,max=255"`
	TemplateKey   string             `gorm:"type:varchar(50);not null;default:'classic'" json:"template_key"`
	Content       CoverLetterContent `gorm:"type:json" json:"content"`
	IsPublic      bool               `gorm:"default:false" json:"is_public"`
	ShareLink     string             `gorm:"type:varchar(255) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex" json:"share_link"`
	ViewCount     int                `gorm:"default:0" json:"view_count"`
	DownloadCount int                `gorm:"default:0" json:"download_count"`
	CreatedAt     time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt     `gorm:"index" json:"-"`
}

func (c *CoverLetter) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == "" {
		c.UUID = uuid.New().String()
	}
	if c.ShareLink == "" {
		c.ShareLink = "temp"
	}
	return nil
}

func (c *CoverLetter) AfterCreate(tx *gorm.DB) error {
	if c.ShareLink == "temp" {
		c.ShareLink = shortener.EncodeID(c.ID)
		return tx.Model(c).Update("share_link", c.ShareLink).Error
	}
	return nil
}

// FindCoverLetterByUUID looks a cover letter up by its UUID
func FindCoverLetterByUUID(db *gorm.DB, uuid string) (*CoverLetter, error) {
	var letter CoverLetter
	result := db.Where("uuid = ?", uuid).First(&letter)
	return &letter, result.Error
}

// FindCoverLetterByShareLink looks a cover letter up by its public share slug
func FindCoverLetterByShareLink(db *gorm.DB, shareLink string) (*CoverLetter, error) {
	var letter CoverLetter
	result := db.Where("share_link = ?", shareLink).First(&letter)
	return &letter, result.Error
}

// IncrementViewCount bumps the public view counter.
func (c *CoverLetter) IncrementViewCount(db *gorm.DB) error {
	return db.Model(c).Update("view_count", c.ViewCount+1).Error
}

// IncrementDownloadCount bumps the download counter.
func (c *CoverLetter) IncrementDownloadCount(db *gorm.DB) error {
	return db.Model(c).Update("download_count", c.DownloadCount+1).Error
}
