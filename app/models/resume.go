package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/resumedesk/ResumeDesk/internal/pkg/shortener"
)

// ContactInfo is the header block of a resume.
type ContactInfo struct {
	FullName string `json:"full_name"`
	Headline string `json:"headline,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Website  string `json:"website,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

// ExperienceItem is one employment entry. Dates are display strings the
// editor produces ("Jan 2024"); missing dates arrive as empty strings.
type ExperienceItem struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location,omitempty"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty"`
	Current      bool     `json:"current,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

// EducationItem is one education entry.
type EducationItem struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Grade       string `json:"grade,omitempty"`
}

// ProjectItem is one project entry.
type ProjectItem struct {
	Name         string   `json:"name"`
	URL          string   `json:"url,omitempty"`
	Description  string   `json:"description,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

// CertificationItem is one certification entry.
type CertificationItem struct {
	Name            string `json:"name"`
	Issuer          string `json:"issuer,omitempty"`
	PublicationDate string `json:"publication_date,omitempty"`
	URL             string `json:"url,omitempty"`
}

// SkillGroup is a named group of skills.
type SkillGroup struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// ResumeContent is the structured body of a resume. The preview layer
// normalizes it before it reaches any template.
type ResumeContent struct {
	Contact        ContactInfo         `json:"contact"`
	Summary        string              `json:"summary,omitempty"`
	Experience     []ExperienceItem    `json:"experience,omitempty"`
	Education      []EducationItem     `json:"education,omitempty"`
	Projects       []ProjectItem       `json:"projects,omitempty"`
	Certifications []CertificationItem `json:"certifications,omitempty"`
	Skills         []SkillGroup        `json:"skills,omitempty"`
}

func (c ResumeContent) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *ResumeContent) Scan(value interface{}) error {
	return scanJSON(value, c, "resume content")
}

type Resume struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UUID          string         `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"uuid"`
	UserID        uint           `gorm:"index" json:"user_id"`
	User          User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title         string         `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=1,max=255"`
	TemplateKey   string         `gorm:"type:varchar(50);not null;default:'classic'" json:"template_key"`
	Content       ResumeContent  `gorm:"type:json" json:"content"`
	PhotoPath     string         `gorm:"type:varchar(255);default:null" json:"photo_path"`
	HasPhotoWebp  bool           `gorm:"default:false" json:"has_photo_webp"`
	IsPublic      bool           `gorm:"default:false" json:"is_public"`
	ShareLink     string         `gorm:"type:varchar(255) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex" json:"share_link"`
	ViewCount     int            `gorm:"default:0" json:"view_count"`
	DownloadCount int            `gorm:"default:0" json:"download_count"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate fills the UUID and reserves a share link slot. The real link
// needs the row ID, so it is written in AfterCreate.
func (r *Resume) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == "" {
		r.UUID = uuid.New().String()
	}
	if r.ShareLink == "" {
		r.ShareLink = "temp"
	}
	return nil
}

// AfterCreate replaces the placeholder share link with the base62 encoding
// of the row ID.
func (r *Resume) AfterCreate(tx *gorm.DB) error {
	if r.ShareLink == "temp" {
		r.ShareLink = shortener.EncodeID(r.ID)
		return tx.Model(r).Update("share_link", r.ShareLink).Error
	}
	return nil
}

// FindResumeByUUID looks a resume up by its UUID
func FindResumeByUUID(db *gorm.DB, uuid string) (*Resume, error) {
	var resume Resume
	result := db.Where("uuid = ?", uuid).First(&resume)
	return &resume, result.Error
}

// FindResumeByShareLink looks a resume up by its public share slug
func FindResumeByShareLink(db *gorm.DB, shareLink string) (*Resume, error) {
	var resume Resume
	result := db.Where("share_link = ?", shareLink).First(&resume)
	return &resume, result.Error
}

// IncrementViewCount bumps the public view counter.
func (r *Resume) IncrementViewCount(db *gorm.DB) error {
	return db.Model(r).Update("view_count", r.ViewCount+1).Error
}

// IncrementDownloadCount bumps the download counter.
func (r *Resume) IncrementDownloadCount(db *gorm.DB) error {
	return db.Model(r).Update("download_count", r.DownloadCount+1).Error
}
