package repository

import (
	"github.com/resumedesk/ResumeDesk/app/models"
	"gorm.io/gorm"
)

// coverLetterRepository implements the CoverLetterRepository interface
type coverLetterRepository struct {
	db *gorm.DB
}

// NewCoverLetterRepository creates a new cover letter repository instance
func NewCoverLetterRepository(db *gorm.DB) CoverLetterRepository {
	return &coverLetterRepository{db: db}
}

// Create creates a new cover letter in the database
func (r *coverLetterRepository) Create(letter *models.CoverLetter) error {
	return r.db.Create(letter).Error
}

// GetByID retrieves a cover letter by its ID
func (r *coverLetterRepository) GetByID(id uint) (*models.CoverLetter, error) {
	var letter models.CoverLetter
	err := r.db.First(&letter, id).Error
	if err != nil {
		return nil, err
	}
	return &letter, nil
}

// GetByUUID retrieves a cover letter by its UUID
func (r *coverLetterRepository) GetByUUID(uuid string) (*models.CoverLetter, error) {
	var letter models.CoverLetter
	err := r.db.Where("uuid = ?", uuid).First(&letter).Error
	if err != nil {
		return nil, err
	}
	return &letter, nil
}

// GetByShareLink retrieves a cover letter by its public share link
func (r *coverLetterRepository) GetByShareLink(shareLink string) (*models.CoverLetter, error) {
	var letter models.CoverLetter
	err := r.db.Preload("User").Where("share_link = ?", shareLink).First(&letter).Error
	if err != nil {
		return nil, err
	}
	return &letter, nil
}

// GetByUserID retrieves a user's cover letters, newest first
func (r *coverLetterRepository) GetByUserID(userID uint, offset, limit int) ([]models.CoverLetter, error) {
	var letters []models.CoverLetter
	err := r.db.Where("user_id = ?", userID).
		Order("updated_at DESC").Offset(offset).Limit(limit).Find(&letters).Error
	return letters, err
}

// Update updates an existing cover letter
func (r *coverLetterRepository) Update(letter *models.CoverLetter) error {
	return r.db.Save(letter).Error
}

// Delete soft deletes a cover letter by its ID
func (r *coverLetterRepository) Delete(id uint) error {
	return r.db.Delete(&models.CoverLetter{}, id).Error
}

// Count returns the total number of cover letters
func (r *coverLetterRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.CoverLetter{}).Count(&count).Error
	return count, err
}

// CountByUserID returns the number of cover letters a user owns
func (r *coverLetterRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.CoverLetter{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// UpdateViewCount increments the public view counter
func (r *coverLetterRepository) UpdateViewCount(id uint) error {
	return r.db.Model(&models.CoverLetter{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

// UpdateDownloadCount increments the download counter
func (r *coverLetterRepository) UpdateDownloadCount(id uint) error {
	return r.db.Model(&models.CoverLetter{}).Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1)).Error
}
