package models

import (
	"time"

	"gorm.io/gorm"
)

// BackupProvider defines the supported backup providers
type BackupProvider string

const (
	BackupProviderS3    BackupProvider = "s3"
	BackupProviderGCS   BackupProvider = "gcs"
	BackupProviderAzure BackupProvider = "azure"
)

// BackupStatus defines the possible backup states
type BackupStatus string

const (
	BackupStatusPending   BackupStatus = "pending"
	BackupStatusUploading BackupStatus = "uploading"
	BackupStatusCompleted BackupStatus = "completed"
	BackupStatusFailed    BackupStatus = "failed"
	BackupStatusDeleted   BackupStatus = "deleted"
)

// MediaBackup represents a backup of an uploaded profile photo to cloud storage
type MediaBackup struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ResumeID     uint           `gorm:"not null;index:idx_resume_id" json:"resume_id"`
	Resume       Resume         `gorm:"foreignKey:ResumeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"resume,omitempty"`
	Provider     BackupProvider `gorm:"type:varchar(20);not null;default:'s3';index:idx_provider" json:"provider"`
	Status       BackupStatus   `gorm:"type:varchar(20);not null;default:'pending';index:idx_status" json:"status"`
	BucketName   string         `gorm:"type:varchar(100)" json:"bucket_name"`
	ObjectKey    string         `gorm:"type:varchar(500)" json:"object_key"`
	BackupSize   int64          `gorm:"type:bigint unsigned" json:"backup_size"`
	BackupDate   *time.Time     `json:"backup_date"`
	ErrorMessage string         `gorm:"type:text" json:"error_message"`
	RetryCount   int            `gorm:"type:int unsigned;default:0" json:"retry_count"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index:idx_created_at" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for MediaBackup
func (MediaBackup) TableName() string {
	return "media_backups"
}

// BeforeCreate sets default values before creating a new backup record
func (mb *MediaBackup) BeforeCreate(tx *gorm.DB) error {
	if mb.Provider == "" {
		mb.Provider = BackupProviderS3
	}
	if mb.Status == "" {
		mb.Status = BackupStatusPending
	}
	return nil
}

// MarkAsUploading updates the backup status to uploading and records the
// object key before the upload starts, so a retry after a crashed worker
// can find the object instead of uploading under a second key.
func (mb *MediaBackup) MarkAsUploading(db *gorm.DB, objectKey string) error {
	mb.Status = BackupStatusUploading
	mb.ObjectKey = objectKey
	return db.Save(mb).Error
}

// MarkAsCompleted updates the backup status to completed with metadata
func (mb *MediaBackup) MarkAsCompleted(db *gorm.DB, bucketName, objectKey string, size int64) error {
	now := time.Now()
	mb.Status = BackupStatusCompleted
	mb.BucketName = bucketName
	mb.ObjectKey = objectKey
	mb.BackupSize = size
	mb.BackupDate = &now
	mb.ErrorMessage = ""
	return db.Save(mb).Error
}

// MarkAsFailed updates the backup status to failed with error message
func (mb *MediaBackup) MarkAsFailed(db *gorm.DB, errorMsg string) error {
	mb.Status = BackupStatusFailed
	mb.ErrorMessage = errorMsg
	mb.RetryCount++
	return db.Save(mb).Error
}

// MarkAsDeleted updates the backup status to deleted
func (mb *MediaBackup) MarkAsDeleted(db *gorm.DB, message string) error {
	mb.Status = BackupStatusDeleted
	mb.ErrorMessage = message
	return db.Save(mb).Error
}

// IsRetryable checks if the backup can be retried (max 3 retries)
func (mb *MediaBackup) IsRetryable() bool {
	return mb.Status == BackupStatusFailed && mb.RetryCount < 3
}

// FindBackupByResumeAndProvider finds a backup record by resume ID and provider
func FindBackupByResumeAndProvider(db *gorm.DB, resumeID uint, provider BackupProvider) (*MediaBackup, error) {
	var backup MediaBackup
	err := db.Where("resume_id = ? AND provider = ?", resumeID, provider).First(&backup).Error
	return &backup, err
}

// FindBackupsByStatus finds all backup records by status
func FindBackupsByStatus(db *gorm.DB, status BackupStatus) ([]MediaBackup, error) {
	var backups []MediaBackup
	err := db.Preload("Resume").Where("status = ?", status).Find(&backups).Error
	return backups, err
}

// FindPendingBackups finds all pending backup records
func FindPendingBackups(db *gorm.DB) ([]MediaBackup, error) {
	return FindBackupsByStatus(db, BackupStatusPending)
}

// FindFailedRetryableBackups finds all failed backups that can be retried
func FindFailedRetryableBackups(db *gorm.DB) ([]MediaBackup, error) {
	var backups []MediaBackup
	err := db.Preload("Resume").Where("status = ? AND retry_count < ?", BackupStatusFailed, 3).Find(&backups).Error
	return backups, err
}

// FindCompletedBackupsByResumeID finds all completed backups for a resume
func FindCompletedBackupsByResumeID(db *gorm.DB, resumeID uint) ([]MediaBackup, error) {
	var backups []MediaBackup
	err := db.Where("resume_id = ? AND status = ?", resumeID, BackupStatusCompleted).Find(&backups).Error
	return backups, err
}

// FindStuckUploadingBackups returns backups that have been in 'uploading' longer than the given duration
func FindStuckUploadingBackups(db *gorm.DB, olderThan time.Duration) ([]MediaBackup, error) {
	var backups []MediaBackup
	cutoff := time.Now().Add(-olderThan)
	err := db.Preload("Resume").Where("status = ? AND updated_at <= ?", BackupStatusUploading, cutoff).Find(&backups).Error
	return backups, err
}

// CountBackupsByStatus returns the count of backups by status
func CountBackupsByStatus(db *gorm.DB, status BackupStatus) (int64, error) {
	var count int64
	err := db.Model(&MediaBackup{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// GetBackupStats returns statistics about backup status
func GetBackupStats(db *gorm.DB) (map[BackupStatus]int64, error) {
	stats := make(map[BackupStatus]int64)

	statuses := []BackupStatus{
		BackupStatusPending,
		BackupStatusUploading,
		BackupStatusCompleted,
		BackupStatusFailed,
		BackupStatusDeleted,
	}

	for _, status := range statuses {
		count, err := CountBackupsByStatus(db, status)
		if err != nil {
			return nil, err
		}
		stats[status] = count
	}

	return stats, nil
}

// CreateBackupRecord creates a new backup record for a resume photo
func CreateBackupRecord(db *gorm.DB, resumeID uint, provider BackupProvider) (*MediaBackup, error) {
	backup := &MediaBackup{
		ResumeID: resumeID,
		Provider: provider,
		Status:   BackupStatusPending,
	}

	err := db.Create(backup).Error
	return backup, err
}
