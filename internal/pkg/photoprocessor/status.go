package photoprocessor

import (
	"fmt"
	"time"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/internal/pkg/cache"
	"github.com/resumedesk/ResumeDesk/internal/pkg/database"
)

// Cache key format for photo processing status, keyed by resume UUID
const (
	PhotoStatusKeyFormat          = "photo:status:%s"
	PhotoStatusTimestampKeyFormat = "photo:status:timestamp:%s"
)

// Status constants for photo processing
const (
	STATUS_PENDING    = "pending"
	STATUS_PROCESSING = "processing"
	STATUS_COMPLETED  = "completed"
	STATUS_FAILED     = "failed"
)

// SetPhotoStatus sets the processing status of a photo in the cache
func SetPhotoStatus(resumeUUID string, status string) error {
	key := fmt.Sprintf(PhotoStatusKeyFormat, resumeUUID)
	SetPhotoStatusTimestamp(resumeUUID, time.Now())
	return cache.Set(key, status, 24*time.Hour)
}

// SetPhotoStatusTimestamp sets the timestamp when the status was set
func SetPhotoStatusTimestamp(resumeUUID string, timestamp time.Time) error {
	cacheKey := fmt.Sprintf(PhotoStatusTimestampKeyFormat, resumeUUID)
	return cache.Set(cacheKey, timestamp.Format(time.RFC3339), 24*time.Hour)
}

// GetPhotoStatus retrieves the processing status of a photo from the cache
func GetPhotoStatus(resumeUUID string) (string, error) {
	key := fmt.Sprintf(PhotoStatusKeyFormat, resumeUUID)
	return cache.Get(key)
}

// GetPhotoStatusTimestamp gets the timestamp when the status was set
func GetPhotoStatusTimestamp(resumeUUID string) (time.Time, error) {
	cacheKey := fmt.Sprintf(PhotoStatusTimestampKeyFormat, resumeUUID)
	timestampStr, err := cache.Get(cacheKey)
	if err != nil {
		return time.Time{}, err
	}

	timestamp, err := time.Parse(time.RFC3339, timestampStr)
	if err != nil {
		return time.Time{}, err
	}

	return timestamp, nil
}

// IsPhotoProcessingComplete checks if photo processing has finished. The
// editor polls this while the upload spinner is showing.
func IsPhotoProcessingComplete(resumeUUID string) bool {
	status, err := GetPhotoStatus(resumeUUID)
	if err == nil && (status == STATUS_COMPLETED || status == STATUS_FAILED) {
		return true
	}

	// No usable cache entry: the variant columns on the row are the truth
	db := database.GetDB()
	resume, err := models.FindResumeByUUID(db, resumeUUID)
	if err != nil {
		return false
	}

	if resume.PhotoPath != "" {
		SetPhotoStatus(resumeUUID, STATUS_COMPLETED)
		return true
	}

	// A job stuck in pending/processing for over a minute is treated as
	// failed so the editor stops polling
	if status == STATUS_PENDING || status == STATUS_PROCESSING {
		timestamp, err := GetPhotoStatusTimestamp(resumeUUID)
		if err == nil && time.Since(timestamp) > 60*time.Second {
			SetPhotoStatus(resumeUUID, STATUS_FAILED)
			return true
		}
	}

	return false
}
