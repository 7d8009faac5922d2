package jobqueue

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/internal/pkg/database"
	"github.com/resumedesk/ResumeDesk/internal/pkg/entitlements"
	"github.com/resumedesk/ResumeDesk/internal/pkg/photoprocessor"
	"github.com/resumedesk/ResumeDesk/internal/pkg/s3backup"
)

// processPhotoProcessingJob processes a resume photo processing job
func (q *Queue) processPhotoProcessingJob(ctx context.Context, job *Job) error {
	log.Infof("[JobQueue] Processing photo job %s", job.ID)

	// Parse the payload
	payload, err := PhotoProcessingJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse photo processing payload: %w", err)
	}

	// Get database connection
	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Find the resume in database
	resume, err := models.FindResumeByUUID(db, payload.ResumeUUID)
	if err != nil {
		return fmt.Errorf("failed to find resume %s: %w", payload.ResumeUUID, err)
	}

	// Verify the uploaded original still exists
	if _, err := os.Stat(payload.FilePath); os.IsNotExist(err) {
		return fmt.Errorf("original file not found: %s", payload.FilePath)
	}

	// Generate the variants; status transitions are handled inside
	if err := photoprocessor.ProcessPhotoSync(resume, payload.FilePath, payload.WebpVariant); err != nil {
		return fmt.Errorf("photo processing failed for %s: %w", payload.ResumeUUID, err)
	}

	// Chain an object storage backup once the variants exist
	if payload.EnableBackup {
		if err := q.enqueueBackupForResume(db, resume, payload.FilePath); err != nil {
			log.Errorf("[JobQueue] Failed to enqueue backup for resume %s: %v", resume.UUID, err)
		}
	}

	log.Infof("[JobQueue] Photo processing completed for %s", payload.ResumeUUID)

	return nil
}

// EnqueuePhotoProcessing enqueues a photo processing job in the unified queue
func EnqueuePhotoProcessing(resume *models.Resume, originalPath string, webpVariant, enableBackup bool) error {
	if resume == nil || resume.UUID == "" {
		return fmt.Errorf("cannot enqueue invalid resume data")
	}

	log.Infof("[UnifiedQueue] Enqueueing photo job for %s (webp: %t, backup: %t)", resume.UUID, webpVariant, enableBackup)

	// Set initial status to PENDING using the cache
	if err := photoprocessor.SetPhotoStatus(resume.UUID, photoprocessor.STATUS_PENDING); err != nil {
		log.Errorf("[UnifiedQueue] Failed to set initial PENDING status for %s: %v", resume.UUID, err)
		return fmt.Errorf("failed to set initial pending status for %s: %w", resume.UUID, err)
	}

	payload := PhotoProcessingJobPayload{
		ResumeID:     resume.ID,
		ResumeUUID:   resume.UUID,
		FilePath:     originalPath,
		WebpVariant:  webpVariant,
		EnableBackup: enableBackup,
	}

	// Get the global queue manager
	manager := GetManager()
	queue := manager.GetQueue()

	// Enqueue the job
	job, err := queue.EnqueueJob(JobTypePhotoProcessing, payload.ToMap())
	if err != nil {
		// Set failed status in cache on enqueue failure
		if statusErr := photoprocessor.SetPhotoStatus(resume.UUID, photoprocessor.STATUS_FAILED); statusErr != nil {
			log.Errorf("[UnifiedQueue] Additionally failed to set FAILED status for %s: %v", resume.UUID, statusErr)
		}
		return fmt.Errorf("failed to enqueue photo job for %s: %w", resume.UUID, err)
	}

	log.Infof("[UnifiedQueue] Successfully enqueued photo job %s for resume %s", job.ID, resume.UUID)
	return nil
}

// ProcessResumePhoto derives the variant set and backup flag for an uploaded
// photo and enqueues it. The WebP display variant is gated by the owner's
// plan; backups depend on the global S3 configuration.
func ProcessResumePhoto(resume *models.Resume, originalPath string) error {
	if resume == nil || resume.UUID == "" {
		return fmt.Errorf("cannot enqueue invalid resume data")
	}

	webpVariant := false
	db := database.GetDB()
	if db == nil {
		log.Errorf("[UnifiedQueue] Database connection is nil, skipping WebP gate for resume %s", resume.UUID)
	} else if sub, err := models.FindCurrentSubscription(db, resume.UserID); err == nil {
		webpVariant = entitlements.ForSubscription(sub, time.Now()).PhotoWebP
	}

	enableBackup := false
	if config, err := s3backup.LoadConfig(); err == nil && config.IsEnabled() {
		enableBackup = true
	}

	log.Infof("[UnifiedQueue] Processing photo for resume %s (webp: %t, backup: %t)", resume.UUID, webpVariant, enableBackup)
	return EnqueuePhotoProcessing(resume, originalPath, webpVariant, enableBackup)
}

// enqueueBackupForResume creates the backup record and hands it to the queue.
// An existing completed backup for the same provider is reused as-is.
func (q *Queue) enqueueBackupForResume(db *gorm.DB, resume *models.Resume, originalPath string) error {
	backup, err := models.FindBackupByResumeAndProvider(db, resume.ID, models.BackupProviderS3)
	if err != nil {
		backup, err = models.CreateBackupRecord(db, resume.ID, models.BackupProviderS3)
		if err != nil {
			return fmt.Errorf("failed to create backup record: %w", err)
		}
	} else if backup.Status == models.BackupStatusCompleted {
		log.Debugf("[JobQueue] Backup for resume %s already completed, skipping", resume.UUID)
		return nil
	}

	var fileSize int64
	if info, err := os.Stat(originalPath); err == nil {
		fileSize = info.Size()
	}

	_, err = q.EnqueueMediaBackupJob(resume.ID, resume.UUID, originalPath, fileSize, backup.ID)
	return err
}
