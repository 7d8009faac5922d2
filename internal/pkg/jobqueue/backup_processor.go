package jobqueue

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/internal/pkg/database"
	"github.com/resumedesk/ResumeDesk/internal/pkg/photoprocessor"
	"github.com/resumedesk/ResumeDesk/internal/pkg/s3backup"
)

// processMediaBackupJob processes a photo backup job
func (q *Queue) processMediaBackupJob(ctx context.Context, job *Job) error {
	// Parse the job payload
	payload, err := MediaBackupJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse media backup job payload: %w", err)
	}

	log.Infof("[MediaBackup] Processing backup job for resume %s (ID: %d)", payload.ResumeUUID, payload.ResumeID)

	// Load S3 configuration
	config, err := s3backup.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load S3 config: %w", err)
	}

	if !config.IsEnabled() {
		return fmt.Errorf("S3 backup is disabled")
	}

	// Create S3 client
	s3Client, err := s3backup.NewClient(config)
	if err != nil {
		return fmt.Errorf("failed to create S3 client: %w", err)
	}

	// Get database connection
	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Get the backup record
	var backup models.MediaBackup
	if err := db.First(&backup, payload.BackupID).Error; err != nil {
		return fmt.Errorf("failed to find backup record: %w", err)
	}

	// Retries reuse the recorded key so a crashed worker never strands an
	// orphan object under a second key
	objectKey := backup.ObjectKey
	if objectKey == "" {
		fileExt := filepath.Ext(payload.FilePath)
		now := time.Now()
		objectKey = config.GetObjectKey(payload.ResumeUUID, fileExt, now.Year(), int(now.Month()))
	} else if exists, err := s3Client.ObjectExists(objectKey); err == nil && exists {
		log.Infof("[MediaBackup] Object %s already uploaded, completing backup %d", objectKey, backup.ID)
		var size int64
		if info, statErr := os.Stat(payload.FilePath); statErr == nil {
			size = info.Size()
		}
		return backup.MarkAsCompleted(db, config.GetBucketName(), objectKey, size)
	}

	if err := backup.MarkAsUploading(db, objectKey); err != nil {
		return fmt.Errorf("failed to mark backup as uploading: %w", err)
	}

	// Upload to S3
	log.Infof("[MediaBackup] Uploading %s to S3 as %s", payload.FilePath, objectKey)
	result, err := s3Client.UploadFile(payload.FilePath, objectKey)
	if err != nil {
		// Mark backup as failed
		if markErr := backup.MarkAsFailed(db, err.Error()); markErr != nil {
			log.Errorf("[MediaBackup] Failed to mark backup as failed: %v", markErr)
		}
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	// Mark backup as completed
	if err := backup.MarkAsCompleted(db, result.BucketName, result.ObjectKey, result.Size); err != nil {
		return fmt.Errorf("failed to mark backup as completed: %w", err)
	}

	log.Infof("[MediaBackup] Successfully backed up resume photo %s to s3://%s/%s",
		payload.ResumeUUID, result.BucketName, result.ObjectKey)

	return nil
}

// processMediaDeleteJob removes a backed-up photo from object storage
func (q *Queue) processMediaDeleteJob(ctx context.Context, job *Job) error {
	payload, err := MediaDeleteJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse media delete job payload: %w", err)
	}

	log.Infof("[MediaBackup] Processing delete job for resume %s (key: %s)", payload.ResumeUUID, payload.ObjectKey)

	config, err := s3backup.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load S3 config: %w", err)
	}

	if !config.IsEnabled() {
		return fmt.Errorf("S3 backup is disabled")
	}

	s3Client, err := s3backup.NewClient(config)
	if err != nil {
		return fmt.Errorf("failed to create S3 client: %w", err)
	}

	if err := s3Client.DeleteFile(payload.ObjectKey); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", payload.ObjectKey, err)
	}

	// Mark the backup record deleted; the row stays for audit
	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	var backup models.MediaBackup
	if err := db.First(&backup, payload.BackupID).Error; err != nil {
		// Record already gone; the object is deleted, so the job is done
		log.Warnf("[MediaBackup] Backup record %d not found after delete: %v", payload.BackupID, err)
		return nil
	}

	if err := backup.MarkAsDeleted(db, "removed from object storage"); err != nil {
		return fmt.Errorf("failed to mark backup as deleted: %w", err)
	}

	log.Infof("[MediaBackup] Removed s3://%s/%s for resume %s", payload.BucketName, payload.ObjectKey, payload.ResumeUUID)

	return nil
}

// EnqueueMediaBackupJob creates and enqueues a photo backup job
func (q *Queue) EnqueueMediaBackupJob(resumeID uint, resumeUUID, filePath string, fileSize int64, backupID uint) (*Job, error) {
	payload := MediaBackupJobPayload{
		ResumeID:   resumeID,
		ResumeUUID: resumeUUID,
		FilePath:   filePath,
		FileSize:   fileSize,
		Provider:   models.BackupProviderS3,
		BackupID:   backupID,
	}

	return q.EnqueueJob(JobTypeMediaBackup, payload.ToMap())
}

// EnqueueMediaDeleteJob creates and enqueues an object storage delete job
func (q *Queue) EnqueueMediaDeleteJob(resumeID uint, resumeUUID, objectKey, bucketName string, backupID uint) (*Job, error) {
	payload := MediaDeleteJobPayload{
		ResumeID:   resumeID,
		ResumeUUID: resumeUUID,
		ObjectKey:  objectKey,
		BucketName: bucketName,
		Provider:   models.BackupProviderS3,
		BackupID:   backupID,
	}

	return q.EnqueueJob(JobTypeMediaDelete, payload.ToMap())
}

// EnqueueBackupDeletesForResume schedules object storage deletes for every
// completed backup of a resume. Used when the photo is replaced or the
// resume is removed.
func (q *Queue) EnqueueBackupDeletesForResume(resume *models.Resume) {
	db := database.GetDB()
	if db == nil {
		return
	}

	backups, err := models.FindCompletedBackupsByResumeID(db, resume.ID)
	if err != nil {
		log.Errorf("[MediaBackup] Failed to list backups for resume %s: %v", resume.UUID, err)
		return
	}

	for _, b := range backups {
		if _, err := q.EnqueueMediaDeleteJob(resume.ID, resume.UUID, b.ObjectKey, b.BucketName, b.ID); err != nil {
			log.Errorf("[MediaBackup] Failed to enqueue delete for backup %d: %v", b.ID, err)
		}
	}
}

// RetryFailedMediaBackups finds and retries failed backup jobs
func (q *Queue) RetryFailedMediaBackups() error {
	db := database.GetDB()

	// Find failed backups that can be retried
	failedBackups, err := models.FindFailedRetryableBackups(db)
	if err != nil {
		return fmt.Errorf("failed to find failed backups: %w", err)
	}

	if len(failedBackups) == 0 {
		return nil
	}

	log.Infof("[MediaBackup] Found %d failed backups to retry", len(failedBackups))

	for _, backup := range failedBackups {
		originalPath, ok := photoprocessor.FindOriginalPath(backup.Resume.UUID)
		if !ok {
			log.Warnf("[MediaBackup] Original for resume %s is gone, marking backup %d deleted", backup.Resume.UUID, backup.ID)
			_ = backup.MarkAsDeleted(db, "original file no longer exists")
			continue
		}

		var fileSize int64
		if info, err := os.Stat(originalPath); err == nil {
			fileSize = info.Size()
		}

		// Create retry job
		job, err := q.EnqueueMediaBackupJob(
			backup.ResumeID,
			backup.Resume.UUID,
			originalPath,
			fileSize,
			backup.ID,
		)
		if err != nil {
			log.Errorf("[MediaBackup] Failed to enqueue retry job for backup %d: %v", backup.ID, err)
			continue
		}

		log.Infof("[MediaBackup] Enqueued retry job %s for backup %d", job.ID, backup.ID)
	}

	return nil
}

// ProcessPendingMediaBackups picks up backup records that never made it into
// the queue, usually after a restart, plus uploads stuck in 'uploading' from
// a crashed worker.
func (q *Queue) ProcessPendingMediaBackups() error {
	db := database.GetDB()

	pending, err := models.FindPendingBackups(db)
	if err != nil {
		return fmt.Errorf("failed to find pending backups: %w", err)
	}

	stuck, err := models.FindStuckUploadingBackups(db, 30*time.Minute)
	if err != nil {
		return fmt.Errorf("failed to find stuck backups: %w", err)
	}

	candidates := append(pending, stuck...)
	if len(candidates) == 0 {
		return nil
	}

	log.Infof("[MediaBackup] Re-enqueueing %d pending/stuck backups", len(candidates))

	for _, backup := range candidates {
		originalPath, ok := photoprocessor.FindOriginalPath(backup.Resume.UUID)
		if !ok {
			log.Warnf("[MediaBackup] Original for resume %s is gone, marking backup %d deleted", backup.Resume.UUID, backup.ID)
			_ = backup.MarkAsDeleted(db, "original file no longer exists")
			continue
		}

		var fileSize int64
		if info, err := os.Stat(originalPath); err == nil {
			fileSize = info.Size()
		}

		job, err := q.EnqueueMediaBackupJob(
			backup.ResumeID,
			backup.Resume.UUID,
			originalPath,
			fileSize,
			backup.ID,
		)
		if err != nil {
			log.Errorf("[MediaBackup] Failed to re-enqueue backup %d: %v", backup.ID, err)
			continue
		}

		log.Infof("[MediaBackup] Re-enqueued job %s for backup %d", job.ID, backup.ID)
	}

	return nil
}
