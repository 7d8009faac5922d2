package jobqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumedesk/ResumeDesk/app/models"
)

func TestJobType(t *testing.T) {
	tests := []struct {
		name     string
		jobType  JobType
		expected string
	}{
		{"Photo Processing", JobTypePhotoProcessing, "photo_processing"},
		{"Media Backup", JobTypeMediaBackup, "media_backup"},
		{"Media Delete", JobTypeMediaDelete, "media_delete"},
		{"Billing Sweep", JobTypeBillingSweep, "billing_sweep"},
		{"Invoice Fix", JobTypeInvoiceFix, "invoice_fix"},
		{"Counter Flush", JobTypeCounterFlush, "counter_flush"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.jobType))
		})
	}
}

func TestJobStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   JobStatus
		expected string
	}{
		{"Pending", JobStatusPending, "pending"},
		{"Processing", JobStatusProcessing, "processing"},
		{"Completed", JobStatusCompleted, "completed"},
		{"Failed", JobStatusFailed, "failed"},
		{"Retrying", JobStatusRetrying, "retrying"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.status))
		})
	}
}

func TestJob_IsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		job       *Job
		retryable bool
	}{
		{
			name: "Failed job with retries remaining",
			job: &Job{
				Status:     JobStatusFailed,
				RetryCount: 1,
				MaxRetries: 3,
			},
			retryable: true,
		},
		{
			name: "Failed job with no retries remaining",
			job: &Job{
				Status:     JobStatusFailed,
				RetryCount: 3,
				MaxRetries: 3,
			},
			retryable: false,
		},
		{
			name: "Completed job",
			job: &Job{
				Status:     JobStatusCompleted,
				RetryCount: 1,
				MaxRetries: 3,
			},
			retryable: false,
		},
		{
			name: "Pending job",
			job: &Job{
				Status:     JobStatusPending,
				RetryCount: 0,
				MaxRetries: 3,
			},
			retryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.job.IsRetryable())
		})
	}
}

func TestJob_MarkAsProcessing(t *testing.T) {
	job := &Job{
		Status: JobStatusPending,
	}

	beforeTime := time.Now()
	job.MarkAsProcessing()
	afterTime := time.Now()

	assert.Equal(t, JobStatusProcessing, job.Status)
	assert.True(t, job.UpdatedAt.After(beforeTime) || job.UpdatedAt.Equal(beforeTime))
	assert.True(t, job.UpdatedAt.Before(afterTime) || job.UpdatedAt.Equal(afterTime))
	assert.NotNil(t, job.ProcessedAt)
	assert.True(t, job.ProcessedAt.After(beforeTime) || job.ProcessedAt.Equal(beforeTime))
	assert.True(t, job.ProcessedAt.Before(afterTime) || job.ProcessedAt.Equal(afterTime))
}

func TestJob_MarkAsCompleted(t *testing.T) {
	job := &Job{
		Status:   JobStatusProcessing,
		ErrorMsg: "some error",
	}

	beforeTime := time.Now()
	job.MarkAsCompleted()
	afterTime := time.Now()

	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.True(t, job.UpdatedAt.After(beforeTime) || job.UpdatedAt.Equal(beforeTime))
	assert.True(t, job.UpdatedAt.Before(afterTime) || job.UpdatedAt.Equal(afterTime))
	assert.NotNil(t, job.CompletedAt)
	assert.True(t, job.CompletedAt.After(beforeTime) || job.CompletedAt.Equal(beforeTime))
	assert.True(t, job.CompletedAt.Before(afterTime) || job.CompletedAt.Equal(afterTime))
	assert.Empty(t, job.ErrorMsg)
}

func TestJob_MarkAsFailed(t *testing.T) {
	job := &Job{
		Status:     JobStatusProcessing,
		RetryCount: 1,
	}

	errorMsg := "processing failed"
	beforeTime := time.Now()
	job.MarkAsFailed(errorMsg)
	afterTime := time.Now()

	assert.Equal(t, JobStatusFailed, job.Status)
	assert.True(t, job.UpdatedAt.After(beforeTime) || job.UpdatedAt.Equal(beforeTime))
	assert.True(t, job.UpdatedAt.Before(afterTime) || job.UpdatedAt.Equal(afterTime))
	assert.Equal(t, errorMsg, job.ErrorMsg)
	assert.Equal(t, 2, job.RetryCount)
}

func TestJob_MarkAsRetrying(t *testing.T) {
	job := &Job{
		Status: JobStatusFailed,
	}

	beforeTime := time.Now()
	job.MarkAsRetrying()
	afterTime := time.Now()

	assert.Equal(t, JobStatusRetrying, job.Status)
	assert.True(t, job.UpdatedAt.After(beforeTime) || job.UpdatedAt.Equal(beforeTime))
	assert.True(t, job.UpdatedAt.Before(afterTime) || job.UpdatedAt.Equal(afterTime))
}

func TestPhotoProcessingJobPayload_ToMap(t *testing.T) {
	payload := PhotoProcessingJobPayload{
		ResumeID:     123,
		ResumeUUID:   "test-uuid-123",
		FilePath:     "/path/to/file.jpg",
		WebpVariant:  true,
		EnableBackup: true,
	}

	result := payload.ToMap()

	expected := map[string]interface{}{
		"resume_id":     uint(123),
		"resume_uuid":   "test-uuid-123",
		"file_path":     "/path/to/file.jpg",
		"webp_variant":  true,
		"enable_backup": true,
	}

	assert.Equal(t, expected, result)
}

func TestPhotoProcessingJobPayloadFromMap(t *testing.T) {
	data := map[string]interface{}{
		"resume_id":     float64(123), // JSON numbers are float64
		"resume_uuid":   "test-uuid-123",
		"file_path":     "/path/to/file.jpg",
		"webp_variant":  true,
		"enable_backup": true,
	}

	payload, err := PhotoProcessingJobPayloadFromMap(data)
	require.NoError(t, err)

	expected := &PhotoProcessingJobPayload{
		ResumeID:     123,
		ResumeUUID:   "test-uuid-123",
		FilePath:     "/path/to/file.jpg",
		WebpVariant:  true,
		EnableBackup: true,
	}

	assert.Equal(t, expected, payload)
}

func TestPhotoProcessingJobPayloadFromMap_InvalidData(t *testing.T) {
	// Test with invalid JSON structure
	data := map[string]interface{}{
		"resume_id": make(chan int), // channels can't be marshaled to JSON
	}

	payload, err := PhotoProcessingJobPayloadFromMap(data)
	assert.Error(t, err)
	assert.Nil(t, payload)
}

func TestMediaBackupJobPayload_ToMap(t *testing.T) {
	payload := MediaBackupJobPayload{
		ResumeID:   456,
		ResumeUUID: "backup-uuid-456",
		FilePath:   "/backup/path/photo.png",
		FileSize:   1024,
		Provider:   models.BackupProviderS3,
		BackupID:   789,
	}

	result := payload.ToMap()

	expected := map[string]interface{}{
		"resume_id":   uint(456),
		"resume_uuid": "backup-uuid-456",
		"file_path":   "/backup/path/photo.png",
		"file_size":   int64(1024),
		"provider":    string(models.BackupProviderS3),
		"backup_id":   uint(789),
	}

	assert.Equal(t, expected, result)
}

func TestMediaBackupJobPayloadFromMap(t *testing.T) {
	data := map[string]interface{}{
		"resume_id":   float64(456),
		"resume_uuid": "backup-uuid-456",
		"file_path":   "/backup/path/photo.png",
		"file_size":   float64(1024),
		"provider":    "s3",
		"backup_id":   float64(789),
	}

	payload, err := MediaBackupJobPayloadFromMap(data)
	require.NoError(t, err)

	expected := &MediaBackupJobPayload{
		ResumeID:   456,
		ResumeUUID: "backup-uuid-456",
		FilePath:   "/backup/path/photo.png",
		FileSize:   1024,
		Provider:   models.BackupProviderS3,
		BackupID:   789,
	}

	assert.Equal(t, expected, payload)
}

func TestMediaDeleteJobPayloadFromMap(t *testing.T) {
	data := map[string]interface{}{
		"resume_id":   float64(789),
		"resume_uuid": "delete-uuid-789",
		"object_key":  "photos/2026/01/delete-uuid-789.jpg",
		"bucket_name": "test-bucket",
		"provider":    "s3",
		"backup_id":   float64(101112),
	}

	payload, err := MediaDeleteJobPayloadFromMap(data)
	require.NoError(t, err)

	expected := &MediaDeleteJobPayload{
		ResumeID:   789,
		ResumeUUID: "delete-uuid-789",
		ObjectKey:  "photos/2026/01/delete-uuid-789.jpg",
		BucketName: "test-bucket",
		Provider:   models.BackupProviderS3,
		BackupID:   101112,
	}

	assert.Equal(t, expected, payload)
}

func TestBillingSweepJobPayloadFromMap(t *testing.T) {
	data := map[string]interface{}{
		"requested_by": "admin@example.com",
	}

	payload, err := BillingSweepJobPayloadFromMap(data)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", payload.RequestedBy)
}

func TestInvoiceFixJobPayloadFromMap(t *testing.T) {
	data := map[string]interface{}{
		"currency":     "INR",
		"requested_by": "admin@example.com",
	}

	payload, err := InvoiceFixJobPayloadFromMap(data)
	require.NoError(t, err)
	assert.Equal(t, "INR", payload.Currency)
	assert.Equal(t, "admin@example.com", payload.RequestedBy)
}

func TestCounterFlushJobPayloadFromMap(t *testing.T) {
	data := map[string]interface{}{
		"requested_by": "admin@example.com",
	}

	payload, err := CounterFlushJobPayloadFromMap(data)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", payload.RequestedBy)
}
