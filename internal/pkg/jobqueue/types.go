package jobqueue

import (
	"encoding/json"
	"time"

	"github.com/resumedesk/ResumeDesk/app/models"
)

// JobType defines the type of job
type JobType string

const (
	JobTypePhotoProcessing JobType = "photo_processing"
	JobTypeMediaBackup     JobType = "media_backup"
	JobTypeMediaDelete     JobType = "media_delete"
	JobTypeBillingSweep    JobType = "billing_sweep"
	JobTypeInvoiceFix      JobType = "invoice_fix"
	JobTypeCounterFlush    JobType = "counter_flush"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// PhotoProcessingJobPayload contains the payload for resume photo processing jobs
type PhotoProcessingJobPayload struct {
	ResumeID     uint   `json:"resume_id"`
	ResumeUUID   string `json:"resume_uuid"`
	FilePath     string `json:"file_path"`     // Uploaded original file path
	WebpVariant  bool   `json:"webp_variant"`  // Whether the plan includes the WebP display variant
	EnableBackup bool   `json:"enable_backup"` // Whether to trigger an S3 backup after processing
}

// ToMap converts the payload to a map for storage
func (p PhotoProcessingJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"resume_id":     p.ResumeID,
		"resume_uuid":   p.ResumeUUID,
		"file_path":     p.FilePath,
		"webp_variant":  p.WebpVariant,
		"enable_backup": p.EnableBackup,
	}
}

// FromMap creates a payload from a map
func PhotoProcessingJobPayloadFromMap(data map[string]interface{}) (*PhotoProcessingJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload PhotoProcessingJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// MediaBackupJobPayload contains the payload for photo backup jobs
type MediaBackupJobPayload struct {
	ResumeID   uint                  `json:"resume_id"`
	ResumeUUID string                `json:"resume_uuid"`
	FilePath   string                `json:"file_path"`
	FileSize   int64                 `json:"file_size"`
	Provider   models.BackupProvider `json:"provider"`
	BackupID   uint                  `json:"backup_id"`
}

// ToMap converts the payload to a map for storage
func (p MediaBackupJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"resume_id":   p.ResumeID,
		"resume_uuid": p.ResumeUUID,
		"file_path":   p.FilePath,
		"file_size":   p.FileSize,
		"provider":    string(p.Provider),
		"backup_id":   p.BackupID,
	}
}

// FromMap creates a payload from a map
func MediaBackupJobPayloadFromMap(data map[string]interface{}) (*MediaBackupJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload MediaBackupJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// MediaDeleteJobPayload contains the payload for removing a backed-up photo from object storage
type MediaDeleteJobPayload struct {
	ResumeID   uint                  `json:"resume_id"`
	ResumeUUID string                `json:"resume_uuid"`
	ObjectKey  string                `json:"object_key"`
	BucketName string                `json:"bucket_name"`
	Provider   models.BackupProvider `json:"provider"`
	BackupID   uint                  `json:"backup_id"`
}

// ToMap converts the payload to a map for storage
func (p MediaDeleteJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"resume_id":   p.ResumeID,
		"resume_uuid": p.ResumeUUID,
		"object_key":  p.ObjectKey,
		"bucket_name": p.BucketName,
		"provider":    string(p.Provider),
		"backup_id":   p.BackupID,
	}
}

// FromMap creates a delete payload from a map
func MediaDeleteJobPayloadFromMap(data map[string]interface{}) (*MediaDeleteJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload MediaDeleteJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// BillingSweepJobPayload contains the payload for a manually triggered billing sweep
type BillingSweepJobPayload struct {
	RequestedBy string `json:"requested_by"` // Admin email; empty for scheduled sweeps
}

func (p BillingSweepJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"requested_by": p.RequestedBy,
	}
}

func BillingSweepJobPayloadFromMap(data map[string]interface{}) (*BillingSweepJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var payload BillingSweepJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// InvoiceFixJobPayload contains the payload for bulk invoice tax recalculation
type InvoiceFixJobPayload struct {
	Currency    string `json:"currency"`
	RequestedBy string `json:"requested_by"`
}

func (p InvoiceFixJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"currency":     p.Currency,
		"requested_by": p.RequestedBy,
	}
}

func InvoiceFixJobPayloadFromMap(data map[string]interface{}) (*InvoiceFixJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var payload InvoiceFixJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// CounterFlushJobPayload contains the payload for a manually triggered counter flush
type CounterFlushJobPayload struct {
	RequestedBy string `json:"requested_by"`
}

func (p CounterFlushJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"requested_by": p.RequestedBy,
	}
}

func CounterFlushJobPayloadFromMap(data map[string]interface{}) (*CounterFlushJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var payload CounterFlushJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
