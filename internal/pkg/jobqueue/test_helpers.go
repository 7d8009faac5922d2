//go:build test
// +build test

package jobqueue

import (
	"time"
)

// TestJobFactory creates test jobs for different types
func TestJobFactory() map[JobType]*Job {
	now := time.Now()

	return map[JobType]*Job{
		JobTypePhotoProcessing: {
			ID:     "test-photo-job",
			Type:   JobTypePhotoProcessing,
			Status: JobStatusPending,
			Payload: PhotoProcessingJobPayload{
				ResumeID:   123,
				ResumeUUID: "test-resume-uuid",
				FilePath:   "/test/path/test-resume-uuid.jpg",
			}.ToMap(),
			CreatedAt:  now,
			UpdatedAt:  now,
			RetryCount: 0,
			MaxRetries: 3,
		},
		JobTypeBillingSweep: {
			ID:         "test-billing-sweep-job",
			Type:       JobTypeBillingSweep,
			Status:     JobStatusPending,
			Payload:    BillingSweepJobPayload{RequestedBy: "test"}.ToMap(),
			CreatedAt:  now,
			UpdatedAt:  now,
			RetryCount: 0,
			MaxRetries: 3,
		},
	}
}

// WaitForCondition waits for a condition to be true with timeout
func WaitForCondition(condition func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
