package jobqueue

import (
	"testing"
)

func TestQueue_processMediaBackupJob_Success(t *testing.T) {
	// Skip this test - requires Redis connection and S3 mocking
	t.Skip("Skipping integration test that requires Redis connection and S3 setup")
}

func TestQueue_processMediaBackupJob_ConfigDisabled(t *testing.T) {
	// Skip this test - requires Redis connection and S3 mocking
	t.Skip("Skipping integration test that requires Redis connection and S3 setup")
}

func TestQueue_processMediaBackupJob_UploadError(t *testing.T) {
	// Skip this test - requires Redis connection and S3 mocking
	t.Skip("Skipping integration test that requires Redis connection and S3 setup")
}

func TestQueue_processMediaBackupJob_InvalidPayload(t *testing.T) {
	// Skip this test - requires Redis connection and S3 mocking
	t.Skip("Skipping integration test that requires Redis connection and S3 setup")
}

func TestQueue_EnqueueMediaBackupJob(t *testing.T) {
	// Skip this test - requires Redis connection
	t.Skip("Skipping integration test that requires Redis connection")
}

func TestQueue_processMediaDeleteJob_Success(t *testing.T) {
	// Skip this test - requires Redis connection and S3 mocking
	t.Skip("Skipping integration test that requires Redis connection and S3 setup")
}

func TestQueue_processMediaDeleteJob_DeleteError(t *testing.T) {
	// Skip this test - requires Redis connection and S3 mocking
	t.Skip("Skipping integration test that requires Redis connection and S3 setup")
}

func TestQueue_EnqueueMediaDeleteJob(t *testing.T) {
	// Skip this test - requires Redis connection
	t.Skip("Skipping integration test that requires Redis connection")
}

func TestQueue_RetryFailedMediaBackups(t *testing.T) {
	// Skip this test - requires Redis connection and database setup
	t.Skip("Skipping integration test that requires Redis connection and database setup")
}

func TestQueue_ProcessPendingMediaBackups(t *testing.T) {
	// Skip this test - requires Redis connection and database setup
	t.Skip("Skipping integration test that requires Redis connection and database setup")
}
