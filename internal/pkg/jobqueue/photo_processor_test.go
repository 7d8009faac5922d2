package jobqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resumedesk/ResumeDesk/app/models"
)

func TestEnqueuePhotoProcessing_NilResume(t *testing.T) {
	err := EnqueuePhotoProcessing(nil, "/tmp/photo.jpg", false, false)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot enqueue invalid resume data")
}

func TestEnqueuePhotoProcessing_EmptyUUID(t *testing.T) {
	resume := &models.Resume{UUID: ""}

	err := EnqueuePhotoProcessing(resume, "/tmp/photo.jpg", false, false)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot enqueue invalid resume data")
}

func TestProcessResumePhoto_NilResume(t *testing.T) {
	err := ProcessResumePhoto(nil, "/tmp/photo.jpg")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot enqueue invalid resume data")
}

func TestProcessResumePhoto_EmptyUUID(t *testing.T) {
	resume := &models.Resume{UUID: ""}

	err := ProcessResumePhoto(resume, "/tmp/photo.jpg")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot enqueue invalid resume data")
}
