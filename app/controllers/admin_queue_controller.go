package controllers

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sujit-baniya/flash"

	"github.com/resumedesk/ResumeDesk/app/repository"
	"github.com/resumedesk/ResumeDesk/internal/pkg/jobqueue"
	"github.com/resumedesk/ResumeDesk/internal/pkg/photoprocessor"
	"github.com/resumedesk/ResumeDesk/internal/pkg/usercontext"
)

// ============================================================================
// ADMIN QUEUE CONTROLLER - Repository Pattern
// ============================================================================

// queueItemView is one row in the cache/queue monitor
type queueItemView struct {
	Key       string
	Value     string
	Type      string
	TTL       time.Duration
	Size      int64
	CreatedAt time.Time
}

// AdminQueueController handles admin queue-related HTTP requests using repository pattern
type AdminQueueController struct {
	queueRepo repository.QueueRepository
}

// NewAdminQueueController creates a new admin queue controller with repository
func NewAdminQueueController(queueRepo repository.QueueRepository) *AdminQueueController {
	return &AdminQueueController{
		queueRepo: queueRepo,
	}
}

// handleError is a helper method for consistent error handling
func (aqc *AdminQueueController) handleError(c *fiber.Ctx, message string, err error) error {
	fm := fiber.Map{
		"type":    "error",
		"message": message + ": " + err.Error(),
	}
	return flash.WithError(c, fm).Redirect("/admin/queues")
}

// HandleAdminQueues displays the admin queue monitor page using repository pattern
func (aqc *AdminQueueController) HandleAdminQueues(c *fiber.Ctx) error {
	queueItems, err := aqc.getQueueItems()
	if err != nil {
		queueItems = []queueItemView{} // Empty slice if error
	}

	return renderPage(c, "admin/queues", " | Cache & Queue Monitor", fiber.Map{
		"Items": queueItems,
		"Now":   time.Now(),
	})
}

// HandleAdminQueuesData returns only the table rows for HTMX refresh
func (aqc *AdminQueueController) HandleAdminQueuesData(c *fiber.Ctx) error {
	queueItems, err := aqc.getQueueItems()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to read queue data: %v", err),
		})
	}

	return c.Render("admin/queues_table", fiber.Map{
		"Items": queueItems,
		"Now":   time.Now(),
	}, "layouts/bare")
}

// HandleAdminQueueDelete deletes a specific cache entry using repository pattern
func (aqc *AdminQueueController) HandleAdminQueueDelete(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Key is required")
	}

	// Delete the key using repository
	result, err := aqc.queueRepo.DeleteKey(key)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(fmt.Sprintf("Delete failed: %v", err))
	}

	if result == 0 {
		return c.Status(fiber.StatusNotFound).SendString("Entry not found")
	}

	// Return empty content to remove the table row
	return c.SendString("")
}

// HandleAdminCounterFlush forces the buffered view/download counters into the
// database outside the regular flush ticker.
func (aqc *AdminQueueController) HandleAdminCounterFlush(c *fiber.Ctx) error {
	requestedBy := usercontext.GetUserContext(c).Username

	job, err := jobqueue.EnqueueCounterFlush(requestedBy)
	if err != nil {
		return aqc.handleError(c, "Failed to enqueue counter flush", err)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Counter flush enqueued (job " + job.ID + ")",
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/queues")
}

// HandleAdminStatsCacheFlush drops the cached dashboard statistics so the
// next dashboard load recomputes them from the database.
func (aqc *AdminQueueController) HandleAdminStatsCacheFlush(c *fiber.Ctx) error {
	keys, err := aqc.queueRepo.FindKeysByPatterns([]string{"statistics:*"})
	if err != nil {
		return aqc.handleError(c, "Failed to scan statistics cache", err)
	}

	deleted, err := aqc.queueRepo.DeleteKeys(keys)
	if err != nil {
		return aqc.handleError(c, "Failed to clear statistics cache", err)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("Cleared %d cached statistics entries", deleted),
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/queues")
}

// getQueueItems retrieves all items from the cache with their metadata using repository pattern
func (aqc *AdminQueueController) getQueueItems() ([]queueItemView, error) {
	// SCAN instead of KEYS so the monitor never blocks Redis
	keys, err := aqc.queueRepo.FindKeysByPatterns([]string{"*"})
	if err != nil {
		return nil, fmt.Errorf("failed to list cache keys: %v", err)
	}

	queueItems := make([]queueItemView, 0, len(keys))

	for _, key := range keys {
		// Get value using repository
		value, err := aqc.queueRepo.GetValue(key)
		if err != nil && err != redis.Nil {
			// Skip this key if there's an error other than key not found
			continue
		}

		// Get TTL using repository
		ttl, err := aqc.queueRepo.GetTTL(key)
		if err != nil {
			// If we can't get TTL, use a default
			ttl = -1
		}

		// Determine type based on key prefix
		itemType := "unknown"
		displayValue := value

		if strings.HasPrefix(key, "photo:status:") {
			itemType = "photo_status"
			uuid := strings.TrimPrefix(key, "photo:status:")
			switch value {
			case photoprocessor.STATUS_PENDING:
				displayValue = "Pending"
			case photoprocessor.STATUS_PROCESSING:
				displayValue = "Processing"
			case photoprocessor.STATUS_COMPLETED:
				displayValue = "Completed"
			case photoprocessor.STATUS_FAILED:
				displayValue = "Failed"
			}
			displayValue = fmt.Sprintf("%s (resume %s)", displayValue, uuid)
		} else if strings.HasPrefix(key, jobqueue.JobKeyPrefix) { // Job data
			itemType = "job"
			jobID := strings.TrimPrefix(key, jobqueue.JobKeyPrefix)
			displayValue = fmt.Sprintf("Job %s: %s", jobID, aqc.getJobStatusFromValue(value))
		} else if key == jobqueue.JobQueueKey {
			itemType = "job_queue"
			queueSize, _ := aqc.queueRepo.GetListLength(key)
			displayValue = fmt.Sprintf("Waiting (%d jobs)", queueSize)
		} else if key == jobqueue.JobProcessingKey {
			itemType = "job_processing"
			processingSize, _ := aqc.queueRepo.GetListLength(key)
			displayValue = fmt.Sprintf("In flight (%d jobs)", processingSize)
		} else if key == jobqueue.JobStatsKey {
			itemType = "job_stats"
			displayValue = "Job statistics"
		} else if strings.Contains(key, ":counters:") {
			itemType = "counter"
			displayValue = "Buffered view/download counters"
		} else if strings.HasPrefix(key, "session:") {
			itemType = "session"
		}

		// Get memory usage (approximate for the value only)
		size := int64(len(value))

		// Redis does not store creation times; estimate from the TTL under the
		// assumption of a consistent 24h policy.
		createdAt := time.Now()
		if ttl > 0 {
			maxTTL := 24 * time.Hour
			estimatedAge := maxTTL - ttl
			if estimatedAge > 0 && estimatedAge < maxTTL {
				createdAt = time.Now().Add(-estimatedAge)
			}
		}

		queueItems = append(queueItems, queueItemView{
			Key:       key,
			Value:     displayValue,
			Type:      itemType,
			TTL:       ttl,
			Size:      size,
			CreatedAt: createdAt,
		})
	}

	// Sort by type and then by creation time (newest first)
	sort.Slice(queueItems, func(i, j int) bool {
		if queueItems[i].Type != queueItems[j].Type {
			return queueItems[i].Type < queueItems[j].Type
		}
		return queueItems[i].CreatedAt.After(queueItems[j].CreatedAt)
	})

	return queueItems, nil
}

// getJobStatusFromValue extracts job status from JSON job data
func (aqc *AdminQueueController) getJobStatusFromValue(jsonValue string) string {
	// Simple extraction without full JSON parsing for performance
	if strings.Contains(jsonValue, `"status":"pending"`) {
		return "Pending"
	} else if strings.Contains(jsonValue, `"status":"processing"`) {
		return "Processing"
	} else if strings.Contains(jsonValue, `"status":"completed"`) {
		return "Completed"
	} else if strings.Contains(jsonValue, `"status":"failed"`) {
		return "Failed"
	} else if strings.Contains(jsonValue, `"status":"retrying"`) {
		return "Retrying"
	}
	return "Unknown"
}

// ============================================================================
// GLOBAL ADMIN QUEUE CONTROLLER INSTANCE - Singleton Pattern
// ============================================================================

var adminQueueController *AdminQueueController

// InitializeAdminQueueController initializes the global admin queue controller
func InitializeAdminQueueController() {
	queueRepo := repository.GetGlobalFactory().GetQueueRepository()
	adminQueueController = NewAdminQueueController(queueRepo)
}

// GetAdminQueueController returns the global admin queue controller instance
func GetAdminQueueController() *AdminQueueController {
	if adminQueueController == nil {
		InitializeAdminQueueController()
	}
	return adminQueueController
}
