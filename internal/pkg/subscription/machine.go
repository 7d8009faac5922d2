package subscription

import (
	"fmt"

	"github.com/resumedesk/ResumeDesk/app/models"
)

// allowedTransitions is the full edge set of the subscription state machine.
// EXPIRED and CANCELLED are terminal: a lapsed user comes back through a new
// subscription row, never by reviving the old one.
var allowedTransitions = map[string][]string{
	models.SubStatusActive:      {models.SubStatusGracePeriod, models.SubStatusCancelled},
	models.SubStatusGracePeriod: {models.SubStatusActive, models.SubStatusExpired, models.SubStatusCancelled},
	models.SubStatusExpired:     {},
	models.SubStatusCancelled:   {},
}

// CanTransition reports whether current -> target is a permitted edge.
func CanTransition(current, target string) bool {
	for _, allowed := range allowedTransitions[current] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidTransition with both states named
// when the edge is not permitted.
func ValidateTransition(current, target string) error {
	if !CanTransition(current, target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, target)
	}
	return nil
}

// IsKnownStatus reports whether the value is one of the four machine states.
func IsKnownStatus(status string) bool {
	switch status {
	case models.SubStatusActive, models.SubStatusGracePeriod, models.SubStatusExpired, models.SubStatusCancelled:
		return true
	default:
		return false
	}
}
