package subscription

import (
	"errors"
	"testing"

	"github.com/resumedesk/ResumeDesk/app/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{models.SubStatusActive, models.SubStatusGracePeriod, true},
		{models.SubStatusActive, models.SubStatusCancelled, true},
		{models.SubStatusActive, models.SubStatusExpired, false},
		{models.SubStatusActive, models.SubStatusActive, false},

		{models.SubStatusGracePeriod, models.SubStatusActive, true},
		{models.SubStatusGracePeriod, models.SubStatusExpired, true},
		{models.SubStatusGracePeriod, models.SubStatusCancelled, true},
		{models.SubStatusGracePeriod, models.SubStatusGracePeriod, false},

		{models.SubStatusExpired, models.SubStatusActive, false},
		{models.SubStatusExpired, models.SubStatusGracePeriod, false},
		{models.SubStatusExpired, models.SubStatusCancelled, false},

		{models.SubStatusCancelled, models.SubStatusActive, false},
		{models.SubStatusCancelled, models.SubStatusExpired, false},
		{models.SubStatusCancelled, models.SubStatusGracePeriod, false},

		{"BOGUS", models.SubStatusActive, false},
		{models.SubStatusActive, "BOGUS", false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.allowed {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestValidateTransition_NamesBothStates(t *testing.T) {
	err := ValidateTransition(models.SubStatusExpired, models.SubStatusActive)
	if err == nil {
		t.Fatal("expected an error for EXPIRED -> ACTIVE")
	}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	want := "subscription status transition not allowed: EXPIRED -> ACTIVE"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}

	if err := ValidateTransition(models.SubStatusActive, models.SubStatusGracePeriod); err != nil {
		t.Errorf("ACTIVE -> GRACE_PERIOD should be allowed, got %v", err)
	}
}

func TestIsKnownStatus(t *testing.T) {
	for _, s := range []string{
		models.SubStatusActive,
		models.SubStatusGracePeriod,
		models.SubStatusExpired,
		models.SubStatusCancelled,
	} {
		if !IsKnownStatus(s) {
			t.Errorf("IsKnownStatus(%s) = false, want true", s)
		}
	}
	for _, s := range []string{"", "active", "PAUSED"} {
		if IsKnownStatus(s) {
			t.Errorf("IsKnownStatus(%q) = true, want false", s)
		}
	}
}
