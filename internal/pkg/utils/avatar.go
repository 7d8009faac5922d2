package utils

import (
	"crypto/md5"
	"fmt"
	"strings"

	"github.com/resumedesk/ResumeDesk/app/models"
)

// AvatarURL resolves the avatar to show for a user. OAuth-linked accounts
// carry the provider picture; everyone else falls back to Gravatar.
func AvatarURL(user *models.User, size int) string {
	if user.AvatarURL != "" {
		return user.AvatarURL
	}
	return GravatarURL(user.Email, size)
}

// GravatarURL generates a Gravatar URL for the given email address
// Default size is 200px if not specified
func GravatarURL(email string, size int) string {
	if size <= 0 {
		size = 200
	}

	email = strings.ToLower(strings.TrimSpace(email))
	hash := md5.Sum([]byte(email))

	// d=mp falls back to the "mystery person" silhouette
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=mp", hash, size)
}
