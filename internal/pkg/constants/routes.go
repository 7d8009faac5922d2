package constants

// Route prefixes shared between the router and URL construction.
const (
	UploadsRoute = "/uploads"
	// Uploads path without leading slash. Photo variant paths built on it
	// work both as file system paths and as URL paths under UploadsRoute.
	UploadsPath = "uploads"

	// Public share prefixes for published documents.
	ResumeShareRoute = "/r"
	LetterShareRoute = "/l"
)
