package common

const (
	// Size constants
	BytesPerKB = 1024

	// File operation constants
	DefaultFilePermissions = 0755
	DefaultFileMode        = 0644

	// Output format
	OutputExtension = ".jpg"
)
