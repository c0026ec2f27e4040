package application

import (
	"fmt"
	"path/filepath"
	"strings"

	"examphoto/internal/watcher"
)

// IsImageFile reports whether path has an extension the converter can read.
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range watcher.DefaultExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// FormatKB renders a byte count as kilobytes with one decimal.
func FormatKB(bytes int64) string {
	return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
}
