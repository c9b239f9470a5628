package filepathparser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/csvimport/import-wizard/types"
)

const DefaultMaxFileSizeBytes int64 = 10 * 1024 * 1024

var allowedExtensions = []string{".csv", ".txt"}

func ParsePath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		dirname, _ := os.UserHomeDir()
		path = filepath.Join(dirname, path[2:])
	}

	return filepath.Abs(path)
}

// ValidateUpload checks a selected file before anything is read from it and
// returns its size.
func ValidateUpload(path string, maxFileSizeBytes int64) (int64, error) {
	if maxFileSizeBytes <= 0 {
		maxFileSizeBytes = DefaultMaxFileSizeBytes
	}

	extension := strings.ToLower(filepath.Ext(path))
	allowed := false
	for _, allowedExtension := range allowedExtensions {
		if extension == allowedExtension {
			allowed = true
			break
		}
	}
	if !allowed {
		return 0, types.NewValidationError("file", "Please select a CSV or TXT file")
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, types.NewValidationError("file", "Cannot open %s: %v", filepath.Base(path), err)
	}
	if info.IsDir() {
		return 0, types.NewValidationError("file", "%s is a directory", filepath.Base(path))
	}
	if info.Size() > maxFileSizeBytes {
		return 0, types.NewValidationError("file", "File is too large. Maximum size is %s.", FormatSize(maxFileSizeBytes))
	}

	return info.Size(), nil
}

func FormatSize(size int64) string {
	switch {
	case size >= 1024*1024:
		return fmt.Sprintf("%gMB", float64(size)/(1024*1024))
	case size >= 1024:
		return fmt.Sprintf("%.1fKB", float64(size)/1024)
	default:
		return fmt.Sprintf("%dB", size)
	}
}
