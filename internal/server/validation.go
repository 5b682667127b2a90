// validation.go - Filename sanitization and upload type gating
package server

import (
	"os"
	"path/filepath"
	"strings"
)

// defaultAllowedExtensions is the office-document allow-list applied to
// uploads when DSH_ALLOWED_EXTENSIONS is not set.
const defaultAllowedExtensions = "pptx,docx,xlsx"

// allowedExtensions returns the upload extension allow-list, lowercased,
// without leading dots.
func allowedExtensions() map[string]bool {
	raw := os.Getenv("DSH_ALLOWED_EXTENSIONS")
	if raw == "" {
		raw = defaultAllowedExtensions
	}
	set := make(map[string]bool)
	for _, e := range strings.Split(raw, ",") {
		e = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(e)), ".")
		if e != "" {
			set[e] = true
		}
	}
	return set
}

// fileExtension returns the lowercased extension of filename without the
// dot, or "" when the name has none.
func fileExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return strings.TrimPrefix(ext, ".")
}

// extensionAllowed reports whether ext is on the upload allow-list.
func extensionAllowed(ext string) bool {
	return allowedExtensions()[ext]
}

// SanitizeFilename removes potentially dangerous characters from filenames
// so the result is safe to echo back and to use as display metadata.
func SanitizeFilename(filename string) string {
	// Remove path separators
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")

	// Remove null bytes
	filename = strings.ReplaceAll(filename, "\x00", "")

	// Collapse "..", which survives separator replacement above
	filename = strings.ReplaceAll(filename, "..", "_")

	// Trim spaces and dots from start/end
	filename = strings.Trim(filename, " .")

	// Limit length
	if len(filename) > 255 {
		ext := filepath.Ext(filename)
		nameWithoutExt := filename[:len(filename)-len(ext)]
		filename = nameWithoutExt[:255-len(ext)] + ext
	}

	if filename == "" {
		filename = "unnamed"
	}

	return filename
}
