package harfile

import (
	"path/filepath"
	"strings"
)

// archiveSuffixes lists the file names accepted as HAR input.
var archiveSuffixes = []string{".har", ".har.gz", ".har.zst"}

// SanitizePath cleans up a path that was dropped or pasted onto the command line.
// Removes surrounding whitespace, the braces some desktops wrap paths with,
// and matching quotes.
func SanitizePath(raw string) string {
	cleaned := strings.TrimSpace(raw)

	// Example: "{/tmp/my capture.har}" -> "/tmp/my capture.har"
	cleaned = strings.TrimPrefix(cleaned, "{")
	cleaned = strings.TrimSuffix(cleaned, "}")

	for _, quote := range []string{"\"", "'"} {
		if len(cleaned) >= 2 && strings.HasPrefix(cleaned, quote) && strings.HasSuffix(cleaned, quote) {
			cleaned = cleaned[1 : len(cleaned)-1]
		}
	}

	return strings.TrimSpace(cleaned)
}

// IsArchivePath reports whether path names a plain or compressed HAR file.
func IsArchivePath(path string) bool {
	return ArchiveStem(path) != ""
}

// ArchiveStem returns the base name of path without its archive suffix,
// or "" when path is not a HAR file.
func ArchiveStem(path string) string {
	base := filepath.Base(path)
	lower := strings.ToLower(base)
	// Longest suffix first so "x.har.gz" does not match ".har".
	for i := len(archiveSuffixes) - 1; i >= 0; i-- {
		if strings.HasSuffix(lower, archiveSuffixes[i]) {
			return base[:len(base)-len(archiveSuffixes[i])]
		}
	}
	return ""
}
