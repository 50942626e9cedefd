package storage

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Object key prefixes inside the bucket.
const (
	AudioPrefix = "audio/"
	CoverPrefix = "covers/"
)

var nonAlphaNumeric = regexp.MustCompile(`[^a-zA-Z0-9_\-\.]`)
var multipleSpaces = regexp.MustCompile(`\s+`)

// SafeBaseName turns arbitrary metadata into a filesystem-safe base name.
func SafeBaseName(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	base := strings.Join(kept, " - ")
	base = multipleSpaces.ReplaceAllString(base, "_")
	base = nonAlphaNumeric.ReplaceAllString(base, "")

	maxLength := 100
	if len(base) > maxLength {
		base = base[:maxLength]
	}
	if base == "" {
		base = "untitled"
	}
	return base
}

// ObjectKey builds a unique bucket key: prefix + safe name + short uuid + ext.
// The uuid suffix keeps re-uploads of identically named files from colliding.
func ObjectKey(prefix, baseName, originalFilename string) string {
	ext := filepath.Ext(originalFilename)
	if ext == "" {
		ext = ".dat"
	}
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return prefix + baseName + "-" + suffix + ext
}
