package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"tunemart/apperr"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 1000
)

// validateFields checks the metadata rules shared by upload and update.
// It returns the full violation list instead of stopping at the first
// problem so a caller can fix everything in one round trip.
// Length limits count characters, not bytes.
func validateFields(name, category string, price float64, description string) []string {
	var violations []string
	if strings.TrimSpace(name) == "" {
		violations = append(violations, "name is required")
	} else if utf8.RuneCountInString(name) > maxNameLength {
		violations = append(violations, fmt.Sprintf("name cannot exceed %d characters", maxNameLength))
	}
	if strings.TrimSpace(category) == "" {
		violations = append(violations, "category is required")
	}
	if price <= 0 {
		violations = append(violations, "price must be positive")
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		violations = append(violations, fmt.Sprintf("description cannot exceed %d characters", maxDescriptionLength))
	}
	return violations
}

// validateAsset checks that an uploaded binary is present and declares the
// expected media-type prefix ("audio/" or "image/").
func validateAsset(a Asset, wantPrefix, label string) []string {
	var violations []string
	if a.Reader == nil || a.Size <= 0 {
		violations = append(violations, label+" file is required")
		return violations
	}
	if !strings.HasPrefix(a.ContentType, wantPrefix) {
		violations = append(violations, fmt.Sprintf("invalid %s file format: declared type %q must begin with %q", label, a.ContentType, wantPrefix))
	}
	return violations
}

// validatePaging rejects negative page indexes and non-positive sizes.
func validatePaging(page, size int) error {
	var violations []string
	if page < 0 {
		violations = append(violations, "page index must not be negative")
	}
	if size <= 0 {
		violations = append(violations, "page size must be positive")
	}
	if len(violations) > 0 {
		return apperr.Validation(violations...)
	}
	return nil
}
