package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// chartNameRegex matches gallery chart names: lowercase words joined by dashes.
var chartNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateChartName validates a gallery chart name.
// Names become file names and URL path segments, so the rules are conservative:
//   - No empty names
//   - Maximum length of 64 characters
//   - Lowercase letters, digits, dash and underscore only
func ValidateChartName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidChart, "chart name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidChart, "chart name too long (max 64 characters)")
	}
	if !chartNameRegex.MatchString(name) {
		return New(ErrCodeInvalidChart, "invalid chart name: %q", name)
	}
	return nil
}

// ValidateFieldName validates a record field name referenced by a schema or
// a chart parameter.
func ValidateFieldName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidField, "field name cannot be empty")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidField, "field name contains control characters")
		}
	}
	return nil
}

// ValidatePath validates a data file path taken from configuration or a
// request. It prevents path traversal out of the data directory.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a remote data source URL.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !IsURL(rawURL) {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}

// IsURL reports whether src names a remote http(s) resource rather than a
// local path.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
