package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateProjectID validates a project identifier before it is placed in a
// request path. It rejects anything that could escape the path segment.
func ValidateProjectID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidProject, "project ID cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidProject, "project ID too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidProject, "project ID contains invalid control characters")
		}
	}
	if strings.ContainsAny(id, "/\\?#%") || strings.Contains(id, "..") {
		return New(ErrCodeInvalidProject, "project ID contains invalid characters: %q", id)
	}
	return nil
}

var languageNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9+#._-]*$`)

// ValidateLanguage validates a language filter value such as "go" or "c++".
// Language names are lowercase.
func ValidateLanguage(name string) error {
	if name == "" {
		return New(ErrCodeInvalidLanguage, "language cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidLanguage, "language name too long (max 64 characters)")
	}
	if !languageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidLanguage, "invalid language name: %q", name)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}

// ValidatePath validates a local file path given on the command line.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}
	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}
	return nil
}
