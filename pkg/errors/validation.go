package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateEntityID validates a node or edge identifier.
// Identifiers travel through URLs, file names, and wire payloads, so the
// rules are intentionally conservative:
//   - No empty ids
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateEntityID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "id contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateWorkflowID validates a workflow identifier used in API paths
// and storage keys. Same rules as entity ids.
func ValidateWorkflowID(id string) error {
	if err := ValidateEntityID(id); err != nil {
		return New(ErrCodeInvalidWorkflow, "invalid workflow id: %s", UserMessage(err))
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https). Used for webhook
// node targets and the persistence API base URL.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// templateVarNameRegex matches valid template variable names.
var templateVarNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateTemplateVarName validates a template variable name.
// Template variables are substituted into prompts and conditions, so the
// names are restricted to identifier characters.
func ValidateTemplateVarName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "template variable name cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "template variable name too long (max 64 characters)")
	}

	if !templateVarNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid template variable name: %q", name)
	}

	return nil
}

// ValidateExportPath validates a local file path used as an export target.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateExportPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "export path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "export path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "export path contains invalid characters")
		}
	}

	return nil
}
