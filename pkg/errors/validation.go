package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// orderIDRegex matches marketplace order ids (e.g. "113-1234567-1234567", "DEV-1712345678").
var orderIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateOrderID validates an order id for use as a storage key prefix.
// Order ids end up as directory names and object key prefixes, so they are
// held to a conservative character set:
//   - No empty ids
//   - Maximum length of 128 characters
//   - Letters, digits, '.', '_' and '-' only, starting with a letter or digit
//   - No ".." sequences
func ValidateOrderID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidOrderID, "orderId cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidOrderID, "orderId too long (max 128 characters)")
	}
	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidOrderID, "orderId cannot contain path traversal sequences (..)")
	}
	if !orderIDRegex.MatchString(id) {
		return New(ErrCodeInvalidOrderID, "invalid orderId: %q", id)
	}
	return nil
}

// ValidatePath validates a relative asset path for safety.
// It prevents path traversal out of the asset root.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
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
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
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
