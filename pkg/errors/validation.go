package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateSource validates a report source (file path or URL) for safety.
// It rejects sources that could be used for path traversal or injection.
//
// The validation rules are intentionally conservative:
//   - No empty sources
//   - No control characters
//   - No null bytes
//   - Maximum length of 2048 characters
//
// Scheme- and filesystem-specific checks are done by the loaders.
func ValidateSource(src string) error {
	if src == "" {
		return New(ErrCodeInvalidInput, "report source cannot be empty")
	}

	if len(src) > 2048 {
		return New(ErrCodeInvalidInput, "report source too long (max 2048 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range src {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "report source contains invalid control characters")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
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

// ValidateOutputPath validates an artifact output path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	return nil
}

// tokenRegex matches canonical UUID strings as used for handshake tokens.
var tokenRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateToken validates a viewer handshake token.
// Tokens are lowercase canonical UUIDs minted by the viewer service.
func ValidateToken(token string) error {
	if token == "" {
		return New(ErrCodeInvalidToken, "token cannot be empty")
	}

	if !tokenRegex.MatchString(token) {
		return New(ErrCodeInvalidToken, "token is not a valid UUID")
	}

	return nil
}

// ValidateNodeName validates a tree node name from report data.
// Names are display strings; only clearly hostile input is rejected.
func ValidateNodeName(name string) error {
	if len(name) > 4096 {
		return New(ErrCodeInvalidNode, "node name too long (max 4096 characters)")
	}

	if strings.Contains(name, "\x00") {
		return New(ErrCodeInvalidNode, "node name contains null bytes")
	}

	return nil
}
