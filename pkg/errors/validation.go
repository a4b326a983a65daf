package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxDiscourseLength bounds the discourse text accepted for interpretation.
const MaxDiscourseLength = 2000

// ValidateDiscourse validates a discourse string before it is sent to the
// interpretation service.
//
// The rules are intentionally conservative:
//   - No empty or whitespace-only text
//   - Valid UTF-8
//   - No control characters other than tab and newline
//   - Maximum length of MaxDiscourseLength runes
func ValidateDiscourse(text string) error {
	if strings.TrimSpace(text) == "" {
		return New(ErrCodeInvalidDiscourse, "discourse cannot be empty")
	}

	if !utf8.ValidString(text) {
		return New(ErrCodeInvalidDiscourse, "discourse is not valid UTF-8")
	}

	if n := utf8.RuneCountInString(text); n > MaxDiscourseLength {
		return New(ErrCodeInvalidDiscourse, "discourse too long (%d runes, max %d)", n, MaxDiscourseLength)
	}

	for _, r := range text {
		if r == '\t' || r == '\n' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDiscourse, "discourse contains invalid control characters")
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
