package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength caps URL paths in logs
	MaxPathLength = 500
	// MaxErrorMessageLength caps error messages in logs
	MaxErrorMessageLength = 1000
	// MaxEmailLength caps email addresses in logs (RFC 5321 limit)
	MaxEmailLength = 254
)

// SanitizePath prepares a URL path for logging: valid UTF-8, no control
// characters, truncated to MaxPathLength.
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeEmail prepares a client-supplied email address for logging
func SanitizeEmail(email string) string {
	return SanitizeString(email, MaxEmailLength)
}

// SanitizeError prepares an error message for logging
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}

// SanitizeString validates UTF-8, strips control characters (keeping space,
// tab, newline and CR) and truncates to maxLength.
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			builder.WriteRune(r)
		}
	}
	s = builder.String()

	if len(s) > maxLength {
		s = s[:maxLength] + "..."
	}
	return s
}
