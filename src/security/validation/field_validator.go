// src/security/validation/field_validator.go
package validation

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"
)

var ErrValidationFailed = errors.New("validation failed")

const MaxDisplayNameLength = 100

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// maxUnescapePasses bounds entity decoding of nested encodings such as "&amp;lt;".
const maxUnescapePasses = 4

// decodeEntities unescapes s until it stops changing, so markup hidden behind
// one or more layers of entities is exposed before it is scanned and sanitized.
func decodeEntities(s string) string {
	for i := 0; i < maxUnescapePasses; i++ {
		next := html.UnescapeString(s)
		if next == s {
			return s
		}
		s = next
	}
	return s
}

// ValidateDisplayName checks a user supplied report label and returns it
// trimmed and stripped of markup and unprintable characters.
func ValidateDisplayName(name, contextID string) (string, error) {
	decoded := strings.TrimSpace(decodeEntities(StripUnprintable(name)))
	if err := ValidateStringNotEmpty(decoded, "displayName"); err != nil {
		return "", err
	}
	if err := ValidateStringMaxLength(decoded, MaxDisplayNameLength, "displayName"); err != nil {
		return "", err
	}
	if err := CheckXSSPatterns(decoded, "displayName", contextID); err != nil {
		return "", err
	}

	// bluemonday returns escaped text; labels are stored unescaped.
	clean := strings.TrimSpace(html.UnescapeString(SanitizeText(decoded)))
	if clean == "" {
		return "", fmt.Errorf("%w: displayName has no printable text", ErrValidationFailed)
	}
	// What is stored must be plain text the policy leaves untouched.
	if SanitizeText(clean) != html.EscapeString(clean) {
		return "", fmt.Errorf("%w: displayName contains markup", ErrValidationFailed)
	}
	return clean, nil
}
