// Package token validates and normalizes portal-issued complaint tokens.
package token

import (
	"strings"

	"pmctrack/internal/errors"
)

// Normalize validates a raw token string and returns its canonical form.
//
// A token is the letter 'T' (case-insensitive) followed by one or more
// digits, nothing else. Accepted tokens are uppercased; anything else is
// rejected with an InvalidTokenError and never reaches the browser.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) < 2 {
		return "", errors.NewInvalidTokenError(raw)
	}
	if trimmed[0] != 'T' && trimmed[0] != 't' {
		return "", errors.NewInvalidTokenError(raw)
	}
	for i := 1; i < len(trimmed); i++ {
		if trimmed[i] < '0' || trimmed[i] > '9' {
			return "", errors.NewInvalidTokenError(raw)
		}
	}
	return "T" + trimmed[1:], nil
}

// IsValid reports whether a raw token string passes format validation.
func IsValid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}
