// Package id generates request identifiers for log correlation.
package id

import (
	"github.com/google/uuid"
)

const maxRequestIDLen = 64

// Generate generates a new unique ID.
func Generate() string {
	return uuid.New().String()
}

// GenerateShort generates a shorter unique ID (first 8 chars of UUID).
func GenerateShort() string {
	return uuid.New().String()[:8]
}

// RequestID returns incoming when a caller supplied a usable request id,
// otherwise a fresh short id. Usable ids are at most 64 characters of
// letters, digits, '-', '_' and '.'.
func RequestID(incoming string) string {
	if incoming == "" || len(incoming) > maxRequestIDLen {
		return GenerateShort()
	}
	for _, r := range incoming {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return GenerateShort()
		}
	}
	return incoming
}
