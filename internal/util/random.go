// Package util provides utility functions for the ChatFlow application.
package util

import (
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

// GenerateSessionID generates a per-load opaque conversation identifier with
// the "sess_" prefix. Stable for the lifetime of the process.
func GenerateSessionID() string {
	return "sess_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// GenerateRandomHex generates a random hexadecimal string of the specified length.
// Uses math/rand/v2 for non-cryptographic purposes.
func GenerateRandomHex(length int) string {
	if length <= 0 {
		return ""
	}

	const hexChars = "0123456789abcdef"
	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		builder.WriteByte(hexChars[rand.IntN(16)])
	}

	return builder.String()
}

// PickRandom returns a uniformly random element of options, or the empty
// string when options is empty.
func PickRandom(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[rand.IntN(len(options))]
}
