package schema

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
)

// Clamp01 clamps v into [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampRange clamps v into [lo, hi].
func ClampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IsPromptHash reports whether s is a 64-character hex string, i.e. a
// hex-encoded SHA-256 digest. Hex case is not significant.
func IsPromptHash(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// HashPrompt returns the hex-encoded SHA-256 digest of the prompt text.
func HashPrompt(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// NewScoringID returns a fresh scoring identifier. ULIDs sort by creation
// time, which keeps score listings naturally chronological.
func NewScoringID() string {
	return "score_" + newULID()
}

// NewFeedbackID returns a fresh feedback identifier.
func NewFeedbackID() string {
	return "fb_" + newULID()
}

func newULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0)).String()
}
