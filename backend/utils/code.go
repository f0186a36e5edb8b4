package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateVerificationCode produces an opaque certificate code from a fresh
// UUID, truncated for readability. Truncation makes a collision possible in
// principle, so the caller retries on the unique-index error instead of
// assuming uniqueness.
func GenerateVerificationCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "CERT-" + raw[:12]
}
