package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// CompletionKey derives a stable idempotency key for one order completion:
// the same user submitting the same order and email maps to the same key.
func CompletionKey(userID int64, email string, finalTotal int64, dates []string) string {
	payload := fmt.Sprintf("%d|%s|%d|%s", userID, email, finalTotal, strings.Join(dates, ","))
	sum := sha256.Sum256([]byte(payload))

	return hex.EncodeToString(sum[:])
}
