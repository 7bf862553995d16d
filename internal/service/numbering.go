package service

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateApplicationNumber builds a human-readable case identifier:
// PREFIX-<last 8 digits of a millisecond timestamp>-<3-digit random suffix>.
// Collisions are possible; callers must treat a unique-constraint violation
// on insert as retryable and regenerate.
func GenerateApplicationNumber(prefix string) string {
	millis := fmt.Sprintf("%d", time.Now().UnixMilli())
	if len(millis) > 8 {
		millis = millis[len(millis)-8:]
	}
	return fmt.Sprintf("%s-%s-%03d", prefix, millis, rand.Intn(1000))
}
