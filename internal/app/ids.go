package app

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

func newUUID() string {
	return uuid.NewString()
}

// newReservationNumber returns a human-readable code such as
// RSV-20250610-3F9A1C. The suffix comes from a random UUID; uniqueness is
// enforced by the store.
func newReservationNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "RSV-" + now.UTC().Format("20060102") + "-" + suffix
}
