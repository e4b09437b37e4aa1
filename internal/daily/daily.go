// internal/daily/daily.go
//
// Calendar helpers for the daily puzzle. Every day boundary is UTC midnight.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"
)

// Epoch is the date of game #1.
var Epoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// ParseDateKey parses a YYYY-MM-DD key as a UTC midnight.
func ParseDateKey(date string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: %w", date, err)
	}
	return t, nil
}

// WordIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % n.
func WordIndex(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for modulus distribution
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// NextReset is the next UTC midnight strictly after now.
func NextReset(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}

// UntilReset is the time left before the next puzzle.
func UntilReset(now time.Time) time.Duration {
	return NextReset(now).Sub(now)
}

// GameNumber counts days since Epoch, starting at 1. Dates before the epoch give 0.
func GameNumber(date time.Time) int {
	y, m, d := date.UTC().Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if day.Before(Epoch) {
		return 0
	}
	return int(day.Sub(Epoch).Hours()/24) + 1
}
