package cache

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Defaults and bounds for cache configuration.
const (
	// DefaultTTL is the default time-to-live of an entry (5 minutes).
	DefaultTTL = 5 * time.Minute

	// MaxTTL is the largest TTL accepted from textual configuration (7 days).
	MaxTTL = 7 * 24 * time.Hour

	// DefaultMaxBytes is the default per-namespace byte ceiling (50 MiB).
	DefaultMaxBytes int64 = 50 << 20

	// DefaultMaxEntries is the default per-namespace entry ceiling.
	DefaultMaxEntries = 10000

	// minutesPerHour is used for duration formatting calculations.
	minutesPerHour = 60

	// hoursPerDay is used for duration formatting calculations.
	hoursPerDay = 24
)

// ErrInvalidTTL is returned when a TTL is not positive or exceeds MaxTTL.
var ErrInvalidTTL = errors.New("TTL must be positive and at most 7 days")

// ParseTTL parses a TTL string in either of two formats:
// - Integer seconds: "3600".
// - Duration string: "1h", "30m", "1h30m", "250ms".
func ParseTTL(s string) (time.Duration, error) {
	var ttl time.Duration
	if seconds, err := strconv.Atoi(s); err == nil {
		ttl = time.Duration(seconds) * time.Second
	} else {
		d, parseErr := time.ParseDuration(s)
		if parseErr != nil {
			return 0, fmt.Errorf("invalid TTL format: %w", parseErr)
		}
		ttl = d
	}

	if ttl <= 0 || ttl > MaxTTL {
		return 0, fmt.Errorf("%w: got %s", ErrInvalidTTL, ttl)
	}
	return ttl, nil
}

// FormatDuration formats a duration in a human-readable way.
// Examples: "750ms", "30s", "5m", "2h30m", "3d2h".
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	if d < hoursPerDay*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % minutesPerHour
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if hours == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd%dh", days, hours)
}
