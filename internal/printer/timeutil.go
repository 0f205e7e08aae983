package printer

import (
	"fmt"
	"time"
)

var agoUnits = []struct {
	name string
	size time.Duration
}{
	{"day", 24 * time.Hour},
	{"hour", time.Hour},
	{"minute", time.Minute},
	{"second", time.Second},
}

// TimeAgo returns a human-readable relative time string in UTC.
// Examples: "5 seconds ago (UTC)", "2 minutes ago (UTC)", "never" for the zero time.
func TimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Now().UTC().Sub(t.UTC())
	if diff < 0 {
		return "in the future (UTC)"
	}

	for _, u := range agoUnits {
		if diff < u.size && u.size != time.Second {
			continue
		}

		n := int(diff / u.size)
		if n == 1 {
			return fmt.Sprintf("1 %s ago (UTC)", u.name)
		}
		return fmt.Sprintf("%d %ss ago (UTC)", n, u.name)
	}

	return "0 seconds ago (UTC)"
}

// FormatTimestamp returns a formatted timestamp string in UTC.
// Format: "2006-01-02 15:04:05 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// FormatDuration returns a short duration rounded to seconds, "1m5s", "12s" or "<1s".
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	return d.Round(time.Second).String()
}
