package river

import (
	"fmt"
	"time"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

// RelativeTime renders t as a coarse label relative to now ("just now",
// "5m ago", "3h ago", "2d ago", "1w ago"). Anything four weeks or older
// falls back to a month/day date. The zero time renders as "".
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	case diff < day:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	case diff < week:
		return fmt.Sprintf("%dd ago", int(diff/day))
	case diff < 4*week:
		return fmt.Sprintf("%dw ago", int(diff/week))
	default:
		return ShortDate(t)
	}
}

// ShortDate formats t like "Jan 4".
func ShortDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2")
}
