package river

import (
	"testing"
	"time"
)

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{0, "just now"},
		{45 * time.Second, "just now"},
		{90 * time.Second, "1m ago"},
		{59 * time.Minute, "59m ago"},
		{time.Hour, "1h ago"},
		{23 * time.Hour, "23h ago"},
		{25 * time.Hour, "1d ago"},
		{6 * day, "6d ago"},
		{10 * day, "1w ago"},
		{27 * day, "3w ago"},
		{40 * day, "Apr 10"},
		{-time.Hour, "just now"},
	}
	for _, tc := range cases {
		if got := RelativeTime(now.Add(-tc.ago), now); got != tc.want {
			t.Fatalf("RelativeTime(-%s) = %q, want %q", tc.ago, got, tc.want)
		}
	}
}

func TestRelativeTimeZero(t *testing.T) {
	if got := RelativeTime(time.Time{}, time.Now()); got != "" {
		t.Fatalf("expected empty label, got %q", got)
	}
	if got := ShortDate(time.Time{}); got != "" {
		t.Fatalf("expected empty date, got %q", got)
	}
}
