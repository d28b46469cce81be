package types

import (
	"strconv"
	"time"
)

// Persisted timestamps are unix milliseconds throughout, but records written
// by older builds may carry seconds. Display code disambiguates by magnitude;
// comparison logic (unread classification) never renormalizes, so both
// timestamps on one session must come from the same clock.
const millisecondThreshold = int64(1_000_000_000_000)

func TimestampTime(ts int64) time.Time {
	if ts <= 0 {
		return time.Time{}
	}
	if ts < millisecondThreshold {
		return time.Unix(ts, 0).UTC()
	}
	return time.UnixMilli(ts).UTC()
}

func NowTimestamp() int64 {
	return time.Now().UnixMilli()
}

// RelativeAge renders a compact age label for list rows.
func RelativeAge(ts int64, now time.Time) string {
	t := TimestampTime(ts)
	if t.IsZero() {
		return ""
	}
	if now.IsZero() {
		now = time.Now()
	}
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return strconv.Itoa(int(d.Minutes())) + "m"
	case d < 24*time.Hour:
		return strconv.Itoa(int(d.Hours())) + "h"
	default:
		return strconv.Itoa(int(d.Hours()/24)) + "d"
	}
}
