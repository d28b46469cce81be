package types

import (
	"testing"
	"time"
)

func TestTimestampTimeHandlesSecondsAndMillis(t *testing.T) {
	ref := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	if got := TimestampTime(ref.Unix()); !got.Equal(ref) {
		t.Fatalf("seconds: got %v, want %v", got, ref)
	}
	if got := TimestampTime(ref.UnixMilli()); !got.Equal(ref) {
		t.Fatalf("millis: got %v, want %v", got, ref)
	}
}

func TestRelativeAge(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ts   int64
		want string
	}{
		{now.UnixMilli(), "now"},
		{now.Add(-30 * time.Second).UnixMilli(), "now"},
		{now.Add(-5 * time.Minute).UnixMilli(), "5m"},
		{now.Add(-3 * time.Hour).UnixMilli(), "3h"},
		{now.Add(-49 * time.Hour).UnixMilli(), "2d"},
		{now.Add(-2 * time.Hour).Unix(), "2h"},
	}
	for _, tc := range cases {
		if got := RelativeAge(tc.ts, now); got != tc.want {
			t.Fatalf("RelativeAge(%d) = %q, want %q", tc.ts, got, tc.want)
		}
	}
}
