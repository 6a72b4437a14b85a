package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeUnixMillis(t *testing.T) {
	want := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got, ok := ParseTime(strconv.FormatInt(want.UnixMilli(), 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if !got.Equal(want) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestFormatRemaining(t *testing.T) {
	cases := map[time.Duration]string{
		-time.Minute:                 "ended",
		0:                            "ended",
		62*time.Hour + 5*time.Minute: "2d 14h",
		5*time.Hour + 3*time.Minute:  "5h 3m",
	}
	for d, want := range cases {
		if got := FormatRemaining(d); got != want {
			t.Fatalf("FormatRemaining(%v) = %q, want %q", d, got, want)
		}
	}
}

func TestNormalizeKey(t *testing.T) {
	if got := NormalizeKey("  Aave V2 "); got != "aave v2" {
		t.Fatalf("unexpected key %q", got)
	}
}
