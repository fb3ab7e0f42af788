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

func TestParseTimeInExchangeLocal(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	got, ok := ParseTimeIn("2025-03-14 15:55:00", ny)
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2025, 3, 14, 19, 55, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got.UTC(), want)
	}

	day, ok := ParseTimeIn("2025-03-14", ny)
	if !ok || day.In(ny).Hour() != 0 {
		t.Fatalf("unexpected day parse %v %v", day, ok)
	}

	if _, ok := ParseTimeIn("yesterday", ny); ok {
		t.Fatalf("expected failure")
	}
}

func TestParseIntDefault(t *testing.T) {
	if ParseIntDefault("", 30) != 30 || ParseIntDefault("x", 30) != 30 || ParseIntDefault("45", 30) != 45 {
		t.Fatalf("unexpected ParseIntDefault results")
	}
}

func TestParseFloat(t *testing.T) {
	if v, ok := ParseFloat("430.12"); !ok || v != 430.12 {
		t.Fatalf("expected 430.12, got %v %v", v, ok)
	}
	if _, ok := ParseFloat(""); ok {
		t.Fatalf("expected failure on empty")
	}
	if _, ok := ParseFloat("n/a"); ok {
		t.Fatalf("expected failure on text")
	}
}
