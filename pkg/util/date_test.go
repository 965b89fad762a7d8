package util

import (
	"testing"
	"time"
)

func TestDayTruncates(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 500, time.UTC)
	got := Day(ts)
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected day %v", got)
	}
}

func TestParseDayRoundTrip(t *testing.T) {
	s := "2024-10-10"
	got, ok := ParseDay(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if FormatDay(got) != s {
		t.Fatalf("unexpected round trip %v", got)
	}
}

func TestParseDayInvalid(t *testing.T) {
	if _, ok := ParseDay("10/10/2024"); ok {
		t.Fatalf("expected parse failure")
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 10, 10, 1, 0, 0, 0, time.UTC)
	b := time.Date(2024, 10, 10, 23, 59, 0, 0, time.UTC)
	if !SameDay(a, b) {
		t.Fatalf("expected same day")
	}
	if SameDay(a, b.AddDate(0, 0, 1)) {
		t.Fatalf("expected different day")
	}
}
