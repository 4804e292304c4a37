package ratelimit

import (
	"testing"
	"time"
)

func TestHourKeyStableWithinWindow(t *testing.T) {
	t1 := time.Date(2026, 7, 31, 10, 5, 0, 0, time.UTC)
	t2 := time.Date(2026, 7, 31, 10, 55, 0, 0, time.UTC)
	if hourKey("u1", t1) != hourKey("u1", t2) {
		t.Fatalf("expected same hour bucket for %v and %v", t1, t2)
	}
}

func TestHourKeyDiffersAcrossWindow(t *testing.T) {
	t1 := time.Date(2026, 7, 31, 10, 59, 0, 0, time.UTC)
	t2 := time.Date(2026, 7, 31, 11, 1, 0, 0, time.UTC)
	if hourKey("u1", t1) == hourKey("u1", t2) {
		t.Fatalf("expected different hour buckets for %v and %v", t1, t2)
	}
}

func TestDayKeyDiffersAcrossDays(t *testing.T) {
	t1 := time.Date(2026, 7, 31, 23, 59, 0, 0, time.UTC)
	t2 := time.Date(2026, 8, 1, 0, 1, 0, 0, time.UTC)
	if dayKey("u1", t1) == dayKey("u1", t2) {
		t.Fatalf("expected different day buckets for %v and %v", t1, t2)
	}
}

func TestExceededError(t *testing.T) {
	e := &Exceeded{Window: WindowHour, Count: 11, Limit: 10}
	want := "hour window exceeded: 11/10"
	if e.Error() != want {
		t.Fatalf("Error() = %q, want %q", e.Error(), want)
	}
}

func TestHourBoundaryIsAfterNow(t *testing.T) {
	now := time.Date(2026, 7, 31, 10, 5, 0, 0, time.UTC)
	b := hourBoundary(now)
	if !b.After(now) {
		t.Fatalf("hourBoundary(%v) = %v, want strictly after", now, b)
	}
	if b.Sub(now) > time.Hour {
		t.Fatalf("hourBoundary(%v) = %v, too far in future", now, b)
	}
}
