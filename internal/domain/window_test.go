package domain

import (
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	// 2024-03-15 13:45:30 UTC is 1710510330; the epoch-day boundary is midnight UTC.
	now := time.Unix(1710510330, 0)
	want := time.Unix(1710460800, 0)

	if got := StartOfDay(now); !got.Equal(want) {
		t.Errorf("StartOfDay(%v) = %v, want %v", now, got, want)
	}
}

func TestStartOfDay_AtBoundary(t *testing.T) {
	midnight := time.Unix(1710460800, 0)
	if got := StartOfDay(midnight); !got.Equal(midnight) {
		t.Errorf("StartOfDay at boundary = %v, want %v", got, midnight)
	}
}

func TestStartOfMonth(t *testing.T) {
	now := time.Date(2024, time.March, 15, 13, 45, 30, 0, time.UTC)
	want := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	if got := StartOfMonth(now); !got.Equal(want) {
		t.Errorf("StartOfMonth(%v) = %v, want %v", now, got, want)
	}
}

func TestStartOfMonth_FirstOfMonth(t *testing.T) {
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if got := StartOfMonth(now); !got.Equal(now) {
		t.Errorf("StartOfMonth on the first = %v, want %v", got, now)
	}
}

func TestTrailingDays(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	want := time.Date(2024, time.March, 8, 12, 0, 0, 0, time.UTC)

	if got := TrailingDays(now, 7); !got.Equal(want) {
		t.Errorf("TrailingDays(%v, 7) = %v, want %v", now, got, want)
	}
}
