package queue

import (
	"testing"
	"time"

	"github.com/karthikvn/clinicq/internal/directory"
)

func testDoctor(slot int, start, end string) *directory.User {
	return &directory.User{
		ID:          "doc-1",
		Role:        directory.RoleDoctor,
		SlotMinutes: slot,
		DailyStart:  start,
		DailyEnd:    end,
	}
}

func TestEstimateWaitMinutes(t *testing.T) {
	tests := []struct {
		name     string
		slot     int
		position int
		want     int
	}{
		{"head of queue waits nothing", 10, 1, 0},
		{"fourth in line", 10, 4, 30},
		{"unknown position reports one slot", 10, 0, 10},
		{"slot floored at five", 2, 3, 10},
		{"negative position treated as unknown", 15, -1, 15},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := testDoctor(tc.slot, "09:00", "17:00")
			if got := EstimateWaitMinutes(doc, tc.position); got != tc.want {
				t.Errorf("EstimateWaitMinutes(slot=%d, pos=%d) = %d, want %d", tc.slot, tc.position, got, tc.want)
			}
		})
	}
}

func TestComputeScheduledTimeBeforeOpening(t *testing.T) {
	doc := testDoctor(10, "09:00", "17:00")
	now := time.Date(2026, 3, 10, 7, 30, 0, 0, time.UTC)

	got := ComputeScheduledTime(doc, 1, now)
	want := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("scheduled = %v, want %v", got, want)
	}
}

func TestComputeScheduledTimeMidDay(t *testing.T) {
	doc := testDoctor(10, "09:00", "17:00")
	now := time.Date(2026, 3, 10, 11, 15, 0, 0, time.UTC)

	got := ComputeScheduledTime(doc, 3, now)
	want := time.Date(2026, 3, 10, 11, 35, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("scheduled = %v, want %v", got, want)
	}
}

func TestComputeScheduledTimeDayEndBoundary(t *testing.T) {
	doc := testDoctor(10, "09:00", "17:00")
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	// Position 49 lands exactly at 17:00 and stays on the same day.
	got := ComputeScheduledTime(doc, 49, now)
	want := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("position 49 scheduled = %v, want %v", got, want)
	}

	// Position 50 passes 17:00 and rolls to tomorrow at start plus the
	// same offset.
	got = ComputeScheduledTime(doc, 50, now)
	want = time.Date(2026, 3, 11, 17, 10, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("position 50 scheduled = %v, want %v", got, want)
	}
}

func TestComputeScheduledTimeMalformedHours(t *testing.T) {
	doc := testDoctor(10, "not-a-time", "")
	now := time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)

	got := ComputeScheduledTime(doc, 1, now)
	want := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("scheduled with bad hours = %v, want default start %v", got, want)
	}
}

func TestComputeScheduledTimeWindowCustomFallback(t *testing.T) {
	doc := testDoctor(10, "not-a-time", "also-bad")
	now := time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)

	got := ComputeScheduledTimeWindow(doc, 1, now, "08:00", "20:00")
	want := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("scheduled with custom window = %v, want %v", got, want)
	}

	// Rollover honours the custom end bound: the projection past 20:00
	// spills to the next day at the same offset from the 08:00 start.
	got = ComputeScheduledTimeWindow(doc, 80, now, "08:00", "20:00")
	want = time.Date(2026, 3, 11, 21, 10, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("rolled scheduled = %v, want %v", got, want)
	}
}
