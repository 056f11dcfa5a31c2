package slots

import (
	"testing"
	"time"

	"fitbook/pkg/model"
)

const monday = "2026-03-02"

func TestGenerate_PartialSlotDropped(t *testing.T) {
	windows := []model.Window{
		{Date: monday, StartTime: "09:00:00", EndTime: "11:30:00", RuleID: "r1"},
	}

	got := Generate(windows, 60)
	if len(got) != 2 {
		t.Fatalf("expected 2 slots from a 2.5h window, got %d", len(got))
	}
	if got[0].StartTime != "09:00:00" || got[0].EndTime != "10:00:00" {
		t.Errorf("unexpected first slot: %s-%s", got[0].StartTime, got[0].EndTime)
	}
	if got[1].StartTime != "10:00:00" || got[1].EndTime != "11:00:00" {
		t.Errorf("unexpected second slot: %s-%s", got[1].StartTime, got[1].EndTime)
	}
}

func TestGenerate_WindowShorterThanSlot(t *testing.T) {
	windows := []model.Window{
		{Date: monday, StartTime: "09:00:00", EndTime: "09:45:00", RuleID: "r1"},
	}

	if got := Generate(windows, 60); len(got) != 0 {
		t.Fatalf("expected no slots from a 45m window, got %d", len(got))
	}
}

func TestGenerate_ExactFit(t *testing.T) {
	windows := []model.Window{
		{Date: monday, StartTime: "09:00:00", EndTime: "12:00:00", RuleID: "r1"},
	}

	got := Generate(windows, 60)
	if len(got) != 3 {
		t.Fatalf("expected 3 slots from a 3h window, got %d", len(got))
	}
	if got[2].EndTime != "12:00:00" {
		t.Errorf("last slot must end at the window edge, got %s", got[2].EndTime)
	}
}

func TestGenerate_MultipleWindowsSorted(t *testing.T) {
	windows := []model.Window{
		{Date: monday, StartTime: "14:00:00", EndTime: "16:00:00", RuleID: "pm"},
		{Date: monday, StartTime: "09:00:00", EndTime: "11:00:00", RuleID: "am"},
	}

	got := Generate(windows, 60)
	if len(got) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].StartTime >= got[i].StartTime {
			t.Errorf("slots out of order: %s before %s", got[i-1].StartTime, got[i].StartTime)
		}
	}
}

// Overlapping windows produce slots with equal start times; the sort is
// stable with end time as tiebreaker, so repeated calls on the same input
// always list them in the same order.
func TestGenerate_EqualStartSlotsDeterministicOrder(t *testing.T) {
	windows := []model.Window{
		{Date: monday, StartTime: "09:00:00", EndTime: "11:00:00", RuleID: "r1"},
		{Date: monday, StartTime: "09:00:00", EndTime: "10:00:00", RuleID: "r2"},
	}

	first := Generate(windows, 60)
	wantRules := []string{"r1", "r2", "r1"}
	if len(first) != len(wantRules) {
		t.Fatalf("expected %d slots, got %d", len(wantRules), len(first))
	}
	for i, want := range wantRules {
		if first[i].RuleID != want {
			t.Errorf("slot %d: expected rule %s, got %s", i, want, first[i].RuleID)
		}
	}

	for run := 0; run < 5; run++ {
		again := Generate(windows, 60)
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("run %d: slot %d changed order: %+v vs %+v", run, i, again[i], first[i])
			}
		}
	}
}

func TestGenerate_InvalidDuration(t *testing.T) {
	windows := []model.Window{
		{Date: monday, StartTime: "09:00:00", EndTime: "12:00:00", RuleID: "r1"},
	}

	if got := Generate(windows, 0); got != nil {
		t.Fatalf("expected nil for zero duration, got %v", got)
	}
}

func TestFilterBooked(t *testing.T) {
	slotList := Generate([]model.Window{
		{Date: monday, StartTime: "09:00:00", EndTime: "12:00:00", RuleID: "r1"},
	}, 60)

	day, _ := model.ParseDate(monday)
	at := func(h int) time.Time { return day.Add(time.Duration(h) * time.Hour) }

	cases := []struct {
		name     string
		bookings []*model.Booking
		want     []string
	}{
		{
			name:     "no bookings",
			bookings: nil,
			want:     []string{"09:00:00", "10:00:00", "11:00:00"},
		},
		{
			name: "pending booking hides its slot",
			bookings: []*model.Booking{
				{StartTime: at(10), EndTime: at(11), Status: model.BookingPending},
			},
			want: []string{"09:00:00", "11:00:00"},
		},
		{
			name: "cancelled booking frees the slot",
			bookings: []*model.Booking{
				{StartTime: at(10), EndTime: at(11), Status: model.BookingCancelled},
			},
			want: []string{"09:00:00", "10:00:00", "11:00:00"},
		},
		{
			name: "back to back booking does not hide neighbors",
			bookings: []*model.Booking{
				{StartTime: at(9), EndTime: at(10), Status: model.BookingConfirmed},
			},
			want: []string{"10:00:00", "11:00:00"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterBooked(slotList, tc.bookings)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d slots, got %d", len(tc.want), len(got))
			}
			for i, start := range tc.want {
				if got[i].StartTime != start {
					t.Errorf("slot %d: expected start %s, got %s", i, start, got[i].StartTime)
				}
			}
		})
	}
}

func TestSlotInterval_UTC(t *testing.T) {
	slot := model.Slot{Date: monday, StartTime: "09:00:00", EndTime: "10:00:00"}

	start, end, err := SlotInterval(slot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantStart := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, start)
	}
	if !end.Equal(wantStart.Add(time.Hour)) {
		t.Errorf("expected end %v, got %v", wantStart.Add(time.Hour), end)
	}
}
