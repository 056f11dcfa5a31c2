package model

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		want     bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingRejected, true},
		{BookingPending, BookingCancelled, true},
		{BookingConfirmed, BookingCancelled, true},
		{BookingConfirmed, BookingRejected, false},
		{BookingConfirmed, BookingPending, false},
		{BookingRejected, BookingConfirmed, false},
		{BookingRejected, BookingCancelled, false},
		{BookingCancelled, BookingPending, false},
		{BookingCancelled, BookingConfirmed, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			if got := CanTransition(tc.from, tc.to); got != tc.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	if BookingPending.Terminal() || BookingConfirmed.Terminal() {
		t.Error("pending and confirmed must not be terminal")
	}
	if !BookingRejected.Terminal() || !BookingCancelled.Terminal() {
		t.Error("rejected and cancelled must be terminal")
	}
}

func TestStatusActive(t *testing.T) {
	if !BookingPending.Active() || !BookingConfirmed.Active() {
		t.Error("pending and confirmed bookings occupy their slot")
	}
	if BookingRejected.Active() || BookingCancelled.Active() {
		t.Error("rejected and cancelled bookings must not occupy their slot")
	}
}

func TestBookingOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	b := &Booking{StartTime: base, EndTime: base.Add(time.Hour)}

	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"identical", base, base.Add(time.Hour), true},
		{"straddles start", base.Add(-30 * time.Minute), base.Add(30 * time.Minute), true},
		{"straddles end", base.Add(30 * time.Minute), base.Add(90 * time.Minute), true},
		{"contained", base.Add(15 * time.Minute), base.Add(45 * time.Minute), true},
		{"touches end", base.Add(time.Hour), base.Add(2 * time.Hour), false},
		{"touches start", base.Add(-time.Hour), base, false},
		{"disjoint", base.Add(3 * time.Hour), base.Add(4 * time.Hour), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := b.Overlaps(tc.start, tc.end); got != tc.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tc.start, tc.end, got, tc.want)
			}
		})
	}
}
