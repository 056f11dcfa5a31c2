// Package slots cuts availability windows into fixed-duration bookable slots.
package slots

import (
	"sort"
	"time"

	"fitbook/pkg/model"
)

// Generate tiles each window with contiguous slots of slotMinutes, keeping
// only slots that fit entirely inside the window. A window shorter than the
// slot duration yields nothing. Windows are processed independently and the
// combined result is sorted by start time.
func Generate(windows []model.Window, slotMinutes int) []model.Slot {
	if slotMinutes <= 0 {
		return nil
	}
	step := slotMinutes * 60

	var out []model.Slot
	for _, w := range windows {
		start, err := model.ParseTimeOfDay(w.StartTime)
		if err != nil {
			continue
		}
		end, err := model.ParseTimeOfDay(w.EndTime)
		if err != nil {
			continue
		}

		for s := start; s+step <= end; s += step {
			out = append(out, model.Slot{
				Date:      w.Date,
				StartTime: model.FormatTimeOfDay(s),
				EndTime:   model.FormatTimeOfDay(s + step),
				RuleID:    w.RuleID,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].EndTime < out[j].EndTime
	})

	return out
}

// FilterBooked removes slots that intersect an active booking. Booking
// creation re-validates overlap inside a transaction; this filter only keeps
// already-taken slots out of the listing clients choose from.
func FilterBooked(slotList []model.Slot, bookings []*model.Booking) []model.Slot {
	if len(bookings) == 0 {
		return slotList
	}

	out := slotList[:0:0]
	for _, slot := range slotList {
		start, end, err := SlotInterval(slot)
		if err != nil {
			continue
		}

		taken := false
		for _, b := range bookings {
			if b.Status.Active() && b.Overlaps(start, end) {
				taken = true
				break
			}
		}
		if !taken {
			out = append(out, slot)
		}
	}
	return out
}

// SlotInterval converts a slot into absolute UTC timestamps. All times of day
// in the system are interpreted in UTC.
func SlotInterval(slot model.Slot) (time.Time, time.Time, error) {
	day, err := model.ParseDate(slot.Date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	startSec, err := model.ParseTimeOfDay(slot.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endSec, err := model.ParseTimeOfDay(slot.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return day.Add(time.Duration(startSec) * time.Second),
		day.Add(time.Duration(endSec) * time.Second),
		nil
}
