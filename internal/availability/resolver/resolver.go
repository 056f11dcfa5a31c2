// Package resolver turns a trainer's raw availability records into the
// concrete windows valid on one calendar date. It is pure: loading rules and
// exceptions is the caller's job.
package resolver

import (
	"fmt"
	"sort"

	"fitbook/pkg/model"
)

// Resolve returns the availability windows valid on date, sorted by start
// time. Recurring rules match by weekday; one-off rules match by their
// specific date only, regardless of the day_of_week value they carry (the two
// can disagree on hand-entered data, and the explicit date wins). Rules
// suppressed by an exception for that date are dropped. Overlapping windows
// are returned as-is, no merging.
func Resolve(rules []model.AvailabilityRule, exceptions []model.AvailabilityException, date string) ([]model.Window, error) {
	weekday, err := model.DayOfWeekOf(date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	var windows []model.Window
	for _, rule := range rules {
		if !rule.IsAvailable {
			continue
		}
		if !matches(&rule, date, weekday) {
			continue
		}
		if IsException(exceptions, rule.ID, date) {
			continue
		}

		start, err := model.NormalizeTimeOfDay(rule.StartTime)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
		}
		end, err := model.NormalizeTimeOfDay(rule.EndTime)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
		}

		windows = append(windows, model.Window{
			Date:      date,
			StartTime: start,
			EndTime:   end,
			RuleID:    rule.ID,
		})
	}

	sort.Slice(windows, func(i, j int) bool {
		if windows[i].StartTime != windows[j].StartTime {
			return windows[i].StartTime < windows[j].StartTime
		}
		return windows[i].EndTime < windows[j].EndTime
	})

	return windows, nil
}

func matches(rule *model.AvailabilityRule, date string, weekday int) bool {
	if rule.Recurring() {
		return rule.DayOfWeek == weekday
	}
	return rule.SpecificDate == date
}

// IsException reports whether any exception suppresses slotID on date.
// Exceptions referencing rules that no longer exist simply never match, so
// dangling rows are ignored here.
func IsException(exceptions []model.AvailabilityException, slotID, date string) bool {
	for _, exc := range exceptions {
		if exc.OriginalSlotID == slotID && exc.ExceptionDate == date {
			return true
		}
	}
	return false
}

// Covers reports whether [start, end) falls entirely inside one of the
// windows. Times must be normalized HH:MM:SS strings.
func Covers(windows []model.Window, start, end string) bool {
	for _, w := range windows {
		if w.StartTime <= start && end <= w.EndTime {
			return true
		}
	}
	return false
}
