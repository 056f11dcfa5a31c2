package resolver

import (
	"testing"

	"fitbook/pkg/model"
)

func boolPtr(b bool) *bool { return &b }

// 2026-03-02 is a Monday.
const monday = "2026-03-02"

func TestResolve_RecurringMatchesWeekday(t *testing.T) {
	rules := []model.AvailabilityRule{
		{ID: "r1", TrainerID: "t1", DayOfWeek: 1, StartTime: "09:00:00", EndTime: "12:00:00", IsAvailable: true},
		{ID: "r2", TrainerID: "t1", DayOfWeek: 2, StartTime: "14:00:00", EndTime: "16:00:00", IsAvailable: true},
	}

	windows, err := Resolve(rules, nil, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if windows[0].RuleID != "r1" {
		t.Errorf("expected window from rule r1, got %s", windows[0].RuleID)
	}
	if windows[0].StartTime != "09:00:00" || windows[0].EndTime != "12:00:00" {
		t.Errorf("unexpected window times: %s-%s", windows[0].StartTime, windows[0].EndTime)
	}
}

func TestResolve_NilRecurringFlagTreatedAsRecurring(t *testing.T) {
	rules := []model.AvailabilityRule{
		{ID: "legacy", TrainerID: "t1", DayOfWeek: 1, StartTime: "09:00:00", EndTime: "10:00:00", IsRecurring: nil, IsAvailable: true},
	}

	windows, err := Resolve(rules, nil, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("expected legacy rule to match by weekday, got %d windows", len(windows))
	}
}

func TestResolve_OneOffMatchesSpecificDateOnly(t *testing.T) {
	// day_of_week deliberately disagrees with the date: the explicit date
	// must win.
	rules := []model.AvailabilityRule{
		{ID: "o1", TrainerID: "t1", DayOfWeek: 4, StartTime: "08:00:00", EndTime: "09:00:00",
			IsRecurring: boolPtr(false), SpecificDate: monday, IsAvailable: true},
	}

	windows, err := Resolve(rules, nil, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("expected one-off rule to match its date, got %d windows", len(windows))
	}

	// The following Thursday matches day_of_week but not the date.
	windows, err = Resolve(rules, nil, "2026-03-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 0 {
		t.Fatalf("one-off rule must not match other dates, got %d windows", len(windows))
	}
}

func TestResolve_ExceptionSuppressesSingleDate(t *testing.T) {
	rules := []model.AvailabilityRule{
		{ID: "r1", TrainerID: "t1", DayOfWeek: 1, StartTime: "09:00:00", EndTime: "12:00:00", IsAvailable: true},
	}
	exceptions := []model.AvailabilityException{
		{TrainerID: "t1", OriginalSlotID: "r1", ExceptionDate: monday},
	}

	windows, err := Resolve(rules, exceptions, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 0 {
		t.Fatalf("expected excepted date to yield no windows, got %d", len(windows))
	}

	// The next Monday is unaffected.
	windows, err = Resolve(rules, exceptions, "2026-03-09")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("expected next occurrence to survive, got %d windows", len(windows))
	}
}

func TestResolve_DanglingExceptionIgnored(t *testing.T) {
	rules := []model.AvailabilityRule{
		{ID: "r1", TrainerID: "t1", DayOfWeek: 1, StartTime: "09:00:00", EndTime: "12:00:00", IsAvailable: true},
	}
	exceptions := []model.AvailabilityException{
		{TrainerID: "t1", OriginalSlotID: "deleted-rule", ExceptionDate: monday},
	}

	windows, err := Resolve(rules, exceptions, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("exception for a deleted rule must not suppress others, got %d windows", len(windows))
	}
}

func TestResolve_UnavailableRuleSkipped(t *testing.T) {
	rules := []model.AvailabilityRule{
		{ID: "r1", TrainerID: "t1", DayOfWeek: 1, StartTime: "09:00:00", EndTime: "12:00:00", IsAvailable: false},
	}

	windows, err := Resolve(rules, nil, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 0 {
		t.Fatalf("unavailable rule must not produce windows, got %d", len(windows))
	}
}

func TestResolve_DeterministicOrder(t *testing.T) {
	rules := []model.AvailabilityRule{
		{ID: "late", TrainerID: "t1", DayOfWeek: 1, StartTime: "14:00:00", EndTime: "16:00:00", IsAvailable: true},
		{ID: "early", TrainerID: "t1", DayOfWeek: 1, StartTime: "09:00:00", EndTime: "12:00:00", IsAvailable: true},
		{ID: "short", TrainerID: "t1", DayOfWeek: 1, StartTime: "09:00:00", EndTime: "10:00:00", IsAvailable: true},
	}

	// Same answer regardless of input order.
	for i := 0; i < 3; i++ {
		rules = append(rules[1:], rules[0])

		windows, err := Resolve(rules, nil, monday)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(windows) != 3 {
			t.Fatalf("expected 3 windows, got %d", len(windows))
		}
		if windows[0].RuleID != "short" || windows[1].RuleID != "early" || windows[2].RuleID != "late" {
			t.Errorf("unexpected order: %s, %s, %s", windows[0].RuleID, windows[1].RuleID, windows[2].RuleID)
		}
	}
}

func TestResolve_NormalizesShortTimes(t *testing.T) {
	rules := []model.AvailabilityRule{
		{ID: "r1", TrainerID: "t1", DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", IsAvailable: true},
	}

	windows, err := Resolve(rules, nil, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if windows[0].StartTime != "09:00:00" || windows[0].EndTime != "12:00:00" {
		t.Errorf("expected normalized times, got %s-%s", windows[0].StartTime, windows[0].EndTime)
	}
}

func TestResolve_InvalidDate(t *testing.T) {
	if _, err := Resolve(nil, nil, "03/02/2026"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestCovers(t *testing.T) {
	windows := []model.Window{
		{Date: monday, StartTime: "09:00:00", EndTime: "12:00:00"},
	}

	cases := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"exact window", "09:00:00", "12:00:00", true},
		{"interior", "10:00:00", "11:00:00", true},
		{"starts before", "08:30:00", "09:30:00", false},
		{"ends after", "11:30:00", "12:30:00", false},
		{"disjoint", "13:00:00", "14:00:00", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Covers(windows, tc.start, tc.end); got != tc.want {
				t.Errorf("Covers(%s, %s) = %v, want %v", tc.start, tc.end, got, tc.want)
			}
		})
	}
}
