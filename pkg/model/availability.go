package model

import "time"

// AvailabilityRule is one availability window a trainer offers, either
// recurring weekly on DayOfWeek or valid only on SpecificDate.
type AvailabilityRule struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TrainerID    string    `json:"trainer_id" bson:"trainer_id" validate:"required,min=1,max=64"`
	DayOfWeek    int       `json:"day_of_week" bson:"day_of_week" validate:"min=0,max=6"`
	StartTime    string    `json:"start_time" bson:"start_time" validate:"required,time_of_day"`
	EndTime      string    `json:"end_time" bson:"end_time" validate:"required,time_of_day"`
	IsRecurring  *bool     `json:"is_recurring,omitempty" bson:"is_recurring,omitempty"`
	SpecificDate string    `json:"specific_date,omitempty" bson:"specific_date,omitempty" validate:"omitempty,calendar_date"`
	IsAvailable  bool      `json:"is_available" bson:"is_available"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Recurring reports whether the rule repeats weekly. Rows written before the
// flag existed carry no value and are treated as recurring.
func (r *AvailabilityRule) Recurring() bool {
	return r.IsRecurring == nil || *r.IsRecurring
}

// AvailabilityException suppresses the occurrence of the rule identified by
// OriginalSlotID on ExceptionDate. Exceptions are append-only: duplicates are
// harmless because resolution only asks whether any matching row exists.
type AvailabilityException struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty"`
	TrainerID      string    `json:"trainer_id" bson:"trainer_id" validate:"required,min=1,max=64"`
	ExceptionDate  string    `json:"exception_date" bson:"exception_date" validate:"required,calendar_date"`
	OriginalSlotID string    `json:"original_slot_id" bson:"original_slot_id" validate:"required"`
	DayOfWeek      int       `json:"day_of_week" bson:"day_of_week" validate:"min=0,max=6"`
	StartTime      string    `json:"start_time" bson:"start_time" validate:"required,time_of_day"`
	EndTime        string    `json:"end_time" bson:"end_time" validate:"required,time_of_day"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Window is a contiguous availability interval on a single date.
type Window struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	RuleID    string `json:"rule_id,omitempty"`
}

// Slot is a fixed-duration bookable sub-interval of a Window.
type Slot struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	RuleID    string `json:"rule_id,omitempty"`
}

const DateLayout = "2006-01-02"

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// DayOfWeekOf returns the 0=Sunday..6=Saturday weekday of a calendar date.
func DayOfWeekOf(date string) (int, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return int(t.Weekday()), nil
}
