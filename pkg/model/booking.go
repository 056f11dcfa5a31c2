package model

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
)

// bookingTransitions is the full lifecycle: pending fans out, confirmed can
// only be cancelled, rejected and cancelled are terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingRejected, BookingCancelled},
	BookingConfirmed: {BookingCancelled},
	BookingRejected:  {},
	BookingCancelled: {},
}

// CanTransition reports whether moving from one booking status to another is
// legal.
func CanTransition(from, to BookingStatus) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0
}

func (s BookingStatus) Valid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// Active reports whether the booking still occupies its time window for
// overlap purposes. Rejected and cancelled bookings free the slot.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed
}

// Booking is a client's reservation of a time interval with a trainer.
type Booking struct {
	ID                 string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ClientID           string        `json:"client_id" bson:"client_id" validate:"required,min=1,max=64"`
	TrainerID          string        `json:"trainer_id" bson:"trainer_id" validate:"required,min=1,max=64"`
	ServiceID          string        `json:"service_id,omitempty" bson:"service_id,omitempty" validate:"omitempty,mongodb"`
	Title              string        `json:"title" bson:"title" validate:"required,min=2,max=100"`
	Description        string        `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	StartTime          time.Time     `json:"start_time" bson:"start_time" validate:"required"`
	EndTime            time.Time     `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Location           string        `json:"location,omitempty" bson:"location,omitempty" validate:"omitempty,max=200"`
	Notes              string        `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=1000"`
	Status             BookingStatus `json:"status" bson:"status" validate:"required,oneof=pending confirmed rejected cancelled"`
	CancellationReason string        `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty" validate:"omitempty,max=500"`
	CancellationDate   *time.Time    `json:"cancellation_date,omitempty" bson:"cancellation_date,omitempty"`
	CreatedAt          time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt          time.Time     `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// Overlaps reports whether the half-open intervals [b.StartTime, b.EndTime)
// and [start, end) intersect.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}
