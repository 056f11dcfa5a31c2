package events

import (
	"time"

	"fitbook/pkg/model"

	"github.com/google/uuid"
)

// Event types published on the notification topic. Downstream consumers turn
// these into client/trainer notifications; the retraction type tells them to
// remove anything still referencing the booking.
const (
	TypeBookingCreated       = "booking.created"
	TypeBookingConfirmed     = "booking.confirmed"
	TypeBookingRejected      = "booking.rejected"
	TypeBookingCancelled     = "booking.cancelled"
	TypeNotificationsRetract = "booking.notifications.retract"
)

// Header keys attached to every published message.
const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
	HeaderTimestamp = "timestamp"
)

// BookingEvent is the payload for all booking lifecycle events.
type BookingEvent struct {
	EventID    string              `json:"event_id"`
	Type       string              `json:"type"`
	BookingID  string              `json:"booking_id"`
	TrainerID  string              `json:"trainer_id"`
	ClientID   string              `json:"client_id"`
	Status     model.BookingStatus `json:"status"`
	Reason     string              `json:"reason,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *model.Booking, reason string) BookingEvent {
	return BookingEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		BookingID:  b.ID,
		TrainerID:  b.TrainerID,
		ClientID:   b.ClientID,
		Status:     b.Status,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}
