package model

import "time"

// NotificationRecord tracks a pending reminder tied to a booking. Records
// are removed when the booking is rejected or cancelled so no reminder fires
// for a dead booking.
type NotificationRecord struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID string    `json:"booking_id" bson:"booking_id"`
	Recipient string    `json:"recipient" bson:"recipient"`
	Kind      string    `json:"kind" bson:"kind"`
	Token     string    `json:"token,omitempty" bson:"token,omitempty"`
	SendAt    time.Time `json:"send_at" bson:"send_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

const (
	NotificationKindBookingCreated   = "booking_created"
	NotificationKindBookingConfirmed = "booking_confirmed"
	NotificationKindSessionReminder  = "session_reminder"
)
