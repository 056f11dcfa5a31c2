package model

import "time"

// Service is a trainer-offered service type. Configuration data referenced by
// bookings, not part of the availability rule engine.
type Service struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TrainerID   string    `json:"trainer_id" bson:"trainer_id" validate:"required,min=1,max=64"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	DurationMin int       `json:"duration_min" bson:"duration_min" validate:"required,min=5,max=480"`
	Price       float64   `json:"price" bson:"price" validate:"min=0"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
