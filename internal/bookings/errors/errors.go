package errors

import "errors"

var (
	ErrNotFound         = errors.New("booking not found")
	ErrInvalidID        = errors.New("invalid booking id format")
	ErrInvalidTimeRange = errors.New("booking end time must be after start time")
	ErrStaleStatus      = errors.New("booking status changed since it was read")
)
