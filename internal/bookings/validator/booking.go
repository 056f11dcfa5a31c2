package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fitbook/pkg/logger"
	"fitbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

// ValidateCreate checks a booking request before it is admitted into the
// lifecycle. Status and timestamps are server-assigned, callers only supply
// the who/when/what fields.
func (v *BookingValidator) ValidateCreate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	var validationErrors ValidationErrors

	if !booking.EndTime.After(booking.StartTime) {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "EndTime",
			Message: "end_time must be after start_time",
		})
	}

	if booking.StartTime.Before(time.Now().UTC()) {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "StartTime",
			Message: "start_time must be in the future",
		})
	}

	if booking.ClientID == booking.TrainerID {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "ClientID",
			Message: "client and trainer must be different accounts",
		})
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
