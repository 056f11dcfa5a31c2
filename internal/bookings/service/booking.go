package service

import (
	"context"
	"errors"
	"time"

	"fitbook/internal/availability/resolver"
	bookingerrors "fitbook/internal/bookings/errors"
	"fitbook/internal/bookings/lock"
	"fitbook/internal/bookings/repository"
	"fitbook/internal/bookings/validator"
	"fitbook/pkg/config"
	apperrors "fitbook/pkg/errors"
	"fitbook/pkg/events"
	"fitbook/pkg/model"
	"fitbook/pkg/sanitizer"
	"fitbook/pkg/sealer"

	"go.mongodb.org/mongo-driver/mongo"
)

// WindowsProvider yields the trainer's resolved availability for a date.
type WindowsProvider interface {
	WindowsForDate(ctx context.Context, trainerID, date string) ([]model.Window, error)
}

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id, actorID string) (*model.Booking, error)
	ListByTrainer(ctx context.Context, trainerID string, limit, offset int) ([]*model.Booking, int64, error)
	ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*model.Booking, int64, error)
	Confirm(ctx context.Context, id, actorID string) (*model.Booking, error)
	Reject(ctx context.Context, id, actorID string) (*model.Booking, error)
	Cancel(ctx context.Context, id, actorID, reason string) (*model.Booking, error)
}

type bookingService struct {
	repo          repository.BookingRepository
	notifications repository.NotificationRepository
	availability  WindowsProvider
	locker        lock.SlotLocker
	publisher     events.Publisher
	validator     *validator.BookingValidator
	cfg           *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	notifications repository.NotificationRepository,
	availability WindowsProvider,
	locker lock.SlotLocker,
	publisher events.Publisher,
	bookingValidator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:          repo,
		notifications: notifications,
		availability:  availability,
		locker:        locker,
		publisher:     publisher,
		validator:     bookingValidator,
		cfg:           cfg,
	}
}

// coversInterval checks the requested interval against the trainer's resolved
// windows. Bookings are single-day, a request crossing midnight can never be
// inside a window.
func coversInterval(windows []model.Window, start, end time.Time) bool {
	start = start.UTC()
	end = end.UTC()
	if start.Format(model.DateLayout) != end.Format(model.DateLayout) {
		return false
	}

	return resolver.Covers(windows, start.Format("15:04:05"), end.Format("15:04:05"))
}

// Create admits a new booking as pending after two gates: the interval must
// lie inside the trainer's resolved availability, and no active booking may
// overlap it. The overlap check and the insert run in one transaction while
// every slot bucket the interval touches is locked, so concurrent requests
// for overlapping times serialize and exactly one wins.
func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	booking.ID = ""
	booking.Status = model.BookingPending
	booking.CancellationReason = ""
	booking.CancellationDate = nil
	booking.Title = sanitizer.NormalizeTitle(booking.Title)
	booking.Location = sanitizer.NormalizeLocation(booking.Location)
	booking.Description = sanitizer.NormalizeFreeText(booking.Description)
	booking.Notes = sanitizer.NormalizeFreeText(booking.Notes)

	if err := s.validator.ValidateCreate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed",
			"trainer_id", booking.TrainerID,
			"client_id", booking.ClientID,
			"error", err,
		)
		return apperrors.Validation("Booking validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	date := booking.StartTime.UTC().Format(model.DateLayout)
	windows, err := s.availability.WindowsForDate(ctx, booking.TrainerID, date)
	if err != nil {
		s.cfg.Log.Error("Failed to resolve availability for booking",
			"trainer_id", booking.TrainerID,
			"date", date,
			"error", err,
		)
		return err
	}
	if !coversInterval(windows, booking.StartTime, booking.EndTime) {
		return apperrors.OutsideAvailability("Requested time is outside the trainer's availability")
	}

	err = s.locker.WithSlotLock(ctx, booking.TrainerID, booking.StartTime, booking.EndTime, func(lockCtx context.Context) error {
		return s.repo.ExecuteTransaction(lockCtx, func(sessCtx mongo.SessionContext) error {
			conflicts, err := s.repo.FindOverlapping(sessCtx, booking.TrainerID, booking.StartTime, booking.EndTime)
			if err != nil {
				return apperrors.Internal("Failed to check for conflicting bookings", err)
			}
			if len(conflicts) > 0 {
				return apperrors.BookingOverlap("Requested time overlaps an existing booking", map[string]any{
					"conflicting_booking_id": conflicts[0].ID,
				})
			}
			return s.repo.Insert(sessCtx, booking)
		})
	})
	if err != nil {
		if errors.Is(err, lock.ErrLockNotAcquired) {
			return apperrors.BookingOverlap("Slot is currently being booked by another client", nil)
		}
		if apperrors.IsAppError(err) {
			return err
		}
		s.cfg.Log.Error("Failed to create booking",
			"trainer_id", booking.TrainerID,
			"client_id", booking.ClientID,
			"error", err,
		)
		return apperrors.Internal("Failed to create booking", err)
	}

	s.recordNotification(ctx, booking, model.NotificationKindBookingCreated, booking.TrainerID)
	s.publish(ctx, events.TypeBookingCreated, booking, "")

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"trainer_id", booking.TrainerID,
		"client_id", booking.ClientID,
		"start_time", booking.StartTime,
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id, actorID string) (*model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID != booking.ClientID && actorID != booking.TrainerID {
		return nil, apperrors.Forbidden("Only the booking's client or trainer may view it")
	}
	return booking, nil
}

func (s *bookingService) ListByTrainer(ctx context.Context, trainerID string, limit, offset int) ([]*model.Booking, int64, error) {
	if trainerID == "" {
		return nil, 0, apperrors.InvalidInput("Trainer ID cannot be empty")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	bookings, total, err := s.repo.ListByTrainer(ctx, trainerID, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings by trainer", "trainer_id", trainerID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, total, nil
}

func (s *bookingService) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*model.Booking, int64, error) {
	if clientID == "" {
		return nil, 0, apperrors.InvalidInput("Client ID cannot be empty")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	bookings, total, err := s.repo.ListByClient(ctx, clientID, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings by client", "client_id", clientID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, total, nil
}

// Confirm moves a pending booking to confirmed. Trainer-only.
func (s *bookingService) Confirm(ctx context.Context, id, actorID string) (*model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID != booking.TrainerID {
		return nil, apperrors.Forbidden("Only the trainer may confirm a booking")
	}

	if err := s.transition(ctx, booking, model.BookingConfirmed); err != nil {
		return nil, err
	}

	s.recordNotification(ctx, booking, model.NotificationKindBookingConfirmed, booking.ClientID)
	s.publish(ctx, events.TypeBookingConfirmed, booking, "")

	s.cfg.Log.Info("Booking confirmed", "id", booking.ID, "trainer_id", booking.TrainerID)
	return booking, nil
}

// Reject moves a pending booking to rejected and retracts any notifications
// already queued for it. Trainer-only.
func (s *bookingService) Reject(ctx context.Context, id, actorID string) (*model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID != booking.TrainerID {
		return nil, apperrors.Forbidden("Only the trainer may reject a booking")
	}

	if err := s.transition(ctx, booking, model.BookingRejected); err != nil {
		return nil, err
	}

	s.retractNotifications(ctx, booking)
	s.publish(ctx, events.TypeBookingRejected, booking, "")

	s.cfg.Log.Info("Booking rejected", "id", booking.ID, "trainer_id", booking.TrainerID)
	return booking, nil
}

// Cancel moves a pending or confirmed booking to cancelled, freeing its slot.
// Either party may cancel; the reason is kept on the record.
func (s *bookingService) Cancel(ctx context.Context, id, actorID, reason string) (*model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID != booking.ClientID && actorID != booking.TrainerID {
		return nil, apperrors.Forbidden("Only the booking's client or trainer may cancel it")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CancellationReason = reason
	booking.CancellationDate = &now

	if err := s.transition(ctx, booking, model.BookingCancelled); err != nil {
		return nil, err
	}

	s.retractNotifications(ctx, booking)
	s.publish(ctx, events.TypeBookingCancelled, booking, reason)

	s.cfg.Log.Info("Booking cancelled",
		"id", booking.ID,
		"actor_id", actorID,
		"reason", reason,
	)
	return booking, nil
}

func (s *bookingService) load(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to load booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to load booking", err)
	}
	return booking, nil
}

func (s *bookingService) transition(ctx context.Context, booking *model.Booking, to model.BookingStatus) error {
	if !model.CanTransition(booking.Status, to) {
		return apperrors.Conflict(
			"Booking in status '" + string(booking.Status) + "' cannot move to '" + string(to) + "'",
		)
	}

	from := booking.Status
	booking.Status = to
	if err := s.repo.UpdateStatus(ctx, booking, from); err != nil {
		booking.Status = from
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", booking.ID)
		}
		if errors.Is(err, bookingerrors.ErrStaleStatus) {
			return apperrors.Conflict(
				"Booking status changed concurrently; cannot move to '" + string(to) + "'",
			)
		}
		s.cfg.Log.Error("Failed to update booking status",
			"id", booking.ID,
			"from", from,
			"to", to,
			"error", err,
		)
		return apperrors.Internal("Failed to update booking status", err)
	}
	return nil
}

func (s *bookingService) recordNotification(ctx context.Context, booking *model.Booking, kind, recipient string) {
	token, err := sealer.CreateOpaqueToken(booking.ID, recipient)
	if err != nil {
		s.cfg.Log.Warn("Failed to seal booking action token",
			"booking_id", booking.ID,
			"error", err,
		)
	}

	record := &model.NotificationRecord{
		BookingID: booking.ID,
		Recipient: recipient,
		Kind:      kind,
		Token:     token,
		SendAt:    booking.StartTime,
	}
	if err := s.notifications.Insert(ctx, record); err != nil {
		s.cfg.Log.Warn("Failed to record booking notification",
			"booking_id", booking.ID,
			"kind", kind,
			"error", err,
		)
	}
}

// retractNotifications deletes local reminder records and tells downstream
// consumers to drop theirs. A booking that died must not produce reminders.
func (s *bookingService) retractNotifications(ctx context.Context, booking *model.Booking) {
	if _, err := s.notifications.DeleteByBooking(ctx, booking.ID); err != nil {
		s.cfg.Log.Warn("Failed to delete booking notification records",
			"booking_id", booking.ID,
			"error", err,
		)
	}
	s.publish(ctx, events.TypeNotificationsRetract, booking, booking.CancellationReason)
}

func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking, reason string) {
	if err := s.publisher.Publish(ctx, events.NewBookingEvent(eventType, booking, reason)); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"booking_id", booking.ID,
			"event_type", eventType,
			"error", err,
		)
	}
}
