package service

import (
	"context"
	"errors"
	"time"

	availerrors "fitbook/internal/availability/errors"
	"fitbook/internal/availability/repository"
	"fitbook/internal/availability/resolver"
	"fitbook/internal/availability/slots"
	"fitbook/internal/availability/validator"
	"fitbook/pkg/config"
	apperrors "fitbook/pkg/errors"
	"fitbook/pkg/model"
	"fitbook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// ExceptionManager is the suppression-marker store consulted at resolution
// time. Implemented by the exception package's probed primary/fallback pair.
type ExceptionManager interface {
	Add(ctx context.Context, exc *model.AvailabilityException) error
	ListForTrainer(ctx context.Context, trainerID string) ([]model.AvailabilityException, error)
}

// BookingReader supplies the active bookings used to hide already-taken
// slots from listings. Booking creation re-checks overlap transactionally,
// this read is the first half of that defense in depth.
type BookingReader interface {
	ListActiveByTrainer(ctx context.Context, trainerID string, from, to time.Time) ([]*model.Booking, error)
}

type AvailabilityService interface {
	ListRules(ctx context.Context, trainerID string) ([]model.AvailabilityRule, error)
	ReplaceRules(ctx context.Context, trainerID string, rules []model.AvailabilityRule) error
	AddOneOffRule(ctx context.Context, trainerID string, rule *model.AvailabilityRule) (*model.AvailabilityRule, error)
	RemoveOccurrence(ctx context.Context, trainerID, ruleID, date string) error
	WindowsForDate(ctx context.Context, trainerID, date string) ([]model.Window, error)
	SlotsForDate(ctx context.Context, trainerID, date string) ([]model.Slot, error)

	AddService(ctx context.Context, svc *model.Service) error
	ListServices(ctx context.Context, trainerID string) ([]model.Service, error)
	DeleteService(ctx context.Context, trainerID, serviceID string) error
}

type availabilityService struct {
	rules      repository.RuleRepository
	services   repository.ServiceRepository
	exceptions ExceptionManager
	bookings   BookingReader
	validator  *validator.RuleValidator
	cfg        *config.Config
}

func NewAvailabilityService(
	rules repository.RuleRepository,
	services repository.ServiceRepository,
	exceptions ExceptionManager,
	bookings BookingReader,
	ruleValidator *validator.RuleValidator,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		rules:      rules,
		services:   services,
		exceptions: exceptions,
		bookings:   bookings,
		validator:  ruleValidator,
		cfg:        cfg,
	}
}

func (s *availabilityService) ListRules(ctx context.Context, trainerID string) ([]model.AvailabilityRule, error) {
	if trainerID == "" {
		return nil, apperrors.InvalidInput("Trainer ID cannot be empty")
	}

	rules, err := s.rules.ListByTrainer(ctx, trainerID)
	if err != nil {
		s.cfg.Log.Error("Failed to list availability rules", "trainer_id", trainerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve availability rules", err)
	}

	return rules, nil
}

// ReplaceRules swaps a trainer's full rule set in one transaction. The
// editing UI saves wholesale, so the granularity is the trainer account:
// last writer wins, partial merges are not attempted.
func (s *availabilityService) ReplaceRules(ctx context.Context, trainerID string, rules []model.AvailabilityRule) error {
	if trainerID == "" {
		return apperrors.InvalidInput("Trainer ID cannot be empty")
	}

	for i := range rules {
		rules[i].ID = ""
		rules[i].TrainerID = trainerID
		s.normalize(&rules[i])
		if err := s.validator.Validate(&rules[i]); err != nil {
			s.cfg.Log.Warn("Availability rule validation failed",
				"trainer_id", trainerID,
				"error", err,
			)
			return apperrors.Validation("Availability rule validation failed", map[string]any{
				"error": err.Error(),
			})
		}
	}

	err := s.rules.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := s.rules.DeleteByTrainer(sessCtx, trainerID); err != nil {
			return apperrors.Internal("Failed to clear existing availability rules", err)
		}
		for i := range rules {
			if err := s.rules.Insert(sessCtx, &rules[i]); err != nil {
				return apperrors.Internal("Failed to insert availability rule", err)
			}
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to replace availability rules",
			"trainer_id", trainerID,
			"rule_count", len(rules),
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Availability rules replaced successfully",
		"trainer_id", trainerID,
		"rule_count", len(rules),
	)
	return nil
}

// AddOneOffRule inserts a single-date rule and suppresses it on the other
// days of its week. Rows written before the is_recurring flag existed are
// read as recurring, so without the suppression markers a one-off slot
// would surface on every matching weekday for legacy readers.
func (s *availabilityService) AddOneOffRule(ctx context.Context, trainerID string, rule *model.AvailabilityRule) (*model.AvailabilityRule, error) {
	if trainerID == "" {
		return nil, apperrors.InvalidInput("Trainer ID cannot be empty")
	}

	recurring := false
	rule.ID = ""
	rule.TrainerID = trainerID
	rule.IsRecurring = &recurring
	rule.IsAvailable = true
	s.normalize(rule)

	day, err := model.ParseDate(rule.SpecificDate)
	if err != nil {
		return nil, apperrors.InvalidInput("specific_date must be a valid YYYY-MM-DD date")
	}
	rule.DayOfWeek = int(day.Weekday())

	if err := s.validator.Validate(rule); err != nil {
		s.cfg.Log.Warn("One-off rule validation failed", "trainer_id", trainerID, "error", err)
		return nil, apperrors.Validation("Availability rule validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.rules.Insert(ctx, rule); err != nil {
		s.cfg.Log.Error("Failed to insert one-off rule", "trainer_id", trainerID, "error", err)
		return nil, apperrors.Internal("Failed to insert availability rule", err)
	}

	weekStart := day.AddDate(0, 0, -int(day.Weekday()))
	for offset := 0; offset < 7; offset++ {
		d := weekStart.AddDate(0, 0, offset)
		date := d.Format(model.DateLayout)
		if date == rule.SpecificDate {
			continue
		}
		exc := &model.AvailabilityException{
			TrainerID:      trainerID,
			ExceptionDate:  date,
			OriginalSlotID: rule.ID,
			DayOfWeek:      int(d.Weekday()),
			StartTime:      rule.StartTime,
			EndTime:        rule.EndTime,
		}
		if err := s.exceptions.Add(ctx, exc); err != nil {
			s.cfg.Log.Warn("Failed to add suppression exception for one-off rule",
				"trainer_id", trainerID,
				"rule_id", rule.ID,
				"date", date,
				"error", err,
			)
		}
	}

	s.cfg.Log.Info("One-off availability rule added",
		"trainer_id", trainerID,
		"rule_id", rule.ID,
		"date", rule.SpecificDate,
	)
	return rule, nil
}

// RemoveOccurrence suppresses a single occurrence of a rule without touching
// the rule itself.
func (s *availabilityService) RemoveOccurrence(ctx context.Context, trainerID, ruleID, date string) error {
	if trainerID == "" || ruleID == "" {
		return apperrors.InvalidInput("Trainer ID and rule ID are required")
	}
	if _, err := model.ParseDate(date); err != nil {
		return apperrors.InvalidInput("date must be a valid YYYY-MM-DD date")
	}

	rule, err := s.rules.FindByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, availerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Availability rule", ruleID)
		}
		if errors.Is(err, availerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid availability rule ID format")
		}
		return apperrors.Internal("Failed to load availability rule", err)
	}
	if rule.TrainerID != trainerID {
		return apperrors.Forbidden("Rule belongs to a different trainer")
	}

	weekday, _ := model.DayOfWeekOf(date)
	exc := &model.AvailabilityException{
		TrainerID:      trainerID,
		ExceptionDate:  date,
		OriginalSlotID: rule.ID,
		DayOfWeek:      weekday,
		StartTime:      rule.StartTime,
		EndTime:        rule.EndTime,
	}
	if err := s.validator.ValidateException(exc); err != nil {
		return apperrors.Validation("Exception validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.exceptions.Add(ctx, exc); err != nil {
		s.cfg.Log.Error("Failed to record availability exception",
			"trainer_id", trainerID,
			"rule_id", ruleID,
			"date", date,
			"error", err,
		)
		return apperrors.Internal("Failed to record availability exception", err)
	}

	s.cfg.Log.Info("Availability occurrence removed",
		"trainer_id", trainerID,
		"rule_id", ruleID,
		"date", date,
	)
	return nil
}

func (s *availabilityService) WindowsForDate(ctx context.Context, trainerID, date string) ([]model.Window, error) {
	if trainerID == "" {
		return nil, apperrors.InvalidInput("Trainer ID cannot be empty")
	}
	if _, err := model.ParseDate(date); err != nil {
		return nil, apperrors.InvalidInput("date must be a valid YYYY-MM-DD date")
	}

	rules, err := s.rules.ListByTrainer(ctx, trainerID)
	if err != nil {
		// Infrastructure failure, not "no availability": callers get a typed
		// error, never an empty window list.
		s.cfg.Log.Error("Failed to load rules for resolution", "trainer_id", trainerID, "error", err)
		return nil, apperrors.Unavailable("Availability store")
	}

	exceptions, err := s.exceptions.ListForTrainer(ctx, trainerID)
	if err != nil {
		s.cfg.Log.Error("Failed to load exceptions for resolution", "trainer_id", trainerID, "error", err)
		return nil, apperrors.Unavailable("Exception store")
	}

	windows, err := resolver.Resolve(rules, exceptions, date)
	if err != nil {
		return nil, apperrors.Internal("Failed to resolve availability", err)
	}

	return windows, nil
}

func (s *availabilityService) SlotsForDate(ctx context.Context, trainerID, date string) ([]model.Slot, error) {
	windows, err := s.WindowsForDate(ctx, trainerID, date)
	if err != nil {
		return nil, err
	}

	generated := slots.Generate(windows, s.cfg.SlotDurationMin)
	if len(generated) == 0 {
		return generated, nil
	}

	day, _ := model.ParseDate(date)
	bookings, err := s.bookings.ListActiveByTrainer(ctx, trainerID, day, day.AddDate(0, 0, 1))
	if err != nil {
		// Listing still works without the overlap filter; creation catches
		// double-booking transactionally.
		s.cfg.Log.Warn("Failed to load bookings for slot filtering, serving unfiltered slots",
			"trainer_id", trainerID,
			"date", date,
			"error", err,
		)
		return generated, nil
	}

	return slots.FilterBooked(generated, bookings), nil
}

func (s *availabilityService) AddService(ctx context.Context, svc *model.Service) error {
	svc.Name = sanitizer.NormalizeName(svc.Name)
	svc.Description = sanitizer.NormalizeFreeText(svc.Description)

	if err := s.validator.ValidateService(svc); err != nil {
		s.cfg.Log.Warn("Trainer service validation failed", "trainer_id", svc.TrainerID, "error", err)
		return apperrors.Validation("Trainer service validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.services.Insert(ctx, svc); err != nil {
		s.cfg.Log.Error("Failed to create trainer service", "trainer_id", svc.TrainerID, "error", err)
		return apperrors.Internal("Failed to create trainer service", err)
	}

	s.cfg.Log.Info("Trainer service created", "id", svc.ID, "trainer_id", svc.TrainerID, "name", svc.Name)
	return nil
}

func (s *availabilityService) ListServices(ctx context.Context, trainerID string) ([]model.Service, error) {
	if trainerID == "" {
		return nil, apperrors.InvalidInput("Trainer ID cannot be empty")
	}

	services, err := s.services.ListByTrainer(ctx, trainerID)
	if err != nil {
		s.cfg.Log.Error("Failed to list trainer services", "trainer_id", trainerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve trainer services", err)
	}

	return services, nil
}

func (s *availabilityService) DeleteService(ctx context.Context, trainerID, serviceID string) error {
	if trainerID == "" || serviceID == "" {
		return apperrors.InvalidInput("Trainer ID and service ID are required")
	}

	svc, err := s.services.FindByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, availerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Trainer service", serviceID)
		}
		if errors.Is(err, availerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid trainer service ID format")
		}
		return apperrors.Internal("Failed to load trainer service", err)
	}
	if svc.TrainerID != trainerID {
		return apperrors.Forbidden("Service belongs to a different trainer")
	}

	if err := s.services.Delete(ctx, serviceID); err != nil {
		return apperrors.Internal("Failed to delete trainer service", err)
	}

	s.cfg.Log.Info("Trainer service deleted", "id", serviceID, "trainer_id", trainerID)
	return nil
}

func (s *availabilityService) normalize(rule *model.AvailabilityRule) {
	if t, err := model.NormalizeTimeOfDay(rule.StartTime); err == nil {
		rule.StartTime = t
	}
	if t, err := model.NormalizeTimeOfDay(rule.EndTime); err == nil {
		rule.EndTime = t
	}
}
