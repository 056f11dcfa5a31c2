package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	availerrors "fitbook/internal/availability/errors"
	"fitbook/internal/availability/validator"
	"fitbook/pkg/config"
	mongotx "fitbook/pkg/db/mongo"
	apperrors "fitbook/pkg/errors"
	"fitbook/pkg/logger"
	"fitbook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type fakeRuleRepo struct {
	rules  []*model.AvailabilityRule
	nextID int
}

func (f *fakeRuleRepo) Insert(ctx context.Context, rule *model.AvailabilityRule) error {
	f.nextID++
	rule.ID = fmt.Sprintf("rule-%d", f.nextID)
	copied := *rule
	f.rules = append(f.rules, &copied)
	return nil
}

func (f *fakeRuleRepo) FindByID(ctx context.Context, id string) (*model.AvailabilityRule, error) {
	for _, r := range f.rules {
		if r.ID == id {
			copied := *r
			return &copied, nil
		}
	}
	return nil, availerrors.ErrNotFound
}

func (f *fakeRuleRepo) ListByTrainer(ctx context.Context, trainerID string) ([]model.AvailabilityRule, error) {
	var out []model.AvailabilityRule
	for _, r := range f.rules {
		if r.TrainerID == trainerID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRuleRepo) DeleteByTrainer(ctx context.Context, trainerID string) (int64, error) {
	kept := f.rules[:0]
	var n int64
	for _, r := range f.rules {
		if r.TrainerID == trainerID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.rules = kept
	return n, nil
}

func (f *fakeRuleRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type fakeServiceRepo struct {
	services []*model.Service
	nextID   int
}

func (f *fakeServiceRepo) Insert(ctx context.Context, svc *model.Service) error {
	f.nextID++
	svc.ID = fmt.Sprintf("svc-%d", f.nextID)
	copied := *svc
	f.services = append(f.services, &copied)
	return nil
}

func (f *fakeServiceRepo) FindByID(ctx context.Context, id string) (*model.Service, error) {
	for _, s := range f.services {
		if s.ID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, availerrors.ErrNotFound
}

func (f *fakeServiceRepo) ListByTrainer(ctx context.Context, trainerID string) ([]model.Service, error) {
	var out []model.Service
	for _, s := range f.services {
		if s.TrainerID == trainerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeServiceRepo) Delete(ctx context.Context, id string) error {
	kept := f.services[:0]
	found := false
	for _, s := range f.services {
		if s.ID == id {
			found = true
			continue
		}
		kept = append(kept, s)
	}
	f.services = kept
	if !found {
		return availerrors.ErrNotFound
	}
	return nil
}

type fakeExceptions struct {
	exceptions []model.AvailabilityException
	listErr    error
}

func (f *fakeExceptions) Add(ctx context.Context, exc *model.AvailabilityException) error {
	f.exceptions = append(f.exceptions, *exc)
	return nil
}

func (f *fakeExceptions) ListForTrainer(ctx context.Context, trainerID string) ([]model.AvailabilityException, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.exceptions, nil
}

type fakeBookings struct {
	bookings []*model.Booking
	err      error
}

func (f *fakeBookings) ListActiveByTrainer(ctx context.Context, trainerID string, from, to time.Time) ([]*model.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bookings, nil
}

type fixture struct {
	service    AvailabilityService
	rules      *fakeRuleRepo
	services   *fakeServiceRepo
	exceptions *fakeExceptions
	bookings   *fakeBookings
}

// 2026-03-02 is a Monday.
const monday = "2026-03-02"

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{
		Log:             log,
		SlotDurationMin: 60,
	}

	f := &fixture{
		rules:      &fakeRuleRepo{},
		services:   &fakeServiceRepo{},
		exceptions: &fakeExceptions{},
		bookings:   &fakeBookings{},
	}
	f.service = NewAvailabilityService(
		f.rules,
		f.services,
		f.exceptions,
		f.bookings,
		validator.NewRuleValidator(log),
		cfg,
	)
	return f
}

func mondayRule() model.AvailabilityRule {
	return model.AvailabilityRule{
		DayOfWeek:   1,
		StartTime:   "09:00",
		EndTime:     "12:00",
		IsAvailable: true,
	}
}

func TestReplaceRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.service.ReplaceRules(ctx, "t1", []model.AvailabilityRule{mondayRule()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A second save replaces, never appends.
	replacement := mondayRule()
	replacement.StartTime = "14:00"
	replacement.EndTime = "16:00"
	if err := f.service.ReplaceRules(ctx, "t1", []model.AvailabilityRule{replacement}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rules, err := f.service.ListRules(ctx, "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule after replacement, got %d", len(rules))
	}
	if rules[0].StartTime != "14:00:00" {
		t.Errorf("expected normalized replacement rule, got start %s", rules[0].StartTime)
	}
}

func TestReplaceRules_ValidationRejectsWholeSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.service.ReplaceRules(ctx, "t1", []model.AvailabilityRule{mondayRule()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := mondayRule()
	bad.EndTime = "08:00"
	err := f.service.ReplaceRules(ctx, "t1", []model.AvailabilityRule{mondayRule(), bad})
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected %s, got %v", apperrors.CodeValidation, err)
	}

	// Existing rules untouched by the failed save.
	rules, _ := f.service.ListRules(ctx, "t1")
	if len(rules) != 1 {
		t.Errorf("failed save must not alter stored rules, got %d", len(rules))
	}
}

func TestAddOneOffRule_SuppressesRestOfWeek(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.AddOneOffRule(ctx, "t1", &model.AvailabilityRule{
		StartTime:    "10:00",
		EndTime:      "11:00",
		SpecificDate: monday,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Recurring() {
		t.Error("one-off rule must not be recurring")
	}
	if created.DayOfWeek != 1 {
		t.Errorf("expected day_of_week derived from date, got %d", created.DayOfWeek)
	}

	if len(f.exceptions.exceptions) != 6 {
		t.Fatalf("expected 6 suppression exceptions, got %d", len(f.exceptions.exceptions))
	}
	for _, exc := range f.exceptions.exceptions {
		if exc.ExceptionDate == monday {
			t.Errorf("the rule's own date must not be suppressed")
		}
		if exc.OriginalSlotID != created.ID {
			t.Errorf("exception references wrong rule: %s", exc.OriginalSlotID)
		}
	}

	// Visible on its date, invisible elsewhere in the week.
	windows, err := f.service.WindowsForDate(ctx, "t1", monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("expected the one-off window on its date, got %d", len(windows))
	}

	windows, err = f.service.WindowsForDate(ctx, "t1", "2026-03-04")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 0 {
		t.Fatalf("one-off rule must not surface on other days, got %d windows", len(windows))
	}
}

func TestRemoveOccurrence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.service.ReplaceRules(ctx, "t1", []model.AvailabilityRule{mondayRule()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rules, _ := f.service.ListRules(ctx, "t1")
	ruleID := rules[0].ID

	if err := f.service.RemoveOccurrence(ctx, "t1", ruleID, monday); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	windows, err := f.service.WindowsForDate(ctx, "t1", monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 0 {
		t.Errorf("excepted occurrence must not resolve, got %d windows", len(windows))
	}

	// The following Monday still resolves.
	windows, err = f.service.WindowsForDate(ctx, "t1", "2026-03-09")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 1 {
		t.Errorf("later occurrences must survive, got %d windows", len(windows))
	}
}

func TestRemoveOccurrence_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.service.ReplaceRules(ctx, "t1", []model.AvailabilityRule{mondayRule()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rules, _ := f.service.ListRules(ctx, "t1")

	if err := f.service.RemoveOccurrence(ctx, "t1", "rule-999", monday); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found for unknown rule, got %v", err)
	}
	if err := f.service.RemoveOccurrence(ctx, "someone-else", rules[0].ID, monday); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected forbidden for foreign rule, got %v", err)
	}
	if err := f.service.RemoveOccurrence(ctx, "t1", rules[0].ID, "yesterday"); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input for malformed date, got %v", err)
	}
}

func TestSlotsForDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.service.ReplaceRules(ctx, "t1", []model.AvailabilityRule{mondayRule()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	slots, err := f.service.SlotsForDate(ctx, "t1", monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots from a 3h window, got %d", len(slots))
	}

	// A pending booking hides its slot.
	day, _ := model.ParseDate(monday)
	f.bookings.bookings = []*model.Booking{
		{
			TrainerID: "t1",
			StartTime: day.Add(10 * time.Hour),
			EndTime:   day.Add(11 * time.Hour),
			Status:    model.BookingPending,
		},
	}

	slots, err = f.service.SlotsForDate(ctx, "t1", monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected booked slot to be hidden, got %d slots", len(slots))
	}
	for _, s := range slots {
		if s.StartTime == "10:00:00" {
			t.Errorf("booked slot must not be listed")
		}
	}
}

func TestSlotsForDate_BookingReadFailureServesUnfiltered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.service.ReplaceRules(ctx, "t1", []model.AvailabilityRule{mondayRule()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.bookings.err = errors.New("bookings store down")

	slots, err := f.service.SlotsForDate(ctx, "t1", monday)
	if err != nil {
		t.Fatalf("listing must degrade, not fail: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("expected unfiltered slots, got %d", len(slots))
	}
}

func TestWindowsForDate_ExceptionStoreFailureIsTyped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.service.ReplaceRules(ctx, "t1", []model.AvailabilityRule{mondayRule()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.exceptions.listErr = errors.New("store down")

	_, err := f.service.WindowsForDate(ctx, "t1", monday)
	if !apperrors.IsCode(err, apperrors.CodeUnavailable) {
		t.Fatalf("an unavailable store must not look like empty availability, got %v", err)
	}
}

func TestServiceCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	svc := &model.Service{
		TrainerID:   "t1",
		Name:        "Personal training",
		DurationMin: 60,
		Price:       45,
	}
	if err := f.service.AddService(ctx, svc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	listed, err := f.service.ListServices(ctx, "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listed) != 1 || listed[0].Name != "Personal training" {
		t.Fatalf("unexpected catalog: %+v", listed)
	}

	if err := f.service.DeleteService(ctx, "other-trainer", svc.ID); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected forbidden for foreign service, got %v", err)
	}
	if err := f.service.DeleteService(ctx, "t1", svc.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	listed, _ = f.service.ListServices(ctx, "t1")
	if len(listed) != 0 {
		t.Errorf("expected empty catalog after delete, got %d", len(listed))
	}
}
