// Package exception records and serves the markers that suppress single
// occurrences of availability rules.
package exception

import (
	"context"

	"fitbook/internal/availability/repository"
	"fitbook/pkg/logger"
	"fitbook/pkg/model"
)

// Manager fronts the primary exception store with a Redis fallback. Whether
// the primary is usable is decided once, by Probe at startup, and injected —
// not inferred from scattered error paths at call time. Callers cannot tell
// which backing store served a read.
type Manager struct {
	primary        repository.ExceptionStore
	cache          *Cache
	primaryHealthy bool
	log            *logger.Logger
}

func NewManager(primary repository.ExceptionStore, cache *Cache, log *logger.Logger) *Manager {
	return &Manager{
		primary: primary,
		cache:   cache,
		log:     log,
	}
}

// Probe performs the startup capability check against the primary store.
// When it fails, the manager runs on the fallback cache alone.
func (m *Manager) Probe(ctx context.Context) {
	if err := m.primary.Probe(ctx); err != nil {
		m.log.Warn("Exception store unavailable, falling back to Redis cache", "error", err)
		m.primaryHealthy = false
		return
	}
	m.primaryHealthy = true
	m.log.Info("Exception store available")
}

// PrimaryHealthy reports the probed capability. Exposed for logging and
// health reporting only; callers must not branch on it.
func (m *Manager) PrimaryHealthy() bool {
	return m.primaryHealthy
}

// Add records a suppression marker. Not idempotent: a second call for the
// same (date, slot) writes a second row, which resolution tolerates because
// it only asks whether any row matches. Writes go through to the cache as
// well so it can serve reads alone if the primary degrades later.
func (m *Manager) Add(ctx context.Context, exc *model.AvailabilityException) error {
	if !m.primaryHealthy {
		return m.cache.Add(ctx, exc)
	}

	if err := m.primary.Insert(ctx, exc); err != nil {
		return err
	}

	if err := m.cache.Add(ctx, exc); err != nil {
		m.log.Warn("Failed to mirror exception into cache",
			"trainer_id", exc.TrainerID,
			"original_slot_id", exc.OriginalSlotID,
			"error", err,
		)
	}
	return nil
}

// ListForTrainer merges primary and cached exceptions, deduplicated by id.
// A transient primary failure degrades to cached data instead of reporting
// "no exceptions" as an error to the caller.
func (m *Manager) ListForTrainer(ctx context.Context, trainerID string) ([]model.AvailabilityException, error) {
	cached, cacheErr := m.cache.ListByTrainer(ctx, trainerID)
	if cacheErr != nil {
		m.log.Warn("Failed to read exception cache", "trainer_id", trainerID, "error", cacheErr)
	}

	if !m.primaryHealthy {
		return cached, cacheErr
	}

	primary, err := m.primary.ListByTrainer(ctx, trainerID)
	if err != nil {
		m.log.Warn("Primary exception read failed, serving cached exceptions",
			"trainer_id", trainerID,
			"error", err,
		)
		return cached, nil
	}

	return merge(primary, cached), nil
}

func merge(primary, cached []model.AvailabilityException) []model.AvailabilityException {
	seen := make(map[string]struct{}, len(primary))
	out := primary
	for _, exc := range primary {
		seen[exc.ID] = struct{}{}
	}
	for _, exc := range cached {
		if _, ok := seen[exc.ID]; ok {
			continue
		}
		out = append(out, exc)
	}
	return out
}
