package exception

import (
	"context"
	"encoding/json"
	"fmt"

	"fitbook/pkg/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache is a trainer-scoped persistent fallback store for availability
// exceptions, kept in a Redis hash per trainer. No TTL: suppression markers
// must outlive restarts, they are data, not a cache of convenience.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func cacheKey(trainerID string) string {
	return fmt.Sprintf("exceptions:trainer:%s", trainerID)
}

func (c *Cache) Add(ctx context.Context, exc *model.AvailabilityException) error {
	if exc.ID == "" {
		exc.ID = uuid.NewString()
	}

	payload, err := json.Marshal(exc)
	if err != nil {
		return fmt.Errorf("failed to marshal exception: %w", err)
	}

	if err := c.client.HSet(ctx, cacheKey(exc.TrainerID), exc.ID, payload).Err(); err != nil {
		return fmt.Errorf("failed to cache exception: %w", err)
	}
	return nil
}

func (c *Cache) ListByTrainer(ctx context.Context, trainerID string) ([]model.AvailabilityException, error) {
	entries, err := c.client.HGetAll(ctx, cacheKey(trainerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cached exceptions: %w", err)
	}

	var exceptions []model.AvailabilityException
	for _, raw := range entries {
		var exc model.AvailabilityException
		if err := json.Unmarshal([]byte(raw), &exc); err != nil {
			continue
		}
		exceptions = append(exceptions, exc)
	}

	return exceptions, nil
}
