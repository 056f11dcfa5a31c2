package repository

import (
	"context"
	"fmt"
	"time"

	"fitbook/pkg/config"
	"fitbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ExceptionCollectionName = "Availability_exceptions"

// ExceptionStore is the primary, server-backed store for availability
// exceptions. The exception manager probes it once at startup and falls back
// to the Redis cache when it is not provisioned.
type ExceptionStore interface {
	Insert(ctx context.Context, exc *model.AvailabilityException) error
	ListByTrainer(ctx context.Context, trainerID string) ([]model.AvailabilityException, error)
	Probe(ctx context.Context) error
}

type mongoExceptionStore struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoExceptionStore(cfg *config.Config) ExceptionStore {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoExceptionStore{
		cfg:        cfg,
		collection: db.Collection(ExceptionCollectionName),
	}
}

func (r *mongoExceptionStore) Insert(ctx context.Context, exc *model.AvailabilityException) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	exc.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, exc)
	if err != nil {
		return fmt.Errorf("failed to insert availability exception: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		exc.ID = oid.Hex()
	}
	return nil
}

func (r *mongoExceptionStore) ListByTrainer(ctx context.Context, trainerID string) ([]model.AvailabilityException, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "exception_date", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"trainer_id": trainerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find availability exceptions: %w", err)
	}
	defer cursor.Close(ctx)

	var exceptions []model.AvailabilityException
	if err = cursor.All(ctx, &exceptions); err != nil {
		return nil, fmt.Errorf("failed to decode availability exceptions: %w", err)
	}

	return exceptions, nil
}

// Probe checks that the exception collection is reachable and queryable.
func (r *mongoExceptionStore) Probe(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if err := r.collection.FindOne(ctx, bson.M{}).Err(); err != nil && err != mongo.ErrNoDocuments {
		return fmt.Errorf("exception collection probe failed: %w", err)
	}
	return nil
}
