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
)

const NotificationCollectionName = "Booking_notifications"

type NotificationRepository interface {
	Insert(ctx context.Context, record *model.NotificationRecord) error
	ListByBooking(ctx context.Context, bookingID string) ([]model.NotificationRecord, error)
	DeleteByBooking(ctx context.Context, bookingID string) (int64, error)
}

type mongoNotificationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoNotificationRepository(cfg *config.Config) NotificationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoNotificationRepository{
		cfg:        cfg,
		collection: db.Collection(NotificationCollectionName),
	}
}

func (r *mongoNotificationRepository) Insert(ctx context.Context, record *model.NotificationRecord) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	record.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to insert notification record: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid.Hex()
	}
	return nil
}

func (r *mongoNotificationRepository) ListByBooking(ctx context.Context, bookingID string) ([]model.NotificationRecord, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"booking_id": bookingID})
	if err != nil {
		return nil, fmt.Errorf("failed to find notification records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []model.NotificationRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode notification records: %w", err)
	}

	return records, nil
}

func (r *mongoNotificationRepository) DeleteByBooking(ctx context.Context, bookingID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"booking_id": bookingID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete notification records: %w", err)
	}

	return result.DeletedCount, nil
}
