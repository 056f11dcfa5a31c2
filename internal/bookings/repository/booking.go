package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingerrors "fitbook/internal/bookings/errors"
	"fitbook/pkg/config"
	mongotx "fitbook/pkg/db/mongo"
	"fitbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const BookingCollectionName = "Bookings"

type BookingRepository interface {
	Insert(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	ListByTrainer(ctx context.Context, trainerID string, limit, offset int) ([]*model.Booking, int64, error)
	ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*model.Booking, int64, error)
	ListActiveByTrainer(ctx context.Context, trainerID string, from, to time.Time) ([]*model.Booking, error)
	FindOverlapping(ctx context.Context, trainerID string, start, end time.Time) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, booking *model.Booking, from model.BookingStatus) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(BookingCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout bounds store calls unless already inside a transaction, where
// wrapping the SessionContext would break session semantics.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			return context.WithTimeout(ctx, remaining)
		}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Insert(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) ListByTrainer(ctx context.Context, trainerID string, limit, offset int) ([]*model.Booking, int64, error) {
	return r.list(ctx, bson.M{"trainer_id": trainerID}, limit, offset)
}

func (r *mongoBookingRepository) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*model.Booking, int64, error) {
	return r.list(ctx, bson.M{"client_id": clientID}, limit, offset)
}

func (r *mongoBookingRepository) list(ctx context.Context, filter bson.M, limit, offset int) ([]*model.Booking, int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, 0, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, total, nil
}

func (r *mongoBookingRepository) ListActiveByTrainer(ctx context.Context, trainerID string, from, to time.Time) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"trainer_id": trainerID,
		"status":     bson.M{"$in": []model.BookingStatus{model.BookingPending, model.BookingConfirmed}},
		"start_time": bson.M{"$lt": to},
		"end_time":   bson.M{"$gt": from},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find active bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode active bookings: %w", err)
	}

	return bookings, nil
}

// FindOverlapping matches active bookings whose half-open interval intersects
// [start, end).
func (r *mongoBookingRepository) FindOverlapping(ctx context.Context, trainerID string, start, end time.Time) ([]*model.Booking, error) {
	return r.ListActiveByTrainer(ctx, trainerID, start, end)
}

// UpdateStatus writes the new status only when the stored status still equals
// from, so a write racing another transition cannot move a booking out of a
// state it no longer holds.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, booking *model.Booking, from model.BookingStatus) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(booking.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, booking.ID)
	}

	booking.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	update := bson.M{"$set": bson.M{
		"status":     booking.Status,
		"updated_at": booking.UpdatedAt,
	}}
	if booking.Status == model.BookingCancelled {
		update["$set"].(bson.M)["cancellation_reason"] = booking.CancellationReason
		update["$set"].(bson.M)["cancellation_date"] = booking.CancellationDate
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID, "status": from}, update)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
		if err != nil {
			return fmt.Errorf("failed to update booking status: %w", err)
		}
		if count == 0 {
			return bookingerrors.ErrNotFound
		}
		return bookingerrors.ErrStaleStatus
	}

	return nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
