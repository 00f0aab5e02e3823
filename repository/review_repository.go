package repository

import (
	"context"
	"time"

	"github.com/annazecevic/profile-service/domain"
	"github.com/annazecevic/profile-service/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReviewRepository is the append-only log of rating events. Reviews are
// the source of truth for a subject's rating; nothing here mutates or
// deletes them.
type ReviewRepository interface {
	Append(ctx context.Context, review *domain.Review) error
	FindByReceiver(ctx context.Context, email string) ([]*domain.Review, error)
	AggregateByReceiver(ctx context.Context, email string) (domain.ReviewStats, error)
}

type reviewRepository struct {
	collection *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) ReviewRepository {
	collection := db.Collection("reviews")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "receiverEmail", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Warn(logger.EventDBError, "Failed to create indexes for reviews", logger.Fields("error", err.Error()))
	}

	return &reviewRepository{collection: collection}
}

func (r *reviewRepository) Append(ctx context.Context, review *domain.Review) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		logger.Error(logger.EventDBError, "Error appending review", logger.Fields(
			"receiver_email", review.ReceiverEmail,
			"error", err.Error(),
		))
		return &domain.StorageError{Op: "append review", Err: err}
	}
	return nil
}

func (r *reviewRepository) FindByReceiver(ctx context.Context, email string) ([]*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"receiverEmail": email}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logger.Error(logger.EventDBError, "Error fetching reviews by receiver", logger.Fields(
			"receiver_email", email,
			"error", err.Error(),
		))
		return nil, &domain.StorageError{Op: "find reviews", Err: err}
	}
	defer cursor.Close(ctx)

	var reviews []*domain.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, &domain.StorageError{Op: "decode reviews", Err: err}
	}

	return reviews, nil
}

func (r *reviewRepository) AggregateByReceiver(ctx context.Context, email string) (domain.ReviewStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "receiverEmail", Value: email}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$receiverEmail"},
			{Key: "averageRating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "totalRating", Value: bson.D{{Key: "$sum", Value: "$rating"}}},
			{Key: "totalReviews", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.ReviewStats{}, &domain.StorageError{Op: "aggregate reviews", Err: err}
	}
	defer cursor.Close(ctx)

	var results []domain.ReviewStats
	if err := cursor.All(ctx, &results); err != nil {
		return domain.ReviewStats{}, &domain.StorageError{Op: "decode aggregation result", Err: err}
	}

	// No reviews yet: zero stats, never a division by zero.
	if len(results) == 0 {
		return domain.ReviewStats{}, nil
	}

	return results[0], nil
}
