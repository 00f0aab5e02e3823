package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/annazecevic/profile-service/domain"
	"github.com/annazecevic/profile-service/logger"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProfileRepository stores rated subjects and their denormalized
// counters. IncrementCounters is the only hot-path write; it must stay
// a single atomic document operation so concurrent submissions for the
// same subject never lose updates.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	FindByEmail(ctx context.Context, email string) (*domain.Profile, error)
	IncrementCounters(ctx context.Context, email string, ratingDelta float64) error
	SetCounters(ctx context.Context, email string, totalRating float64, reviewer int64) error
	List(ctx context.Context, filter string, page, pageSize int64) ([]*domain.Profile, int64, error)
	Update(ctx context.Context, email string, fields bson.M) error
}

type profileRepository struct {
	collection *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) ProfileRepository {
	collection := db.Collection("profiles")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	emailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	createdIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	}
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{emailIndex, createdIndex})
	if err != nil {
		logger.Warn(logger.EventDBError, "Failed to create indexes for profiles", logger.Fields("error", err.Error()))
	}

	return &profileRepository{collection: collection}
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &domain.ValidationError{Field: "email", Reason: "already registered"}
		}
		logger.Error(logger.EventDBError, "Error creating profile", logger.Fields(
			"email", profile.Email,
			"error", err.Error(),
		))
		return &domain.StorageError{Op: "create profile", Err: err}
	}
	return nil
}

func (r *profileRepository) FindByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var profile domain.Profile
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &domain.NotFoundError{Resource: "profile", Key: email}
		}
		logger.Error(logger.EventDBError, "Error fetching profile", logger.Fields(
			"email", email,
			"error", err.Error(),
		))
		return nil, &domain.StorageError{Op: "find profile", Err: err}
	}
	return &profile, nil
}

// IncrementCounters adds ratingDelta to totalRating and 1 to reviewer
// in one $inc, upserting a counters-only profile when the subject has
// not registered yet. Orphaned reviews are legal, so their counters
// must not be dropped on the floor.
func (r *profileRepository) IncrementCounters(ctx context.Context, email string, ratingDelta float64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{"email": email}
	update := bson.M{
		"$inc": bson.M{
			"totalRating": ratingDelta,
			"reviewer":    1,
		},
		"$set": bson.M{
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"id":        uuid.New().String(),
			"email":     email,
			"createdAt": now,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return &domain.StorageError{Op: "increment counters", Err: err}
	}
	return nil
}

// SetCounters overwrites both counters in a single write. Used by
// reconciliation, so repeated calls with the same values are harmless.
func (r *profileRepository) SetCounters(ctx context.Context, email string, totalRating float64, reviewer int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"totalRating": totalRating,
			"reviewer":    reviewer,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{
			"id":        uuid.New().String(),
			"email":     email,
			"createdAt": now,
		},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"email": email}, update, options.Update().SetUpsert(true))
	if err != nil {
		return &domain.StorageError{Op: "set counters", Err: err}
	}
	return nil
}

// searchFilter builds a case-insensitive substring match over the name
// fields. An empty term matches everything.
func searchFilter(term string) bson.M {
	if term == "" {
		return bson.M{}
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	return bson.M{
		"$or": bson.A{
			bson.M{"firstName": pattern},
			bson.M{"lastName": pattern},
		},
	}
}

func (r *profileRepository) List(ctx context.Context, filter string, page, pageSize int64) ([]*domain.Profile, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := searchFilter(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, &domain.StorageError{Op: "count profiles", Err: err}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * pageSize).
		SetLimit(pageSize)

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		logger.Error(logger.EventDBError, "Error listing profiles", logger.Fields(
			"filter", filter,
			"error", err.Error(),
		))
		return nil, 0, &domain.StorageError{Op: "list profiles", Err: err}
	}
	defer cursor.Close(ctx)

	var profiles []*domain.Profile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, 0, &domain.StorageError{Op: "decode profiles", Err: err}
	}

	return profiles, total, nil
}

func (r *profileRepository) Update(ctx context.Context, email string, fields bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	fields["updatedAt"] = time.Now()
	update := bson.M{
		"$set": fields,
		"$setOnInsert": bson.M{
			"id":        uuid.New().String(),
			"email":     email,
			"createdAt": time.Now(),
		},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"email": email}, update, options.Update().SetUpsert(true))
	if err != nil {
		return &domain.StorageError{Op: "update profile", Err: err}
	}
	return nil
}
