package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/annazecevic/profile-service/domain"
	"github.com/annazecevic/profile-service/dto"
	"github.com/annazecevic/profile-service/logger"
	"github.com/annazecevic/profile-service/repository"
	"github.com/google/uuid"
)

// RatingService orchestrates the review log and the profile counters.
// The log is the source of truth; the counters are a cache that may
// drift when the increment step fails, and ReconcileProfile recomputes
// them from the log.
type RatingService interface {
	SubmitReview(ctx context.Context, req *dto.SubmitReviewRequest) (*domain.Review, error)
	LiveRating(ctx context.Context, email string) (domain.ReviewStats, error)
	CachedRating(ctx context.Context, email string) (domain.ReviewStats, error)
	ReviewsForSubject(ctx context.Context, email string) ([]*domain.Review, error)
	ReconcileProfile(ctx context.Context, email string) (domain.ReviewStats, error)
}

type ratingService struct {
	reviews       repository.ReviewRepository
	profiles      repository.ProfileRepository
	retryAttempts int
	retryBackoff  time.Duration
}

func NewRatingService(reviews repository.ReviewRepository, profiles repository.ProfileRepository, retryAttempts int, retryBackoff time.Duration) RatingService {
	if retryAttempts < 1 {
		retryAttempts = 1
	}
	return &ratingService{
		reviews:       reviews,
		profiles:      profiles,
		retryAttempts: retryAttempts,
		retryBackoff:  retryBackoff,
	}
}

func (s *ratingService) SubmitReview(ctx context.Context, req *dto.SubmitReviewRequest) (*domain.Review, error) {
	if req.Rating == nil {
		return nil, &domain.ValidationError{Field: "rating", Reason: "required"}
	}
	rating := *req.Rating
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		return nil, &domain.ValidationError{Field: "rating", Reason: "must be a finite number"}
	}
	if req.ReviewerEmail == "" {
		return nil, &domain.ValidationError{Field: "reviewerEmail", Reason: "required"}
	}
	if req.ReceiverEmail == "" {
		return nil, &domain.ValidationError{Field: "receiverEmail", Reason: "required"}
	}

	review := &domain.Review{
		ID:            uuid.New().String(),
		ReviewerEmail: req.ReviewerEmail,
		ReceiverEmail: req.ReceiverEmail,
		Rating:        rating,
		Comment:       req.Comment,
		CreatedAt:     time.Now(),
	}

	// The append defines durability of user intent. It is never
	// retried here: without an idempotency key a retry could write
	// the same event twice.
	if err := s.reviews.Append(ctx, review); err != nil {
		return nil, err
	}

	logger.Info(logger.EventReviewSubmitted, "Review submitted", logger.Fields(
		"receiver_email", review.ReceiverEmail,
		"rating", rating,
	))

	// Counter update is best-effort. The review is already durable, so
	// a failure here must not fail the submission; the counters drift
	// until reconciliation repairs them.
	if err := s.incrementWithRetry(ctx, review.ReceiverEmail, rating); err != nil {
		logger.Error(logger.EventCounterDrift, "Counter update failed, profile counters have drifted", logger.Fields(
			"receiver_email", review.ReceiverEmail,
			"review_id", review.ID,
			"error", err.Error(),
		))
	}

	return review, nil
}

func (s *ratingService) incrementWithRetry(ctx context.Context, email string, ratingDelta float64) error {
	backoff := s.retryBackoff
	var err error
	for attempt := 1; attempt <= s.retryAttempts; attempt++ {
		err = s.profiles.IncrementCounters(ctx, email, ratingDelta)
		if err == nil {
			return nil
		}
		if attempt == s.retryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}

// LiveRating aggregates directly over the review log. Always accurate,
// more expensive than the cached path.
func (s *ratingService) LiveRating(ctx context.Context, email string) (domain.ReviewStats, error) {
	return s.reviews.AggregateByReceiver(ctx, email)
}

// CachedRating reads the denormalized counters. Cheap, but stale when
// an increment was lost. A subject with no profile document yet reads
// as zero stats.
func (s *ratingService) CachedRating(ctx context.Context, email string) (domain.ReviewStats, error) {
	profile, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return domain.ReviewStats{}, nil
		}
		return domain.ReviewStats{}, err
	}

	return domain.ReviewStats{
		AverageRating: profile.AverageRating(),
		TotalRating:   profile.TotalRating,
		TotalReviews:  profile.Reviewer,
	}, nil
}

func (s *ratingService) ReviewsForSubject(ctx context.Context, email string) ([]*domain.Review, error) {
	if email == "" {
		return nil, &domain.ValidationError{Field: "email", Reason: "required"}
	}
	return s.reviews.FindByReceiver(ctx, email)
}

// ReconcileProfile recomputes both counters from the log and writes
// them in one document update. Idempotent: running it twice leaves the
// same state.
func (s *ratingService) ReconcileProfile(ctx context.Context, email string) (domain.ReviewStats, error) {
	if email == "" {
		return domain.ReviewStats{}, &domain.ValidationError{Field: "email", Reason: "required"}
	}

	stats, err := s.reviews.AggregateByReceiver(ctx, email)
	if err != nil {
		return domain.ReviewStats{}, err
	}

	if err := s.profiles.SetCounters(ctx, email, stats.TotalRating, stats.TotalReviews); err != nil {
		return domain.ReviewStats{}, err
	}

	logger.Info(logger.EventReconciliation, "Profile counters reconciled from review log", logger.Fields(
		"receiver_email", email,
		"total_reviews", stats.TotalReviews,
	))

	return stats, nil
}
