package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"github.com/strategiert/lernwelt-api/internal/domain"
	"github.com/strategiert/lernwelt-api/internal/store"
)

// RatingRepository defines the repository interface for the rating
// service layer, aligned with store.RatingStore.
type RatingRepository interface {
	// Upsert inserts the rating or replaces the user's existing rating
	Upsert(ctx context.Context, rating *domain.Rating) error

	// GetByWorldAndUser retrieves a single user's rating of a world
	GetByWorldAndUser(ctx context.Context, worldID, userID uuid.UUID) (*domain.Rating, error)

	// ListWithComments retrieves commented ratings, newest first
	ListWithComments(ctx context.Context, worldID uuid.UUID, limit, offset int) ([]*domain.Rating, error)

	// GetSummary computes the average and count over all ratings
	GetSummary(ctx context.Context, worldID uuid.UUID) (domain.RatingSummary, error)
}

// Common sentinel errors for RatingService
var (
	// ErrZeroStars indicates a submission without a star selection.
	// It is raised before any store call is made.
	ErrZeroStars = errors.New("a star rating must be selected before submitting")

	// ErrNoRatings indicates that a world has no ratings at all. Callers
	// render a "no ratings yet" state; an average is never synthesized.
	ErrNoRatings = errors.New("world has no ratings")

	// ErrSubmissionFailed indicates the rating could not be persisted.
	// The user's prior rating, if any, is untouched and the submission
	// can be retried.
	ErrSubmissionFailed = errors.New("rating submission failed")
)

// RatingServiceError wraps errors from the rating service with context.
type RatingServiceError struct {
	// Operation is the operation that failed (e.g., "submit_rating")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for RatingServiceError.
func (e *RatingServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rating service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("rating service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *RatingServiceError) Unwrap() error {
	return e.Err
}

// RatingService provides rating submission, the comment feed and the
// derived aggregate for a world.
type RatingService interface {
	// Submit records or replaces the user's rating of a world.
	// Returns ErrZeroStars for out-of-range stars without touching the
	// store, and an error wrapping ErrSubmissionFailed when persistence
	// fails (prior state intact).
	Submit(ctx context.Context, worldID, userID uuid.UUID, stars int, comment string) (*domain.Rating, error)

	// Comments retrieves the world's commented ratings, newest first.
	// Ratings whose comment is empty never appear here.
	Comments(ctx context.Context, worldID uuid.UUID, limit, offset int) ([]*domain.Rating, error)

	// Summary returns the average and count over all ratings of the
	// world. Returns ErrNoRatings when no rating exists.
	Summary(ctx context.Context, worldID uuid.UUID) (domain.RatingSummary, error)

	// UserRating retrieves the requesting user's own rating of a world,
	// used to pre-fill the rating dialog. Returns ErrRatingNotFound via
	// the store when the user has not rated the world.
	UserRating(ctx context.Context, worldID, userID uuid.UUID) (*domain.Rating, error)
}

// ratingServiceImpl implements the RatingService interface
type ratingServiceImpl struct {
	ratingRepo RatingRepository
	logger     *slog.Logger
}

// NewRatingService creates a new RatingService.
// It returns an error if the repository is nil.
func NewRatingService(ratingRepo RatingRepository, logger *slog.Logger) (RatingService, error) {
	if ratingRepo == nil {
		return nil, &RatingServiceError{
			Operation: "create_service",
			Message:   "ratingRepo cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ratingServiceImpl{
		ratingRepo: ratingRepo,
		logger:     logger.With("component", "rating_service"),
	}, nil
}

// Submit validates and persists a rating. Star validation happens
// before any store call so a missing selection never produces traffic.
func (s *ratingServiceImpl) Submit(
	ctx context.Context,
	worldID, userID uuid.UUID,
	stars int,
	comment string,
) (*domain.Rating, error) {
	if stars < domain.MinStars || stars > domain.MaxStars {
		s.logger.Debug("rating rejected before submission",
			"world_id", worldID,
			"stars", stars)
		return nil, ErrZeroStars
	}

	rating, err := domain.NewRating(worldID, userID, stars, comment)
	if err != nil {
		return nil, &RatingServiceError{
			Operation: "submit_rating",
			Message:   "failed to create rating object",
			Err:       err,
		}
	}

	if err := s.ratingRepo.Upsert(ctx, rating); err != nil {
		s.logger.Error("failed to persist rating",
			"error", err,
			"world_id", worldID,
			"user_id", userID)
		return nil, &RatingServiceError{
			Operation: "submit_rating",
			Message:   "failed to persist rating",
			Err:       fmt.Errorf("%w: %v", ErrSubmissionFailed, err),
		}
	}

	s.logger.Info("rating submitted",
		"world_id", worldID,
		"user_id", userID,
		"stars", stars,
		"has_comment", rating.HasComment())

	return rating, nil
}

// Comments returns the commented ratings of a world, newest first.
func (s *ratingServiceImpl) Comments(
	ctx context.Context,
	worldID uuid.UUID,
	limit, offset int,
) ([]*domain.Rating, error) {
	ratings, err := s.ratingRepo.ListWithComments(ctx, worldID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list comments",
			"error", err,
			"world_id", worldID)
		return nil, &RatingServiceError{
			Operation: "list_comments",
			Message:   "failed to list comments",
			Err:       err,
		}
	}
	return ratings, nil
}

// Summary returns the aggregate over all ratings of a world, or
// ErrNoRatings when none exist. A zero-rating world is a distinct
// state, not an average of 0.0.
func (s *ratingServiceImpl) Summary(
	ctx context.Context,
	worldID uuid.UUID,
) (domain.RatingSummary, error) {
	summary, err := s.ratingRepo.GetSummary(ctx, worldID)
	if err != nil {
		s.logger.Error("failed to compute rating summary",
			"error", err,
			"world_id", worldID)
		return domain.RatingSummary{}, &RatingServiceError{
			Operation: "rating_summary",
			Message:   "failed to compute summary",
			Err:       err,
		}
	}

	if !summary.HasRatings() {
		return domain.RatingSummary{}, ErrNoRatings
	}

	return summary, nil
}

// UserRating retrieves the user's own rating of a world.
func (s *ratingServiceImpl) UserRating(
	ctx context.Context,
	worldID, userID uuid.UUID,
) (*domain.Rating, error) {
	rating, err := s.ratingRepo.GetByWorldAndUser(ctx, worldID, userID)
	if err != nil {
		if errors.Is(err, store.ErrRatingNotFound) {
			return nil, err
		}
		s.logger.Error("failed to retrieve user rating",
			"error", err,
			"world_id", worldID,
			"user_id", userID)
		return nil, &RatingServiceError{
			Operation: "get_user_rating",
			Message:   "failed to retrieve rating",
			Err:       err,
		}
	}
	return rating, nil
}

// FilledStars returns the number of fully filled stars to render for an
// average. Values round half away from zero, so 4.5 renders five filled
// stars.
func FilledStars(average float64) int {
	filled := int(math.Round(average))
	if filled < 0 {
		return 0
	}
	if filled > domain.MaxStars {
		return domain.MaxStars
	}
	return filled
}

// HasPartialStar reports whether the average calls for a partially
// filled star, i.e. it is not a whole number.
func HasPartialStar(average float64) bool {
	return average != math.Trunc(average)
}
