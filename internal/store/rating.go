package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/strategiert/lernwelt-api/internal/domain"
)

// RatingStore defines the interface for rating persistence.
// Ratings are unique per (world, user): writes are upserts, and the
// displayed aggregate is always recomputed from the stored rows.
type RatingStore interface {
	// Upsert inserts the rating or replaces the user's existing rating
	// for the world. The replaced row takes the new rating's timestamp,
	// so the comment feed orders by latest submission.
	// Returns validation errors if the rating data is invalid, and
	// ErrInvalidEntity when the world or user row does not exist.
	Upsert(ctx context.Context, rating *domain.Rating) error

	// GetByWorldAndUser retrieves a single user's rating of a world.
	// Returns ErrRatingNotFound if the user has not rated the world.
	GetByWorldAndUser(ctx context.Context, worldID, userID uuid.UUID) (*domain.Rating, error)

	// ListWithComments retrieves the ratings of a world that carry a
	// non-empty comment, newest first. Ratings without comments are
	// invisible here but still count toward the summary.
	ListWithComments(ctx context.Context, worldID uuid.UUID, limit, offset int) ([]*domain.Rating, error)

	// GetSummary computes the average and count over all ratings of a
	// world, commentless ones included. A world with no ratings yields
	// Count == 0; the average is meaningless in that case and callers
	// must render a "no ratings" state instead.
	GetSummary(ctx context.Context, worldID uuid.UUID) (domain.RatingSummary, error)

	// WithTx returns a new RatingStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) RatingStore
}
