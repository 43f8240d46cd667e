package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Rating-specific validation errors
var (
	// ErrRatingWorldIDEmpty is returned when a rating's world ID is empty or nil.
	ErrRatingWorldIDEmpty = errors.New("rating world ID cannot be empty")

	// ErrRatingUserIDEmpty is returned when a rating's user ID is empty or nil.
	ErrRatingUserIDEmpty = errors.New("rating user ID cannot be empty")

	// ErrStarsOutOfRange is returned when a rating's star value is outside 1..5.
	// A zero value means the user never picked a star; submission must be
	// rejected locally before any remote call is made.
	ErrStarsOutOfRange = errors.New("rating must be between 1 and 5 stars")
)

// Star rating bounds
const (
	MinStars = 1
	MaxStars = 5
)

// Rating is a single user's star rating of a world, with an optional
// comment. Ratings are unique per (WorldID, UserID): a new submission
// from the same user replaces the prior one rather than adding a row,
// and only the latest submission's timestamp is retained for ordering
// in the comment feed.
type Rating struct {
	WorldID   uuid.UUID `json:"world_id"`
	UserID    uuid.UUID `json:"user_id"`
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRating creates a new Rating for the given world and user.
// The comment is trimmed; a whitespace-only comment is normalized to
// the empty string, which keeps the numeric rating in the average but
// excludes the entry from the comment feed.
// Returns an error if validation fails.
func NewRating(worldID, userID uuid.UUID, stars int, comment string) (*Rating, error) {
	rating := &Rating{
		WorldID:   worldID,
		UserID:    userID,
		Stars:     stars,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := rating.Validate(); err != nil {
		return nil, err
	}

	return rating, nil
}

// HasComment reports whether the rating carries a non-empty comment and
// therefore appears in the comment feed.
func (r *Rating) HasComment() bool {
	return r.Comment != ""
}

// Validate checks if the Rating has valid data.
// Returns an error if any field fails validation.
func (r *Rating) Validate() error {
	if r.WorldID == uuid.Nil {
		return ErrRatingWorldIDEmpty
	}

	if r.UserID == uuid.Nil {
		return ErrRatingUserIDEmpty
	}

	if r.Stars < MinStars || r.Stars > MaxStars {
		return ErrStarsOutOfRange
	}

	return nil
}

// RatingSummary is the derived aggregate over all ratings of a world.
// It is computed on demand, never stored. When Count is zero the
// Average carries no meaning and must not be rendered as 0.0.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// HasRatings reports whether any rating exists for the world.
func (s RatingSummary) HasRatings() bool {
	return s.Count > 0
}
