package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/strategiert/lernwelt-api/internal/domain"
	"github.com/strategiert/lernwelt-api/internal/platform/logger"
	"github.com/strategiert/lernwelt-api/internal/store"
)

// PostgresRatingStore implements the store.RatingStore interface
// using a PostgreSQL database as the storage backend. The table carries
// a composite primary key on (world_id, user_id), which makes the
// upsert a single ON CONFLICT statement and guarantees one row per
// user per world regardless of submission races: the last write wins.
type PostgresRatingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRatingStore creates a new PostgreSQL implementation of the RatingStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresRatingStore(db store.DBTX, logger *slog.Logger) *PostgresRatingStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRatingStore{
		db:     db,
		logger: logger.With(slog.String("component", "rating_store")),
	}
}

// Ensure PostgresRatingStore implements store.RatingStore interface
var _ store.RatingStore = (*PostgresRatingStore)(nil)

// Upsert implements store.RatingStore.Upsert
// It inserts the rating or replaces the user's prior rating of the
// world. The replaced row takes the new timestamps, so the comment feed
// orders by latest submission.
// Returns store.ErrInvalidEntity if the world or user does not exist.
func (s *PostgresRatingStore) Upsert(ctx context.Context, rating *domain.Rating) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := rating.Validate(); err != nil {
		log.Warn("rating validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("world_id", rating.WorldID.String()),
			slog.String("user_id", rating.UserID.String()))
		return err
	}

	query := `
		INSERT INTO ratings (world_id, user_id, stars, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (world_id, user_id)
		DO UPDATE SET stars = EXCLUDED.stars,
		              comment = EXCLUDED.comment,
		              created_at = EXCLUDED.created_at,
		              updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		rating.WorldID,
		rating.UserID,
		rating.Stars,
		rating.Comment,
		rating.CreatedAt,
		rating.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during rating upsert",
				slog.String("error", err.Error()),
				slog.String("world_id", rating.WorldID.String()),
				slog.String("user_id", rating.UserID.String()))
			return fmt.Errorf("%w: world or user does not exist", store.ErrInvalidEntity)
		}

		log.Error("failed to upsert rating",
			slog.String("error", err.Error()),
			slog.String("world_id", rating.WorldID.String()),
			slog.String("user_id", rating.UserID.String()))
		return err
	}

	log.Info("rating upserted successfully",
		slog.String("world_id", rating.WorldID.String()),
		slog.String("user_id", rating.UserID.String()),
		slog.Int("stars", rating.Stars),
		slog.Bool("has_comment", rating.HasComment()))
	return nil
}

// GetByWorldAndUser implements store.RatingStore.GetByWorldAndUser
// It retrieves a single user's rating of a world.
// Returns store.ErrRatingNotFound if the user has not rated the world.
func (s *PostgresRatingStore) GetByWorldAndUser(ctx context.Context, worldID, userID uuid.UUID) (*domain.Rating, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT world_id, user_id, stars, comment, created_at, updated_at
		FROM ratings
		WHERE world_id = $1 AND user_id = $2
	`

	var rating domain.Rating
	err := s.db.QueryRowContext(ctx, query, worldID, userID).Scan(
		&rating.WorldID,
		&rating.UserID,
		&rating.Stars,
		&rating.Comment,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRatingNotFound
		}
		log.Error("failed to get rating",
			slog.String("error", err.Error()),
			slog.String("world_id", worldID.String()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	return &rating, nil
}

// ListWithComments implements store.RatingStore.ListWithComments
// It retrieves the ratings of a world that carry a non-empty comment,
// newest first. Commentless ratings are excluded here but still count
// toward the summary.
func (s *PostgresRatingStore) ListWithComments(
	ctx context.Context,
	worldID uuid.UUID,
	limit, offset int,
) ([]*domain.Rating, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 20 // Default limit
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT world_id, user_id, stars, comment, created_at, updated_at
		FROM ratings
		WHERE world_id = $1 AND comment <> ''
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, worldID, limit, offset)
	if err != nil {
		log.Error("failed to query ratings with comments",
			slog.String("error", err.Error()),
			slog.String("world_id", worldID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var ratings []*domain.Rating
	for rows.Next() {
		var rating domain.Rating
		err := rows.Scan(
			&rating.WorldID,
			&rating.UserID,
			&rating.Stars,
			&rating.Comment,
			&rating.CreatedAt,
			&rating.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan rating row", slog.String("error", err.Error()))
			return nil, err
		}
		ratings = append(ratings, &rating)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	if ratings == nil {
		ratings = []*domain.Rating{}
	}

	log.Debug("listed ratings with comments",
		slog.String("world_id", worldID.String()),
		slog.Int("count", len(ratings)))
	return ratings, nil
}

// GetSummary implements store.RatingStore.GetSummary
// It computes the average and count over all ratings of a world in a
// single aggregate query. A world with no ratings yields Count == 0 and
// a zero Average that callers must not render.
func (s *PostgresRatingStore) GetSummary(ctx context.Context, worldID uuid.UUID) (domain.RatingSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT COALESCE(AVG(stars), 0), COUNT(*)
		FROM ratings
		WHERE world_id = $1
	`

	var summary domain.RatingSummary
	err := s.db.QueryRowContext(ctx, query, worldID).Scan(&summary.Average, &summary.Count)
	if err != nil {
		log.Error("failed to get rating summary",
			slog.String("error", err.Error()),
			slog.String("world_id", worldID.String()))
		return domain.RatingSummary{}, err
	}

	return summary, nil
}

// WithTx implements store.RatingStore.WithTx
// It returns a new RatingStore instance backed by the provided transaction.
func (s *PostgresRatingStore) WithTx(tx *sql.Tx) store.RatingStore {
	return &PostgresRatingStore{
		db:     tx,
		logger: s.logger,
	}
}
