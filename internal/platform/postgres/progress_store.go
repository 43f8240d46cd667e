package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/strategiert/lernwelt-api/internal/platform/logger"
	"github.com/strategiert/lernwelt-api/internal/store"
)

// PostgresProgressStore implements the store.ProgressStore interface
// using a PostgreSQL database as the storage backend. Each completed
// section is a single row keyed (world_id, user_id, section_id), so
// repeat completions are no-ops.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of the ProgressStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// MarkCompleted implements store.ProgressStore.MarkCompleted
// It records that a user finished a section. Marking an already
// completed section is idempotent.
// Returns store.ErrInvalidEntity if the world or user does not exist.
func (s *PostgresProgressStore) MarkCompleted(ctx context.Context, userID, worldID uuid.UUID, sectionID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO section_progress (world_id, user_id, section_id, completed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (world_id, user_id, section_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query, worldID, userID, sectionID, time.Now().UTC())

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation marking section completed",
				slog.String("error", err.Error()),
				slog.String("world_id", worldID.String()),
				slog.String("user_id", userID.String()))
			return fmt.Errorf("%w: world or user not found", store.ErrInvalidEntity)
		}

		log.Error("failed to mark section completed",
			slog.String("error", err.Error()),
			slog.String("world_id", worldID.String()),
			slog.String("section_id", sectionID))
		return err
	}

	log.Debug("section marked completed",
		slog.String("world_id", worldID.String()),
		slog.String("user_id", userID.String()),
		slog.String("section_id", sectionID))
	return nil
}

// GetCompletedSections implements store.ProgressStore.GetCompletedSections
// It returns the set of section IDs the user has completed in the
// world. An empty map means no progress yet; that is not an error.
func (s *PostgresProgressStore) GetCompletedSections(ctx context.Context, userID, worldID uuid.UUID) (map[string]bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT section_id
		FROM section_progress
		WHERE world_id = $1 AND user_id = $2
	`

	rows, err := s.db.QueryContext(ctx, query, worldID, userID)
	if err != nil {
		log.Error("failed to query completed sections",
			slog.String("error", err.Error()),
			slog.String("world_id", worldID.String()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	completed := make(map[string]bool)
	for rows.Next() {
		var sectionID string
		if err := rows.Scan(&sectionID); err != nil {
			log.Error("failed to scan completed section row",
				slog.String("error", err.Error()))
			return nil, err
		}
		completed[sectionID] = true
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating completed section rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return completed, nil
}

// WithTx implements store.ProgressStore.WithTx
// It returns a new ProgressStore instance that uses the provided transaction.
// This allows for multiple operations to be executed within a single transaction.
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{
		db:     tx,
		logger: s.logger,
	}
}
