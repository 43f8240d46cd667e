package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/strategiert/lernwelt-api/internal/domain"
	"github.com/strategiert/lernwelt-api/internal/platform/logger"
	"github.com/strategiert/lernwelt-api/internal/store"
)

// PostgresWorldStore implements the store.WorldStore interface
// using a PostgreSQL database as the storage backend. Sections are
// stored as a JSONB column on the world row; their array order is the
// progression order.
type PostgresWorldStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWorldStore creates a new PostgreSQL implementation of the WorldStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresWorldStore(db store.DBTX, logger *slog.Logger) *PostgresWorldStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresWorldStore{
		db:     db,
		logger: logger.With(slog.String("component", "world_store")),
	}
}

// Ensure PostgresWorldStore implements store.WorldStore interface
var _ store.WorldStore = (*PostgresWorldStore)(nil)

// Create implements store.WorldStore.Create
// It saves a new world and its sections, handling domain validation.
// Returns store.ErrInvalidEntity if the creator doesn't exist (foreign key violation).
func (s *PostgresWorldStore) Create(ctx context.Context, world *domain.World) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := world.Validate(); err != nil {
		log.Warn("world validation failed during create",
			slog.String("error", err.Error()),
			slog.String("world_id", world.ID.String()))
		return err
	}

	sectionsJSON, err := json.Marshal(world.Sections)
	if err != nil {
		return fmt.Errorf("failed to marshal sections: %w", err)
	}

	query := `
		INSERT INTO worlds (id, creator_id, title, description, subject, sections, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		world.ID,
		world.CreatorID,
		world.Title,
		world.Description,
		world.Subject,
		sectionsJSON,
		world.CreatedAt,
		world.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during world creation",
				slog.String("error", err.Error()),
				slog.String("world_id", world.ID.String()),
				slog.String("creator_id", world.CreatorID.String()))
			return fmt.Errorf("%w: creator with ID %s not found",
				store.ErrInvalidEntity, world.CreatorID)
		}

		log.Error("failed to create world",
			slog.String("error", err.Error()),
			slog.String("world_id", world.ID.String()))
		return err
	}

	log.Info("world created successfully",
		slog.String("world_id", world.ID.String()),
		slog.String("subject", world.Subject),
		slog.Int("section_count", len(world.Sections)))
	return nil
}

// GetByID implements store.WorldStore.GetByID
// It retrieves a world by its unique ID, sections included.
// Returns store.ErrWorldNotFound if the world does not exist.
func (s *PostgresWorldStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.World, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, creator_id, title, description, subject, sections, created_at, updated_at
		FROM worlds
		WHERE id = $1
	`

	var world domain.World
	var sectionsJSON []byte

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&world.ID,
		&world.CreatorID,
		&world.Title,
		&world.Description,
		&world.Subject,
		&sectionsJSON,
		&world.CreatedAt,
		&world.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("world not found", slog.String("world_id", id.String()))
			return nil, store.ErrWorldNotFound
		}
		log.Error("failed to get world by ID",
			slog.String("error", err.Error()),
			slog.String("world_id", id.String()))
		return nil, err
	}

	if err := json.Unmarshal(sectionsJSON, &world.Sections); err != nil {
		log.Error("failed to unmarshal sections",
			slog.String("error", err.Error()),
			slog.String("world_id", id.String()))
		return nil, fmt.Errorf("failed to unmarshal sections: %w", err)
	}

	return &world, nil
}

// List implements store.WorldStore.List
// It retrieves worlds ordered by creation time, newest first.
// Returns an empty slice if no worlds exist.
func (s *PostgresWorldStore) List(ctx context.Context, limit, offset int) ([]*domain.World, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 20 // Default limit
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, creator_id, title, description, subject, sections, created_at, updated_at
		FROM worlds
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		log.Error("failed to query worlds", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var worlds []*domain.World
	for rows.Next() {
		var world domain.World
		var sectionsJSON []byte

		err := rows.Scan(
			&world.ID,
			&world.CreatorID,
			&world.Title,
			&world.Description,
			&world.Subject,
			&sectionsJSON,
			&world.CreatedAt,
			&world.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan world row", slog.String("error", err.Error()))
			return nil, err
		}

		if err := json.Unmarshal(sectionsJSON, &world.Sections); err != nil {
			log.Error("failed to unmarshal sections",
				slog.String("error", err.Error()),
				slog.String("world_id", world.ID.String()))
			return nil, fmt.Errorf("failed to unmarshal sections: %w", err)
		}

		worlds = append(worlds, &world)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	if worlds == nil {
		worlds = []*domain.World{}
	}

	log.Debug("listed worlds", slog.Int("count", len(worlds)))
	return worlds, nil
}

// WithTx implements store.WorldStore.WithTx
// It returns a new WorldStore instance backed by the provided transaction.
func (s *PostgresWorldStore) WithTx(tx *sql.Tx) store.WorldStore {
	return &PostgresWorldStore{
		db:     tx,
		logger: s.logger,
	}
}
