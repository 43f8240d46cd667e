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

// PostgresDesignStore implements the store.DesignStore interface
// using a PostgreSQL database as the storage backend. Module designs
// are stored as a JSONB column, index-aligned with the world's section
// order.
type PostgresDesignStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDesignStore creates a new PostgreSQL implementation of the DesignStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresDesignStore(db store.DBTX, logger *slog.Logger) *PostgresDesignStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDesignStore{
		db:     db,
		logger: logger.With(slog.String("component", "design_store")),
	}
}

// Ensure PostgresDesignStore implements store.DesignStore interface
var _ store.DesignStore = (*PostgresDesignStore)(nil)

// Upsert implements store.DesignStore.Upsert
// It saves the design for its world, replacing any prior design.
// Returns store.ErrInvalidEntity if the world does not exist.
func (s *PostgresDesignStore) Upsert(ctx context.Context, design *domain.WorldDesign) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := design.Validate(); err != nil {
		log.Warn("design validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("world_id", design.WorldID.String()))
		return err
	}

	modulesJSON, err := json.Marshal(design.ModuleDesigns)
	if err != nil {
		return fmt.Errorf("failed to marshal module designs: %w", err)
	}

	query := `
		INSERT INTO world_designs (world_id, primary_color, accent_color, module_designs, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (world_id)
		DO UPDATE SET primary_color = EXCLUDED.primary_color,
		              accent_color = EXCLUDED.accent_color,
		              module_designs = EXCLUDED.module_designs,
		              created_at = EXCLUDED.created_at
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		design.WorldID,
		design.PrimaryColor,
		design.AccentColor,
		modulesJSON,
		design.CreatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during design upsert",
				slog.String("error", err.Error()),
				slog.String("world_id", design.WorldID.String()))
			return fmt.Errorf("%w: world with ID %s not found",
				store.ErrInvalidEntity, design.WorldID)
		}

		log.Error("failed to upsert design",
			slog.String("error", err.Error()),
			slog.String("world_id", design.WorldID.String()))
		return err
	}

	log.Info("design upserted successfully",
		slog.String("world_id", design.WorldID.String()),
		slog.Int("module_design_count", len(design.ModuleDesigns)))
	return nil
}

// GetByWorldID implements store.DesignStore.GetByWorldID
// It retrieves the design for a world.
// Returns store.ErrDesignNotFound if no design has been generated; the
// caller degrades to subject theming in that case.
func (s *PostgresDesignStore) GetByWorldID(ctx context.Context, worldID uuid.UUID) (*domain.WorldDesign, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT world_id, primary_color, accent_color, module_designs, created_at
		FROM world_designs
		WHERE world_id = $1
	`

	var design domain.WorldDesign
	var modulesJSON []byte

	err := s.db.QueryRowContext(ctx, query, worldID).Scan(
		&design.WorldID,
		&design.PrimaryColor,
		&design.AccentColor,
		&modulesJSON,
		&design.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDesignNotFound
		}
		log.Error("failed to get design",
			slog.String("error", err.Error()),
			slog.String("world_id", worldID.String()))
		return nil, err
	}

	if err := json.Unmarshal(modulesJSON, &design.ModuleDesigns); err != nil {
		log.Error("failed to unmarshal module designs",
			slog.String("error", err.Error()),
			slog.String("world_id", worldID.String()))
		return nil, fmt.Errorf("failed to unmarshal module designs: %w", err)
	}

	return &design, nil
}
