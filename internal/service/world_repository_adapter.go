package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/strategiert/lernwelt-api/internal/domain"
	"github.com/strategiert/lernwelt-api/internal/store"
)

// NewWorldRepositoryAdapter creates a new adapter that allows a
// store.WorldStore to be used where a WorldRepository is expected.
func NewWorldRepositoryAdapter(worldStore store.WorldStore, db *sql.DB) WorldRepository {
	return &worldRepositoryAdapter{
		worldStore: worldStore,
		db:         db,
	}
}

// worldRepositoryAdapter adapts a store.WorldStore to the WorldRepository interface
type worldRepositoryAdapter struct {
	worldStore store.WorldStore
	db         *sql.DB
}

// Create implements WorldRepository.Create
func (a *worldRepositoryAdapter) Create(ctx context.Context, world *domain.World) error {
	return a.worldStore.Create(ctx, world)
}

// GetByID implements WorldRepository.GetByID
func (a *worldRepositoryAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.World, error) {
	return a.worldStore.GetByID(ctx, id)
}

// List implements WorldRepository.List
func (a *worldRepositoryAdapter) List(ctx context.Context, limit, offset int) ([]*domain.World, error) {
	return a.worldStore.List(ctx, limit, offset)
}

// WithTx implements WorldRepository.WithTx
func (a *worldRepositoryAdapter) WithTx(tx *sql.Tx) WorldRepository {
	return &worldRepositoryAdapter{
		worldStore: a.worldStore.WithTx(tx),
		db:         a.db,
	}
}

// DB implements WorldRepository.DB
func (a *worldRepositoryAdapter) DB() *sql.DB {
	return a.db
}
