package postgres_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/strategiert/lernwelt-api/internal/domain"
	"github.com/strategiert/lernwelt-api/internal/platform/postgres"
	"github.com/strategiert/lernwelt-api/internal/store"
	"github.com/strategiert/lernwelt-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDesignStore_UpsertAndGet(t *testing.T) {
	t.Parallel()
	db := testdb.Get(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		designStore := postgres.NewPostgresDesignStore(tx, nil)

		user := insertTestUser(t, tx)
		world := insertTestWorld(t, tx, user.ID)

		design, err := domain.NewWorldDesign(world.ID, "#2196F3", "#FFC107", []domain.ModuleDesign{
			{Title: "Die Welt der Brüche", VisualFocus: "Pizza-Stücke"},
			{Title: "Zeig was du kannst"},
		})
		require.NoError(t, err)
		require.NoError(t, designStore.Upsert(ctx, design))

		got, err := designStore.GetByWorldID(ctx, world.ID)
		require.NoError(t, err)
		assert.Equal(t, world.ID, got.WorldID)
		assert.Equal(t, "#2196F3", got.PrimaryColor)
		require.Len(t, got.ModuleDesigns, 2)
		assert.Equal(t, "Pizza-Stücke", got.ModuleDesigns[0].VisualFocus)
	})
}

func TestPostgresDesignStore_UpsertReplaces(t *testing.T) {
	t.Parallel()
	db := testdb.Get(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		designStore := postgres.NewPostgresDesignStore(tx, nil)

		user := insertTestUser(t, tx)
		world := insertTestWorld(t, tx, user.ID)

		first, err := domain.NewWorldDesign(world.ID, "#FF0000", "", nil)
		require.NoError(t, err)
		require.NoError(t, designStore.Upsert(ctx, first))

		second, err := domain.NewWorldDesign(world.ID, "#00FF00", "#0000FF", nil)
		require.NoError(t, err)
		require.NoError(t, designStore.Upsert(ctx, second))

		got, err := designStore.GetByWorldID(ctx, world.ID)
		require.NoError(t, err)
		assert.Equal(t, "#00FF00", got.PrimaryColor)
		assert.Equal(t, "#0000FF", got.AccentColor)
	})
}

func TestPostgresDesignStore_GetByWorldID_NotFound(t *testing.T) {
	t.Parallel()
	db := testdb.Get(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		designStore := postgres.NewPostgresDesignStore(tx, nil)

		_, err := designStore.GetByWorldID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrDesignNotFound)
	})
}

func TestPostgresDesignStore_Upsert_UnknownWorld(t *testing.T) {
	t.Parallel()
	db := testdb.Get(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		designStore := postgres.NewPostgresDesignStore(tx, nil)

		design, err := domain.NewWorldDesign(uuid.New(), "#123456", "", nil)
		require.NoError(t, err)

		err = designStore.Upsert(context.Background(), design)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}
