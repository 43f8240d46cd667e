package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/strategiert/lernwelt-api/internal/domain"
	"github.com/strategiert/lernwelt-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// insertTestUser creates a user row inside the test transaction and
// returns it. The email is randomized so tests can run in parallel
// against the same database.
func insertTestUser(t *testing.T, tx *sql.Tx) *domain.User {
	t.Helper()

	user, err := domain.NewUser(
		fmt.Sprintf("lernende-%s@example.com", uuid.New().String()[:8]),
		"ein-ausreichend-langes-passwort",
	)
	require.NoError(t, err)
	user.HashedPassword = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

	store := postgres.NewPostgresUserStore(tx, nil)
	require.NoError(t, store.Create(context.Background(), user))
	return user
}

// insertTestWorld creates a world with two sections owned by the given
// user inside the test transaction.
func insertTestWorld(t *testing.T, tx *sql.Tx, creatorID uuid.UUID) *domain.World {
	t.Helper()

	world, err := domain.NewWorld(
		creatorID,
		"Bruchrechnung entdecken",
		"Brüche anschaulich erklärt",
		"mathematik",
		[]domain.Section{
			{ID: "intro", Title: "Was ist ein Bruch?", ComponentType: "InfoGraphic", ModuleType: domain.ModuleTypeDiscovery},
			{ID: "quiz", Title: "Bruch-Quiz", ComponentType: "QuizCard", ModuleType: domain.ModuleTypeChallenge},
		},
	)
	require.NoError(t, err)

	store := postgres.NewPostgresWorldStore(tx, nil)
	require.NoError(t, store.Create(context.Background(), world))
	return world
}
