package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/strategiert/lernwelt-api/internal/domain"
	"github.com/strategiert/lernwelt-api/internal/progression"
	"github.com/strategiert/lernwelt-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testWorld(t *testing.T) *domain.World {
	t.Helper()
	world, err := domain.NewWorld(
		uuid.New(),
		"Bruchrechnung entdecken",
		"Eine Lernwelt rund um Brüche",
		"mathematik",
		[]domain.Section{
			{ID: "sec-intro", Title: "Einführung", ComponentType: "text", ModuleType: domain.ModuleTypeDiscovery},
			{ID: "sec-basics", Title: "Grundlagen", ComponentType: "text", ModuleType: domain.ModuleTypeKnowledge},
			{ID: "sec-quiz", Title: "Abschlussquiz", ComponentType: "quiz", ModuleType: domain.ModuleTypeChallenge},
		},
	)
	require.NoError(t, err)
	return world
}

func newTestWorldService(
	t *testing.T,
	worldRepo *MockWorldRepository,
	progressRepo *MockProgressRepository,
	designRepo *MockDesignRepository,
	emitter *MockEventEmitter,
) WorldService {
	t.Helper()
	svc, err := NewWorldService(worldRepo, progressRepo, designRepo, emitter, slog.Default())
	require.NoError(t, err)
	return svc
}

func TestNewWorldService_NilDependencies(t *testing.T) {
	_, err := NewWorldService(nil, &MockProgressRepository{}, &MockDesignRepository{}, &MockEventEmitter{}, nil)
	assert.Error(t, err)

	_, err = NewWorldService(&MockWorldRepository{}, nil, &MockDesignRepository{}, &MockEventEmitter{}, nil)
	assert.Error(t, err)

	_, err = NewWorldService(&MockWorldRepository{}, &MockProgressRepository{}, nil, &MockEventEmitter{}, nil)
	assert.Error(t, err)

	_, err = NewWorldService(&MockWorldRepository{}, &MockProgressRepository{}, &MockDesignRepository{}, nil, nil)
	assert.Error(t, err)
}

func TestWorldService_CreateWorld_InvalidInput(t *testing.T) {
	worldRepo := &MockWorldRepository{}
	progressRepo := &MockProgressRepository{}
	designRepo := &MockDesignRepository{}
	emitter := &MockEventEmitter{}

	svc := newTestWorldService(t, worldRepo, progressRepo, designRepo, emitter)

	// Missing title fails domain validation before any store call
	world, err := svc.CreateWorld(context.Background(), uuid.New(), "", "", "mathematik", nil)
	require.Error(t, err)
	assert.Nil(t, world)
	assert.ErrorIs(t, err, domain.ErrWorldTitleEmpty)

	worldRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	emitter.AssertNotCalled(t, "EmitEvent", mock.Anything, mock.Anything)
}

func TestWorldService_GetWorldView(t *testing.T) {
	userID := uuid.New()

	t.Run("design present", func(t *testing.T) {
		world := testWorld(t)
		design, err := domain.NewWorldDesign(world.ID, "#123456", "#abcdef", []domain.ModuleDesign{
			{Title: "Der Bruch erwacht", VisualFocus: "zerbrochene Pizza"},
		})
		require.NoError(t, err)

		worldRepo := &MockWorldRepository{}
		progressRepo := &MockProgressRepository{}
		designRepo := &MockDesignRepository{}
		emitter := &MockEventEmitter{}

		worldRepo.On("GetByID", mock.Anything, world.ID).Return(world, nil)
		designRepo.On("GetByWorldID", mock.Anything, world.ID).Return(design, nil)
		progressRepo.On("GetCompletedSections", mock.Anything, userID, world.ID).
			Return(map[string]bool{"sec-intro": true}, nil)

		svc := newTestWorldService(t, worldRepo, progressRepo, designRepo, emitter)

		view, err := svc.GetWorldView(context.Background(), world.ID, userID, 0)
		require.NoError(t, err)

		assert.Equal(t, "#123456", view.PrimaryColor)
		assert.Equal(t, "#abcdef", view.AccentColor)
		require.Len(t, view.Sections, 3)

		// Design title overrides the first section; the rest fall back
		assert.Equal(t, "Der Bruch erwacht", view.Sections[0].Title)
		assert.Equal(t, "Grundlagen", view.Sections[1].Title)

		// Viewed section renders current even though it is completed
		assert.Equal(t, progression.StateCurrent, view.Sections[0].State)
		assert.Equal(t, progression.StateUnlocked, view.Sections[1].State)
		assert.Equal(t, progression.StateLocked, view.Sections[2].State)

		assert.Equal(t, 1, view.CompletedCount)
		assert.Equal(t, 3, view.TotalCount)
	})

	t.Run("missing design degrades to subject theme", func(t *testing.T) {
		world := testWorld(t)

		worldRepo := &MockWorldRepository{}
		progressRepo := &MockProgressRepository{}
		designRepo := &MockDesignRepository{}
		emitter := &MockEventEmitter{}

		worldRepo.On("GetByID", mock.Anything, world.ID).Return(world, nil)
		designRepo.On("GetByWorldID", mock.Anything, world.ID).
			Return(nil, store.ErrDesignNotFound)
		progressRepo.On("GetCompletedSections", mock.Anything, userID, world.ID).
			Return(map[string]bool{}, nil)

		svc := newTestWorldService(t, worldRepo, progressRepo, designRepo, emitter)

		view, err := svc.GetWorldView(context.Background(), world.ID, userID, 0)
		require.NoError(t, err)

		// mathematik subject theme, never an empty string
		assert.Equal(t, "#2563eb", view.PrimaryColor)
		assert.Equal(t, "#93c5fd", view.AccentColor)
		assert.Equal(t, "Einführung", view.Sections[0].Title)
	})

	t.Run("design fetch failure degrades instead of failing the view", func(t *testing.T) {
		world := testWorld(t)

		worldRepo := &MockWorldRepository{}
		progressRepo := &MockProgressRepository{}
		designRepo := &MockDesignRepository{}
		emitter := &MockEventEmitter{}

		worldRepo.On("GetByID", mock.Anything, world.ID).Return(world, nil)
		designRepo.On("GetByWorldID", mock.Anything, world.ID).
			Return(nil, errors.New("connection reset"))
		progressRepo.On("GetCompletedSections", mock.Anything, userID, world.ID).
			Return(map[string]bool{}, nil)

		svc := newTestWorldService(t, worldRepo, progressRepo, designRepo, emitter)

		view, err := svc.GetWorldView(context.Background(), world.ID, userID, 0)
		require.NoError(t, err)
		assert.Equal(t, "#2563eb", view.PrimaryColor)
	})

	t.Run("world not found", func(t *testing.T) {
		worldRepo := &MockWorldRepository{}
		progressRepo := &MockProgressRepository{}
		designRepo := &MockDesignRepository{}
		emitter := &MockEventEmitter{}

		worldID := uuid.New()
		worldRepo.On("GetByID", mock.Anything, worldID).Return(nil, store.ErrWorldNotFound)

		svc := newTestWorldService(t, worldRepo, progressRepo, designRepo, emitter)

		view, err := svc.GetWorldView(context.Background(), worldID, userID, 0)
		require.Error(t, err)
		assert.Nil(t, view)
		assert.ErrorIs(t, err, ErrWorldNotFound)
	})
}

func TestWorldService_MarkSectionCompleted(t *testing.T) {
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		world := testWorld(t)

		worldRepo := &MockWorldRepository{}
		progressRepo := &MockProgressRepository{}
		designRepo := &MockDesignRepository{}
		emitter := &MockEventEmitter{}

		worldRepo.On("GetByID", mock.Anything, world.ID).Return(world, nil)
		progressRepo.On("MarkCompleted", mock.Anything, userID, world.ID, "sec-basics").Return(nil)

		svc := newTestWorldService(t, worldRepo, progressRepo, designRepo, emitter)

		err := svc.MarkSectionCompleted(context.Background(), world.ID, userID, "sec-basics")
		require.NoError(t, err)
		progressRepo.AssertExpectations(t)
	})

	t.Run("unknown section", func(t *testing.T) {
		world := testWorld(t)

		worldRepo := &MockWorldRepository{}
		progressRepo := &MockProgressRepository{}
		designRepo := &MockDesignRepository{}
		emitter := &MockEventEmitter{}

		worldRepo.On("GetByID", mock.Anything, world.ID).Return(world, nil)

		svc := newTestWorldService(t, worldRepo, progressRepo, designRepo, emitter)

		err := svc.MarkSectionCompleted(context.Background(), world.ID, userID, "sec-missing")
		assert.ErrorIs(t, err, ErrSectionNotFound)
		progressRepo.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestWorldService_Navigate(t *testing.T) {
	userID := uuid.New()

	t.Run("unlocked target", func(t *testing.T) {
		world := testWorld(t)

		worldRepo := &MockWorldRepository{}
		progressRepo := &MockProgressRepository{}
		designRepo := &MockDesignRepository{}
		emitter := &MockEventEmitter{}

		worldRepo.On("GetByID", mock.Anything, world.ID).Return(world, nil)
		progressRepo.On("GetCompletedSections", mock.Anything, userID, world.ID).
			Return(map[string]bool{"sec-intro": true}, nil)

		svc := newTestWorldService(t, worldRepo, progressRepo, designRepo, emitter)

		err := svc.Navigate(context.Background(), world.ID, userID, 0, 1)
		assert.NoError(t, err)
	})

	t.Run("locked target", func(t *testing.T) {
		world := testWorld(t)

		worldRepo := &MockWorldRepository{}
		progressRepo := &MockProgressRepository{}
		designRepo := &MockDesignRepository{}
		emitter := &MockEventEmitter{}

		worldRepo.On("GetByID", mock.Anything, world.ID).Return(world, nil)
		progressRepo.On("GetCompletedSections", mock.Anything, userID, world.ID).
			Return(map[string]bool{}, nil)

		svc := newTestWorldService(t, worldRepo, progressRepo, designRepo, emitter)

		err := svc.Navigate(context.Background(), world.ID, userID, 0, 2)
		assert.ErrorIs(t, err, ErrSectionLocked)
	})

	t.Run("full prefix completed unlocks beyond current", func(t *testing.T) {
		world := testWorld(t)

		worldRepo := &MockWorldRepository{}
		progressRepo := &MockProgressRepository{}
		designRepo := &MockDesignRepository{}
		emitter := &MockEventEmitter{}

		worldRepo.On("GetByID", mock.Anything, world.ID).Return(world, nil)
		progressRepo.On("GetCompletedSections", mock.Anything, userID, world.ID).
			Return(map[string]bool{"sec-intro": true, "sec-basics": true}, nil)

		svc := newTestWorldService(t, worldRepo, progressRepo, designRepo, emitter)

		err := svc.Navigate(context.Background(), world.ID, userID, 0, 2)
		assert.NoError(t, err)
	})
}

func TestWorldService_ListWorlds(t *testing.T) {
	worldRepo := &MockWorldRepository{}
	progressRepo := &MockProgressRepository{}
	designRepo := &MockDesignRepository{}
	emitter := &MockEventEmitter{}

	worlds := []*domain.World{testWorld(t), testWorld(t)}
	worldRepo.On("List", mock.Anything, 10, 0).Return(worlds, nil)

	svc := newTestWorldService(t, worldRepo, progressRepo, designRepo, emitter)

	got, err := svc.ListWorlds(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
