package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/strategiert/lernwelt-api/internal/domain"
	"github.com/strategiert/lernwelt-api/internal/events"
	"github.com/stretchr/testify/mock"
)

// MockWorldRepository mocks the WorldRepository interface
type MockWorldRepository struct {
	mock.Mock
}

func (m *MockWorldRepository) Create(ctx context.Context, world *domain.World) error {
	args := m.Called(ctx, world)
	return args.Error(0)
}

func (m *MockWorldRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.World, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.World), args.Error(1)
}

func (m *MockWorldRepository) List(ctx context.Context, limit, offset int) ([]*domain.World, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.World), args.Error(1)
}

func (m *MockWorldRepository) WithTx(tx *sql.Tx) WorldRepository {
	args := m.Called(tx)
	return args.Get(0).(WorldRepository)
}

func (m *MockWorldRepository) DB() *sql.DB {
	args := m.Called()
	db, _ := args.Get(0).(*sql.DB)
	return db
}

// MockProgressRepository mocks the ProgressRepository interface
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) MarkCompleted(
	ctx context.Context,
	userID, worldID uuid.UUID,
	sectionID string,
) error {
	args := m.Called(ctx, userID, worldID, sectionID)
	return args.Error(0)
}

func (m *MockProgressRepository) GetCompletedSections(
	ctx context.Context,
	userID, worldID uuid.UUID,
) (map[string]bool, error) {
	args := m.Called(ctx, userID, worldID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

// MockDesignRepository mocks the DesignRepository interface
type MockDesignRepository struct {
	mock.Mock
}

func (m *MockDesignRepository) GetByWorldID(
	ctx context.Context,
	worldID uuid.UUID,
) (*domain.WorldDesign, error) {
	args := m.Called(ctx, worldID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorldDesign), args.Error(1)
}

// MockRatingRepository mocks the RatingRepository interface
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) Upsert(ctx context.Context, rating *domain.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *MockRatingRepository) GetByWorldAndUser(
	ctx context.Context,
	worldID, userID uuid.UUID,
) (*domain.Rating, error) {
	args := m.Called(ctx, worldID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rating), args.Error(1)
}

func (m *MockRatingRepository) ListWithComments(
	ctx context.Context,
	worldID uuid.UUID,
	limit, offset int,
) ([]*domain.Rating, error) {
	args := m.Called(ctx, worldID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Rating), args.Error(1)
}

func (m *MockRatingRepository) GetSummary(
	ctx context.Context,
	worldID uuid.UUID,
) (domain.RatingSummary, error) {
	args := m.Called(ctx, worldID)
	return args.Get(0).(domain.RatingSummary), args.Error(1)
}

// MockEventEmitter mocks the events.EventEmitter interface
type MockEventEmitter struct {
	mock.Mock
}

func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

