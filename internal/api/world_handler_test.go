package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/strategiert/lernwelt-api/internal/api/shared"
	"github.com/strategiert/lernwelt-api/internal/domain"
	"github.com/strategiert/lernwelt-api/internal/progression"
	"github.com/strategiert/lernwelt-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWorldService implements service.WorldService with per-test
// function fields. Unset methods return zero values.
type fakeWorldService struct {
	createFn   func(ctx context.Context, creatorID uuid.UUID, title, description, subject string, sections []domain.Section) (*domain.World, error)
	viewFn     func(ctx context.Context, worldID, userID uuid.UUID, currentIndex int) (*service.WorldView, error)
	listFn     func(ctx context.Context, limit, offset int) ([]*domain.World, error)
	completeFn func(ctx context.Context, worldID, userID uuid.UUID, sectionID string) error
	navigateFn func(ctx context.Context, worldID, userID uuid.UUID, currentIndex, targetIndex int) error
}

func (f *fakeWorldService) CreateWorld(
	ctx context.Context,
	creatorID uuid.UUID,
	title, description, subject string,
	sections []domain.Section,
) (*domain.World, error) {
	if f.createFn != nil {
		return f.createFn(ctx, creatorID, title, description, subject, sections)
	}
	return nil, nil
}

func (f *fakeWorldService) GetWorldView(
	ctx context.Context,
	worldID, userID uuid.UUID,
	currentIndex int,
) (*service.WorldView, error) {
	if f.viewFn != nil {
		return f.viewFn(ctx, worldID, userID, currentIndex)
	}
	return nil, nil
}

func (f *fakeWorldService) ListWorlds(ctx context.Context, limit, offset int) ([]*domain.World, error) {
	if f.listFn != nil {
		return f.listFn(ctx, limit, offset)
	}
	return nil, nil
}

func (f *fakeWorldService) MarkSectionCompleted(
	ctx context.Context,
	worldID, userID uuid.UUID,
	sectionID string,
) error {
	if f.completeFn != nil {
		return f.completeFn(ctx, worldID, userID, sectionID)
	}
	return nil
}

func (f *fakeWorldService) Navigate(
	ctx context.Context,
	worldID, userID uuid.UUID,
	currentIndex, targetIndex int,
) error {
	if f.navigateFn != nil {
		return f.navigateFn(ctx, worldID, userID, currentIndex, targetIndex)
	}
	return nil
}

var _ service.WorldService = (*fakeWorldService)(nil)

// newAuthedRequest builds a request carrying the user ID in its context
// and, when worldID is non-empty, the chi "id" path parameter.
func newAuthedRequest(method, target string, body []byte, userID uuid.UUID, worldID string) *http.Request {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	ctx := req.Context()
	if userID != uuid.Nil {
		ctx = context.WithValue(ctx, shared.UserIDContextKey, userID)
	}

	routeCtx := chi.NewRouteContext()
	if worldID != "" {
		routeCtx.URLParams.Add("id", worldID)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)

	return req.WithContext(ctx)
}

func testWorld(creatorID uuid.UUID) *domain.World {
	now := time.Now().UTC()
	return &domain.World{
		ID:          uuid.New(),
		CreatorID:   creatorID,
		Title:       "Vulkane verstehen",
		Description: "Eine Reise ins Erdinnere",
		Subject:     "geografie",
		Sections: []domain.Section{
			{ID: "sec-1", Title: "Aufbau der Erde", ComponentType: "InfoGraphic", ModuleType: domain.ModuleTypeDiscovery},
			{ID: "sec-2", Title: "Magma-Quiz", ComponentType: "QuizCard", ModuleType: domain.ModuleTypeChallenge},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestWorldHandler_CreateWorld(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	validBody, err := json.Marshal(CreateWorldRequest{
		Title:   "Vulkane verstehen",
		Subject: "geografie",
		Sections: []SectionRequest{
			{ID: "sec-1", Title: "Aufbau der Erde", ComponentType: "InfoGraphic", ModuleType: "discovery"},
		},
	})
	require.NoError(t, err)

	t.Run("creates world and returns 201", func(t *testing.T) {
		world := testWorld(userID)
		svc := &fakeWorldService{
			createFn: func(_ context.Context, creatorID uuid.UUID, title, _, subject string, sections []domain.Section) (*domain.World, error) {
				assert.Equal(t, userID, creatorID)
				assert.Equal(t, "Vulkane verstehen", title)
				assert.Equal(t, "geografie", subject)
				assert.Len(t, sections, 1)
				assert.Equal(t, domain.ModuleTypeDiscovery, sections[0].ModuleType)
				return world, nil
			},
		}
		handler := NewWorldHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.CreateWorld(recorder, newAuthedRequest(http.MethodPost, "/worlds", validBody, userID, ""))

		require.Equal(t, http.StatusCreated, recorder.Code)

		var resp WorldResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, world.ID.String(), resp.ID)
		assert.Equal(t, 2, resp.SectionCount)
		assert.Len(t, resp.Sections, 2, "detail response should include sections")
	})

	t.Run("rejects missing user", func(t *testing.T) {
		handler := NewWorldHandler(&fakeWorldService{}, slog.Default())

		recorder := httptest.NewRecorder()
		handler.CreateWorld(recorder, newAuthedRequest(http.MethodPost, "/worlds", validBody, uuid.Nil, ""))

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("rejects world without sections", func(t *testing.T) {
		body, err := json.Marshal(CreateWorldRequest{
			Title:    "Vulkane verstehen",
			Subject:  "geografie",
			Sections: []SectionRequest{},
		})
		require.NoError(t, err)

		called := false
		svc := &fakeWorldService{
			createFn: func(context.Context, uuid.UUID, string, string, string, []domain.Section) (*domain.World, error) {
				called = true
				return nil, nil
			},
		}
		handler := NewWorldHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.CreateWorld(recorder, newAuthedRequest(http.MethodPost, "/worlds", body, userID, ""))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.False(t, called, "service should not be reached on validation failure")
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		handler := NewWorldHandler(&fakeWorldService{}, slog.Default())

		recorder := httptest.NewRecorder()
		handler.CreateWorld(recorder, newAuthedRequest(http.MethodPost, "/worlds", []byte("{not json"), userID, ""))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("maps service failure to 500 with safe message", func(t *testing.T) {
		svc := &fakeWorldService{
			createFn: func(context.Context, uuid.UUID, string, string, string, []domain.Section) (*domain.World, error) {
				return nil, &service.WorldServiceError{
					Operation: "create_world",
					Message:   "failed to save world to database",
				}
			},
		}
		handler := NewWorldHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.CreateWorld(recorder, newAuthedRequest(http.MethodPost, "/worlds", validBody, userID, ""))

		require.Equal(t, http.StatusInternalServerError, recorder.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, "Failed to create world", resp.Error)
	})
}

func TestWorldHandler_GetWorldView(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	world := testWorld(uuid.New())

	t.Run("returns assembled view", func(t *testing.T) {
		view := &service.WorldView{
			World:        world,
			PrimaryColor: "#F44336",
			AccentColor:  "#FFC107",
			Icon:         "🌍",
			Sections: []service.SectionView{
				{ID: "sec-1", Title: "Aufbau der Erde", State: progression.StateCurrent},
				{ID: "sec-2", Title: "Magma-Quiz", State: progression.StateLocked},
			},
			CompletedCount: 0,
			TotalCount:     2,
		}
		svc := &fakeWorldService{
			viewFn: func(_ context.Context, worldID, requester uuid.UUID, currentIndex int) (*service.WorldView, error) {
				assert.Equal(t, world.ID, worldID)
				assert.Equal(t, userID, requester)
				assert.Equal(t, 1, currentIndex)
				return view, nil
			},
		}
		handler := NewWorldHandler(svc, slog.Default())

		target := "/worlds/" + world.ID.String() + "?current_index=1"
		recorder := httptest.NewRecorder()
		handler.GetWorldView(recorder, newAuthedRequest(http.MethodGet, target, nil, userID, world.ID.String()))

		require.Equal(t, http.StatusOK, recorder.Code)

		var resp service.WorldView
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, "#F44336", resp.PrimaryColor)
		require.Len(t, resp.Sections, 2)
		assert.Equal(t, progression.StateLocked, resp.Sections[1].State)
	})

	t.Run("unknown world yields 404", func(t *testing.T) {
		svc := &fakeWorldService{
			viewFn: func(context.Context, uuid.UUID, uuid.UUID, int) (*service.WorldView, error) {
				return nil, service.ErrWorldNotFound
			},
		}
		handler := NewWorldHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.GetWorldView(recorder, newAuthedRequest(http.MethodGet, "/worlds/"+world.ID.String(), nil, userID, world.ID.String()))

		require.Equal(t, http.StatusNotFound, recorder.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, "World not found", resp.Error)
	})

	t.Run("invalid world ID yields 400", func(t *testing.T) {
		handler := NewWorldHandler(&fakeWorldService{}, slog.Default())

		recorder := httptest.NewRecorder()
		handler.GetWorldView(recorder, newAuthedRequest(http.MethodGet, "/worlds/not-a-uuid", nil, userID, "not-a-uuid"))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("negative current_index falls back to default", func(t *testing.T) {
		svc := &fakeWorldService{
			viewFn: func(_ context.Context, _, _ uuid.UUID, currentIndex int) (*service.WorldView, error) {
				assert.Equal(t, 0, currentIndex)
				return &service.WorldView{World: world}, nil
			},
		}
		handler := NewWorldHandler(svc, slog.Default())

		target := "/worlds/" + world.ID.String() + "?current_index=-3"
		recorder := httptest.NewRecorder()
		handler.GetWorldView(recorder, newAuthedRequest(http.MethodGet, target, nil, userID, world.ID.String()))

		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestWorldHandler_ListWorlds(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("lists worlds without sections", func(t *testing.T) {
		worlds := []*domain.World{testWorld(uuid.New()), testWorld(uuid.New())}
		svc := &fakeWorldService{
			listFn: func(_ context.Context, limit, offset int) ([]*domain.World, error) {
				assert.Equal(t, 5, limit)
				assert.Equal(t, 10, offset)
				return worlds, nil
			},
		}
		handler := NewWorldHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.ListWorlds(recorder, newAuthedRequest(http.MethodGet, "/worlds?limit=5&offset=10", nil, userID, ""))

		require.Equal(t, http.StatusOK, recorder.Code)

		var resp []WorldResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		require.Len(t, resp, 2)
		assert.Equal(t, 2, resp[0].SectionCount)
		assert.Empty(t, resp[0].Sections, "list responses omit section bodies")
	})

	t.Run("uses default pagination", func(t *testing.T) {
		svc := &fakeWorldService{
			listFn: func(_ context.Context, limit, offset int) ([]*domain.World, error) {
				assert.Equal(t, 20, limit)
				assert.Equal(t, 0, offset)
				return nil, nil
			},
		}
		handler := NewWorldHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.ListWorlds(recorder, newAuthedRequest(http.MethodGet, "/worlds", nil, userID, ""))

		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestWorldHandler_CompleteSection(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	world := testWorld(uuid.New())

	newCompleteRequest := func(sectionID string) *http.Request {
		req := newAuthedRequest(http.MethodPost,
			"/worlds/"+world.ID.String()+"/sections/"+sectionID+"/complete",
			nil, userID, world.ID.String())
		routeCtx := chi.RouteContext(req.Context())
		routeCtx.URLParams.Add("sectionID", sectionID)
		return req
	}

	t.Run("records completion", func(t *testing.T) {
		var gotSection string
		svc := &fakeWorldService{
			completeFn: func(_ context.Context, worldID, requester uuid.UUID, sectionID string) error {
				assert.Equal(t, world.ID, worldID)
				assert.Equal(t, userID, requester)
				gotSection = sectionID
				return nil
			},
		}
		handler := NewWorldHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.CompleteSection(recorder, newCompleteRequest("sec-1"))

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Equal(t, "sec-1", gotSection)
	})

	t.Run("unknown section yields 404", func(t *testing.T) {
		svc := &fakeWorldService{
			completeFn: func(context.Context, uuid.UUID, uuid.UUID, string) error {
				return service.ErrSectionNotFound
			},
		}
		handler := NewWorldHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.CompleteSection(recorder, newCompleteRequest("sec-99"))

		require.Equal(t, http.StatusNotFound, recorder.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, "Section not found", resp.Error)
	})
}

func TestWorldHandler_Navigate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	world := testWorld(uuid.New())

	body := func(current, target int) []byte {
		data, _ := json.Marshal(NavigateRequest{CurrentIndex: current, TargetIndex: target})
		return data
	}

	t.Run("allows unlocked move", func(t *testing.T) {
		svc := &fakeWorldService{
			navigateFn: func(_ context.Context, worldID, requester uuid.UUID, currentIndex, targetIndex int) error {
				assert.Equal(t, world.ID, worldID)
				assert.Equal(t, 0, currentIndex)
				assert.Equal(t, 1, targetIndex)
				return nil
			},
		}
		handler := NewWorldHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.Navigate(recorder, newAuthedRequest(http.MethodPost,
			"/worlds/"+world.ID.String()+"/navigate", body(0, 1), userID, world.ID.String()))

		require.Equal(t, http.StatusOK, recorder.Code)

		var resp map[string]int
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, 1, resp["current_index"])
	})

	t.Run("locked move yields 409", func(t *testing.T) {
		svc := &fakeWorldService{
			navigateFn: func(context.Context, uuid.UUID, uuid.UUID, int, int) error {
				return service.ErrSectionLocked
			},
		}
		handler := NewWorldHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.Navigate(recorder, newAuthedRequest(http.MethodPost,
			"/worlds/"+world.ID.String()+"/navigate", body(0, 2), userID, world.ID.String()))

		require.Equal(t, http.StatusConflict, recorder.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, "Section is locked", resp.Error)
	})
}
