package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/strategiert/lernwelt-api/internal/api/shared"
	"github.com/strategiert/lernwelt-api/internal/domain"
	"github.com/strategiert/lernwelt-api/internal/service"
	"github.com/strategiert/lernwelt-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRatingService implements service.RatingService with per-test
// function fields.
type fakeRatingService struct {
	submitFn   func(ctx context.Context, worldID, userID uuid.UUID, stars int, comment string) (*domain.Rating, error)
	commentsFn func(ctx context.Context, worldID uuid.UUID, limit, offset int) ([]*domain.Rating, error)
	summaryFn  func(ctx context.Context, worldID uuid.UUID) (domain.RatingSummary, error)
	userFn     func(ctx context.Context, worldID, userID uuid.UUID) (*domain.Rating, error)
}

func (f *fakeRatingService) Submit(
	ctx context.Context,
	worldID, userID uuid.UUID,
	stars int,
	comment string,
) (*domain.Rating, error) {
	if f.submitFn != nil {
		return f.submitFn(ctx, worldID, userID, stars, comment)
	}
	return nil, nil
}

func (f *fakeRatingService) Comments(
	ctx context.Context,
	worldID uuid.UUID,
	limit, offset int,
) ([]*domain.Rating, error) {
	if f.commentsFn != nil {
		return f.commentsFn(ctx, worldID, limit, offset)
	}
	return nil, nil
}

func (f *fakeRatingService) Summary(ctx context.Context, worldID uuid.UUID) (domain.RatingSummary, error) {
	if f.summaryFn != nil {
		return f.summaryFn(ctx, worldID)
	}
	return domain.RatingSummary{}, nil
}

func (f *fakeRatingService) UserRating(ctx context.Context, worldID, userID uuid.UUID) (*domain.Rating, error) {
	if f.userFn != nil {
		return f.userFn(ctx, worldID, userID)
	}
	return nil, nil
}

var _ service.RatingService = (*fakeRatingService)(nil)

func testRating(worldID, userID uuid.UUID, stars int, comment string) *domain.Rating {
	now := time.Now().UTC()
	return &domain.Rating{
		WorldID:   worldID,
		UserID:    userID,
		Stars:     stars,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRatingHandler_SubmitRating(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	worldID := uuid.New()

	submitBody := func(stars int, comment string) []byte {
		data, _ := json.Marshal(SubmitRatingRequest{Stars: stars, Comment: comment})
		return data
	}

	t.Run("saves rating and returns it", func(t *testing.T) {
		svc := &fakeRatingService{
			submitFn: func(_ context.Context, gotWorld, gotUser uuid.UUID, stars int, comment string) (*domain.Rating, error) {
				assert.Equal(t, worldID, gotWorld)
				assert.Equal(t, userID, gotUser)
				assert.Equal(t, 4, stars)
				assert.Equal(t, "Tolle Lernwelt!", comment)
				return testRating(gotWorld, gotUser, stars, comment), nil
			},
		}
		handler := NewRatingHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.SubmitRating(recorder, newAuthedRequest(http.MethodPut,
			"/worlds/"+worldID.String()+"/rating", submitBody(4, "Tolle Lernwelt!"), userID, worldID.String()))

		require.Equal(t, http.StatusOK, recorder.Code)

		var resp RatingResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, 4, resp.Stars)
		assert.Equal(t, "Tolle Lernwelt!", resp.Comment)
	})

	t.Run("missing star selection yields 400", func(t *testing.T) {
		svc := &fakeRatingService{
			submitFn: func(context.Context, uuid.UUID, uuid.UUID, int, string) (*domain.Rating, error) {
				return nil, service.ErrZeroStars
			},
		}
		handler := NewRatingHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.SubmitRating(recorder, newAuthedRequest(http.MethodPut,
			"/worlds/"+worldID.String()+"/rating", submitBody(0, ""), userID, worldID.String()))

		require.Equal(t, http.StatusBadRequest, recorder.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, "A star rating between 1 and 5 is required", resp.Error)
	})

	t.Run("failed write yields 500 and keeps the message specific", func(t *testing.T) {
		svc := &fakeRatingService{
			submitFn: func(context.Context, uuid.UUID, uuid.UUID, int, string) (*domain.Rating, error) {
				return nil, service.ErrSubmissionFailed
			},
		}
		handler := NewRatingHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.SubmitRating(recorder, newAuthedRequest(http.MethodPut,
			"/worlds/"+worldID.String()+"/rating", submitBody(3, ""), userID, worldID.String()))

		require.Equal(t, http.StatusInternalServerError, recorder.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, "Rating could not be saved, please try again", resp.Error,
			"retryable message must not be replaced by a generic one")
	})

	t.Run("unknown world yields 404", func(t *testing.T) {
		svc := &fakeRatingService{
			submitFn: func(context.Context, uuid.UUID, uuid.UUID, int, string) (*domain.Rating, error) {
				return nil, service.ErrWorldNotFound
			},
		}
		handler := NewRatingHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.SubmitRating(recorder, newAuthedRequest(http.MethodPut,
			"/worlds/"+worldID.String()+"/rating", submitBody(5, ""), userID, worldID.String()))

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestRatingHandler_GetSummary(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	worldID := uuid.New()

	t.Run("returns average and star display values", func(t *testing.T) {
		svc := &fakeRatingService{
			summaryFn: func(_ context.Context, gotWorld uuid.UUID) (domain.RatingSummary, error) {
				assert.Equal(t, worldID, gotWorld)
				return domain.RatingSummary{Average: 4.4, Count: 12}, nil
			},
		}
		handler := NewRatingHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.GetSummary(recorder, newAuthedRequest(http.MethodGet,
			"/worlds/"+worldID.String()+"/ratings/summary", nil, userID, worldID.String()))

		require.Equal(t, http.StatusOK, recorder.Code)

		var resp RatingSummaryResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, 12, resp.Count)
		require.NotNil(t, resp.Average)
		assert.InDelta(t, 4.4, *resp.Average, 0.001)
		require.NotNil(t, resp.FilledStars)
		assert.Equal(t, 4, *resp.FilledStars)
		require.NotNil(t, resp.HasHalfStar)
		assert.False(t, *resp.HasHalfStar)
	})

	t.Run("world without ratings yields count zero and no average", func(t *testing.T) {
		svc := &fakeRatingService{
			summaryFn: func(context.Context, uuid.UUID) (domain.RatingSummary, error) {
				return domain.RatingSummary{}, service.ErrNoRatings
			},
		}
		handler := NewRatingHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.GetSummary(recorder, newAuthedRequest(http.MethodGet,
			"/worlds/"+worldID.String()+"/ratings/summary", nil, userID, worldID.String()))

		require.Equal(t, http.StatusOK, recorder.Code)

		var raw map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&raw))
		assert.JSONEq(t, "0", string(raw["count"]))
		assert.NotContains(t, raw, "average", "no average should be synthesized for zero ratings")
		assert.NotContains(t, raw, "filled_stars")
	})

	t.Run("store failure yields 500", func(t *testing.T) {
		svc := &fakeRatingService{
			summaryFn: func(context.Context, uuid.UUID) (domain.RatingSummary, error) {
				return domain.RatingSummary{}, &service.RatingServiceError{
					Operation: "get_summary",
					Message:   "failed to read summary",
				}
			},
		}
		handler := NewRatingHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.GetSummary(recorder, newAuthedRequest(http.MethodGet,
			"/worlds/"+worldID.String()+"/ratings/summary", nil, userID, worldID.String()))

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	})
}

func TestRatingHandler_ListComments(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	worldID := uuid.New()

	t.Run("lists ratings with comments", func(t *testing.T) {
		ratings := []*domain.Rating{
			testRating(worldID, uuid.New(), 5, "Super erklärt"),
			testRating(worldID, uuid.New(), 3, "Etwas zu schwer"),
		}
		svc := &fakeRatingService{
			commentsFn: func(_ context.Context, gotWorld uuid.UUID, limit, offset int) ([]*domain.Rating, error) {
				assert.Equal(t, worldID, gotWorld)
				assert.Equal(t, 10, limit)
				assert.Equal(t, 0, offset)
				return ratings, nil
			},
		}
		handler := NewRatingHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.ListComments(recorder, newAuthedRequest(http.MethodGet,
			"/worlds/"+worldID.String()+"/ratings/comments?limit=10", nil, userID, worldID.String()))

		require.Equal(t, http.StatusOK, recorder.Code)

		var resp []RatingResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		require.Len(t, resp, 2)
		assert.Equal(t, "Super erklärt", resp[0].Comment)
	})

	t.Run("empty feed yields empty list", func(t *testing.T) {
		svc := &fakeRatingService{
			commentsFn: func(context.Context, uuid.UUID, int, int) ([]*domain.Rating, error) {
				return []*domain.Rating{}, nil
			},
		}
		handler := NewRatingHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.ListComments(recorder, newAuthedRequest(http.MethodGet,
			"/worlds/"+worldID.String()+"/ratings/comments", nil, userID, worldID.String()))

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.JSONEq(t, "[]", recorder.Body.String())
	})
}

func TestRatingHandler_GetUserRating(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	worldID := uuid.New()

	t.Run("returns own rating", func(t *testing.T) {
		svc := &fakeRatingService{
			userFn: func(_ context.Context, gotWorld, gotUser uuid.UUID) (*domain.Rating, error) {
				assert.Equal(t, worldID, gotWorld)
				assert.Equal(t, userID, gotUser)
				return testRating(gotWorld, gotUser, 5, ""), nil
			},
		}
		handler := NewRatingHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.GetUserRating(recorder, newAuthedRequest(http.MethodGet,
			"/worlds/"+worldID.String()+"/rating", nil, userID, worldID.String()))

		require.Equal(t, http.StatusOK, recorder.Code)

		var resp RatingResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, userID.String(), resp.UserID)
		assert.Equal(t, 5, resp.Stars)
	})

	t.Run("no rating yet yields 204", func(t *testing.T) {
		svc := &fakeRatingService{
			userFn: func(context.Context, uuid.UUID, uuid.UUID) (*domain.Rating, error) {
				return nil, store.ErrRatingNotFound
			},
		}
		handler := NewRatingHandler(svc, slog.Default())

		recorder := httptest.NewRecorder()
		handler.GetUserRating(recorder, newAuthedRequest(http.MethodGet,
			"/worlds/"+worldID.String()+"/rating", nil, userID, worldID.String()))

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Empty(t, recorder.Body.String())
	})
}
