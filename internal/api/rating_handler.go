package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/strategiert/lernwelt-api/internal/api/shared"
	"github.com/strategiert/lernwelt-api/internal/domain"
	"github.com/strategiert/lernwelt-api/internal/metrics"
	"github.com/strategiert/lernwelt-api/internal/platform/logger"
	"github.com/strategiert/lernwelt-api/internal/service"
	"github.com/strategiert/lernwelt-api/internal/store"
)

// SubmitRatingRequest represents the request body for rating a world.
// Stars are validated by the service so a missing selection gets the
// dedicated error message rather than a generic validation failure.
type SubmitRatingRequest struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment" validate:"max=2000"`
}

// RatingResponse represents the response data for a single rating
type RatingResponse struct {
	WorldID   string    `json:"world_id"`
	UserID    string    `json:"user_id"`
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RatingSummaryResponse represents the aggregate of a world's ratings.
// For a world without ratings only the count is present; an average is
// never synthesized from nothing.
type RatingSummaryResponse struct {
	Count       int      `json:"count"`
	Average     *float64 `json:"average,omitempty"`
	FilledStars *int     `json:"filled_stars,omitempty"`
	HasHalfStar *bool    `json:"has_half_star,omitempty"`
}

// RatingHandler handles rating-related HTTP requests
type RatingHandler struct {
	ratingService service.RatingService
	logger        *slog.Logger
}

// NewRatingHandler creates a new RatingHandler
func NewRatingHandler(ratingService service.RatingService, logger *slog.Logger) *RatingHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for RatingHandler")
	}

	return &RatingHandler{
		ratingService: ratingService,
		logger:        logger.With(slog.String("component", "rating_handler")),
	}
}

// SubmitRating handles PUT /worlds/{id}/rating requests. Submitting a
// second time replaces the user's previous rating of the world.
func (h *RatingHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, worldID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req SubmitRatingRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	rating, err := h.ratingService.Submit(r.Context(), worldID, userID, req.Stars, req.Comment)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to save rating")
		return
	}

	metrics.RatingsSubmitted.Inc()
	log.Debug("rating submitted",
		slog.String("world_id", worldID.String()),
		slog.String("user_id", userID.String()),
		slog.Int("stars", rating.Stars))
	shared.RespondWithJSON(w, r, http.StatusOK, ratingToResponse(rating))
}

// GetSummary handles GET /worlds/{id}/ratings/summary requests.
// A world without ratings yields 200 with count 0, not an error and not
// an average of 0.0.
func (h *RatingHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	_, worldID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	summary, err := h.ratingService.Summary(r.Context(), worldID)
	if errors.Is(err, service.ErrNoRatings) {
		shared.RespondWithJSON(w, r, http.StatusOK, RatingSummaryResponse{Count: 0})
		return
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load rating summary")
		return
	}

	average := summary.Average
	filled := service.FilledStars(average)
	half := service.HasPartialStar(average)

	shared.RespondWithJSON(w, r, http.StatusOK, RatingSummaryResponse{
		Count:       summary.Count,
		Average:     &average,
		FilledStars: &filled,
		HasHalfStar: &half,
	})
}

// ListComments handles GET /worlds/{id}/ratings/comments requests.
// Only ratings with a non-empty comment appear, newest first.
func (h *RatingHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	_, worldID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	ratings, err := h.ratingService.Comments(r.Context(), worldID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load comments")
		return
	}

	responses := make([]RatingResponse, len(ratings))
	for i, rating := range ratings {
		responses[i] = ratingToResponse(rating)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// GetUserRating handles GET /worlds/{id}/rating requests. It returns the
// requesting user's own rating, used to pre-fill the rating dialog.
func (h *RatingHandler) GetUserRating(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, worldID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	rating, err := h.ratingService.UserRating(r.Context(), worldID, userID)
	if errors.Is(err, store.ErrRatingNotFound) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load rating")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ratingToResponse(rating))
}

// ratingToResponse converts a domain.Rating to a RatingResponse
func ratingToResponse(rating *domain.Rating) RatingResponse {
	return RatingResponse{
		WorldID:   rating.WorldID.String(),
		UserID:    rating.UserID.String(),
		Stars:     rating.Stars,
		Comment:   rating.Comment,
		CreatedAt: rating.CreatedAt,
		UpdatedAt: rating.UpdatedAt,
	}
}
