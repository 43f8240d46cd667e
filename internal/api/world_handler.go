package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/strategiert/lernwelt-api/internal/api/shared"
	"github.com/strategiert/lernwelt-api/internal/domain"
	"github.com/strategiert/lernwelt-api/internal/metrics"
	"github.com/strategiert/lernwelt-api/internal/platform/logger"
	"github.com/strategiert/lernwelt-api/internal/service"
)

// SectionRequest represents one section in a world creation request
type SectionRequest struct {
	ID            string `json:"id"             validate:"required,min=1"`
	Title         string `json:"title"          validate:"required,min=1"`
	ComponentType string `json:"component_type" validate:"required,min=1"`
	ModuleType    string `json:"module_type"    validate:"omitempty,oneof=discovery knowledge practice reflection challenge"`
}

// CreateWorldRequest represents the request body for creating a new world
type CreateWorldRequest struct {
	Title       string           `json:"title"       validate:"required,min=1,max=200"`
	Description string           `json:"description" validate:"max=2000"`
	Subject     string           `json:"subject"     validate:"required,min=1"`
	Sections    []SectionRequest `json:"sections"    validate:"required,min=1,dive"`
}

// NavigateRequest represents the request body for a navigation check
type NavigateRequest struct {
	CurrentIndex int `json:"current_index" validate:"min=0"`
	TargetIndex  int `json:"target_index"  validate:"min=0"`
}

// WorldResponse represents the response data for a world without
// user-specific presentation
type WorldResponse struct {
	ID           string           `json:"id"`
	CreatorID    string           `json:"creator_id"`
	Title        string           `json:"title"`
	Description  string           `json:"description,omitempty"`
	Subject      string           `json:"subject"`
	SectionCount int              `json:"section_count"`
	Sections     []domain.Section `json:"sections,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// WorldHandler handles world-related HTTP requests
type WorldHandler struct {
	worldService service.WorldService
	logger       *slog.Logger
}

// NewWorldHandler creates a new WorldHandler
func NewWorldHandler(worldService service.WorldService, logger *slog.Logger) *WorldHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for WorldHandler")
	}

	return &WorldHandler{
		worldService: worldService,
		logger:       logger.With(slog.String("component", "world_handler")),
	}
}

// CreateWorld handles POST /worlds requests. The world is usable
// immediately; design generation runs in the background.
func (h *WorldHandler) CreateWorld(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateWorldRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	sections := make([]domain.Section, len(req.Sections))
	for i, sec := range req.Sections {
		sections[i] = domain.Section{
			ID:            sec.ID,
			Title:         sec.Title,
			ComponentType: sec.ComponentType,
			ModuleType:    domain.ModuleType(sec.ModuleType),
		}
	}

	world, err := h.worldService.CreateWorld(
		r.Context(),
		userID,
		req.Title,
		req.Description,
		req.Subject,
		sections,
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create world")
		return
	}

	metrics.WorldsCreated.Inc()
	log.Info("world created",
		slog.String("world_id", world.ID.String()),
		slog.String("creator_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, worldToResponse(world, true))
}

// ListWorlds handles GET /worlds requests
func (h *WorldHandler) ListWorlds(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	worlds, err := h.worldService.ListWorlds(r.Context(), limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list worlds")
		return
	}

	responses := make([]WorldResponse, len(worlds))
	for i, world := range worlds {
		responses[i] = worldToResponse(world, false)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// GetWorldView handles GET /worlds/{id} requests. It returns the world
// with resolved theme colors and the per-section display states for the
// requesting user. The user's current position comes from the
// current_index query parameter and defaults to the first section.
func (h *WorldHandler) GetWorldView(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, worldID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	currentIndex := queryInt(r, "current_index", 0)

	view, err := h.worldService.GetWorldView(r.Context(), worldID, userID, currentIndex)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load world")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// CompleteSection handles POST /worlds/{id}/sections/{sectionID}/complete
// requests. Completion is monotone; repeating it is a no-op.
func (h *WorldHandler) CompleteSection(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, worldID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	sectionID := chi.URLParam(r, "sectionID")
	if sectionID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Section ID is required")
		return
	}

	err := h.worldService.MarkSectionCompleted(r.Context(), worldID, userID, sectionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record completion")
		return
	}

	metrics.SectionsCompleted.Inc()
	log.Debug("section completed",
		slog.String("world_id", worldID.String()),
		slog.String("user_id", userID.String()),
		slog.String("section_id", sectionID))
	w.WriteHeader(http.StatusNoContent)
}

// Navigate handles POST /worlds/{id}/navigate requests. A move to a
// locked section is answered with 409 Conflict.
func (h *WorldHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, worldID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req NavigateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	err := h.worldService.Navigate(r.Context(), worldID, userID, req.CurrentIndex, req.TargetIndex)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to navigate")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]int{
		"current_index": req.TargetIndex,
	})
}

// worldToResponse converts a domain.World to a WorldResponse. Sections
// are only included in detail responses.
func worldToResponse(world *domain.World, includeSections bool) WorldResponse {
	resp := WorldResponse{
		ID:           world.ID.String(),
		CreatorID:    world.CreatorID.String(),
		Title:        world.Title,
		Description:  world.Description,
		Subject:      world.Subject,
		SectionCount: len(world.Sections),
		CreatedAt:    world.CreatedAt,
		UpdatedAt:    world.UpdatedAt,
	}
	if includeSections {
		resp.Sections = world.Sections
	}
	return resp
}

// queryInt reads an integer query parameter, falling back to def for
// missing or unparseable values.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return def
	}
	return value
}
