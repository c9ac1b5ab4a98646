// Package handlers provides HTTP handlers for capital ledger and runway
// forecast operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Seeksy-app/runway/internal/domain"
	"github.com/Seeksy-app/runway/internal/modules/capital"
	"github.com/Seeksy-app/runway/internal/modules/forecast"
)

// Handler handles capital HTTP requests
type Handler struct {
	eventRepo    *capital.EventRepository
	positionRepo *capital.PositionRepository
	service      *capital.Service
	log          zerolog.Logger
}

// NewHandler creates a new capital handler
func NewHandler(
	eventRepo *capital.EventRepository,
	positionRepo *capital.PositionRepository,
	service *capital.Service,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		eventRepo:    eventRepo,
		positionRepo: positionRepo,
		service:      service,
		log:          log.With().Str("handler", "capital").Logger(),
	}
}

// HandleCreateEvent handles POST /api/capital/events
func (h *Handler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var event capital.CapitalEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateEvent(&event)
	if err != nil {
		h.writeError(w, err, "Failed to create capital event")
		return
	}

	h.writeJSON(w, http.StatusCreated, created)
}

// HandleUpdateEvent handles PATCH /api/capital/events/{id}
func (h *Handler) HandleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch capital.EventPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateEvent(id, patch)
	if err != nil {
		h.writeError(w, err, "Failed to update capital event")
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}

// HandleDeactivateEvent handles DELETE /api/capital/events/{id}.
// Deletion is always a soft delete; the row survives for the audit trail.
func (h *Handler) HandleDeactivateEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeactivateEvent(id); err != nil {
		h.writeError(w, err, "Failed to deactivate capital event")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"deactivated": id})
}

// HandleListEvents handles GET /api/capital/events
func (h *Handler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventRepo.ListActive()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list capital events")
		http.Error(w, "Failed to list capital events", http.StatusInternalServerError)
		return
	}

	if events == nil {
		events = []capital.CapitalEvent{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"events": events,
			"count":  len(events),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleTotalForYear handles GET /api/capital/events/total?year=YYYY
func (h *Handler) HandleTotalForYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		http.Error(w, "year query parameter is required", http.StatusBadRequest)
		return
	}

	total, err := h.eventRepo.TotalForYear(year)
	if err != nil {
		h.log.Error().Err(err).Int("year", year).Msg("Failed to total capital events")
		http.Error(w, "Failed to total capital events", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"year":  year,
		"total": total,
	})
}

// HandleGetPosition handles GET /api/capital/position
func (h *Handler) HandleGetPosition(w http.ResponseWriter, r *http.Request) {
	pos, err := h.positionRepo.Get()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get cash position")
		http.Error(w, "Failed to get cash position", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, pos)
}

// HandleUpdatePosition handles PATCH /api/capital/position
func (h *Handler) HandleUpdatePosition(w http.ResponseWriter, r *http.Request) {
	var patch capital.PositionPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	pos, err := h.positionRepo.Update(patch)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to update cash position")
		http.Error(w, "Failed to update cash position", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, pos)
}

// HandleSyncBurn handles POST /api/capital/position/sync-burn
func (h *Handler) HandleSyncBurn(w http.ResponseWriter, r *http.Request) {
	pos, err := h.service.SyncBurnRate()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to sync burn rate")
		http.Error(w, "Failed to sync burn rate", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, pos)
}

// recalculateRequest is the body for POST /api/capital/recalculate
type recalculateRequest struct {
	MonthlyRevenue float64 `json:"monthly_revenue"`
}

// HandleRecalculate handles POST /api/capital/recalculate
func (h *Handler) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	var req recalculateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	pos, result, err := h.service.Recalculate(req.MonthlyRevenue)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to recalculate runway")
		http.Error(w, "Failed to recalculate runway", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"position": pos,
		"result":   result,
		"summary":  forecast.Summarize(result.Forecast),
	})
}

// HandleGetForecast handles GET /api/capital/forecast.
// Without query parameters it serves the cached series; growth, horizon,
// and revenue overrides run an ad-hoc simulation without persisting.
func (h *Handler) HandleGetForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var growth *float64
	if s := q.Get("growth"); s != "" {
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			http.Error(w, "Invalid growth parameter", http.StatusBadRequest)
			return
		}
		growth = &parsed
	}

	var horizon *int
	if s := q.Get("horizon"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 0 {
			http.Error(w, "Invalid horizon parameter", http.StatusBadRequest)
			return
		}
		horizon = &parsed
	}

	revenue := 0.0
	if s := q.Get("revenue"); s != "" {
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			http.Error(w, "Invalid revenue parameter", http.StatusBadRequest)
			return
		}
		revenue = parsed
	}

	var result forecast.Result
	var err error
	if growth == nil && horizon == nil && revenue == 0 {
		result, err = h.service.CachedOrFresh()
	} else {
		result, err = h.service.Forecast(revenue, growth, horizon)
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build forecast")
		http.Error(w, "Failed to build forecast", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"result":  result,
		"summary": forecast.Summarize(result.Forecast),
	})
}

// writeError maps domain errors to HTTP status codes
func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case domain.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case domain.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.log.Error().Err(err).Msg(fallback)
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
