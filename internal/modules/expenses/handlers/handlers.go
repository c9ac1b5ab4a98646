// Package handlers provides HTTP handlers for the expense register.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Seeksy-app/runway/internal/domain"
	"github.com/Seeksy-app/runway/internal/modules/expenses"
)

// Handler handles expense HTTP requests
type Handler struct {
	repo *expenses.Repository
	log  zerolog.Logger
}

// NewHandler creates a new expenses handler
func NewHandler(repo *expenses.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "expenses").Logger(),
	}
}

// RegisterRoutes registers all expense routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/expenses", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/burn", h.HandleBurnTotal)
		r.Delete("/{id}", h.HandleDeactivate)
	})
}

// HandleCreate handles POST /api/expenses
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var expense expenses.Expense
	if err := json.NewDecoder(r.Body).Decode(&expense); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.repo.Create(&expense)
	if err != nil {
		if domain.IsValidation(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Msg("Failed to create expense")
		http.Error(w, "Failed to create expense", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusCreated, created)
}

// HandleList handles GET /api/expenses
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListActive()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list expenses")
		http.Error(w, "Failed to list expenses", http.StatusInternalServerError)
		return
	}

	if list == nil {
		list = []expenses.Expense{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"expenses": list,
			"count":    len(list),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleBurnTotal handles GET /api/expenses/burn
func (h *Handler) HandleBurnTotal(w http.ResponseWriter, r *http.Request) {
	total, err := h.repo.MonthlyBurnTotal()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to total expenses")
		http.Error(w, "Failed to total expenses", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"monthly_burn_total": total})
}

// HandleDeactivate handles DELETE /api/expenses/{id}
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.repo.Deactivate(id); err != nil {
		if domain.IsNotFound(err) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Msg("Failed to deactivate expense")
		http.Error(w, "Failed to deactivate expense", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"deactivated": id})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
