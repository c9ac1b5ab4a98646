// Package handlers provides HTTP handlers for fee calculator endpoints.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Seeksy-app/runway/internal/modules/fees"
)

// Handler handles fee calculator HTTP requests
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new fees handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		log: log.With().Str("handler", "fees").Logger(),
	}
}

// RegisterRoutes registers all fee calculator routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/fees", func(r chi.Router) {
		r.Get("/registration", h.HandleRegistration)
		r.Get("/split", h.HandleSplit)
		r.Get("/cpm", h.HandleCPM)
	})
}

// HandleRegistration handles GET /api/fees/registration?fee=&pass_on=
func (h *Handler) HandleRegistration(w http.ResponseWriter, r *http.Request) {
	fee, err := strconv.ParseFloat(r.URL.Query().Get("fee"), 64)
	if err != nil || fee < 0 {
		http.Error(w, "fee query parameter must be a non-negative number", http.StatusBadRequest)
		return
	}

	passOn := false
	if s := r.URL.Query().Get("pass_on"); s != "" {
		passOn, err = strconv.ParseBool(s)
		if err != nil {
			http.Error(w, "Invalid pass_on parameter", http.StatusBadRequest)
			return
		}
	}

	h.writeJSON(w, fees.RegistrationFees(fee, passOn))
}

// HandleSplit handles GET /api/fees/split?amount=
func (h *Handler) HandleSplit(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil || amount < 0 {
		http.Error(w, "amount query parameter must be a non-negative number", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, fees.RevenueSplit(amount))
}

// HandleCPM handles GET /api/fees/cpm?impressions=&rate=
func (h *Handler) HandleCPM(w http.ResponseWriter, r *http.Request) {
	impressions, err := strconv.ParseInt(r.URL.Query().Get("impressions"), 10, 64)
	if err != nil || impressions < 0 {
		http.Error(w, "impressions query parameter must be a non-negative integer", http.StatusBadRequest)
		return
	}

	rate, err := strconv.ParseFloat(r.URL.Query().Get("rate"), 64)
	if err != nil || rate < 0 {
		http.Error(w, "rate query parameter must be a non-negative number", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"impressions":       impressions,
		"cpm_rate":          rate,
		"estimated_revenue": fees.CPMRevenue(impressions, rate),
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
