package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all capital routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/capital", func(r chi.Router) {
		r.Post("/events", h.HandleCreateEvent)
		r.Get("/events", h.HandleListEvents)
		r.Get("/events/total", h.HandleTotalForYear)
		r.Patch("/events/{id}", h.HandleUpdateEvent)
		r.Delete("/events/{id}", h.HandleDeactivateEvent)

		r.Get("/position", h.HandleGetPosition)
		r.Patch("/position", h.HandleUpdatePosition)
		r.Post("/position/sync-burn", h.HandleSyncBurn)

		r.Post("/recalculate", h.HandleRecalculate)
		r.Get("/forecast", h.HandleGetForecast)
	})
}
