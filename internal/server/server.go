// Package server provides the HTTP server and routing for the runway service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/Seeksy-app/runway/internal/config"
	"github.com/Seeksy-app/runway/internal/database"
	"github.com/Seeksy-app/runway/internal/events"
	capitalhandlers "github.com/Seeksy-app/runway/internal/modules/capital/handlers"
	expensehandlers "github.com/Seeksy-app/runway/internal/modules/expenses/handlers"
	feehandlers "github.com/Seeksy-app/runway/internal/modules/fees/handlers"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	LedgerDB  *database.DB
	FinanceDB *database.DB
	Config    *config.Config
	EventBus  *events.Bus

	CapitalHandlers *capitalhandlers.Handler
	ExpenseHandlers *expensehandlers.Handler
	FeeHandlers     *feehandlers.Handler
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	ledgerDB       *database.DB
	financeDB      *database.DB
	cfg            *config.Config
	systemHandlers *SystemHandlers
	eventsStream   *EventsStreamHandler
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		ledgerDB:       cfg.LedgerDB,
		financeDB:      cfg.FinanceDB,
		cfg:            cfg.Config,
		systemHandlers: NewSystemHandlers(cfg.Log, cfg.LedgerDB, cfg.FinanceDB),
		eventsStream:   NewEventsStreamHandler(cfg.EventBus, cfg.Log),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/health", s.systemHandlers.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		cfg.CapitalHandlers.RegisterRoutes(r)
		cfg.ExpenseHandlers.RegisterRoutes(r)
		cfg.FeeHandlers.RegisterRoutes(r)

		r.Get("/system/health", s.systemHandlers.HandleSystemHealth)
		r.Get("/events/stream", s.eventsStream.ServeHTTP)
	})

	return s
}

// Router returns the chi router (exposed for handler tests)
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start starts the HTTP server. Blocks until the server stops.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info().Str("addr", addr).Msg("HTTP server listening")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
