package api

import (
	"fmt"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rosterboard/rosterboard/internal/api/handler"
	"github.com/rosterboard/rosterboard/internal/api/middleware"
	"github.com/rosterboard/rosterboard/internal/audit"
	"github.com/rosterboard/rosterboard/internal/discord"
	"github.com/rosterboard/rosterboard/internal/snapshot"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Gateway     discord.HealthChecker
	DBPinger    handler.DBPinger
	Version     string
	OpenAPISpec []byte

	// Admin routes are mounted only when Auth is set.
	Auth      middleware.Authenticator
	Rosters   handler.RosterService
	Audits    audit.Repository
	Snapshots snapshot.Repository
	Board     handler.BoardSyncer // optional; nil when no board channel is configured
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) (*chi.Mux, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.Gateway, deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler, err := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		if err != nil {
			return nil, fmt.Errorf("loading OpenAPI document: %w", err)
		}
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
	}

	if deps.Auth == nil || deps.Rosters == nil {
		return r, nil
	}

	rosterHandler := handler.NewRosterHandler(deps.Rosters, deps.Snapshots)
	auditHandler := handler.NewAuditHandler(deps.Audits)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.Auth))

		r.Get("/teams", rosterHandler.ListTeams)
		r.Get("/teams/{id}/roster", rosterHandler.GetRoster)
		r.Get("/teams/{id}/snapshot", rosterHandler.GetSnapshot)
		r.Get("/audits", auditHandler.List)
		r.Get("/export.csv", rosterHandler.Export)

		if deps.Board != nil {
			boardHandler := handler.NewBoardHandler(deps.Board)
			r.Post("/board/sync", boardHandler.Sync)
		}
	})

	return r, nil
}
