package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rosterboard/rosterboard/internal/api/middleware"
	"github.com/rosterboard/rosterboard/internal/api/response"
	"github.com/rosterboard/rosterboard/internal/api/validation"
	"github.com/rosterboard/rosterboard/internal/auth"
	"github.com/rosterboard/rosterboard/internal/command"
	"github.com/rosterboard/rosterboard/internal/roster"
	"github.com/rosterboard/rosterboard/internal/snapshot"
)

// RosterService is the read side of the command layer used by the admin API.
type RosterService interface {
	Settings() roster.Settings
	Roster(ctx context.Context, teamID string) (roster.View, error)
	Export(ctx context.Context, actorID string) (*command.Export, error)
}

type teamResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type rosterResponse struct {
	Team    teamResponse   `json:"team"`
	Title   string         `json:"title"`
	IconURL string         `json:"iconUrl,omitempty"`
	Members []roster.Entry `json:"members"`
}

type snapshotResponse struct {
	ID        int64            `json:"id"`
	Timestamp string           `json:"timestamp"`
	TeamID    string           `json:"teamRoleId"`
	Payload   snapshot.Payload `json:"payload"`
}

// RosterHandler handles team, roster, snapshot and export endpoints.
type RosterHandler struct {
	svc       RosterService
	snapshots snapshot.Repository
}

// NewRosterHandler creates a new RosterHandler.
func NewRosterHandler(svc RosterService, snapshots snapshot.Repository) *RosterHandler {
	return &RosterHandler{svc: svc, snapshots: snapshots}
}

// ListTeams handles GET /teams.
func (h *RosterHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teams := h.svc.Settings().Teams()
	data := make([]teamResponse, 0, len(teams))
	for _, t := range teams {
		data = append(data, teamResponse{ID: t.ID, Name: t.Name})
	}

	response.Success(w, http.StatusOK, data, requestID)
}

// GetRoster handles GET /teams/{id}/roster.
func (h *RosterHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teamID, ok := parseTeamID(w, r, requestID)
	if !ok {
		return
	}

	view, err := h.svc.Roster(r.Context(), teamID)
	if err != nil {
		writeRosterError(w, err, requestID)
		return
	}

	members := view.Entries
	if members == nil {
		members = []roster.Entry{}
	}
	response.Success(w, http.StatusOK, rosterResponse{
		Team:    teamResponse{ID: view.Team.ID, Name: view.Team.Name},
		Title:   view.Title,
		IconURL: view.IconURL,
		Members: members,
	}, requestID)
}

// GetSnapshot handles GET /teams/{id}/snapshot.
func (h *RosterHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teamID, ok := parseTeamID(w, r, requestID)
	if !ok {
		return
	}

	snap, err := h.snapshots.Latest(r.Context(), teamID)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "No snapshot recorded for this team", requestID)
			return
		}
		slog.Error("failed to load snapshot", "team", teamID, "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load snapshot", requestID)
		return
	}

	response.Success(w, http.StatusOK, snapshotResponse{
		ID:        snap.ID,
		Timestamp: snap.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
		TeamID:    snap.TeamID,
		Payload:   snap.Payload,
	}, requestID)
}

// Export handles GET /export.csv.
func (h *RosterHandler) Export(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	actor := auth.AdminIdentity.Name
	if identity := middleware.GetIdentity(r.Context()); identity != nil {
		actor = identity.Name
	}

	exp, err := h.svc.Export(r.Context(), actor)
	if err != nil {
		writeRosterError(w, err, requestID)
		return
	}

	w.Header().Set("X-Export-Rows", strconv.Itoa(exp.Rows))
	response.Attachment(w, "text/csv; charset=utf-8", exp.Filename, exp.Data)
}

func parseTeamID(w http.ResponseWriter, r *http.Request, requestID string) (string, bool) {
	teamID := chi.URLParam(r, "id")
	if fieldErrors := validation.ValidateTeamID(teamID); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid team id", fieldErrors, requestID)
		return "", false
	}
	return teamID, true
}

func writeRosterError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, roster.ErrConfiguration):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team is not configured", requestID)
	case errors.Is(err, roster.ErrTransport):
		slog.Error("chat platform call failed", "error", err)
		response.Err(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to read guild membership", requestID)
	default:
		slog.Error("roster request failed", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", requestID)
	}
}
