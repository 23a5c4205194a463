package handler

import (
	"log/slog"
	"net/http"

	"github.com/rosterboard/rosterboard/internal/api/middleware"
	"github.com/rosterboard/rosterboard/internal/api/response"
	"github.com/rosterboard/rosterboard/internal/api/validation"
	"github.com/rosterboard/rosterboard/internal/audit"
)

type auditResponse struct {
	ID        int64  `json:"id"`
	Timestamp string `json:"timestamp"`
	ActorID   string `json:"actorId"`
	Action    string `json:"action"`
	TeamID    string `json:"teamRoleId,omitempty"`
	TargetID  string `json:"targetId,omitempty"`
	OtherID   string `json:"otherId,omitempty"`
	Tag       string `json:"asTag,omitempty"`
	Outcome   string `json:"outcome"`
	Notes     string `json:"notes,omitempty"`
}

func toAuditResponse(rec audit.Record) auditResponse {
	return auditResponse{
		ID:        rec.ID,
		Timestamp: rec.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
		ActorID:   rec.ActorID,
		Action:    string(rec.Action),
		TeamID:    rec.TeamID,
		TargetID:  rec.TargetID,
		OtherID:   rec.OtherID,
		Tag:       rec.Tag,
		Outcome:   string(rec.Outcome),
		Notes:     rec.Notes,
	}
}

// AuditHandler handles the audit trail endpoint.
type AuditHandler struct {
	repo audit.Repository
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(repo audit.Repository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

// List handles GET /audits.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	limit, fieldErrors := validation.ParseLimit(r.URL.Query().Get("limit"))
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "INVALID_PARAM", "Invalid query parameters", fieldErrors, requestID)
		return
	}

	records, err := h.repo.ListRecent(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list audit records", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list audit records", requestID)
		return
	}

	data := make([]auditResponse, 0, len(records))
	for _, rec := range records {
		data = append(data, toAuditResponse(rec))
	}

	response.SuccessList(w, http.StatusOK, data, len(data), limit, requestID)
}
