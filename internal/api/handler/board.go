package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rosterboard/rosterboard/internal/api/middleware"
	"github.com/rosterboard/rosterboard/internal/api/response"
)

// BoardSyncer runs a board reconciliation pass.
type BoardSyncer interface {
	Reconcile(ctx context.Context) error
}

type syncResponse struct {
	Status string   `json:"status"`
	Errors []string `json:"errors,omitempty"`
}

// BoardHandler handles the board sync trigger.
type BoardHandler struct {
	board BoardSyncer
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(board BoardSyncer) *BoardHandler {
	return &BoardHandler{board: board}
}

// Sync handles POST /board/sync. Per-team failures are listed in the body with status "partial".
func (h *BoardHandler) Sync(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	err := h.board.Reconcile(r.Context())
	if err == nil {
		response.Success(w, http.StatusOK, syncResponse{Status: "synced"}, requestID)
		return
	}

	slog.Error("board sync failed", "error", err)

	// Per-team failures come back joined; anything else failed the whole pass.
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var msgs []string
		for _, e := range joined.Unwrap() {
			msgs = append(msgs, e.Error())
		}
		response.Success(w, http.StatusOK, syncResponse{Status: "partial", Errors: msgs}, requestID)
		return
	}

	response.Err(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Board reconciliation failed", requestID)
}
