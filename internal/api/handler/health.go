package handler

import (
	"context"
	"net/http"

	"github.com/rosterboard/rosterboard/internal/api/middleware"
	"github.com/rosterboard/rosterboard/internal/api/response"
	"github.com/rosterboard/rosterboard/internal/discord"
)

// DBPinger checks connectivity to the durable store.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	gateway discord.HealthChecker
	db      DBPinger
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(gateway discord.HealthChecker, db DBPinger, version string) *HealthHandler {
	return &HealthHandler{
		gateway: gateway,
		db:      db,
		version: version,
	}
}

type gatewayStatus struct {
	Connected bool   `json:"connected"`
	LatencyMs *int64 `json:"latencyMs"`
}

type databaseStatus struct {
	Connected bool `json:"connected"`
}

type healthData struct {
	Status   string         `json:"status"`
	Version  string         `json:"version"`
	Gateway  gatewayStatus  `json:"gateway"`
	Database databaseStatus `json:"database"`
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	connectivity := h.gateway.CheckConnectivity(r.Context())
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil

	status := "healthy"
	var latency *int64

	if connectivity.Connected {
		ms := connectivity.Latency.Milliseconds()
		latency = &ms
	} else {
		status = "degraded"
	}
	if !dbConnected {
		status = "degraded"
	}

	data := healthData{
		Status:  status,
		Version: h.version,
		Gateway: gatewayStatus{
			Connected: connectivity.Connected,
			LatencyMs: latency,
		},
		Database: databaseStatus{Connected: dbConnected},
	}

	response.Success(w, http.StatusOK, data, requestID)
}
