package handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rosterboard/rosterboard/internal/api/handler"
	"github.com/rosterboard/rosterboard/internal/discord"
)

func TestHealthHandler_Healthy(t *testing.T) {
	checker := &mockHealthChecker{
		status: discord.ConnectivityStatus{Connected: true, Latency: 42 * time.Millisecond},
	}
	h := handler.NewHealthHandler(checker, &mockPinger{}, "0.1.0")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	env := decodeEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "0.1.0", data["version"])

	gateway := data["gateway"].(map[string]interface{})
	assert.Equal(t, true, gateway["connected"])
	assert.Equal(t, float64(42), gateway["latencyMs"])

	database := data["database"].(map[string]interface{})
	assert.Equal(t, true, database["connected"])

	assert.Nil(t, env["error"])
	assert.NotNil(t, env["meta"])
}

func TestHealthHandler_GatewayDown(t *testing.T) {
	checker := &mockHealthChecker{status: discord.ConnectivityStatus{Connected: false}}
	h := handler.NewHealthHandler(checker, &mockPinger{}, "0.1.0")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "degraded", data["status"])

	gateway := data["gateway"].(map[string]interface{})
	assert.Equal(t, false, gateway["connected"])
	assert.Nil(t, gateway["latencyMs"])
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	checker := &mockHealthChecker{status: discord.ConnectivityStatus{Connected: true}}
	h := handler.NewHealthHandler(checker, &mockPinger{err: errors.New("connection refused")}, "0.1.0")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "degraded", data["status"])
	assert.Equal(t, false, data["database"].(map[string]interface{})["connected"])
}

func TestHealthHandler_NoDatabase(t *testing.T) {
	checker := &mockHealthChecker{status: discord.ConnectivityStatus{Connected: true}}
	h := handler.NewHealthHandler(checker, nil, "dev")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "degraded", data["status"])
}
