package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterboard/rosterboard/internal/api/middleware"
	"github.com/rosterboard/rosterboard/internal/auth"
)

const testBcryptCost = 4

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func parseErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env["error"].(map[string]interface{})
}

// --- RequestID ---

func TestRequestID_GeneratesUUID(t *testing.T) {
	var captured string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = middleware.GetRequestID(r.Context())
	}))
	w := httptest.NewRecorder()

	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(captured)
	assert.NoError(t, err)
	assert.Equal(t, captured, w.Header().Get("X-Request-ID"))
}

func TestRequestID_KeepsCallerID(t *testing.T) {
	var captured string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = middleware.GetRequestID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "trace-42")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, "trace-42", captured)
	assert.Equal(t, "trace-42", w.Header().Get("X-Request-ID"))
}

func TestRequestID_ReplacesUnusableCallerID(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{name: "too long", id: strings.Repeat("a", 129)},
		{name: "contains space", id: "two words"},
		{name: "non ascii", id: "idé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := middleware.RequestID(okHandler())
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", tt.id)
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			got := w.Header().Get("X-Request-ID")
			assert.NotEqual(t, tt.id, got)
			_, err := uuid.Parse(got)
			assert.NoError(t, err)
		})
	}
}

func TestGetRequestID_EmptyWithoutMiddleware(t *testing.T) {
	assert.Equal(t, "", middleware.GetRequestID(context.Background()))
}

// --- Recovery ---

func TestRecovery_NoPanic(t *testing.T) {
	h := middleware.Recovery(okHandler())
	w := httptest.NewRecorder()

	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery_HandlesPanicWithRequestID(t *testing.T) {
	panicker := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	h := middleware.RequestID(middleware.Recovery(panicker))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "panic-req")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	apiErr := parseErrorResponse(t, w)
	assert.Equal(t, "INTERNAL_ERROR", apiErr["code"])
	assert.Equal(t, "An unexpected error occurred", apiErr["message"])
}

func TestRecovery_RepanicsAbortHandler(t *testing.T) {
	h := middleware.Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

// --- Auth ---

type failingAuthenticator struct{}

func (failingAuthenticator) Authenticate(_ context.Context, _ string) (*auth.Identity, error) {
	return nil, errors.New("hash backend down")
}

func newAuthService(t *testing.T) (*auth.Service, string) {
	t.Helper()
	rawKey, hash, err := auth.GenerateKey(testBcryptCost)
	require.NoError(t, err)
	return auth.NewService(hash), rawKey
}

func TestAuth_MissingKey(t *testing.T) {
	svc, _ := newAuthService(t)
	h := middleware.Auth(svc)(okHandler())
	w := httptest.NewRecorder()

	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	apiErr := parseErrorResponse(t, w)
	assert.Equal(t, "UNAUTHORIZED", apiErr["code"])
	assert.Equal(t, "API key is required", apiErr["message"])
}

func TestAuth_InvalidKey(t *testing.T) {
	svc, _ := newAuthService(t)
	h := middleware.Auth(svc)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "rb_invalidkeyvalue12345678901234567890")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	apiErr := parseErrorResponse(t, w)
	assert.Equal(t, "UNAUTHORIZED", apiErr["code"])
	assert.Equal(t, "Invalid API key", apiErr["message"])
}

func TestAuth_ValidKey_IdentityInContext(t *testing.T) {
	svc, rawKey := newAuthService(t)

	var captured *auth.Identity
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = middleware.GetIdentity(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := middleware.Auth(svc)(inner)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", rawKey)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, auth.AdminIdentity.Name, captured.Name)
}

func TestAuth_BackendFailure(t *testing.T) {
	h := middleware.Auth(failingAuthenticator{})(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "rb_anything")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", parseErrorResponse(t, w)["code"])
}

func TestGetIdentity_NilWithoutAuth(t *testing.T) {
	assert.Nil(t, middleware.GetIdentity(context.Background()))
}
