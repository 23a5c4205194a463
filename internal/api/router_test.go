package api_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	specpkg "github.com/rosterboard/rosterboard/api"
	"github.com/rosterboard/rosterboard/internal/api"
	"github.com/rosterboard/rosterboard/internal/audit"
	"github.com/rosterboard/rosterboard/internal/auth"
	"github.com/rosterboard/rosterboard/internal/command"
	"github.com/rosterboard/rosterboard/internal/discord"
	"github.com/rosterboard/rosterboard/internal/roster"
	"github.com/rosterboard/rosterboard/internal/snapshot"
)

// openAPISpec is the minimal structure needed to extract paths from the document.
type openAPISpec struct {
	Paths map[string]map[string]interface{} `json:"paths"`
}

// --- Noop implementations to satisfy RouterDeps interfaces ---

type noopHealthChecker struct{}

func (noopHealthChecker) CheckConnectivity(_ context.Context) discord.ConnectivityStatus {
	return discord.ConnectivityStatus{Connected: true}
}

type noopPinger struct{}

func (noopPinger) Ping(_ context.Context) error { return nil }

type noopRosters struct{}

func (noopRosters) Settings() roster.Settings {
	return roster.NewSettings([]roster.Team{{ID: "11111", Name: "Alpha"}}, roster.RoleIDs{}, nil)
}
func (noopRosters) Roster(_ context.Context, _ string) (roster.View, error) {
	return roster.View{}, nil
}
func (noopRosters) Export(_ context.Context, _ string) (*command.Export, error) {
	return &command.Export{Filename: command.ExportFilename}, nil
}

type noopAudits struct{}

func (noopAudits) Append(_ context.Context, _ *audit.Record) error { return nil }
func (noopAudits) ListRecent(_ context.Context, _ int) ([]audit.Record, error) {
	return nil, nil
}

type noopSnapshots struct{}

func (noopSnapshots) Save(_ context.Context, _ *snapshot.Snapshot) error { return nil }
func (noopSnapshots) Latest(_ context.Context, _ string) (*snapshot.Snapshot, error) {
	return nil, snapshot.ErrNotFound
}

type noopBoard struct{}

func (noopBoard) Reconcile(_ context.Context) error { return nil }

func fullDeps(t *testing.T) (api.RouterDeps, string) {
	t.Helper()
	rawKey, hash, err := auth.GenerateKey(4)
	require.NoError(t, err)
	return api.RouterDeps{
		Gateway:     noopHealthChecker{},
		DBPinger:    noopPinger{},
		Version:     "test",
		OpenAPISpec: specpkg.OpenAPISpec,
		Auth:        auth.NewService(hash),
		Rosters:     noopRosters{},
		Audits:      noopAudits{},
		Snapshots:   noopSnapshots{},
		Board:       noopBoard{},
	}, rawKey
}

// --- Tests ---

func TestOpenAPISpec_RoutesCoverAllPaths(t *testing.T) {
	t.Parallel()

	specJSON, err := yaml.YAMLToJSON(specpkg.OpenAPISpec)
	require.NoError(t, err, "embedded document must convert to JSON")

	var spec openAPISpec
	require.NoError(t, yaml.Unmarshal(specJSON, &spec))

	specRoutes := extractSpecRoutes(t, spec)
	require.NotEmpty(t, specRoutes)

	deps, _ := fullDeps(t)
	router, err := api.NewRouter(deps)
	require.NoError(t, err)

	chiRoutes := extractChiRoutes(t, router)
	require.NotEmpty(t, chiRoutes)

	for _, sr := range specRoutes {
		t.Run(fmt.Sprintf("doc_%s_%s_has_Chi_route", sr.method, sr.path), func(t *testing.T) {
			assert.Contains(t, chiRoutes, sr, "documented route %s %s not found in Chi router", sr.method, sr.path)
		})
	}

	for _, cr := range chiRoutes {
		t.Run(fmt.Sprintf("Chi_%s_%s_is_documented", cr.method, cr.path), func(t *testing.T) {
			assert.Contains(t, specRoutes, cr, "Chi route %s %s not found in OpenAPI document", cr.method, cr.path)
		})
	}
}

func TestNewRouter_AdminRoutesRequireKey(t *testing.T) {
	t.Parallel()

	deps, rawKey := fullDeps(t)
	router, err := api.NewRouter(deps)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/teams", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/teams", nil)
	req.Header.Set("X-API-Key", rawKey)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewRouter_WithoutAdminKey(t *testing.T) {
	t.Parallel()

	router, err := api.NewRouter(api.RouterDeps{
		Gateway:  noopHealthChecker{},
		DBPinger: noopPinger{},
		Version:  "test",
	})
	require.NoError(t, err)

	routes := extractChiRoutes(t, router)
	assert.Equal(t, []route{{method: http.MethodGet, path: "/health"}}, routes)
}

func TestNewRouter_BoardSyncOnlyWithBoard(t *testing.T) {
	t.Parallel()

	deps, _ := fullDeps(t)
	deps.Board = nil
	router, err := api.NewRouter(deps)
	require.NoError(t, err)

	assert.NotContains(t, extractChiRoutes(t, router), route{method: http.MethodPost, path: "/board/sync"})
}

func TestNewRouter_MalformedOpenAPI(t *testing.T) {
	t.Parallel()

	_, err := api.NewRouter(api.RouterDeps{
		Gateway:     noopHealthChecker{},
		OpenAPISpec: []byte("paths: [unterminated"),
	})
	assert.Error(t, err)
}

type route struct {
	method string
	path   string
}

func sortRoutes(routes []route) {
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].path == routes[j].path {
			return routes[i].method < routes[j].method
		}
		return routes[i].path < routes[j].path
	})
}

func extractSpecRoutes(t *testing.T, spec openAPISpec) []route {
	t.Helper()
	var routes []route
	for path, methods := range spec.Paths {
		for method := range methods {
			routes = append(routes, route{method: strings.ToUpper(method), path: path})
		}
	}
	sortRoutes(routes)
	return routes
}

func extractChiRoutes(t *testing.T, r *chi.Mux) []route {
	t.Helper()
	var routes []route
	walkFunc := func(method, routePath string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		// Chi subroutes produce trailing slashes while OpenAPI paths do not.
		normalized := strings.TrimRight(routePath, "/")
		if normalized == "" {
			normalized = "/"
		}
		routes = append(routes, route{method: method, path: normalized})
		return nil
	}
	require.NoError(t, chi.Walk(r, walkFunc))
	sortRoutes(routes)
	return routes
}
