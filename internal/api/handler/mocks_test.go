package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/rosterboard/rosterboard/internal/audit"
	"github.com/rosterboard/rosterboard/internal/command"
	"github.com/rosterboard/rosterboard/internal/discord"
	"github.com/rosterboard/rosterboard/internal/roster"
	"github.com/rosterboard/rosterboard/internal/snapshot"
)

type mockHealthChecker struct {
	status discord.ConnectivityStatus
}

func (m *mockHealthChecker) CheckConnectivity(_ context.Context) discord.ConnectivityStatus {
	return m.status
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockRosterService struct {
	settings roster.Settings
	rosterFn func(ctx context.Context, teamID string) (roster.View, error)
	exportFn func(ctx context.Context, actorID string) (*command.Export, error)
}

func (m *mockRosterService) Settings() roster.Settings { return m.settings }

func (m *mockRosterService) Roster(ctx context.Context, teamID string) (roster.View, error) {
	return m.rosterFn(ctx, teamID)
}

func (m *mockRosterService) Export(ctx context.Context, actorID string) (*command.Export, error) {
	return m.exportFn(ctx, actorID)
}

type mockSnapshotRepo struct {
	latestFn func(ctx context.Context, teamID string) (*snapshot.Snapshot, error)
}

func (m *mockSnapshotRepo) Save(_ context.Context, _ *snapshot.Snapshot) error { return nil }

func (m *mockSnapshotRepo) Latest(ctx context.Context, teamID string) (*snapshot.Snapshot, error) {
	return m.latestFn(ctx, teamID)
}

type mockAuditRepo struct {
	listFn func(ctx context.Context, limit int) ([]audit.Record, error)
}

func (m *mockAuditRepo) Append(_ context.Context, _ *audit.Record) error { return nil }

func (m *mockAuditRepo) ListRecent(ctx context.Context, limit int) ([]audit.Record, error) {
	return m.listFn(ctx, limit)
}

type mockBoard struct {
	err   error
	calls int
}

func (m *mockBoard) Reconcile(_ context.Context) error {
	m.calls++
	return m.err
}

func testSettings() roster.Settings {
	return roster.NewSettings(
		[]roster.Team{{ID: "11111", Name: "Alpha"}, {ID: "22222", Name: "Bravo"}},
		roster.RoleIDs{Player: "90001", Coach: "90002", Captain: "90003", Eligible: "90004"},
		nil,
	)
}

// withTeamID attaches the {id} route parameter to the request.
func withTeamID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decodeEnvelope(t, w)
	apiErr, ok := env["error"].(map[string]interface{})
	require.True(t, ok, "expected an error envelope")
	return apiErr["code"].(string)
}
