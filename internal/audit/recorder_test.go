package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterboard/rosterboard/internal/audit"
)

type mockRepo struct {
	appendFn func(ctx context.Context, rec *audit.Record) error
	appended []audit.Record
}

func (m *mockRepo) Append(ctx context.Context, rec *audit.Record) error {
	m.appended = append(m.appended, *rec)
	if m.appendFn != nil {
		return m.appendFn(ctx, rec)
	}
	return nil
}

func (m *mockRepo) ListRecent(_ context.Context, _ int) ([]audit.Record, error) {
	return m.appended, nil
}

func TestRecorder_Appends(t *testing.T) {
	repo := &mockRepo{}
	rec := audit.NewRecorder(repo)

	rec.Record(context.Background(), audit.Record{ActorID: "a", Action: audit.ActionAdd, Outcome: audit.OutcomeApplied})

	require.Len(t, repo.appended, 1)
	assert.Equal(t, audit.ActionAdd, repo.appended[0].Action)
}

func TestRecorder_SwallowsFailures(t *testing.T) {
	repo := &mockRepo{appendFn: func(context.Context, *audit.Record) error {
		return errors.New("disk full")
	}}
	rec := audit.NewRecorder(repo)

	assert.NotPanics(t, func() {
		rec.Record(context.Background(), audit.Record{ActorID: "a", Action: audit.ActionRemove})
	})
	assert.Len(t, repo.appended, 1)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, audit.DefaultListLimit, audit.ClampLimit(0))
	assert.Equal(t, audit.DefaultListLimit, audit.ClampLimit(-4))
	assert.Equal(t, 7, audit.ClampLimit(7))
	assert.Equal(t, audit.MaxListLimit, audit.ClampLimit(5000))
}
