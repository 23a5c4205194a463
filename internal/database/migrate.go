package database

import (
	"context"
	"fmt"
)

// schema is applied statement by statement; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id           BIGSERIAL PRIMARY KEY,
		ts           BIGINT NOT NULL,
		actor_id     TEXT NOT NULL,
		action       TEXT NOT NULL,
		team_role_id TEXT,
		target_id    TEXT,
		other_id     TEXT,
		as_tag       TEXT,
		outcome      TEXT NOT NULL DEFAULT 'applied',
		notes        TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS roster_snapshots (
		id           BIGSERIAL PRIMARY KEY,
		ts           BIGINT NOT NULL,
		team_role_id TEXT NOT NULL,
		payload      TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS board_messages (
		team_role_id TEXT PRIMARY KEY,
		message_id   TEXT NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_ts ON audit_logs (ts DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_action ON audit_logs (action)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_team ON audit_logs (team_role_id)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_team_ts ON roster_snapshots (team_role_id, ts DESC)`,
}

// Migrate creates the audit, snapshot and board index tables if they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema statement %d: %w", i, err)
		}
	}
	return nil
}
