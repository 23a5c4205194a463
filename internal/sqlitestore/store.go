package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rosterboard/rosterboard/internal/audit"
	"github.com/rosterboard/rosterboard/internal/snapshot"
)

const urlPrefix = "sqlite://"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS audit_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts INTEGER NOT NULL,
	actor_id TEXT NOT NULL,
	action TEXT NOT NULL,
	team_role_id TEXT,
	target_id TEXT,
	other_id TEXT,
	as_tag TEXT,
	outcome TEXT NOT NULL DEFAULT 'applied',
	notes TEXT
)`,
	`CREATE TABLE IF NOT EXISTS roster_snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts INTEGER NOT NULL,
	team_role_id TEXT NOT NULL,
	payload TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS board_messages (
	team_role_id TEXT PRIMARY KEY,
	message_id TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_ts ON audit_logs (ts)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_action ON audit_logs (action)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_team ON audit_logs (team_role_id)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_team_ts ON roster_snapshots (team_role_id, ts)`,
}

// Store provides SQLite-backed audit, snapshot and board index persistence.
type Store struct {
	sqlDB *sql.DB
}

// PathFromURL strips the sqlite:// scheme from a DATABASE_URL value.
func PathFromURL(databaseURL string) string {
	return strings.TrimPrefix(databaseURL, urlPrefix)
}

// Open opens the SQLite database at path, creating its directory and schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	dsn := "file:" + cleanPath +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	for i, stmt := range schema {
		if _, err := sqlDB.Exec(stmt); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// Append inserts an audit record.
func (s *Store) Append(ctx context.Context, rec *audit.Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	res, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO audit_logs (ts, actor_id, action, team_role_id, target_id, other_id, as_tag, outcome, notes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		rec.Timestamp.UnixMilli(),
		rec.ActorID,
		string(rec.Action),
		nullString(rec.TeamID),
		nullString(rec.TargetID),
		nullString(rec.OtherID),
		nullString(rec.Tag),
		string(rec.Outcome),
		nullString(rec.Notes),
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read audit record id: %w", err)
	}
	rec.ID = id
	return nil
}

// ListRecent returns newest-first audit records.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Record, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, ts, actor_id, action, team_role_id, target_id, other_id, as_tag, outcome, notes
FROM audit_logs
ORDER BY ts DESC, id DESC
LIMIT ?
`, audit.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	records := make([]audit.Record, 0)
	for rows.Next() {
		var (
			rec                                  audit.Record
			ts                                   int64
			action, outcome                      string
			teamID, targetID, otherID, tag, note sql.NullString
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.ActorID, &action, &teamID, &targetID, &otherID, &tag, &outcome, &note); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		rec.Timestamp = time.UnixMilli(ts).UTC()
		rec.Action = audit.Action(action)
		rec.Outcome = audit.Outcome(outcome)
		rec.TeamID = teamID.String
		rec.TargetID = targetID.String
		rec.OtherID = otherID.String
		rec.Tag = tag.String
		rec.Notes = note.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}

// Save inserts a roster snapshot.
func (s *Store) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(snap.Payload)
	if err != nil {
		return fmt.Errorf("encode snapshot payload: %w", err)
	}

	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO roster_snapshots (ts, team_role_id, payload) VALUES (?, ?, ?)`,
		snap.Timestamp.UnixMilli(), snap.TeamID, string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read snapshot id: %w", err)
	}
	snap.ID = id
	return nil
}

// Latest returns the newest snapshot for teamID.
func (s *Store) Latest(ctx context.Context, teamID string) (*snapshot.Snapshot, error) {
	var (
		snap    snapshot.Snapshot
		ts      int64
		payload string
	)
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT id, ts, team_role_id, payload
FROM roster_snapshots
WHERE team_role_id = ?
ORDER BY ts DESC, id DESC
LIMIT 1
`, teamID).Scan(&snap.ID, &ts, &snap.TeamID, &payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, snapshot.ErrNotFound
		}
		return nil, fmt.Errorf("query snapshot: %w", err)
	}

	snap.Timestamp = time.UnixMilli(ts).UTC()
	if err := json.Unmarshal([]byte(payload), &snap.Payload); err != nil {
		return nil, fmt.Errorf("decode snapshot payload: %w", err)
	}
	return &snap, nil
}

// List returns every indexed team and its board message id.
func (s *Store) List(ctx context.Context) (map[string]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT team_role_id, message_id FROM board_messages`)
	if err != nil {
		return nil, fmt.Errorf("list board messages: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var teamID, messageID string
		if err := rows.Scan(&teamID, &messageID); err != nil {
			return nil, fmt.Errorf("scan board message: %w", err)
		}
		out[teamID] = messageID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate board messages: %w", err)
	}
	return out, nil
}

// Put upserts the board message id for teamID.
func (s *Store) Put(ctx context.Context, teamID, messageID string) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO board_messages (team_role_id, message_id, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(team_role_id) DO UPDATE SET
	message_id = excluded.message_id,
	updated_at = excluded.updated_at
`, teamID, messageID, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert board message: %w", err)
	}
	return nil
}

// Delete removes teamID from the board index.
func (s *Store) Delete(ctx context.Context, teamID string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM board_messages WHERE team_role_id = ?`, teamID); err != nil {
		return fmt.Errorf("delete board message: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
