package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Append inserts a new audit record. A zero Timestamp is set to now.
func (r *PostgresRepository) Append(ctx context.Context, rec *Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_logs (ts, actor_id, action, team_role_id, target_id, other_id, as_tag, outcome, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		rec.Timestamp.UnixMilli(),
		rec.ActorID,
		string(rec.Action),
		nullable(rec.TeamID),
		nullable(rec.TargetID),
		nullable(rec.OtherID),
		nullable(rec.Tag),
		string(rec.Outcome),
		nullable(rec.Notes),
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("inserting audit record: %w", err)
	}

	return nil
}

// ListRecent returns the newest records first.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	query := `
		SELECT id, ts, actor_id, action, team_role_id, target_id, other_id, as_tag, outcome, notes
		FROM audit_logs
		ORDER BY ts DESC, id DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("listing audit records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec                                  Record
			ts                                   int64
			action, outcome                      string
			teamID, targetID, otherID, tag, note *string
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.ActorID, &action, &teamID, &targetID, &otherID, &tag, &outcome, &note); err != nil {
			return nil, fmt.Errorf("scanning audit row: %w", err)
		}
		rec.Timestamp = time.UnixMilli(ts).UTC()
		rec.Action = Action(action)
		rec.Outcome = Outcome(outcome)
		rec.TeamID = deref(teamID)
		rec.TargetID = deref(targetID)
		rec.OtherID = deref(otherID)
		rec.Tag = deref(tag)
		rec.Notes = deref(note)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit rows: %w", err)
	}

	if records == nil {
		records = []Record{}
	}

	return records, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
