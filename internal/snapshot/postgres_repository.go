package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
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

// Save inserts a new snapshot row. A zero Timestamp is set to now.
func (r *PostgresRepository) Save(ctx context.Context, s *Snapshot) error {
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(s.Payload)
	if err != nil {
		return fmt.Errorf("encoding snapshot payload: %w", err)
	}

	query := `
		INSERT INTO roster_snapshots (ts, team_role_id, payload)
		VALUES ($1, $2, $3)
		RETURNING id`

	if err := r.pool.QueryRow(ctx, query, s.Timestamp.UnixMilli(), s.TeamID, string(payload)).Scan(&s.ID); err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}

	return nil
}

// Latest returns the newest snapshot for teamID.
func (r *PostgresRepository) Latest(ctx context.Context, teamID string) (*Snapshot, error) {
	query := `
		SELECT id, ts, team_role_id, payload
		FROM roster_snapshots
		WHERE team_role_id = $1
		ORDER BY ts DESC, id DESC
		LIMIT 1`

	var (
		s       Snapshot
		ts      int64
		payload string
	)
	err := r.pool.QueryRow(ctx, query, teamID).Scan(&s.ID, &ts, &s.TeamID, &payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}

	s.Timestamp = time.UnixMilli(ts).UTC()
	if err := json.Unmarshal([]byte(payload), &s.Payload); err != nil {
		return nil, fmt.Errorf("decoding snapshot payload: %w", err)
	}

	return &s, nil
}
