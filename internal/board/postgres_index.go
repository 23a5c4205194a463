package board

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresIndex implements Index using pgxpool.
type PostgresIndex struct {
	pool *pgxpool.Pool
}

// NewPostgresIndex creates a new Index backed by the given connection pool.
func NewPostgresIndex(pool *pgxpool.Pool) Index {
	return &PostgresIndex{pool: pool}
}

// List returns every indexed team and its message id.
func (x *PostgresIndex) List(ctx context.Context) (map[string]string, error) {
	rows, err := x.pool.Query(ctx, `SELECT team_role_id, message_id FROM board_messages`)
	if err != nil {
		return nil, fmt.Errorf("listing board messages: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var teamID, messageID string
		if err := rows.Scan(&teamID, &messageID); err != nil {
			return nil, fmt.Errorf("scanning board message row: %w", err)
		}
		out[teamID] = messageID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating board message rows: %w", err)
	}

	return out, nil
}

// Put upserts the message id for teamID.
func (x *PostgresIndex) Put(ctx context.Context, teamID, messageID string) error {
	query := `
		INSERT INTO board_messages (team_role_id, message_id, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (team_role_id) DO UPDATE
		SET message_id = EXCLUDED.message_id, updated_at = NOW()`

	if _, err := x.pool.Exec(ctx, query, teamID, messageID); err != nil {
		return fmt.Errorf("upserting board message: %w", err)
	}
	return nil
}

// Delete removes teamID from the index. Deleting a missing entry is not an error.
func (x *PostgresIndex) Delete(ctx context.Context, teamID string) error {
	if _, err := x.pool.Exec(ctx, `DELETE FROM board_messages WHERE team_role_id = $1`, teamID); err != nil {
		return fmt.Errorf("deleting board message: %w", err)
	}
	return nil
}
