package audit

import "context"

// DefaultListLimit is used when a caller asks for a non-positive number of records.
const DefaultListLimit = 25

// MaxListLimit caps ListRecent.
const MaxListLimit = 100

// Repository provides append and read operations on the audit_logs table.
// Records are never updated or deleted.
type Repository interface {
	Append(ctx context.Context, rec *Record) error
	ListRecent(ctx context.Context, limit int) ([]Record, error)
}

// ClampLimit normalizes a requested list size.
func ClampLimit(limit int) int {
	if limit < 1 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
