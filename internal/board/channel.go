package board

import (
	"context"
	"errors"
)

// ErrMessageNotFound is returned by a Channel when the message no longer exists.
var ErrMessageNotFound = errors.New("board message not found")

// RecentLimit is how many recent messages are scanned for markers.
const RecentLimit = 100

// Message is a message listed from the board channel.
type Message struct {
	ID       string
	Document Document
}

// Channel is the board channel the reconciler writes to.
type Channel interface {
	ListRecentMessages(ctx context.Context, limit int) ([]Message, error)
	EditMessage(ctx context.Context, messageID string, doc Document) error
	SendMessage(ctx context.Context, doc Document) (string, error)
	DeleteMessage(ctx context.Context, messageID string) error
}

// Index is the persisted team id to message id mapping.
type Index interface {
	List(ctx context.Context) (map[string]string, error)
	Put(ctx context.Context, teamID, messageID string) error
	Delete(ctx context.Context, teamID string) error
}
