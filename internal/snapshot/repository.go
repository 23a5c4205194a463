package snapshot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rosterboard/rosterboard/internal/roster"
)

// ErrNotFound is returned when a team has no snapshot.
var ErrNotFound = errors.New("snapshot not found")

// Repository provides append and read operations on the roster_snapshots table.
type Repository interface {
	Save(ctx context.Context, s *Snapshot) error
	Latest(ctx context.Context, teamID string) (*Snapshot, error)
}

// FromView converts a roster view into a snapshot payload.
func FromView(v roster.View) Payload {
	members := make([]Member, 0, len(v.Entries))
	for _, e := range v.Entries {
		members = append(members, Member{
			ID:       e.MemberID,
			Name:     e.DisplayName,
			IsCoach:  e.Coach,
			IsPlayer: e.Player,
		})
	}
	return Payload{
		TeamName: v.Team.Name,
		TeamID:   v.Team.ID,
		Members:  members,
	}
}

// Saver is the fire-and-forget boundary in front of a Repository.
type Saver struct {
	repo Repository
}

// NewSaver creates a new Saver.
func NewSaver(repo Repository) *Saver {
	return &Saver{repo: repo}
}

// Save stores the view of one team, logging and swallowing failures.
func (s *Saver) Save(ctx context.Context, v roster.View) {
	snap := &Snapshot{TeamID: v.Team.ID, Payload: FromView(v)}
	if err := s.repo.Save(ctx, snap); err != nil {
		slog.Warn("snapshot: failed to save", "team", v.Team.ID, "error", err)
	}
}
