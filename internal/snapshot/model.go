package snapshot

import "time"

// Member is one roster line inside a snapshot payload.
type Member struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsCoach  bool   `json:"isCoach"`
	IsPlayer bool   `json:"isPlayer"`
}

// Payload is the rendered membership of a team, stored as JSON.
type Payload struct {
	TeamName string   `json:"teamName"`
	TeamID   string   `json:"teamRoleId"`
	Members  []Member `json:"members"`
}

// Snapshot represents a row in the roster_snapshots table. The latest row per
// team by timestamp is the current view.
type Snapshot struct {
	ID        int64
	Timestamp time.Time
	TeamID    string
	Payload   Payload
}
