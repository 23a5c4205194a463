package audit

import "time"

// Action identifies the audited command.
type Action string

const (
	ActionAdd     Action = "add"
	ActionRemove  Action = "remove"
	ActionSetRole Action = "setrole"
	ActionReplace Action = "replace"
	ActionExport  Action = "export"
)

// Outcome records how the attempt ended.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeDenied  Outcome = "denied"
	OutcomeFailed  Outcome = "failed"
)

// Record represents a row in the audit_logs table. Empty optional fields are stored as NULL.
type Record struct {
	ID        int64
	Timestamp time.Time
	ActorID   string
	Action    Action
	TeamID    string
	TargetID  string
	OtherID   string
	Tag       string
	Outcome   Outcome
	Notes     string
}
