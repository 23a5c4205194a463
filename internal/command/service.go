package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rosterboard/rosterboard/internal/audit"
	"github.com/rosterboard/rosterboard/internal/board"
	"github.com/rosterboard/rosterboard/internal/roster"
)

// ExportFilename is the attachment name of a roster export.
const ExportFilename = "rosters.csv"

const (
	wrongChannelMessage = "Please use the designated roster-updates channel for roster changes."
	noTeamsMessage      = "No team roles are configured in the bot yet."
)

// Auditor records attempts. Implementations swallow their own failures.
type Auditor interface {
	Record(ctx context.Context, rec audit.Record)
}

// BoardSyncer reconciles the board channel.
type BoardSyncer interface {
	Reconcile(ctx context.Context) error
}

// Mutation is one /roster invocation.
type Mutation struct {
	Action    audit.Action
	ActorID   string
	ChannelID string
	TeamID    string
	TargetID  string // for Replace, the outgoing member
	OtherID   string // for Replace, the incoming member
	Tag       roster.Tag
}

// Export is a rendered CSV export.
type Export struct {
	Filename string
	Data     []byte
	Rows     int
}

// Config holds the collaborators of a Service.
type Config struct {
	Source              roster.MembershipSource
	Mutator             *roster.Mutator
	Builder             *roster.ViewBuilder
	Settings            roster.Settings
	Auditor             Auditor
	Board               BoardSyncer // optional
	ManagementChannelID string      // optional; empty allows every channel
}

// Service dispatches roster commands: mutations, queries and exports.
type Service struct {
	source            roster.MembershipSource
	mutator           *roster.Mutator
	builder           *roster.ViewBuilder
	settings          roster.Settings
	auditor           Auditor
	board             BoardSyncer
	managementChannel string
	now               func() time.Time
}

// NewService creates a new Service.
func NewService(cfg Config) *Service {
	return &Service{
		source:            cfg.Source,
		mutator:           cfg.Mutator,
		builder:           cfg.Builder,
		settings:          cfg.Settings,
		auditor:           cfg.Auditor,
		board:             cfg.Board,
		managementChannel: cfg.ManagementChannelID,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// Settings returns the roster settings the service was built with.
func (s *Service) Settings() roster.Settings {
	return s.settings
}

// Mutate runs one roster mutation. Every attempt is audited with its outcome and
// followed by a board reconciliation, whatever the result. The returned string
// is the reply for the invoking user and is set on both success and failure.
func (s *Service) Mutate(ctx context.Context, m Mutation) (string, error) {
	res, err := s.mutate(ctx, m)

	rec := audit.Record{
		ActorID:  m.ActorID,
		Action:   m.Action,
		TeamID:   m.TeamID,
		TargetID: m.TargetID,
		OtherID:  m.OtherID,
		Tag:      string(m.Tag),
		Outcome:  outcomeOf(err),
	}
	if err != nil {
		rec.Notes = err.Error()
	}
	s.auditor.Record(ctx, rec)

	s.SyncBoard(ctx)

	if err != nil {
		if !roster.IsRejection(err) {
			slog.Error("command: mutation failed",
				"action", string(m.Action),
				"actor", m.ActorID,
				"team", m.TeamID,
				"target", m.TargetID,
				"error", err,
			)
		}
		return roster.UserMessage(err), err
	}
	return res.Message, nil
}

func (s *Service) mutate(ctx context.Context, m Mutation) (*roster.Result, error) {
	if s.managementChannel != "" && m.ChannelID != s.managementChannel {
		return nil, &roster.Error{Kind: roster.ErrUnauthorized, Message: wrongChannelMessage}
	}

	actor, err := s.source.FetchMember(ctx, m.ActorID)
	if err != nil {
		return nil, &roster.Error{Kind: roster.ErrTransport, Message: "fetching invoking member", Err: err}
	}

	switch m.Action {
	case audit.ActionAdd:
		return s.mutator.Add(ctx, actor, m.TargetID, m.TeamID, m.Tag)
	case audit.ActionRemove:
		return s.mutator.Remove(ctx, actor, m.TargetID, m.TeamID)
	case audit.ActionSetRole:
		return s.mutator.SetRole(ctx, actor, m.TargetID, m.TeamID, m.Tag)
	case audit.ActionReplace:
		return s.mutator.Replace(ctx, actor, m.TargetID, m.OtherID, m.TeamID, m.Tag)
	}
	return nil, fmt.Errorf("unsupported roster action %q", m.Action)
}

func outcomeOf(err error) audit.Outcome {
	switch {
	case err == nil:
		return audit.OutcomeApplied
	case roster.IsRejection(err):
		return audit.OutcomeDenied
	default:
		return audit.OutcomeFailed
	}
}

// Show renders board documents for every configured team, or for the team
// named teamName (case-insensitive), then refreshes the board.
func (s *Service) Show(ctx context.Context, teamName string) ([]board.Document, error) {
	guild, err := s.source.FetchGuild(ctx)
	if err != nil {
		return nil, &roster.Error{Kind: roster.ErrTransport, Message: "fetching guild members", Err: err}
	}

	var views []roster.View
	for _, v := range s.builder.BuildAll(guild) {
		if teamName == "" || strings.EqualFold(v.Team.Name, teamName) {
			views = append(views, v)
		}
	}
	if len(views) == 0 {
		return nil, &roster.Error{Kind: roster.ErrConfiguration, Message: noTeamsMessage}
	}

	now := s.now()
	docs := make([]board.Document, 0, len(views))
	for _, v := range views {
		docs = append(docs, board.Render(v, now))
	}

	s.SyncBoard(ctx)

	return docs, nil
}

// Roster returns the live view of one configured team.
func (s *Service) Roster(ctx context.Context, teamID string) (roster.View, error) {
	team, ok := s.settings.Team(teamID)
	if !ok {
		return roster.View{}, &roster.Error{Kind: roster.ErrConfiguration, Message: "That team role is not configured in the bot."}
	}

	guild, err := s.source.FetchGuild(ctx)
	if err != nil {
		return roster.View{}, &roster.Error{Kind: roster.ErrTransport, Message: "fetching guild members", Err: err}
	}
	return s.builder.Build(guild, team), nil
}

// Export renders the CSV export of every configured team and audits it.
func (s *Service) Export(ctx context.Context, actorID string) (*Export, error) {
	guild, err := s.source.FetchGuild(ctx)
	if err != nil {
		return nil, &roster.Error{Kind: roster.ErrTransport, Message: "fetching guild members", Err: err}
	}

	var buf bytes.Buffer
	rows, err := roster.WriteCSV(&buf, s.builder.BuildAll(guild))
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Record{
		ActorID: actorID,
		Action:  audit.ActionExport,
		Outcome: audit.OutcomeApplied,
		Notes:   fmt.Sprintf("rows=%d", rows),
	})

	return &Export{Filename: ExportFilename, Data: buf.Bytes(), Rows: rows}, nil
}

// SyncBoard runs a board reconciliation, logging failures. It is a no-op when
// no board channel is configured.
func (s *Service) SyncBoard(ctx context.Context) {
	if s.board == nil {
		return
	}
	if err := s.board.Reconcile(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("command: board reconciliation failed", "error", err)
	}
}
