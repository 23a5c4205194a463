package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rosterboard/rosterboard/internal/roster"
)

// SnapshotSaver persists the computed view of a team. Implementations swallow their own failures.
type SnapshotSaver interface {
	Save(ctx context.Context, v roster.View)
}

// Config holds the collaborators of a Reconciler.
type Config struct {
	Source    roster.MembershipSource
	Channel   Channel
	Index     Index // optional; nil falls back to marker scanning only
	Snapshots SnapshotSaver
	Builder   *roster.ViewBuilder
	Settings  roster.Settings
	Interval  time.Duration
}

// Reconciler keeps one board message per configured team in sync with membership.
type Reconciler struct {
	source    roster.MembershipSource
	channel   Channel
	index     Index
	snapshots SnapshotSaver
	builder   *roster.ViewBuilder
	settings  roster.Settings
	interval  time.Duration
	now       func() time.Time

	// mu serializes passes; concurrent callers wait for the running one.
	mu sync.Mutex
}

// New creates a new Reconciler.
func New(cfg Config) *Reconciler {
	return &Reconciler{
		source:    cfg.Source,
		channel:   cfg.Channel,
		index:     cfg.Index,
		snapshots: cfg.Snapshots,
		builder:   cfg.Builder,
		settings:  cfg.Settings,
		interval:  cfg.Interval,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start runs a reconciliation pass every interval. It blocks until ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	slog.Info("board reconciler started", "interval", r.interval.String())
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("board reconciler stopped")
			return
		case <-ticker.C:
			if err := r.Reconcile(ctx); err != nil {
				slog.Error("board: reconciliation pass failed", "error", err)
			}
		}
	}
}

// Reconcile upserts one message per configured team, in configured order, and
// saves a snapshot of each team's view. A failure for one team does not stop
// the others; the joined per-team errors are returned.
func (r *Reconciler) Reconcile(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	guild, err := r.source.FetchGuild(ctx)
	if err != nil {
		return fmt.Errorf("fetching guild members: %w", err)
	}

	recent, err := r.channel.ListRecentMessages(ctx, RecentLimit)
	if err != nil {
		return fmt.Errorf("listing board messages: %w", err)
	}

	listed := make(map[string]Message, len(recent))
	byMarker := make(map[string]Message)
	for _, msg := range recent {
		listed[msg.ID] = msg
		teamID, ok := ParseMarker(msg.Document.Footer)
		if !ok {
			continue
		}
		if _, seen := byMarker[teamID]; !seen {
			byMarker[teamID] = msg
		}
	}

	indexed := r.loadIndex(ctx)

	var errs []error
	for _, team := range r.settings.Teams() {
		if ctx.Err() != nil {
			return errors.Join(append(errs, ctx.Err())...)
		}
		if _, ok := guild.Role(team.ID); !ok {
			slog.Warn("board: team role missing from guild, skipping", "team", team.ID, "name", team.Name)
			continue
		}

		view := r.builder.Build(guild, team)
		if err := r.upsert(ctx, team, Render(view, r.now()), listed, byMarker, indexed); err != nil {
			slog.Error("board: failed to upsert team message", "team", team.ID, "error", err)
			errs = append(errs, fmt.Errorf("team %s: %w", team.ID, err))
		}
		r.snapshots.Save(ctx, view)
	}

	r.prune(ctx, indexed)

	return errors.Join(errs...)
}

func (r *Reconciler) loadIndex(ctx context.Context) map[string]string {
	if r.index == nil {
		return map[string]string{}
	}
	indexed, err := r.index.List(ctx)
	if err != nil {
		slog.Warn("board: failed to load message index, using markers only", "error", err)
		return map[string]string{}
	}
	return indexed
}

// upsert edits the team's existing message, trying the indexed id before the
// marker match, and sends a new one when neither exists anymore.
func (r *Reconciler) upsert(ctx context.Context, team roster.Team, doc Document,
	listed, byMarker map[string]Message, indexed map[string]string) error {
	var candidates []string
	if id, ok := indexed[team.ID]; ok {
		candidates = append(candidates, id)
	}
	if msg, ok := byMarker[team.ID]; ok && (len(candidates) == 0 || candidates[0] != msg.ID) {
		candidates = append(candidates, msg.ID)
	}

	for _, id := range candidates {
		if msg, ok := listed[id]; ok && SameContent(msg.Document, doc) {
			r.remember(ctx, team.ID, id, indexed)
			return nil
		}

		err := r.channel.EditMessage(ctx, id, doc)
		if err == nil {
			r.remember(ctx, team.ID, id, indexed)
			return nil
		}
		if !errors.Is(err, ErrMessageNotFound) {
			return fmt.Errorf("editing message %s: %w", id, err)
		}
		slog.Info("board: message vanished, trying next", "team", team.ID, "message", id)
	}

	id, err := r.channel.SendMessage(ctx, doc)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	r.remember(ctx, team.ID, id, indexed)
	return nil
}

func (r *Reconciler) remember(ctx context.Context, teamID, messageID string, indexed map[string]string) {
	if r.index == nil || indexed[teamID] == messageID {
		return
	}
	if err := r.index.Put(ctx, teamID, messageID); err != nil {
		slog.Warn("board: failed to index message", "team", teamID, "message", messageID, "error", err)
		return
	}
	indexed[teamID] = messageID
}

// prune deletes indexed messages of teams that are no longer configured.
// Unindexed orphans are left alone.
func (r *Reconciler) prune(ctx context.Context, indexed map[string]string) {
	if r.index == nil {
		return
	}
	for teamID, messageID := range indexed {
		if _, ok := r.settings.Team(teamID); ok {
			continue
		}
		if err := r.channel.DeleteMessage(ctx, messageID); err != nil && !errors.Is(err, ErrMessageNotFound) {
			slog.Warn("board: failed to delete decommissioned team message", "team", teamID, "error", err)
			continue
		}
		if err := r.index.Delete(ctx, teamID); err != nil {
			slog.Warn("board: failed to drop index entry", "team", teamID, "error", err)
			continue
		}
		slog.Info("board: removed message of decommissioned team", "team", teamID, "message", messageID)
	}
}
