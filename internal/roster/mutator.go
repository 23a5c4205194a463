package roster

import (
	"context"
	"errors"
	"fmt"
)

// Result describes a completed mutation.
type Result struct {
	Team    Team
	Message string
}

// Mutator applies roster operations as ordered sequences of role writes.
// All business-rule checks run before the first write; writes are issued one
// at a time in a fixed order and are never rolled back.
type Mutator struct {
	source   MembershipSource
	guard    *Guard
	settings Settings
}

// NewMutator creates a new Mutator.
func NewMutator(source MembershipSource, guard *Guard, settings Settings) *Mutator {
	return &Mutator{
		source:   source,
		guard:    guard,
		settings: settings,
	}
}

// Add puts targetID on teamID, dropping any other configured team, and
// optionally tags them.
func (m *Mutator) Add(ctx context.Context, actor *Member, targetID, teamID string, tag Tag) (*Result, error) {
	team, err := m.authorize(actor, teamID)
	if err != nil {
		return nil, err
	}
	if err := m.checkTagConfigured(tag); err != nil {
		return nil, err
	}

	target, err := m.fetch(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !m.settings.IsEligible(target) {
		return nil, newError(ErrIneligible,
			fmt.Sprintf("%s is not an eligible member and cannot be added to a roster.", target.DisplayName))
	}

	if err := m.applyAdd(ctx, target, team, tag); err != nil {
		return nil, err
	}

	return &Result{
		Team:    team,
		Message: fmt.Sprintf("Added **%s** to **%s**%s.", target.DisplayName, team.Name, asSuffix(tag)),
	}, nil
}

// Remove takes targetID off teamID and clears both tags. Removing a member
// who is not on the team is a no-op write and succeeds.
func (m *Mutator) Remove(ctx context.Context, actor *Member, targetID, teamID string) (*Result, error) {
	team, err := m.authorize(actor, teamID)
	if err != nil {
		return nil, err
	}

	target, err := m.fetch(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if err := m.applyRemove(ctx, target, team); err != nil {
		return nil, err
	}

	return &Result{
		Team:    team,
		Message: fmt.Sprintf("Removed **%s** from **%s**.", target.DisplayName, team.Name),
	}, nil
}

// SetRole re-tags a member who is already on teamID. It never adds team membership.
func (m *Mutator) SetRole(ctx context.Context, actor *Member, targetID, teamID string, tag Tag) (*Result, error) {
	team, err := m.authorize(actor, teamID)
	if err != nil {
		return nil, err
	}
	if tag == TagNone {
		return nil, newError(ErrState, "Choose Player or Coach.")
	}
	if err := m.checkTagConfigured(tag); err != nil {
		return nil, err
	}

	target, err := m.fetch(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !m.settings.IsEligible(target) {
		return nil, newError(ErrIneligible, "Only eligible members can be marked as Player or Coach.")
	}
	if !target.HasRole(team.ID) {
		return nil, newError(ErrState,
			fmt.Sprintf("%s is not on **%s**. Use /roster add first.", target.DisplayName, team.Name))
	}

	if err := m.applyTag(ctx, target, tag); err != nil {
		return nil, err
	}

	return &Result{
		Team:    team,
		Message: fmt.Sprintf("Set **%s** as **%s** for **%s**.", target.DisplayName, tag.Label(), team.Name),
	}, nil
}

// Replace is Remove(outID) followed by Add(inID). Both halves are checked up
// front; if the add half fails the removal stays applied.
func (m *Mutator) Replace(ctx context.Context, actor *Member, outID, inID, teamID string, tag Tag) (*Result, error) {
	team, err := m.authorize(actor, teamID)
	if err != nil {
		return nil, err
	}
	if err := m.checkTagConfigured(tag); err != nil {
		return nil, err
	}
	if outID == inID {
		return nil, newError(ErrState, "The outgoing and incoming members must be different people.")
	}

	out, err := m.fetch(ctx, outID)
	if err != nil {
		return nil, err
	}
	in, err := m.fetch(ctx, inID)
	if err != nil {
		return nil, err
	}

	if !out.HasRole(team.ID) {
		return nil, newError(ErrState, fmt.Sprintf("%s is not on **%s**.", out.DisplayName, team.Name))
	}
	if !m.settings.IsEligible(in) {
		return nil, newError(ErrIneligible, "Incoming member is not an eligible member and cannot be added.")
	}

	if err := m.applyRemove(ctx, out, team); err != nil {
		return nil, err
	}
	if err := m.applyAdd(ctx, in, team, tag); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Replaced **%s** with **%s** on **%s**", out.DisplayName, in.DisplayName, team.Name)
	if tag != TagNone {
		msg += fmt.Sprintf(" (new member set as **%s**)", tag.Label())
	}
	return &Result{Team: team, Message: msg + "."}, nil
}

func (m *Mutator) authorize(actor *Member, teamID string) (Team, error) {
	team, ok := m.settings.Team(teamID)
	if !ok {
		return Team{}, newError(ErrConfiguration, "That team role is not configured in the bot.")
	}
	if !m.guard.CanManage(actor, team.ID) {
		return Team{}, newError(ErrUnauthorized, "Only Team Captains of this team (or Admins) can modify this roster.")
	}
	return team, nil
}

func (m *Mutator) checkTagConfigured(tag Tag) error {
	if tag != TagNone && (m.settings.roles.Player == "" || m.settings.roles.Coach == "") {
		return newError(ErrConfiguration, "Player/Coach roles are not configured on the server.")
	}
	return nil
}

func (m *Mutator) fetch(ctx context.Context, memberID string) (*Member, error) {
	member, err := m.source.FetchMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, newError(ErrState, "That user is not a member of this server.")
		}
		return nil, transportError("fetching member "+memberID, err)
	}
	return member, nil
}

func (m *Mutator) applyAdd(ctx context.Context, target *Member, team Team, tag Tag) error {
	if others := m.settings.otherTeamRoles(target, team.ID); len(others) > 0 {
		if err := m.source.RemoveRoles(ctx, target.ID, others); err != nil {
			return transportError("removing other team roles", err)
		}
	}
	if err := m.source.AddRole(ctx, target.ID, team.ID); err != nil {
		return transportError("adding team role", err)
	}
	if tag == TagNone {
		return nil
	}
	return m.applyTag(ctx, target, tag)
}

func (m *Mutator) applyTag(ctx context.Context, target *Member, tag Tag) error {
	if err := m.source.AddRole(ctx, target.ID, m.settings.tagRoleID(tag)); err != nil {
		return transportError("adding tag role", err)
	}
	opposite := m.settings.oppositeTagRoleID(tag)
	if target.HasRole(opposite) {
		if err := m.source.RemoveRole(ctx, target.ID, opposite); err != nil {
			return transportError("removing opposite tag role", err)
		}
	}
	return nil
}

func (m *Mutator) applyRemove(ctx context.Context, target *Member, team Team) error {
	ids := []string{team.ID}
	for _, id := range []string{m.settings.roles.Player, m.settings.roles.Coach} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	if err := m.source.RemoveRoles(ctx, target.ID, ids); err != nil {
		return transportError("removing team and tag roles", err)
	}
	return nil
}

func asSuffix(tag Tag) string {
	if tag == TagNone {
		return ""
	}
	return fmt.Sprintf(" as **%s**", tag.Label())
}
