package roster_test

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/rosterboard/rosterboard/internal/roster"
)

const (
	teamAlpha = "10000000001"
	teamBeta  = "10000000002"
	teamGamma = "10000000003"

	rolePlayer   = "20000000001"
	roleCoach    = "20000000002"
	roleCaptain  = "20000000003"
	roleEligible = "20000000004"
	roleFA       = "20000000005"
)

func testSettings() roster.Settings {
	return roster.NewSettings(
		[]roster.Team{
			{ID: teamAlpha, Name: "Alpha"},
			{ID: teamBeta, Name: "Beta"},
			{ID: teamGamma, Name: "Gamma"},
		},
		roster.RoleIDs{Player: rolePlayer, Coach: roleCoach, Captain: roleCaptain, Eligible: roleEligible},
		[]string{"FA", "Free Agent"},
	)
}

func testRoles() map[string]roster.Role {
	return map[string]roster.Role{
		teamAlpha:    {ID: teamAlpha, Name: "Alpha", IconURL: "https://cdn.example/alpha.png"},
		teamBeta:     {ID: teamBeta, Name: "Beta"},
		teamGamma:    {ID: teamGamma, Name: "Gamma"},
		rolePlayer:   {ID: rolePlayer, Name: "Player"},
		roleCoach:    {ID: roleCoach, Name: "Coach"},
		roleCaptain:  {ID: roleCaptain, Name: "Team Captain"},
		roleEligible: {ID: roleEligible, Name: "Paid Member"},
		roleFA:       {ID: roleFA, Name: "FA"},
	}
}

type write struct {
	op       string
	memberID string
	roleIDs  []string
}

// fakeSource keeps member roles in memory and records every write.
type fakeSource struct {
	mu      sync.Mutex
	members map[string]*roster.Member
	writes  []write

	failOn func(op, roleID string) error
}

func newFakeSource(members ...roster.Member) *fakeSource {
	f := &fakeSource{members: make(map[string]*roster.Member)}
	for i := range members {
		m := members[i]
		m.RoleIDs = slices.Clone(m.RoleIDs)
		f.members[m.ID] = &m
	}
	return f
}

func (f *fakeSource) FetchGuild(_ context.Context) (*roster.Guild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := &roster.Guild{Roles: testRoles()}
	for _, m := range f.members {
		c := *m
		c.RoleIDs = slices.Clone(m.RoleIDs)
		g.Members = append(g.Members, c)
	}
	return g, nil
}

func (f *fakeSource) FetchMember(_ context.Context, id string) (*roster.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[id]
	if !ok {
		return nil, roster.ErrMemberNotFound
	}
	c := *m
	c.RoleIDs = slices.Clone(m.RoleIDs)
	return &c, nil
}

func (f *fakeSource) AddRole(_ context.Context, memberID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("add", roleID); err != nil {
		return err
	}
	f.writes = append(f.writes, write{op: "add", memberID: memberID, roleIDs: []string{roleID}})
	m := f.members[memberID]
	if !slices.Contains(m.RoleIDs, roleID) {
		m.RoleIDs = append(m.RoleIDs, roleID)
	}
	return nil
}

func (f *fakeSource) RemoveRole(ctx context.Context, memberID, roleID string) error {
	return f.RemoveRoles(ctx, memberID, []string{roleID})
}

func (f *fakeSource) RemoveRoles(_ context.Context, memberID string, roleIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range roleIDs {
		if err := f.fail("remove", id); err != nil {
			return err
		}
	}
	f.writes = append(f.writes, write{op: "remove", memberID: memberID, roleIDs: slices.Clone(roleIDs)})
	m := f.members[memberID]
	m.RoleIDs = slices.DeleteFunc(m.RoleIDs, func(id string) bool { return slices.Contains(roleIDs, id) })
	return nil
}

func (f *fakeSource) fail(op, roleID string) error {
	if f.failOn == nil {
		return nil
	}
	return f.failOn(op, roleID)
}

func (f *fakeSource) roles(id string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.members[id].RoleIDs)
}

func (f *fakeSource) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

var errBoom = errors.New("boom")
