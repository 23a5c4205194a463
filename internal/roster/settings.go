package roster

import "strings"

// RoleIDs maps the logical roles to stable guild role ids.
type RoleIDs struct {
	Player   string
	Coach    string
	Captain  string
	Eligible string
}

// Settings is the immutable roster configuration shared by every component.
// It is built once at startup; a reload replaces the whole value.
type Settings struct {
	teams           []Team
	roles           RoleIDs
	excludeMatchers []string
}

// NewSettings copies its inputs so later mutation by the caller has no effect.
func NewSettings(teams []Team, roles RoleIDs, excludeMatchers []string) Settings {
	ts := make([]Team, len(teams))
	copy(ts, teams)

	matchers := make([]string, 0, len(excludeMatchers))
	for _, m := range excludeMatchers {
		if m = strings.TrimSpace(m); m != "" {
			matchers = append(matchers, strings.ToLower(m))
		}
	}

	return Settings{teams: ts, roles: roles, excludeMatchers: matchers}
}

// Teams returns the configured teams in configured order.
func (s Settings) Teams() []Team {
	out := make([]Team, len(s.teams))
	copy(out, s.teams)
	return out
}

// Roles returns the logical role mapping.
func (s Settings) Roles() RoleIDs {
	return s.roles
}

// Team returns the configured team with the given role id.
func (s Settings) Team(id string) (Team, bool) {
	for _, t := range s.teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}

// TeamByName finds a configured team by exact, case-insensitive name.
func (s Settings) TeamByName(name string) (Team, bool) {
	for _, t := range s.teams {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Team{}, false
}

// IsEligible reports whether m holds the gating role. With no gating role
// configured nobody is eligible.
func (s Settings) IsEligible(m *Member) bool {
	return s.roles.Eligible != "" && m.HasRole(s.roles.Eligible)
}

// IsCaptain reports whether m holds the captain role, regardless of team.
func (s Settings) IsCaptain(m *Member) bool {
	return m.HasRole(s.roles.Captain)
}

// HasTag reports whether m holds the role backing tag.
func (s Settings) HasTag(m *Member, tag Tag) bool {
	id := s.tagRoleID(tag)
	return id != "" && m.HasRole(id)
}

// IsExcluded reports whether m holds a role whose name contains one of the
// exclusion matchers, compared case-insensitively.
func (s Settings) IsExcluded(m *Member, roles map[string]Role) bool {
	for _, id := range m.RoleIDs {
		role, ok := roles[id]
		if !ok {
			continue
		}
		name := strings.ToLower(role.Name)
		for _, needle := range s.excludeMatchers {
			if strings.Contains(name, needle) {
				return true
			}
		}
	}
	return false
}

// otherTeamRoles returns the configured team roles m holds besides teamID.
func (s Settings) otherTeamRoles(m *Member, teamID string) []string {
	var ids []string
	for _, t := range s.teams {
		if t.ID != teamID && m.HasRole(t.ID) {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func (s Settings) tagRoleID(tag Tag) string {
	switch tag {
	case TagPlayer:
		return s.roles.Player
	case TagCoach:
		return s.roles.Coach
	}
	return ""
}

func (s Settings) oppositeTagRoleID(tag Tag) string {
	switch tag {
	case TagPlayer:
		return s.roles.Coach
	case TagCoach:
		return s.roles.Player
	}
	return ""
}
