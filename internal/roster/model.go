package roster

import (
	"fmt"
	"strings"
)

// Team is one configured roster, identified by its team role id.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Tag marks a member's function within their team.
type Tag string

const (
	TagNone   Tag = ""
	TagPlayer Tag = "player"
	TagCoach  Tag = "coach"
)

// ParseTag converts a command option value ("player", "coach" or empty) into a Tag.
func ParseTag(s string) (Tag, error) {
	switch Tag(strings.ToLower(strings.TrimSpace(s))) {
	case TagNone:
		return TagNone, nil
	case TagPlayer:
		return TagPlayer, nil
	case TagCoach:
		return TagCoach, nil
	}
	return TagNone, fmt.Errorf("unknown tag %q", s)
}

// Label returns the display form of the tag.
func (t Tag) Label() string {
	switch t {
	case TagPlayer:
		return "Player"
	case TagCoach:
		return "Coach"
	}
	return ""
}

// Role is a guild role as reported by the membership source.
type Role struct {
	ID      string
	Name    string
	IconURL string
}

// Member is a guild member with the role ids they currently hold. Member values
// are fetched per operation and never cached beyond it.
type Member struct {
	ID            string
	DisplayName   string
	RoleIDs       []string
	Administrator bool
}

// HasRole reports whether the member currently holds roleID.
func (m *Member) HasRole(roleID string) bool {
	if roleID == "" {
		return false
	}
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// Guild is the result of a single bulk read of member and role state.
type Guild struct {
	Members []Member
	Roles   map[string]Role
}

// Role looks up a role by id.
func (g *Guild) Role(id string) (Role, bool) {
	r, ok := g.Roles[id]
	return r, ok
}
