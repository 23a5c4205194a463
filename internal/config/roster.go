package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/rosterboard/rosterboard/internal/roster"
)

var snowflakeRegex = regexp.MustCompile(`^\d{5,}$`)

var defaultExclude = []string{"FA", "Free Agent"}

// RosterFile is the on-disk roster configuration. Ids must be quoted in YAML.
type RosterFile struct {
	Teams     []TeamEntry `json:"teams"`
	Roles     RoleEntries `json:"roles"`
	RoleNames NameEntries `json:"roleNames"`
	Exclude   []string    `json:"exclude"`
}

// TeamEntry is one team role, listed in board order.
type TeamEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoleEntries are the logical role ids. Player, coach and captain may be left
// empty and resolved by name at startup; the gating role is always by id.
type RoleEntries struct {
	Player   string `json:"player"`
	Coach    string `json:"coach"`
	Captain  string `json:"captain"`
	Eligible string `json:"eligible"`
}

// NameEntries are the fallback role names.
type NameEntries struct {
	Player  string `json:"player"`
	Coach   string `json:"coach"`
	Captain string `json:"captain"`
}

// LoadRosterFile reads and validates the roster file at path.
func LoadRosterFile(path string) (*RosterFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster file: %w", err)
	}
	return ParseRosterFile(data)
}

// ParseRosterFile decodes YAML roster configuration, applies defaults and validates it.
func ParseRosterFile(data []byte) (*RosterFile, error) {
	var rf RosterFile
	if err := yaml.UnmarshalStrict(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing roster file: %w", err)
	}

	if rf.RoleNames.Player == "" {
		rf.RoleNames.Player = "Player"
	}
	if rf.RoleNames.Coach == "" {
		rf.RoleNames.Coach = "Coach"
	}
	if rf.RoleNames.Captain == "" {
		rf.RoleNames.Captain = "Team Captain"
	}
	if rf.Exclude == nil {
		rf.Exclude = append([]string(nil), defaultExclude...)
	}

	if err := rf.validate(); err != nil {
		return nil, err
	}
	return &rf, nil
}

func (rf *RosterFile) validate() error {
	if len(rf.Teams) == 0 {
		return fmt.Errorf("roster file: at least one team is required")
	}

	seen := make(map[string]bool, len(rf.Teams))
	for i, t := range rf.Teams {
		if !snowflakeRegex.MatchString(t.ID) {
			return fmt.Errorf("roster file: teams[%d].id %q must be a numeric role id of at least 5 digits", i, t.ID)
		}
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("roster file: teams[%d].name is required", i)
		}
		if seen[t.ID] {
			return fmt.Errorf("roster file: duplicate team id %s", t.ID)
		}
		seen[t.ID] = true
	}

	if rf.Roles.Eligible == "" {
		return fmt.Errorf("roster file: roles.eligible is required")
	}

	for field, id := range map[string]string{
		"player":   rf.Roles.Player,
		"coach":    rf.Roles.Coach,
		"captain":  rf.Roles.Captain,
		"eligible": rf.Roles.Eligible,
	} {
		if id != "" && !snowflakeRegex.MatchString(id) {
			return fmt.Errorf("roster file: roles.%s %q must be a numeric role id", field, id)
		}
	}

	return nil
}

// TeamList converts the configured teams, preserving order.
func (rf *RosterFile) TeamList() []roster.Team {
	teams := make([]roster.Team, 0, len(rf.Teams))
	for _, t := range rf.Teams {
		teams = append(teams, roster.Team{ID: t.ID, Name: strings.TrimSpace(t.Name)})
	}
	return teams
}

// RoleIDs returns the configured ids, possibly with gaps to be resolved by name.
func (rf *RosterFile) RoleIDs() roster.RoleIDs {
	return roster.RoleIDs{
		Player:   rf.Roles.Player,
		Coach:    rf.Roles.Coach,
		Captain:  rf.Roles.Captain,
		Eligible: rf.Roles.Eligible,
	}
}

// Names returns the fallback role names.
func (rf *RosterFile) Names() roster.RoleNames {
	return roster.RoleNames{
		Player:  rf.RoleNames.Player,
		Coach:   rf.RoleNames.Coach,
		Captain: rf.RoleNames.Captain,
	}
}

// Settings builds the immutable roster settings once role ids are resolved.
func (rf *RosterFile) Settings(roles roster.RoleIDs) roster.Settings {
	return roster.NewSettings(rf.TeamList(), roles, rf.Exclude)
}
