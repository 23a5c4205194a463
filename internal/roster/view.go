package roster

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Entry is one rendered roster line.
type Entry struct {
	MemberID    string `json:"id"`
	DisplayName string `json:"name"`
	Coach       bool   `json:"isCoach"`
	Player      bool   `json:"isPlayer"`
}

// Tags renders the entry's tags. A member holding both tag roles shows both;
// the view renders drifted state rather than hiding it.
func (e Entry) Tags() string {
	var tags []string
	if e.Coach {
		tags = append(tags, TagCoach.Label())
	}
	if e.Player {
		tags = append(tags, TagPlayer.Label())
	}
	return strings.Join(tags, " / ")
}

// View is the desired roster display for one team.
type View struct {
	Team    Team
	Title   string
	IconURL string
	Entries []Entry
}

// ViewBuilder computes roster views from a fresh guild read.
type ViewBuilder struct {
	settings Settings
	tag      language.Tag
}

// NewViewBuilder creates a ViewBuilder ordering names with the collation rules of lang.
func NewViewBuilder(settings Settings, lang language.Tag) *ViewBuilder {
	return &ViewBuilder{settings: settings, tag: lang}
}

// Build returns the roster view of team: members holding the team role, minus
// excluded members, ordered by display name.
func (b *ViewBuilder) Build(guild *Guild, team Team) View {
	view := View{
		Team:  team,
		Title: "Roster — " + team.Name,
	}
	if role, ok := guild.Role(team.ID); ok {
		view.IconURL = role.IconURL
	}

	for i := range guild.Members {
		m := &guild.Members[i]
		if !m.HasRole(team.ID) || b.settings.IsExcluded(m, guild.Roles) {
			continue
		}
		view.Entries = append(view.Entries, Entry{
			MemberID:    m.ID,
			DisplayName: m.DisplayName,
			Coach:       b.settings.HasTag(m, TagCoach),
			Player:      b.settings.HasTag(m, TagPlayer),
		})
	}

	// Collators keep internal buffers, so each call gets its own.
	col := collate.New(b.tag)
	sort.SliceStable(view.Entries, func(i, j int) bool {
		a, c := view.Entries[i], view.Entries[j]
		if cmp := col.CompareString(a.DisplayName, c.DisplayName); cmp != 0 {
			return cmp < 0
		}
		return a.MemberID < c.MemberID
	})

	return view
}

// BuildAll builds views for every configured team in configured order, skipping
// teams whose role no longer exists in the guild.
func (b *ViewBuilder) BuildAll(guild *Guild) []View {
	var views []View
	for _, t := range b.settings.teams {
		if _, ok := guild.Role(t.ID); !ok {
			continue
		}
		views = append(views, b.Build(guild, t))
	}
	return views
}
