package board

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rosterboard/rosterboard/internal/roster"
)

const (
	// DefaultColor is the accent color of roster documents.
	DefaultColor = 0x007bff

	maxDescription = 4096
	emptyRoster    = "*No players listed*"
	markerPrefix   = "teamRoleId:"
)

var markerRegex = regexp.MustCompile(`teamRoleId:(\d{5,})`)

// Document is the platform-neutral content of one board message.
type Document struct {
	Title       string
	Description string
	Footer      string
	IconURL     string
	Color       int
	Timestamp   time.Time
}

// Marker returns the footer token correlating a message with teamID.
func Marker(teamID string) string {
	return markerPrefix + teamID
}

// ParseMarker extracts the team id from a footer, if present.
func ParseMarker(footer string) (string, bool) {
	m := markerRegex.FindStringSubmatch(footer)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Render converts a roster view into a board document.
func Render(v roster.View, now time.Time) Document {
	doc := Document{
		Title:     v.Title,
		Footer:    Marker(v.Team.ID),
		IconURL:   v.IconURL,
		Color:     DefaultColor,
		Timestamp: now,
	}

	if len(v.Entries) == 0 {
		doc.Description = emptyRoster
		return doc
	}

	lines := make([]string, 0, len(v.Entries))
	for _, e := range v.Entries {
		line := "• " + e.DisplayName
		if tags := e.Tags(); tags != "" {
			line += " — " + tags
		}
		lines = append(lines, line)
	}
	doc.Description = truncate(strings.Join(lines, "\n"), maxDescription)
	return doc
}

// SameContent reports whether a and b render identically, ignoring the timestamp.
func SameContent(a, b Document) bool {
	a.Timestamp, b.Timestamp = time.Time{}, time.Time{}
	return a == b
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
