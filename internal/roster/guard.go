package roster

// Guard decides whether an actor may mutate a team's roster.
type Guard struct {
	settings Settings
}

// NewGuard creates a new Guard.
func NewGuard(settings Settings) *Guard {
	return &Guard{settings: settings}
}

// CanManage is true for administrators, and for captains who are currently on
// teamID. A captain removed from the team loses authority over it even though
// the captain role itself stays.
func (g *Guard) CanManage(actor *Member, teamID string) bool {
	if actor == nil {
		return false
	}
	if actor.Administrator {
		return true
	}
	return g.settings.IsCaptain(actor) && actor.HasRole(teamID)
}
