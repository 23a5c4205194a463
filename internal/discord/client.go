package discord

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/rosterboard/rosterboard/internal/roster"
)

// memberPageSize is the largest page the member list endpoint returns.
const memberPageSize = 1000

const cdnBase = "https://cdn.discordapp.com"

// ConnectivityStatus represents the result of a gateway connectivity check.
type ConnectivityStatus struct {
	Connected bool
	Latency   time.Duration
}

// HealthChecker provides gateway connectivity checking.
type HealthChecker interface {
	CheckConnectivity(ctx context.Context) ConnectivityStatus
}

// Client reads and writes member roles of one guild. It implements roster.MembershipSource.
type Client struct {
	session *discordgo.Session
	guildID string
}

// NewClient creates a new Client bound to guildID.
func NewClient(session *discordgo.Session, guildID string) *Client {
	return &Client{session: session, guildID: guildID}
}

// CheckConnectivity reports whether the gateway session is ready.
func (c *Client) CheckConnectivity(_ context.Context) ConnectivityStatus {
	if c.session == nil || !c.session.DataReady {
		return ConnectivityStatus{Connected: false}
	}
	return ConnectivityStatus{
		Connected: true,
		Latency:   c.session.HeartbeatLatency(),
	}
}

// Roles returns the guild's roles keyed by id.
func (c *Client) Roles(ctx context.Context) (map[string]roster.Role, error) {
	_, roles, err := c.guildMeta(ctx)
	if err != nil {
		return nil, err
	}
	return convertRoles(roles), nil
}

// guildMeta returns the owner id and roles of the guild, from the gateway
// state cache when it has the guild and from the REST API otherwise.
func (c *Client) guildMeta(ctx context.Context) (string, []*discordgo.Role, error) {
	if c.session.State != nil {
		if g, err := c.session.State.Guild(c.guildID); err == nil {
			c.session.State.RLock()
			ownerID, roles := g.OwnerID, slices.Clone(g.Roles)
			c.session.State.RUnlock()
			if len(roles) > 0 {
				return ownerID, roles, nil
			}
		}
	}

	guild, err := c.session.Guild(c.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return "", nil, fmt.Errorf("fetching guild: %w", err)
	}
	roles, err := c.session.GuildRoles(c.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return "", nil, fmt.Errorf("fetching guild roles: %w", err)
	}
	return guild.OwnerID, roles, nil
}

// FetchGuild reads every member and role of the guild.
func (c *Client) FetchGuild(ctx context.Context) (*roster.Guild, error) {
	ownerID, roles, err := c.guildMeta(ctx)
	if err != nil {
		return nil, err
	}

	var members []*discordgo.Member
	after := ""
	for {
		page, err := c.session.GuildMembers(c.guildID, after, memberPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("listing guild members: %w", err)
		}
		members = append(members, page...)
		if len(page) < memberPageSize {
			break
		}
		after = page[len(page)-1].User.ID
	}

	out := &roster.Guild{
		Members: make([]roster.Member, 0, len(members)),
		Roles:   convertRoles(roles),
	}
	for _, m := range members {
		if m.User == nil || m.User.Bot {
			continue
		}
		out.Members = append(out.Members, convertMember(c.guildID, ownerID, m, roles))
	}
	return out, nil
}

// FetchMember reads one member's current roles.
func (c *Client) FetchMember(ctx context.Context, memberID string) (*roster.Member, error) {
	m, err := c.session.GuildMember(c.guildID, memberID, discordgo.WithContext(ctx))
	if err != nil {
		if restCode(err) == discordgo.ErrCodeUnknownMember || restCode(err) == discordgo.ErrCodeUnknownUser {
			return nil, roster.ErrMemberNotFound
		}
		return nil, fmt.Errorf("fetching member %s: %w", memberID, err)
	}

	ownerID, roles, err := c.guildMeta(ctx)
	if err != nil {
		return nil, err
	}

	member := convertMember(c.guildID, ownerID, m, roles)
	return &member, nil
}

// AddRole grants roleID to memberID.
func (c *Client) AddRole(ctx context.Context, memberID, roleID string) error {
	if err := c.session.GuildMemberRoleAdd(c.guildID, memberID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("adding role %s to %s: %w", roleID, memberID, err)
	}
	return nil
}

// RemoveRole revokes roleID from memberID.
func (c *Client) RemoveRole(ctx context.Context, memberID, roleID string) error {
	if err := c.session.GuildMemberRoleRemove(c.guildID, memberID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("removing role %s from %s: %w", roleID, memberID, err)
	}
	return nil
}

// RemoveRoles revokes every role in roleIDs from memberID with a single member edit.
// Roles the member does not hold are ignored.
func (c *Client) RemoveRoles(ctx context.Context, memberID string, roleIDs []string) error {
	m, err := c.session.GuildMember(c.guildID, memberID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("fetching member %s: %w", memberID, err)
	}

	remaining := slices.DeleteFunc(slices.Clone(m.Roles), func(id string) bool {
		return slices.Contains(roleIDs, id)
	})
	if len(remaining) == len(m.Roles) {
		return nil
	}

	_, err = c.session.GuildMemberEdit(c.guildID, memberID, &discordgo.GuildMemberParams{Roles: &remaining},
		discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("removing roles from %s: %w", memberID, err)
	}
	return nil
}

func convertRoles(roles []*discordgo.Role) map[string]roster.Role {
	out := make(map[string]roster.Role, len(roles))
	for _, r := range roles {
		out[r.ID] = roster.Role{
			ID:      r.ID,
			Name:    r.Name,
			IconURL: roleIconURL(r),
		}
	}
	return out
}

func convertMember(guildID, ownerID string, m *discordgo.Member, roles []*discordgo.Role) roster.Member {
	return roster.Member{
		ID:            m.User.ID,
		DisplayName:   displayName(m),
		RoleIDs:       slices.Clone(m.Roles),
		Administrator: m.User.ID == ownerID || hasAdministrator(guildID, m, roles),
	}
}

// displayName is the guild nickname, falling back to the global name and then the username.
func displayName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User == nil {
		return ""
	}
	if m.User.GlobalName != "" {
		return m.User.GlobalName
	}
	return m.User.Username
}

// hasAdministrator reports whether any of m's roles, or @everyone (whose id is
// the guild id), grants Administrator.
func hasAdministrator(guildID string, m *discordgo.Member, roles []*discordgo.Role) bool {
	for _, r := range roles {
		if r.Permissions&discordgo.PermissionAdministrator == 0 {
			continue
		}
		if r.ID == guildID || slices.Contains(m.Roles, r.ID) {
			return true
		}
	}
	return false
}

func roleIconURL(r *discordgo.Role) string {
	if r.Icon == "" {
		return ""
	}
	return fmt.Sprintf("%s/role-icons/%s/%s.png?size=256", cdnBase, r.ID, r.Icon)
}

func restCode(err error) int {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		return restErr.Message.Code
	}
	return 0
}
