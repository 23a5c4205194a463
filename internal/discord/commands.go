package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Command, subcommand and option names.
const (
	CommandRosters = "rosters"
	CommandRoster  = "roster"

	SubShow    = "show"
	SubExport  = "export"
	SubAdd     = "add"
	SubRemove  = "remove"
	SubSetRole = "setrole"
	SubReplace = "replace"

	OptTeam     = "team"
	OptUser     = "user"
	OptTeamRole = "teamrole"
	OptAs       = "as"
	OptOut      = "out"
	OptIn       = "in"
)

var tagChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Player", Value: "player"},
	{Name: "Coach", Value: "coach"},
}

// Commands returns the guild slash commands.
func Commands() []*discordgo.ApplicationCommand {
	manageRoles := int64(discordgo.PermissionManageRoles)

	userOpt := func(name, desc string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type: discordgo.ApplicationCommandOptionUser, Name: name, Description: desc, Required: true,
		}
	}
	teamRoleOpt := &discordgo.ApplicationCommandOption{
		Type: discordgo.ApplicationCommandOptionRole, Name: OptTeamRole, Description: "Team role", Required: true,
	}
	asOpt := func(desc string, required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type: discordgo.ApplicationCommandOptionString, Name: OptAs, Description: desc,
			Required: required, Choices: tagChoices,
		}
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandRosters,
			Description: "Show/export team rosters (excludes Free Agents)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubShow,
					Description: "Show all rosters or a single team",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: OptTeam, Description: "Exact team name (optional)"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubExport,
					Description: "Export all rosters to CSV",
				},
			},
		},
		{
			Name:                     CommandRoster,
			Description:              "Manage a roster (Team Captain of that team or Admin)",
			DefaultMemberPermissions: &manageRoles,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubAdd,
					Description: "Add a user to a team and optionally mark as player/coach",
					Options: []*discordgo.ApplicationCommandOption{
						userOpt(OptUser, "Member"), teamRoleOpt, asOpt("Assign as Player or Coach (optional)", false),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubRemove,
					Description: "Remove a user from a team (and clear Player/Coach)",
					Options: []*discordgo.ApplicationCommandOption{
						userOpt(OptUser, "Member"), teamRoleOpt,
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubSetRole,
					Description: "Mark a user on a team as Player or Coach",
					Options: []*discordgo.ApplicationCommandOption{
						userOpt(OptUser, "Member"), teamRoleOpt, asOpt("Player or Coach", true),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubReplace,
					Description: "Replace an existing team member with a new member",
					Options: []*discordgo.ApplicationCommandOption{
						userOpt(OptOut, "Member to remove"), userOpt(OptIn, "Member to add"), teamRoleOpt,
						asOpt("Set new member as Player or Coach (optional)", false),
					},
				},
			},
		},
	}
}

// RegisterCommands overwrites the guild's slash commands with Commands.
func RegisterCommands(ctx context.Context, session *discordgo.Session, appID, guildID string) error {
	if _, err := session.ApplicationCommandBulkOverwrite(appID, guildID, Commands(), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("registering slash commands: %w", err)
	}
	return nil
}
