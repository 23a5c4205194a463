package discord

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/rosterboard/rosterboard/internal/audit"
	"github.com/rosterboard/rosterboard/internal/command"
	"github.com/rosterboard/rosterboard/internal/roster"
)

const interactionTimeout = 2 * time.Minute

// Handler answers slash-command interactions through a command.Service.
type Handler struct {
	svc *command.Service
	ctx context.Context
}

// NewHandler creates a new Handler. ctx bounds every interaction it handles.
func NewHandler(ctx context.Context, svc *command.Service) *Handler {
	return &Handler{svc: svc, ctx: ctx}
}

// OnInteraction is registered with session.AddHandler.
func (h *Handler) OnInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	ctx, cancel := context.WithTimeout(h.ctx, interactionTimeout)
	defer cancel()

	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]

	switch data.Name {
	case CommandRosters:
		switch sub.Name {
		case SubShow:
			h.show(ctx, s, i, sub)
		case SubExport:
			h.export(ctx, s, i)
		}
	case CommandRoster:
		h.mutate(ctx, s, i, sub)
	}
}

func (h *Handler) show(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate,
	sub *discordgo.ApplicationCommandInteractionDataOption) {
	if !acknowledge(s, i, false) {
		return
	}

	docs, err := h.svc.Show(ctx, optionString(sub, OptTeam))
	if err != nil {
		logFailure("show", err)
		editContent(s, i, roster.UserMessage(err))
		return
	}

	embeds := []*discordgo.MessageEmbed{toEmbed(docs[0])}
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Embeds: &embeds}); err != nil {
		slog.Error("discord: failed to edit interaction response", "command", "show", "error", err)
		return
	}
	for _, doc := range docs[1:] {
		_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Embeds: []*discordgo.MessageEmbed{toEmbed(doc)},
		})
		if err != nil {
			slog.Error("discord: failed to send follow-up", "command", "show", "error", err)
			return
		}
	}
}

func (h *Handler) export(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !acknowledge(s, i, false) {
		return
	}

	exp, err := h.svc.Export(ctx, invokerID(i))
	if err != nil {
		logFailure("export", err)
		editContent(s, i, roster.UserMessage(err))
		return
	}

	content := "Exported current rosters:"
	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
		Files: []*discordgo.File{{
			Name:        exp.Filename,
			ContentType: "text/csv",
			Reader:      bytes.NewReader(exp.Data),
		}},
	})
	if err != nil {
		slog.Error("discord: failed to edit interaction response", "command", "export", "error", err)
	}
}

func (h *Handler) mutate(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate,
	sub *discordgo.ApplicationCommandInteractionDataOption) {
	if !acknowledge(s, i, true) {
		return
	}

	m, err := parseMutation(sub)
	if err != nil {
		editContent(s, i, roster.UserMessage(err))
		return
	}
	m.ActorID = invokerID(i)
	m.ChannelID = i.ChannelID

	msg, _ := h.svc.Mutate(ctx, m)
	editContent(s, i, msg)
}

// parseMutation maps a /roster subcommand onto a command.Mutation.
func parseMutation(sub *discordgo.ApplicationCommandInteractionDataOption) (command.Mutation, error) {
	tag, err := roster.ParseTag(optionString(sub, OptAs))
	if err != nil {
		return command.Mutation{}, &roster.Error{Kind: roster.ErrState, Message: "Choose Player or Coach."}
	}

	m := command.Mutation{
		TeamID: optionString(sub, OptTeamRole),
		Tag:    tag,
	}
	switch sub.Name {
	case SubAdd:
		m.Action = audit.ActionAdd
		m.TargetID = optionString(sub, OptUser)
	case SubRemove:
		m.Action = audit.ActionRemove
		m.TargetID = optionString(sub, OptUser)
		m.Tag = roster.TagNone
	case SubSetRole:
		m.Action = audit.ActionSetRole
		m.TargetID = optionString(sub, OptUser)
	case SubReplace:
		m.Action = audit.ActionReplace
		m.TargetID = optionString(sub, OptOut)
		m.OtherID = optionString(sub, OptIn)
	default:
		return command.Mutation{}, &roster.Error{Kind: roster.ErrConfiguration, Message: "Unknown roster command."}
	}
	return m, nil
}

// optionString returns the raw value of a string, user or role option; the
// latter two carry snowflake ids.
func optionString(sub *discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, o := range sub.Options {
		if o.Name != name {
			continue
		}
		if v, ok := o.Value.(string); ok {
			return v
		}
	}
	return ""
}

func invokerID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// acknowledge defers the reply so it can take longer than the platform's three-second window.
func acknowledge(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) bool {
	resp := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}
	if ephemeral {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	if err := s.InteractionRespond(i.Interaction, resp); err != nil {
		slog.Error("discord: failed to acknowledge interaction", "error", err)
		return false
	}
	return true
}

func editContent(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		slog.Error("discord: failed to edit interaction response", "error", err)
	}
}

func logFailure(cmd string, err error) {
	if roster.IsRejection(err) {
		return
	}
	slog.Error("discord: command failed", "command", cmd, "error", err)
}
