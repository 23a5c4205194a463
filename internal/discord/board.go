package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/rosterboard/rosterboard/internal/board"
)

// BoardChannel is the text channel holding one roster embed per team. It implements board.Channel.
type BoardChannel struct {
	session   *discordgo.Session
	channelID string
}

// NewBoardChannel creates a new BoardChannel.
func NewBoardChannel(session *discordgo.Session, channelID string) *BoardChannel {
	return &BoardChannel{session: session, channelID: channelID}
}

// ListRecentMessages returns up to limit of the newest messages posted by the
// bot, newest first. Messages by other authors cannot be edited and are skipped.
func (b *BoardChannel) ListRecentMessages(ctx context.Context, limit int) ([]board.Message, error) {
	msgs, err := b.session.ChannelMessages(b.channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("listing messages in %s: %w", b.channelID, err)
	}

	botID := b.botUserID()
	out := make([]board.Message, 0, len(msgs))
	for _, m := range msgs {
		if botID != "" && (m.Author == nil || m.Author.ID != botID) {
			continue
		}
		if len(m.Embeds) == 0 {
			continue
		}
		out = append(out, board.Message{ID: m.ID, Document: fromEmbed(m.Embeds[0])})
	}
	return out, nil
}

// EditMessage replaces the embed of messageID.
func (b *BoardChannel) EditMessage(ctx context.Context, messageID string, doc board.Document) error {
	_, err := b.session.ChannelMessageEditEmbed(b.channelID, messageID, toEmbed(doc), discordgo.WithContext(ctx))
	if err != nil {
		return mapMessageError(messageID, "editing", err)
	}
	return nil
}

// SendMessage posts a new message holding doc and returns its id.
func (b *BoardChannel) SendMessage(ctx context.Context, doc board.Document) (string, error) {
	msg, err := b.session.ChannelMessageSendEmbed(b.channelID, toEmbed(doc), discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("sending message to %s: %w", b.channelID, err)
	}
	return msg.ID, nil
}

// DeleteMessage deletes messageID.
func (b *BoardChannel) DeleteMessage(ctx context.Context, messageID string) error {
	if err := b.session.ChannelMessageDelete(b.channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return mapMessageError(messageID, "deleting", err)
	}
	return nil
}

func (b *BoardChannel) botUserID() string {
	if b.session.State == nil || b.session.State.User == nil {
		return ""
	}
	return b.session.State.User.ID
}

func mapMessageError(messageID, op string, err error) error {
	if restCode(err) == discordgo.ErrCodeUnknownMessage {
		return fmt.Errorf("%s message %s: %w", op, messageID, board.ErrMessageNotFound)
	}
	return fmt.Errorf("%s message %s: %w", op, messageID, err)
}

func toEmbed(doc board.Document) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       doc.Title,
		Description: doc.Description,
		Color:       doc.Color,
		Footer:      &discordgo.MessageEmbedFooter{Text: doc.Footer},
	}
	if !doc.Timestamp.IsZero() {
		e.Timestamp = doc.Timestamp.UTC().Format(time.RFC3339)
	}
	if doc.IconURL != "" {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: doc.IconURL}
	}
	return e
}

func fromEmbed(e *discordgo.MessageEmbed) board.Document {
	doc := board.Document{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	if e.Footer != nil {
		doc.Footer = e.Footer.Text
	}
	if e.Thumbnail != nil {
		doc.IconURL = e.Thumbnail.URL
	}
	if ts, err := time.Parse(time.RFC3339, e.Timestamp); err == nil {
		doc.Timestamp = ts.UTC()
	}
	return doc
}
