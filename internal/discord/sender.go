package discord

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Sender delivers one embed to wherever announcements go
type Sender interface {
	Send(ctx context.Context, embed *discordgo.MessageEmbed) error
}

// WebhookSender posts embeds through an incoming webhook. No bot token is needed.
type WebhookSender struct {
	session *discordgo.Session
	id      string
	token   string
}

// NewWebhookSender parses a https://discord.com/api/webhooks/<id>/<token> URL
func NewWebhookSender(webhookURL string) (*WebhookSender, error) {
	id, token, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextSessionCreate, err)
	}
	return &WebhookSender{session: session, id: id, token: token}, nil
}

// Send executes the webhook and waits for Discord to accept the message
func (w *WebhookSender) Send(ctx context.Context, embed *discordgo.MessageEmbed) error {
	ctx, cancel := context.WithTimeout(ctx, SendTimeout)
	defer cancel()

	_, err := w.session.WebhookExecute(w.id, w.token, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextSend, err)
	}
	return nil
}

// ChannelSender posts embeds to a channel with a bot session
type ChannelSender struct {
	session   *discordgo.Session
	channelID string
}

// NewChannelSender creates a sender that uses an authenticated bot session
func NewChannelSender(session *discordgo.Session, channelID string) *ChannelSender {
	return &ChannelSender{session: session, channelID: channelID}
}

// Send posts embed to the configured channel
func (c *ChannelSender) Send(ctx context.Context, embed *discordgo.MessageEmbed) error {
	ctx, cancel := context.WithTimeout(ctx, SendTimeout)
	defer cancel()

	if _, err := c.session.ChannelMessageSendEmbed(c.channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("%s: %w", ErrContextSend, err)
	}
	return nil
}

// ParseWebhookURL splits a webhook URL into its id and token
func ParseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", ErrContextInvalidWebhook, err)
	}
	if u.Scheme != "https" || u.Host == "" {
		return "", "", errors.New(ErrContextInvalidWebhook)
	}

	idx := strings.Index(u.Path, webhookPathPrefix)
	if idx < 0 {
		return "", "", errors.New(ErrContextInvalidWebhook)
	}
	parts := strings.Split(strings.Trim(u.Path[idx+len(webhookPathPrefix):], "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.New(ErrContextInvalidWebhook)
	}
	return parts[0], parts[1], nil
}

var (
	_ Sender = (*WebhookSender)(nil)
	_ Sender = (*ChannelSender)(nil)
)
