// Package discord provides a chat.Client implementation backed by the
// Discord REST API through discordgo.
package discord

import (
	"context"
	"errors"
	"fmt"
	"fraudwatch/pkg/chat"
	"fraudwatch/pkg/serrors"

	"github.com/bwmarrin/discordgo"
)

// API is the subset of *discordgo.Session used by Client.
type API interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string,
		embed *discordgo.MessageEmbed,
		options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error
}

// Client talks to Discord and fulfills chat.Client. It is safe for concurrent use.
type Client struct {
	api   API
	state *discordgo.State // state is the gateway cache, consulted before REST lookups. May be nil.
}

// Ensure Client conforms to the chat.Client interface at compile time.
var _ chat.Client = (*Client)(nil)

// New constructs a Client. state may be nil, in which case every channel
// lookup goes to the REST API.
func New(api API, state *discordgo.State) *Client {
	return &Client{api: api, state: state}
}

// NewFromSession constructs a Client sharing a gateway session and its state cache.
func NewFromSession(s *discordgo.Session) *Client {
	return New(s, s.State)
}

type channel struct {
	api API
	id  string
}

func (c channel) ID() string { return c.id }

func (c channel) SendEmbed(ctx context.Context, embed chat.Embed) error {
	msg := &discordgo.MessageEmbed{
		Description: embed.Description,
		Color:       embed.Color,
	}
	if embed.Footer != "" {
		msg.Footer = &discordgo.MessageEmbedFooter{Text: embed.Footer}
	}

	if _, err := c.api.ChannelMessageSendEmbed(c.id, msg, discordgo.WithContext(ctx)); err != nil {
		return classify(err, "could not send embed to channel %s", c.id)
	}

	return nil
}

// Channel resolves a channel from the state cache, falling back to REST.
func (c *Client) Channel(ctx context.Context, channelID string) (chat.Channel, error) {
	if channelID == "" {
		return nil, serrors.With(serrors.ErrNotFound, "no channel configured")
	}

	if c.state != nil {
		if ch, err := c.state.Channel(channelID); err == nil {
			return channel{api: c.api, id: ch.ID}, nil
		}
	}

	ch, err := c.api.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(err, "could not get channel %s", channelID)
	}

	return channel{api: c.api, id: ch.ID}, nil
}

// SendDirect opens (or reuses) the private channel with userID and sends text.
func (c *Client) SendDirect(ctx context.Context, userID string, text string) error {
	dm, err := c.api.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return classify(err, "could not open private channel with %s", userID)
	}

	if _, err := c.api.ChannelMessageSend(dm.ID, text, discordgo.WithContext(ctx)); err != nil {
		return classify(err, "could not send private message to %s", userID)
	}

	return nil
}

// Ban bans userID from guildID.
func (c *Client) Ban(ctx context.Context, guildID, userID, reason string, deleteMessageDays int) error {
	err := c.api.GuildBanCreateWithReason(guildID, userID, reason, deleteMessageDays, discordgo.WithContext(ctx))
	if err != nil {
		return classify(err, "could not ban %s from guild %s", userID, guildID)
	}

	return nil
}

// classify maps a discordgo error onto a semantic kind.
func classify(err error, msgFmt string, args ...any) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return serrors.Wrap(serrors.FromStatus(restErr.Response.StatusCode), err, msgFmt, args...)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return serrors.Wrap(serrors.ErrTimeout, err, msgFmt, args...)
	}

	return serrors.Wrap(serrors.ErrUnavailable, fmt.Errorf("discord: %w", err), msgFmt, args...)
}
