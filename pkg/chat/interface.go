// Package chat defines the slice of a chat platform client the moderation
// pipeline depends on: resolving the audit channel, posting embeds, sending
// direct messages and banning members. Every action may fail with a
// serrors.ErrForbidden (permissions) or serrors.ErrUnavailable (transport)
// kinded error; callers treat both as "the action did not happen".
package chat

import "context"

// Embed is a rich notification posted to a channel.
type Embed struct {
	// Description is the markdown body.
	Description string
	// Color is the 0xRRGGBB accent colour.
	Color int
	// Footer is optional small print, e.g. an incident identifier.
	Footer string
}

// Channel is a resolved text channel.
//
//go:generate mockgen -package mockchat -source=interface.go -destination=mock/mockchat.go *
type Channel interface {
	// ID returns the platform channel identifier.
	ID() string
	// SendEmbed posts embed to the channel.
	SendEmbed(ctx context.Context, embed Embed) error
}

// Client is the chat platform surface used by the officer.
type Client interface {
	// Channel resolves a channel by ID. It returns an ErrNotFound kinded
	// error when the channel does not exist or is not visible.
	Channel(ctx context.Context, channelID string) (Channel, error)
	// SendDirect sends text to the user over a private channel.
	SendDirect(ctx context.Context, userID string, text string) error
	// Ban bans userID from guildID, deleting their messages from the last
	// deleteMessageDays days.
	Ban(ctx context.Context, guildID, userID, reason string, deleteMessageDays int) error
}
