package discord

import (
	"fraudwatch/pkg/domain"

	"github.com/bwmarrin/discordgo"
)

// MessageFromEvent converts a gateway MessageCreate event into a
// domain.Message. selfID is the bot's own user ID.
func MessageFromEvent(selfID string, m *discordgo.MessageCreate) domain.Message {
	msg := domain.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
	}

	if m.Author != nil {
		msg.Author = domain.Author{
			ID:            domain.UserID(m.Author.ID),
			Name:          m.Author.Username,
			Discriminator: m.Author.Discriminator,
			Self:          m.Author.ID == selfID,
		}
	}

	// webhooks and DMs carry no guild member payload
	if m.Member != nil && m.WebhookID == "" && m.GuildID != "" {
		msg.Author.Member = true
		msg.Author.Roles = append([]string(nil), m.Member.Roles...)
	}

	return msg
}
