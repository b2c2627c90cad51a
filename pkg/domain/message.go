package domain

import "fmt"

// UserID identifies a chat platform user.
type UserID string

// Author describes who sent a message.
type Author struct {
	// ID is the platform user identifier.
	ID UserID
	// Name is the account name.
	Name string
	// Discriminator is the legacy numeric tag; "0" or empty for migrated accounts.
	Discriminator string
	// Roles lists the role IDs the author holds in the origin guild.
	Roles []string
	// Self is true when the message was sent by this process's own identity.
	Self bool
	// Member is false for webhooks and other non-member senders.
	Member bool
}

// DisplayName renders the author as name#discriminator, or just the name for
// accounts without a discriminator.
func (a Author) DisplayName() string {
	if a.Discriminator == "" || a.Discriminator == "0" {
		return a.Name
	}

	return fmt.Sprintf("%s#%s", a.Name, a.Discriminator)
}

// HasAnyRole reports whether the author holds at least one role from set.
func (a Author) HasAnyRole(set map[string]struct{}) bool {
	for _, r := range a.Roles {
		if _, ok := set[r]; ok {
			return true
		}
	}

	return false
}

// Message is an inbound chat message. The pipeline only reads it.
type Message struct {
	ID        string
	ChannelID string
	GuildID   string
	Content   string
	Author    Author
}
