package discord_test

import (
	"context"
	"errors"
	"fraudwatch/pkg/chat"
	"fraudwatch/pkg/chat/discord"
	"fraudwatch/pkg/serrors"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

// fakeAPI records calls and returns canned errors.
type fakeAPI struct {
	channelErr error
	sendErr    error
	dmErr      error
	banErr     error

	embeds  map[string]*discordgo.MessageEmbed
	sent    map[string]string
	banned  []string
	reasons []string
	days    []int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{embeds: map[string]*discordgo.MessageEmbed{}, sent: map[string]string{}}
}

func (f *fakeAPI) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.channelErr != nil {
		return nil, f.channelErr
	}

	return &discordgo.Channel{ID: channelID}, nil
}

func (f *fakeAPI) ChannelMessageSend(channelID string,
	content string,
	_ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent[channelID] = content

	return &discordgo.Message{}, nil
}

func (f *fakeAPI) ChannelMessageSendEmbed(channelID string,
	embed *discordgo.MessageEmbed,
	_ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.embeds[channelID] = embed

	return &discordgo.Message{}, nil
}

func (f *fakeAPI) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.dmErr != nil {
		return nil, f.dmErr
	}

	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakeAPI) GuildBanCreateWithReason(_, userID, reason string, days int, _ ...discordgo.RequestOption) error {
	if f.banErr != nil {
		return f.banErr
	}
	f.banned = append(f.banned, userID)
	f.reasons = append(f.reasons, reason)
	f.days = append(f.days, days)

	return nil
}

func restError(code int) error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: code}}
}

func TestClient_ChannelAndSendEmbed(t *testing.T) {
	api := newFakeAPI()
	c := discord.New(api, nil)

	ch, err := c.Channel(context.Background(), "audit")
	require.NoError(t, err)
	require.Equal(t, "audit", ch.ID())

	require.NoError(t, ch.SendEmbed(context.Background(), chat.Embed{
		Description: "hello",
		Color:       0xff0000,
		Footer:      "incident 1",
	}))
	require.Equal(t, "hello", api.embeds["audit"].Description)
	require.Equal(t, 0xff0000, api.embeds["audit"].Color)
	require.Equal(t, "incident 1", api.embeds["audit"].Footer.Text)
}

func TestClient_ChannelFromState(t *testing.T) {
	api := newFakeAPI()
	api.channelErr = errors.New("REST must not be used")

	state := discordgo.NewState()
	require.NoError(t, state.GuildAdd(&discordgo.Guild{ID: "g1"}))
	require.NoError(t, state.ChannelAdd(&discordgo.Channel{ID: "audit", GuildID: "g1"}))

	ch, err := discord.New(api, state).Channel(context.Background(), "audit")
	require.NoError(t, err)
	require.Equal(t, "audit", ch.ID())
}

func TestClient_ChannelErrors(t *testing.T) {
	api := newFakeAPI()
	c := discord.New(api, nil)

	_, err := c.Channel(context.Background(), "")
	require.ErrorIs(t, err, serrors.ErrNotFound)

	api.channelErr = restError(http.StatusNotFound)
	_, err = c.Channel(context.Background(), "gone")
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestClient_SendDirect(t *testing.T) {
	api := newFakeAPI()
	c := discord.New(api, nil)

	require.NoError(t, c.SendDirect(context.Background(), "42", "you have been banned"))
	require.Equal(t, "you have been banned", api.sent["dm-42"])

	api.dmErr = restError(http.StatusForbidden)
	err := c.SendDirect(context.Background(), "42", "again")
	require.ErrorIs(t, err, serrors.ErrForbidden)
}

func TestClient_Ban(t *testing.T) {
	api := newFakeAPI()
	c := discord.New(api, nil)

	require.NoError(t, c.Ban(context.Background(), "g1", "42", "Fraud.", 1))
	require.Equal(t, []string{"42"}, api.banned)
	require.Equal(t, []string{"Fraud."}, api.reasons)
	require.Equal(t, []int{1}, api.days)
}

func TestClient_ErrorKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind serrors.Kind
	}{
		{name: "forbidden", err: restError(http.StatusForbidden), kind: serrors.ErrForbidden},
		{name: "unauthorized", err: restError(http.StatusUnauthorized), kind: serrors.ErrForbidden},
		{name: "rate limited", err: restError(http.StatusTooManyRequests), kind: serrors.ErrRateLimited},
		{name: "server error", err: restError(http.StatusBadGateway), kind: serrors.ErrUnavailable},
		{name: "deadline", err: context.DeadlineExceeded, kind: serrors.ErrTimeout},
		{name: "transport", err: errors.New("connection reset"), kind: serrors.ErrUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := newFakeAPI()
			api.banErr = tc.err

			err := discord.New(api, nil).Ban(context.Background(), "g1", "42", "Fraud.", 1)
			require.Error(t, err)
			require.ErrorIs(t, err, tc.kind)
			require.ErrorIs(t, err, tc.err)
		})
	}
}
