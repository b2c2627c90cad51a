package sanction_test

import (
	"context"
	"errors"
	"fraudwatch/internal/sanction"
	"fraudwatch/pkg/chat"
	mockchat "fraudwatch/pkg/chat/mock"
	"fraudwatch/pkg/domain"
	"fraudwatch/pkg/serrors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	auditChannel = "audit"
	instance     = "http://scam.example/login"
)

var message = domain.Message{ //nolint: gochecknoglobals
	ID:        "m1",
	ChannelID: "general",
	GuildID:   "g1",
	Content:   "click http://bit.ly/xyz now",
	Author: domain.Author{
		ID:            "42",
		Name:          "mallory",
		Discriminator: "1337",
		Member:        true,
	},
}

func punitive() sanction.Options {
	return sanction.Options{
		ChannelID:         auditChannel,
		Ban:               true,
		DM:                "You were banned for posting a fraudulent link.",
		BanReason:         "Fraud.",
		DeleteMessageDays: 1,
	}
}

func newTestOfficer(t *testing.T, opts sanction.Options) (*mockchat.MockClient, *mockchat.MockChannel, *sanction.Cache, *sanction.Officer) {
	t.Helper()

	ctrl := gomock.NewController(t)
	client := mockchat.NewMockClient(ctrl)
	channel := mockchat.NewMockChannel(ctrl)
	cache := sanction.NewCache(0, 0)

	return client, channel, cache, sanction.NewOfficer(client, cache, opts)
}

func TestOfficer_NotifyAndBan(t *testing.T) {
	client, channel, cache, officer := newTestOfficer(t, punitive())

	gomock.InOrder(
		client.EXPECT().Channel(gomock.Any(), auditChannel).Return(channel, nil),
		channel.EXPECT().SendEmbed(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e chat.Embed) error {
			require.Equal(t, "Automatically banned **42** (mallory#1337) for the following link. Please verify:\n"+
				"[http://scam.example/login](http://scam.example/login)", e.Description)
			require.Equal(t, sanction.NotificationColor, e.Color)
			require.True(t, strings.HasPrefix(e.Footer, "incident "))

			return nil
		}),
		client.EXPECT().SendDirect(gomock.Any(), "42", "You were banned for posting a fraudulent link.").Return(nil),
		client.EXPECT().Ban(gomock.Any(), "g1", "42", "Fraud.", 1).Return(nil),
	)

	report := officer.Activate(context.Background(), message, instance)
	require.Equal(t, domain.OutcomeNotifiedAndSanctioned, report.Outcome)
	require.NotEmpty(t, report.IncidentID)
	require.Len(t, report.Steps, 3)
	require.Empty(t, report.Failed())
	require.True(t, cache.Contains("42"))
}

func TestOfficer_AlreadySanctioned(t *testing.T) {
	_, _, cache, officer := newTestOfficer(t, punitive())
	cache.Add("42")

	// no platform calls are expected
	report := officer.Activate(context.Background(), message, instance)
	require.Equal(t, domain.OutcomeAlreadySanctioned, report.Outcome)
	require.Empty(t, report.IncidentID)
	require.Empty(t, report.Steps)
}

func TestOfficer_ChannelUnavailable(t *testing.T) {
	client, _, cache, officer := newTestOfficer(t, punitive())
	client.EXPECT().Channel(gomock.Any(), auditChannel).Return(nil, serrors.With(serrors.ErrNotFound, "unknown channel"))

	report := officer.Activate(context.Background(), message, instance)
	require.Equal(t, domain.OutcomeChannelUnavailable, report.Outcome)
	require.False(t, cache.Contains("42"))
}

func TestOfficer_NotifyOnly(t *testing.T) {
	opts := punitive()
	opts.Ban = false
	client, channel, cache, officer := newTestOfficer(t, opts)

	client.EXPECT().Channel(gomock.Any(), auditChannel).Return(channel, nil)
	channel.EXPECT().SendEmbed(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e chat.Embed) error {
		require.True(t, strings.HasPrefix(e.Description, "Detected **42** (mallory#1337)"))

		return nil
	})

	report := officer.Activate(context.Background(), message, instance)
	require.Equal(t, domain.OutcomeNotified, report.Outcome)
	require.False(t, cache.Contains("42"))
}

func TestOfficer_DirectMessageFailureDoesNotPreventBan(t *testing.T) {
	client, channel, cache, officer := newTestOfficer(t, punitive())

	client.EXPECT().Channel(gomock.Any(), auditChannel).Return(channel, nil)
	channel.EXPECT().SendEmbed(gomock.Any(), gomock.Any()).Return(nil)
	client.EXPECT().SendDirect(gomock.Any(), "42", gomock.Any()).
		Return(serrors.With(serrors.ErrForbidden, "cannot send messages to this user"))
	client.EXPECT().Ban(gomock.Any(), "g1", "42", "Fraud.", 1).Return(nil)

	report := officer.Activate(context.Background(), message, instance)
	require.Equal(t, domain.OutcomeNotifiedAndSanctioned, report.Outcome)
	require.True(t, cache.Contains("42"))

	failed := report.Failed()
	require.Len(t, failed, 1)
	require.Equal(t, sanction.StepDirect, failed[0].Step)
	require.False(t, failed[0].Critical)
}

func TestOfficer_EmptyDirectMessageSkipsDM(t *testing.T) {
	opts := punitive()
	opts.DM = ""
	client, channel, _, officer := newTestOfficer(t, opts)

	client.EXPECT().Channel(gomock.Any(), auditChannel).Return(channel, nil)
	channel.EXPECT().SendEmbed(gomock.Any(), gomock.Any()).Return(nil)
	client.EXPECT().Ban(gomock.Any(), "g1", "42", "Fraud.", 1).Return(nil)

	report := officer.Activate(context.Background(), message, instance)
	require.Equal(t, domain.OutcomeNotifiedAndSanctioned, report.Outcome)
	require.Len(t, report.Steps, 2)
}

func TestOfficer_BanFailure(t *testing.T) {
	for name, banErr := range map[string]error{
		"forbidden": serrors.With(serrors.ErrForbidden, "missing permissions"),
		"transport": serrors.Wrap(serrors.ErrUnavailable, errors.New("connection reset"), "could not ban"),
	} {
		t.Run(name, func(t *testing.T) {
			client, channel, cache, officer := newTestOfficer(t, punitive())

			client.EXPECT().Channel(gomock.Any(), auditChannel).Return(channel, nil)
			channel.EXPECT().SendEmbed(gomock.Any(), gomock.Any()).Return(nil)
			client.EXPECT().SendDirect(gomock.Any(), "42", gomock.Any()).Return(nil)
			client.EXPECT().Ban(gomock.Any(), "g1", "42", "Fraud.", 1).Return(banErr)

			report := officer.Activate(context.Background(), message, instance)
			require.Equal(t, domain.OutcomeNotified, report.Outcome)
			require.False(t, cache.Contains("42"), "cooldown entries require a confirmed ban")

			failed := report.Failed()
			require.Len(t, failed, 1)
			require.Equal(t, sanction.StepBan, failed[0].Step)
			require.True(t, failed[0].Critical)
			require.ErrorIs(t, failed[0].Err, banErr)
		})
	}
}

func TestOfficer_NotifyFailureStillBans(t *testing.T) {
	client, channel, cache, officer := newTestOfficer(t, punitive())

	client.EXPECT().Channel(gomock.Any(), auditChannel).Return(channel, nil)
	channel.EXPECT().SendEmbed(gomock.Any(), gomock.Any()).Return(serrors.With(serrors.ErrRateLimited, "slow down"))
	client.EXPECT().SendDirect(gomock.Any(), "42", gomock.Any()).Return(nil)
	client.EXPECT().Ban(gomock.Any(), "g1", "42", "Fraud.", 1).Return(nil)

	report := officer.Activate(context.Background(), message, instance)
	require.Equal(t, domain.OutcomeNotifiedAndSanctioned, report.Outcome)
	require.True(t, cache.Contains("42"))
	require.Equal(t, sanction.StepNotify, report.Failed()[0].Step)
}
