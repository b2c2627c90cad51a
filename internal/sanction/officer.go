package sanction

import (
	"context"
	"fmt"
	"fraudwatch/internal/config"
	"fraudwatch/pkg/chat"
	"fraudwatch/pkg/domain"
	"fraudwatch/pkg/logger"
	"fraudwatch/pkg/serrors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationColor is the accent colour of audit notifications.
const NotificationColor = 0xff0000

// Options configure what the officer does once a scam link is confirmed.
type Options struct {
	// ChannelID is the audit channel receiving notifications.
	ChannelID string
	// Ban enables the punitive steps (warning DM and ban).
	Ban bool
	// DM is the warning sent before the ban. Empty disables it.
	DM string
	// BanReason is recorded with the ban.
	BanReason string
	// DeleteMessageDays is the message history window removed with the ban.
	DeleteMessageDays int
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		ChannelID:         cfg.Discord.Channel,
		Ban:               cfg.Discord.Ban,
		DM:                cfg.Discord.DM,
		BanReason:         cfg.Discord.BanReason,
		DeleteMessageDays: cfg.Discord.DeleteMessageDays,
	}
}

// Step names an action taken by the officer.
type Step string

const (
	StepNotify Step = "notify"
	StepDirect Step = "dm"
	StepBan    Step = "ban"
)

// StepResult records one attempted action. A failed critical step changes the
// outcome; a failed best-effort step is only reported.
type StepResult struct {
	Step     Step
	Critical bool
	Err      error
}

// Report describes one officer activation.
type Report struct {
	Outcome domain.Outcome
	// IncidentID identifies the audit notification. Empty when nothing was posted.
	IncidentID string
	Steps      []StepResult
}

// Failed returns the steps that did not succeed.
func (r Report) Failed() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if s.Err != nil {
			failed = append(failed, s)
		}
	}

	return failed
}

// Officer notifies moderators about a scam link and, when configured, bans its
// author. It is not safe for concurrent use on its own: callers must
// serialize Activate so that the cooldown check and the cache update form one
// atomic sequence.
type Officer struct {
	client chat.Client
	cache  *Cache
	opts   Options
}

func NewOfficer(client chat.Client, cache *Cache, opts Options) *Officer {
	return &Officer{client: client, cache: cache, opts: opts}
}

// Activate handles a confirmed scam link instance posted in msg. The author is
// added to the cache only when the ban is confirmed.
func (o *Officer) Activate(ctx context.Context, msg domain.Message, instance string) Report {
	author := msg.Author
	ctx = logger.WithFields(ctx, zap.String("authorID", string(author.ID)))

	if o.cache.Contains(author.ID) {
		logger.Info(ctx, "author already sanctioned, skipping")

		return Report{Outcome: domain.OutcomeAlreadySanctioned}
	}

	channel, err := o.client.Channel(ctx, o.opts.ChannelID)
	if err != nil {
		logger.Error(ctx, "could not log as channel is invalid",
			zap.String("channelID", o.opts.ChannelID), zap.Error(err))

		return Report{Outcome: domain.OutcomeChannelUnavailable}
	}

	report := Report{Outcome: domain.OutcomeNotified, IncidentID: uuid.NewString()}

	err = channel.SendEmbed(ctx, chat.Embed{
		Description: o.describe(author, instance),
		Color:       NotificationColor,
		Footer:      "incident " + report.IncidentID,
	})
	report.Steps = append(report.Steps, StepResult{Step: StepNotify, Err: err})
	if err != nil {
		logger.Error(ctx, "could not send notification", zap.Error(err))
	}

	if !o.opts.Ban {
		return report
	}

	if o.opts.DM != "" {
		err := o.client.SendDirect(ctx, string(author.ID), o.opts.DM)
		report.Steps = append(report.Steps, StepResult{Step: StepDirect, Err: err})
		if err != nil {
			logger.Error(ctx, "private messaging was not successful", zap.Error(err))
		}
	}

	err = o.client.Ban(ctx, msg.GuildID, string(author.ID), o.opts.BanReason, o.opts.DeleteMessageDays)
	report.Steps = append(report.Steps, StepResult{Step: StepBan, Critical: true, Err: err})
	if err != nil {
		logger.Error(ctx, "banning was not successful",
			zap.String("kind", kindOf(err)), zap.Bool("transient", serrors.Transient(err)), zap.Error(err))

		return report
	}

	o.cache.Add(author.ID)
	report.Outcome = domain.OutcomeNotifiedAndSanctioned
	logger.Info(ctx, "author banned", zap.String("incidentID", report.IncidentID))

	return report
}

func (o *Officer) describe(author domain.Author, instance string) string {
	link := fmt.Sprintf("[%s](%s)", instance, instance)
	if o.opts.Ban {
		return fmt.Sprintf("Automatically banned **%s** (%s) for the following link. Please verify:\n%s",
			author.ID, author.DisplayName(), link)
	}

	return fmt.Sprintf("Detected **%s** (%s) posting the following link. Please verify:\n%s",
		author.ID, author.DisplayName(), link)
}

// kindOf names the semantic kind of a platform error for logs.
func kindOf(err error) string {
	if kind := serrors.KindOf(err); kind != nil {
		return kind.Error()
	}

	return "UNKNOWN"
}
