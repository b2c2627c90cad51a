// Package bot connects to the Discord gateway and feeds every inbound guild
// message to the moderation pipeline.
package bot

import (
	"context"
	"errors"
	"fmt"
	"fraudwatch/internal/config"
	"fraudwatch/internal/pipeline"
	"fraudwatch/pkg/chat/discord"
	"fraudwatch/pkg/domain"
	"fraudwatch/pkg/logger"
	"fraudwatch/pkg/metrics"
	"sync"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Intents requested from the gateway: guild metadata and message contents.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

// Handler processes one message.
type Handler interface {
	Handle(ctx context.Context, msg domain.Message) (pipeline.Result, error)
}

// Options configure the gateway session.
type Options struct {
	// Token is the bot token, without the "Bot " prefix.
	Token string
	// Status is shown as a "watching" activity.
	Status string
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{Token: cfg.Discord.Token, Status: cfg.Discord.Status}
}

// Bot owns the gateway session. Each message is handled in its own goroutine;
// a failing or panicking message never affects the others.
type Bot struct {
	session *discordgo.Session
	opts    Options
	handler Handler
	// ctx is the base context of message handlers. It is detached from
	// cancellation so in-flight messages finish during shutdown.
	ctx context.Context //nolint: containedctx

	connected atomic.Bool
	inflight  sync.WaitGroup
}

// New creates a session and registers gateway event handlers. The session
// is not connected until Open is called.
func New(ctx context.Context, opts Options) (*Bot, error) {
	session, err := discordgo.New("Bot " + opts.Token)
	if err != nil {
		return nil, fmt.Errorf("could not create discord session: %w", err)
	}
	session.Identify.Intents = Intents

	b := &Bot{
		session: session,
		opts:    opts,
		ctx:     context.WithoutCancel(ctx),
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onConnect)
	session.AddHandler(b.onDisconnect)
	session.AddHandler(b.onMessageCreate)

	return b, nil
}

// Session returns the underlying discordgo session, e.g. to build a chat client.
func (b *Bot) Session() *discordgo.Session { return b.session }

// SetHandler sets the message handler. It must be called before Open.
func (b *Bot) SetHandler(h Handler) { b.handler = h }

// Open connects to the gateway.
func (b *Bot) Open(ctx context.Context) error {
	if b.handler == nil {
		return errors.New("no message handler set")
	}

	discord.BridgeLogger(ctx)

	logger.Info(ctx, "connecting to discord gateway...")
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}

	return nil
}

// Close stops receiving messages, waits for in-flight ones until ctx ends and
// closes the session.
func (b *Bot) Close(ctx context.Context) error {
	logger.Info(ctx, "closing discord session...")
	err := b.session.Close()
	b.setConnected(false)

	if waitErr := b.Wait(ctx); waitErr != nil {
		logger.Warn(ctx, "in-flight messages did not finish in time", zap.Error(waitErr))
	}
	if err != nil {
		return fmt.Errorf("could not close discord session: %w", err)
	}

	return nil
}

// Connected reports whether the gateway session is up.
func (b *Bot) Connected() bool { return b.connected.Load() }

// Dispatch handles msg asynchronously.
func (b *Bot) Dispatch(msg domain.Message) {
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()

		ctx := logger.WithFields(b.ctx, zap.String("messageID", msg.ID))
		defer func() {
			if p := recover(); p != nil {
				logger.Error(ctx, "captured panic while handling message", zap.Any("panic", p), zap.Stack("stack"))
			}
		}()

		if _, err := b.handler.Handle(ctx, msg); err != nil {
			logger.Error(ctx, "could not handle message", zap.Error(err))
		}
	}()
}

// Wait blocks until every dispatched message has been handled or ctx ends.
func (b *Bot) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bot) setConnected(v bool) {
	b.connected.Store(v)
	if v {
		metrics.GatewayConnected.Set(1)
	} else {
		metrics.GatewayConnected.Set(0)
	}
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.setConnected(true)
	if err := s.UpdateWatchStatus(0, b.opts.Status); err != nil {
		logger.Warn(b.ctx, "could not update status", zap.Error(err))
	}

	fields := []zap.Field{zap.Int("guilds", len(r.Guilds))}
	if r.User != nil {
		fields = append(fields, zap.String("user", r.User.Username))
	}
	logger.Info(b.ctx, "awake and monitoring for fraud", fields...)
}

func (b *Bot) onConnect(*discordgo.Session, *discordgo.Connect) {
	b.setConnected(true)
}

func (b *Bot) onDisconnect(*discordgo.Session, *discordgo.Disconnect) {
	b.setConnected(false)
	logger.Warn(b.ctx, "disconnected from discord gateway")
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	selfID := ""
	if s.State != nil && s.State.User != nil {
		selfID = s.State.User.ID
	}

	b.Dispatch(discord.MessageFromEvent(selfID, m))
}
