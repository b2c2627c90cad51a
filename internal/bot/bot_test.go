package bot_test

import (
	"context"
	"errors"
	"fraudwatch/internal/bot"
	"fraudwatch/internal/pipeline"
	"fraudwatch/pkg/domain"
	"fraudwatch/pkg/logger"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	_ = logger.Setup(logger.DevelopmentEnvironment, "")
	m.Run()
}

type handlerFunc func(ctx context.Context, msg domain.Message) (pipeline.Result, error)

func (f handlerFunc) Handle(ctx context.Context, msg domain.Message) (pipeline.Result, error) {
	return f(ctx, msg)
}

func newBot(t *testing.T, ctx context.Context, h bot.Handler) *bot.Bot {
	t.Helper()

	b, err := bot.New(ctx, bot.Options{Token: "test-token", Status: "for fraud"})
	require.NoError(t, err)
	b.SetHandler(h)

	return b
}

func TestNew(t *testing.T) {
	b := newBot(t, context.Background(), handlerFunc(func(context.Context, domain.Message) (pipeline.Result, error) {
		return pipeline.Result{}, nil
	}))

	require.Equal(t, "Bot test-token", b.Session().Token)
	require.Equal(t, bot.Intents, b.Session().Identify.Intents)
	require.NotZero(t, bot.Intents&discordgo.IntentsMessageContent)
	require.False(t, b.Connected())
}

func TestOpen_RequiresHandler(t *testing.T) {
	b, err := bot.New(context.Background(), bot.Options{Token: "test-token"})
	require.NoError(t, err)
	require.Error(t, b.Open(context.Background()))
}

func TestDispatch_HandlesEveryMessage(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	b := newBot(t, context.Background(), handlerFunc(func(_ context.Context, msg domain.Message) (pipeline.Result, error) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, msg.ID)

		return pipeline.Result{}, nil
	}))

	for _, id := range []string{"1", "2", "3"} {
		b.Dispatch(domain.Message{ID: id})
	}
	require.NoError(t, b.Wait(context.Background()))
	require.ElementsMatch(t, []string{"1", "2", "3"}, seen)
}

func TestDispatch_IsolatesFailures(t *testing.T) {
	var handled sync.WaitGroup
	handled.Add(1)

	b := newBot(t, context.Background(), handlerFunc(func(_ context.Context, msg domain.Message) (pipeline.Result, error) {
		switch msg.ID {
		case "panic":
			panic("oracle blew up")
		case "error":
			return pipeline.Result{}, errors.New("malformed URL")
		default:
			handled.Done()

			return pipeline.Result{}, nil
		}
	}))

	b.Dispatch(domain.Message{ID: "panic"})
	b.Dispatch(domain.Message{ID: "error"})
	b.Dispatch(domain.Message{ID: "ok"})

	handled.Wait()
	require.NoError(t, b.Wait(context.Background()))
}

func TestDispatch_OutlivesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	release := make(chan struct{})
	var handlerErr error
	b := newBot(t, ctx, handlerFunc(func(ctx context.Context, _ domain.Message) (pipeline.Result, error) {
		<-release
		handlerErr = ctx.Err()

		return pipeline.Result{}, nil
	}))

	b.Dispatch(domain.Message{ID: "1"})
	cancel()
	close(release)

	require.NoError(t, b.Wait(context.Background()))
	require.NoError(t, handlerErr, "handlers must not observe shutdown cancellation")
}

func TestWait_Deadline(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	b := newBot(t, context.Background(), handlerFunc(func(context.Context, domain.Message) (pipeline.Result, error) {
		<-release

		return pipeline.Result{}, nil
	}))
	b.Dispatch(domain.Message{ID: "slow"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, b.Wait(ctx), context.DeadlineExceeded)
}
