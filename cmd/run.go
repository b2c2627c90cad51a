package main

import (
	"context"
	"errors"
	"fmt"
	"fraudwatch/internal/api"
	"fraudwatch/internal/bot"
	"fraudwatch/internal/config"
	"fraudwatch/internal/pipeline"
	"fraudwatch/internal/sanction"
	"fraudwatch/pkg/chat/discord"
	"fraudwatch/pkg/logger"
	"fraudwatch/pkg/tracing"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func setupServer(ctx context.Context, cfg *config.Config, health *bot.Bot) *http.Server {
	server, err := api.NewServer(api.Deps{Health: health}, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	return server
}

func serve(ctx context.Context, server *http.Server) error {
	logger.Info(ctx, "starting webserver...", zap.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not start webserver: %w", err)
	}

	return nil
}

func runCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connects to Discord and moderates messages",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := cfg.ValidateRun(); err != nil {
				logger.Fatal(ctx, "invalid configuration", zap.Error(err))
			}

			shutdownTracing := tracing.Setup(logger.Get(ctx))

			clf := getClassifier(ctx, cfg)
			res := getResolver(ctx, cfg)

			b, err := bot.New(ctx, bot.NewOptions(cfg))
			if err != nil {
				logger.Fatal(ctx, "could not create bot", zap.Error(err))
			}
			server := setupServer(ctx, cfg, b)

			// cache entries outlive a lost release at most twice the cooldown
			cache := sanction.NewCache(cfg.Sanction.MaxEntries, 2*cfg.Sanction.Cooldown)
			releaser := sanction.NewReleaser(cache, cfg.Sanction.Cooldown)

			b.SetHandler(pipeline.New(pipeline.Deps{
				Resolver:   res,
				Classifier: clf,
				Officer:    sanction.NewOfficer(discord.NewFromSession(b.Session()), cache, sanction.NewOptions(cfg)),
				Releaser:   releaser,
			}, pipeline.NewOptions(cfg)))

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return serve(gctx, server) })

			if err := b.Open(ctx); err != nil {
				logger.Fatal(ctx, "could not connect to discord", zap.Error(err))
			}

			g.Go(func() error {
				// wait for interrupt or a failing webserver
				<-gctx.Done()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
				defer cancel()

				if err := b.Close(shutdownCtx); err != nil {
					logger.Error(shutdownCtx, "could not close bot", zap.Error(err))
				}
				logger.Info(shutdownCtx, "pending releases flushed", zap.Int("count", releaser.Stop()))

				if err := shutdownTracing(shutdownCtx); err != nil {
					logger.Error(shutdownCtx, "could not flush traces", zap.Error(err))
				}

				logger.Info(shutdownCtx, "stopping webserver...")
				if err := server.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("could not stop webserver: %w", err)
				}

				return nil
			})

			if err := g.Wait(); err != nil {
				logger.Error(ctx, "shutdown with error", zap.Error(err))
			}
		},
	}

	return cmd
}
