// Package main provides the CLI entrypoint for fraudwatch, a chat moderation
// bot that bans members posting scam links. It wires subcommands (run, check,
// validate), loads configuration, and initializes logging.
package main

import (
	"context"
	"flag"
	"fraudwatch/internal/config"
	"fraudwatch/pkg/logger"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// main sets up the root Cobra command, loads configuration and logging, and
// registers subcommands before executing the CLI.
func main() {
	rootCmd := &cobra.Command{
		Use:          "fraudwatch",
		SilenceUsage: true,
	}

	// there is no way to access flags before command execution in cobra.
	// configPath here is parsed using the standard flags package.
	// following line is just added to prevent errors when Cobra is parsing the flags.
	rootCmd.PersistentFlags().StringP("config", "c", "config.yml", "Config File Path")

	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	configPath := flags.String("c", "config.yml", "The config file path")
	_ = flags.Parse(configArgs(os.Args[1:]))

	log.Println("loading config ...")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("could not load config file: ", err)
	}

	if err := logger.Setup(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatal("could not setup logger: ", err)
	}

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			_ = logger.Get(ctx).Sync()

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		runCommand(cfg),
		checkCommand(cfg),
		validateCommand(cfg),
	)

	err = rootCmd.Execute()
	_ = logger.Get(ctx).Sync()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}

// configArgs picks the -c/--config flag out of args so the subcommand name
// and its own flags do not stop the standard flag parser.
func configArgs(args []string) []string {
	for i, a := range args {
		switch {
		case (a == "-c" || a == "--config" || a == "-config") && i+1 < len(args):
			return []string{"-c", args[i+1]}
		case strings.HasPrefix(a, "-c="), strings.HasPrefix(a, "--config="), strings.HasPrefix(a, "-config="):
			_, v, _ := strings.Cut(a, "=")

			return []string{"-c", v}
		}
	}

	return nil
}
