package main

import (
	"context"
	"errors"
	"fmt"
	"fraudwatch/internal/config"
	"fraudwatch/internal/extractor"
	"fraudwatch/internal/pipeline"
	"strings"

	"github.com/spf13/cobra"
)

// errScamFound makes check exit non-zero when the text carries a scam link.
var errScamFound = errors.New("scam link found")

func checkCommand(cfg *config.Config) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "check [text]",
		Short: "Scans text for scam links without taking any platform action",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				text = args[0]
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("nothing to check, pass --text or an argument")
			}

			ctx := context.Background()
			clf := getClassifier(ctx, cfg)
			res := getResolver(ctx, cfg)
			out := cmd.OutOrStdout()

			for candidate := range extractor.Extract(text) {
				if !pipeline.Scannable(candidate) {
					_, _ = fmt.Fprintf(out, "skip    %s\n", candidate)

					continue
				}

				resolved := res.Resolve(ctx, candidate)
				scam, err := clf.Classify(ctx, resolved)
				if err != nil {
					return fmt.Errorf("could not classify %q: %w", resolved, err)
				}
				if !scam {
					_, _ = fmt.Fprintf(out, "clean   %s -> %s\n", candidate, resolved)

					continue
				}

				_, _ = fmt.Fprintf(out, "SCAM    %s -> %s\n", candidate, resolved)

				return errScamFound
			}

			_, _ = fmt.Fprintln(out, "no scam links found")

			return nil
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "Message text to scan")

	return cmd
}
