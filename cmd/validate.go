package main

import (
	"fmt"
	"fraudwatch/internal/config"
	"fraudwatch/pkg/suite"

	"github.com/spf13/cobra"
)

func validateCommand(cfg *config.Config) *cobra.Command {
	var forRun bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validates the configuration and exits",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := suite.ValidConfig(cfg.Suite); err != nil {
				return fmt.Errorf("could not validate suite config: %w", err)
			}
			if forRun {
				if err := cfg.ValidateRun(); err != nil {
					return fmt.Errorf("could not validate run config: %w", err)
				}
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")

			return nil
		},
	}
	cmd.Flags().BoolVar(&forRun, "run", false, "Also check the settings required by the run command")

	return cmd
}
