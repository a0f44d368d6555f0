// Package commands provides the command-line interface for the pixvault tool.
//
// It implements commands for:
//   - hiding a file or directory in images
//   - extracting it again
//   - verifying images against their manifest
//   - estimating carrier capacity
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra and viper.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/idelchi/pixvault/internal/config"
	"github.com/idelchi/pixvault/internal/logging"
)

// preRun returns a PreRunE handler that marks cfg with the running action, validates it
// and, when the action needs one, resolves the password.
func preRun(cfg *config.Config, action config.Action) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		cfg.Action = action

		if err := cfg.Validate(); err != nil {
			return err
		}

		if action == config.Capacity || action == config.Verify {
			return nil
		}

		return cfg.ResolvePassword(passwordPrompt())
	}
}

// newLogger builds the logger for one invocation from the output flags.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.New(os.Stderr, logging.Format(cfg.LogFormat), logging.Level(cfg.Quiet, cfg.Verbose))
	if err != nil {
		return nil, fmt.Errorf("configuring logging: %w", err)
	}

	return logger, nil
}
