package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/pixvault/internal/config"
	"github.com/idelchi/pixvault/internal/logic"
)

// NewExtractCommand creates a new cobra command for the extract subcommand.
func NewExtractCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "extract -d <image-dir> -m <manifest> -o <output-dir>",
		Aliases: []string{"x"},
		Short:   "Restore a hidden file or directory from its images",
		Args:    cobra.NoArgs,
		PreRunE: preRun(cfg, config.Extract),
		RunE: func(_ *cobra.Command, _ []string) error {
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			_, err = logic.Extract(cfg, logger)

			return err
		},
	}

	cmd.Flags().StringP("images", "d", "", "Directory holding the carrier images")
	cmd.Flags().StringP("manifest", "m", "", "Manifest written when hiding")
	cmd.Flags().StringP("output", "o", "", "Directory to restore into")

	return cmd
}

// NewVerifyCommand creates a new cobra command for the verify subcommand.
func NewVerifyCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "verify -d <image-dir> -m <manifest>",
		Aliases: []string{"check"},
		Short:   "Check carrier images against their manifest without extracting",
		Args:    cobra.NoArgs,
		PreRunE: preRun(cfg, config.Verify),
		RunE: func(_ *cobra.Command, _ []string) error {
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			_, err = logic.Verify(cfg, logger)

			return err
		},
	}

	cmd.Flags().StringP("images", "d", "", "Directory holding the carrier images")
	cmd.Flags().StringP("manifest", "m", "", "Manifest written when hiding")

	return cmd
}
