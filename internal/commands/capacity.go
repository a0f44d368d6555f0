package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/idelchi/pixvault/internal/config"
	"github.com/idelchi/pixvault/internal/logic"
)

// NewCapacityCommand creates a new cobra command for the capacity subcommand.
func NewCapacityCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "capacity -t <template> [-i <input>]",
		Aliases: []string{"cap"},
		Short:   "Show how much one image holds and how many an input needs",
		Args:    cobra.NoArgs,
		PreRunE: preRun(cfg, config.Capacity),
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			estimate, err := logic.Capacity(cfg, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Template:   %s (%dx%d)\n", estimate.Template, estimate.Width, estimate.Height)
			fmt.Fprintf(out, "Per image:  %s (%d bytes)\n",
				humanize.IBytes(uint64(estimate.PerCarrier)), estimate.PerCarrier) //nolint:gosec // capacity is positive

			if cfg.Input != "" {
				fmt.Fprintf(out, "Input:      %d file(s), %s\n",
					estimate.Files, humanize.IBytes(uint64(estimate.Bytes))) //nolint:gosec // sizes are non-negative
				fmt.Fprintf(out, "Images:     about %d for %s of encrypted data\n",
					estimate.Carriers, humanize.IBytes(uint64(estimate.Payload))) //nolint:gosec // sizes are non-negative
			}

			return nil
		},
	}

	cmd.Flags().StringP("template", "t", "", "Image the carriers are made from")
	cmd.Flags().StringP("input", "i", "", "File or directory to estimate for")
	selectionFlags(cmd)

	return cmd
}
