package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/pixvault/internal/config"
	"github.com/idelchi/pixvault/internal/logic"
)

// NewHideCommand creates a new cobra command for the hide subcommand.
func NewHideCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hide -i <input> -t <template> -d <image-dir> -m <manifest>",
		Aliases: []string{"h"},
		Short:   "Encrypt a file or directory and hide it in images",
		Args:    cobra.NoArgs,
		PreRunE: preRun(cfg, config.Hide),
		RunE: func(_ *cobra.Command, _ []string) error {
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			_, err = logic.Hide(cfg, logger)

			return err
		},
	}

	cmd.Flags().StringP("input", "i", "", "File or directory to hide")
	cmd.Flags().StringP("template", "t", "", "Image the carriers are made from")
	cmd.Flags().StringP("images", "d", "", "Directory the carrier images are written to")
	cmd.Flags().StringP("manifest", "m", "", "Manifest to write; .xml, .json, .yaml or .cbor")
	selectionFlags(cmd)
	cmd.Flags().Bool("blake3", false, "Also record a blake3 checksum of every image")

	return cmd
}

// selectionFlags registers the include/exclude flags on cmd.
func selectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("include", nil, "Only take files matching these globs (repeatable)")
	cmd.Flags().StringSlice("exclude", nil, "Leave out files matching these globs (repeatable)")
	cmd.Flags().String("include-from", "", "JSONC file holding an array of include globs")
	cmd.Flags().String("exclude-from", "", "JSONC file holding an array of exclude globs")
}
