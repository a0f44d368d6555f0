package commands

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/pixvault/internal/config"
)

// Verdict is printed after every operation, followed by SUCCESS or FAIL.
const Verdict = "Result of operation:"

// NewRootCommand creates the root command with common configuration.
// It sets up environment variable binding and flag handling.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "pixvault [flags] command [flags]",
		Short: "Hide encrypted backups in images",
		Long: `Encrypts a file or directory with a password-derived key, packs it into one archive
and spreads the archive over the least significant bits of as many images as needed.
A manifest records the images in order together with their checksums, and is all that
is needed besides the images to restore the original.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return load(v, cmd, cfg)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Verdict, "SUCCESS")
		},
	}

	flags := root.PersistentFlags()

	flags.String("config", "", "Path to a configuration file (yaml, json or toml)")
	flags.StringP("password", "p", "", "Password to derive the keys from, prompted for when omitted")
	flags.String("password-file", "", "Path to a file holding the password")
	flags.String("algorithm", "aes", "Block cipher: aes or tripledes")
	flags.String("mode", "cbc", "Cipher mode: cbc or ecb")
	flags.String("kdf", "pbkdf2",
		"Key derivation: pbkdf2, or legacy (raw password bytes as key). "+
			"Backups written without PBKDF2 cannot be restored under the default and need --kdf legacy")
	flags.String("archive", "zip", "Archive format of the hidden payload: zip, tar.zst or tar.lz4")
	flags.IntP("parallel", "j", runtime.NumCPU(), "Number of parallel workers, defaults to number of CPUs")
	flags.BoolP("quiet", "q", false, "Only log warnings and errors")
	flags.BoolP("verbose", "v", false, "Log every step")
	flags.String("log-format", "text", "Log format: text or json")
	flags.Bool("stats", false, "Print statistics after the operation")
	flags.Bool("preserve-timestamps", false, "Keep the modification time of every processed file")

	root.AddCommand(
		NewHideCommand(cfg),
		NewExtractCommand(cfg),
		NewVerifyCommand(cfg),
		NewCapacityCommand(cfg),
	)

	return root
}

// load resolves flags, PIXVAULT_* environment variables and the optional configuration
// file, in that order of precedence, into cfg.
func load(v *viper.Viper, cmd *cobra.Command, cfg *config.Config) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	v.SetEnvPrefix("PIXVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading configuration file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	return nil
}
