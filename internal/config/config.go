// Package config holds the settings of one pixvault invocation, as resolved from flags,
// environment variables and an optional configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is returned when the configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Action names the operation a subcommand runs.
type Action string

const (
	// Hide encrypts an input and embeds it into carrier images.
	Hide Action = "hide"
	// Extract validates carrier images and restores the hidden input.
	Extract Action = "extract"
	// Verify validates carrier images against a manifest without extracting.
	Verify Action = "verify"
	// Capacity reports how much a template can carry.
	Capacity Action = "capacity"
)

// Config holds the configuration for the application.
type Config struct {
	// Password the keys are derived from
	Password string `label:"--password" mapstructure:"password" validate:"exclusive=PasswordFile"`

	// PasswordFile is read instead of Password when set
	PasswordFile string `label:"--password-file" mapstructure:"password-file"`

	// Cipher selection
	Algorithm string `label:"--algorithm" validate:"oneof=aes tripledes"`
	Mode      string `label:"--mode"      validate:"oneof=cbc ecb"`
	KDF       string `label:"--kdf"       validate:"oneof=pbkdf2 legacy" mapstructure:"kdf"`

	// Archive format of the hidden payload
	Archive string `label:"--archive" validate:"oneof=zip tar.zst tar.lz4"`

	// Runtime behavior
	Parallel           int    `label:"--parallel"   validate:"gte=0"`
	Quiet              bool
	Verbose            bool
	LogFormat          string `label:"--log-format" validate:"oneof=text json" mapstructure:"log-format"`
	Stats              bool
	PreserveTimestamps bool `mapstructure:"preserve-timestamps"`

	// Selection of input files, hide only
	Include     []string
	Exclude     []string
	IncludeFrom string `mapstructure:"include-from"`
	ExcludeFrom string `mapstructure:"exclude-from"`

	// Blake3 adds a blake3 checksum to every manifest entry
	Blake3 bool

	// Paths
	Input    string `label:"--input"    validate:"required_if=Action hide"`
	Template string `label:"--template" validate:"required_if=Action hide,required_if=Action capacity"`
	Images   string `label:"--images"   validate:"required_unless=Action capacity"`
	Manifest string `label:"--manifest" validate:"required_unless=Action capacity"`
	Output   string `label:"--output"   validate:"required_if=Action extract"`

	// Action is set by the subcommand being run
	Action Action `mapstructure:"-"`
}

// Validate validates the configuration against the struct tags.
func (c *Config) Validate() error {
	validate, err := newValidator()
	if err != nil {
		return err
	}

	err = validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("validating configuration: %w", err)
	}

	problems := make([]error, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		problems = append(problems, errors.New(describe(fe)))
	}

	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(problems...))
}

// ResolvePassword fills Password from PasswordFile, or from prompt when neither is set
// and prompt is not nil. A single trailing line break is stripped from the file content.
func (c *Config) ResolvePassword(prompt func() (string, error)) error {
	switch {
	case c.PasswordFile != "":
		data, err := os.ReadFile(filepath.Clean(c.PasswordFile))
		if err != nil {
			return fmt.Errorf("reading password file: %w", err)
		}

		c.Password = strings.TrimSuffix(strings.TrimSuffix(string(data), "\n"), "\r")
	case c.Password == "" && prompt != nil:
		password, err := prompt()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		c.Password = password
	}

	return nil
}
