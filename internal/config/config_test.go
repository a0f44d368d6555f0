package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/idelchi/pixvault/internal/config"
)

func valid(action config.Action) config.Config {
	return config.Config{
		Password:  "testpassword",
		Algorithm: "aes",
		Mode:      "cbc",
		KDF:       "pbkdf2",
		Archive:   "zip",
		LogFormat: "text",
		Input:     "backup",
		Template:  "template.png",
		Images:    "images",
		Manifest:  "report.xml",
		Output:    "restored",
		Action:    action,
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*config.Config)
		want   string
	}{
		{name: "hide", modify: func(*config.Config) {}},
		{
			name:   "extract without input or template",
			modify: func(c *config.Config) { c.Action, c.Input, c.Template = config.Extract, "", "" },
		},
		{
			name:   "capacity needs only a template",
			modify: func(c *config.Config) { c.Action, c.Images, c.Manifest, c.Output = config.Capacity, "", "", "" },
		},
		{
			name:   "password and password file",
			modify: func(c *config.Config) { c.PasswordFile = "secret.txt" },
			want:   "--password and --password-file are mutually exclusive",
		},
		{
			name:   "hide without input",
			modify: func(c *config.Config) { c.Input = "" },
			want:   "--input is required",
		},
		{
			name:   "capacity without template",
			modify: func(c *config.Config) { c.Action, c.Template = config.Capacity, "" },
			want:   "--template is required",
		},
		{
			name:   "extract without output",
			modify: func(c *config.Config) { c.Action, c.Output = config.Extract, "" },
			want:   "--output is required",
		},
		{
			name:   "verify without manifest",
			modify: func(c *config.Config) { c.Action, c.Manifest = config.Verify, "" },
			want:   "--manifest is required",
		},
		{
			name:   "unknown algorithm",
			modify: func(c *config.Config) { c.Algorithm = "blowfish" },
			want:   `--algorithm must be one of [aes tripledes], got "blowfish"`,
		},
		{
			name:   "unknown archive",
			modify: func(c *config.Config) { c.Archive = "rar" },
			want:   "--archive must be one of",
		},
		{
			name:   "negative parallel",
			modify: func(c *config.Config) { c.Parallel = -1 },
			want:   `--parallel failed "gte" validation`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid(config.Hide)
			tt.modify(&cfg)

			err := cfg.Validate()

			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}

				return
			}

			if !errors.Is(err, config.ErrInvalid) {
				t.Fatalf("Validate() error = %v, want %v", err, config.ErrInvalid)
			}

			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestResolvePassword(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	file := filepath.Join(dir, "secret.txt")
	if err := os.WriteFile(file, []byte("from file\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	prompt := func() (string, error) { return "from prompt", nil }
	failing := func() (string, error) { return "", errors.New("no terminal") }

	tests := []struct {
		name    string
		cfg     config.Config
		prompt  func() (string, error)
		want    string
		wantErr bool
	}{
		{name: "flag wins over prompt", cfg: config.Config{Password: "from flag"}, prompt: prompt, want: "from flag"},
		{name: "file", cfg: config.Config{PasswordFile: file}, prompt: prompt, want: "from file"},
		{name: "prompt", cfg: config.Config{}, prompt: prompt, want: "from prompt"},
		{name: "no prompt", cfg: config.Config{}, want: ""},
		{name: "missing file", cfg: config.Config{PasswordFile: filepath.Join(dir, "missing")}, wantErr: true},
		{name: "prompt fails", cfg: config.Config{}, prompt: failing, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := tt.cfg

			err := cfg.ResolvePassword(tt.prompt)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolvePassword() error = %v, wantErr %v", err, tt.wantErr)
			}

			if !tt.wantErr && cfg.Password != tt.want {
				t.Errorf("Password = %q, want %q", cfg.Password, tt.want)
			}
		})
	}
}
