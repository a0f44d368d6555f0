// Command pixvault hides encrypted backups in images.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/pixvault/internal/commands"
	"github.com/idelchi/pixvault/internal/config"
)

// version is set at build time.
var version = "unknown - build with -ldflags"

func main() {
	cfg := &config.Config{}

	root := commands.NewRootCommand(cfg, version)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Println(commands.Verdict, "FAIL") //nolint:forbidigo

		os.Exit(1)
	}
}
