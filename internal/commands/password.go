package commands

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// passwordPrompt returns a function reading the password from the terminal without
// echo, or nil when stdin is not a terminal.
func passwordPrompt() func() (string, error) {
	fd := int(os.Stdin.Fd()) //nolint:gosec // file descriptors fit in an int

	if !term.IsTerminal(fd) {
		return nil
	}

	return func() (string, error) {
		fmt.Fprint(os.Stderr, "Password: ")

		password, err := term.ReadPassword(fd)

		fmt.Fprintln(os.Stderr)

		if err != nil {
			return "", fmt.Errorf("reading password from terminal: %w", err)
		}

		return string(password), nil
	}
}
