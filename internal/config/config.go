// Package config holds the handful of values that an otherwise hardcoded
// port of yash.c is allowed to vary, and the cobra flag wiring for them.
package config

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

// Default values, lifted directly from the original yash.c draft and
// from spec.md §6.
const (
	DefaultMaxLineLength    = 2000
	DefaultMaxTokenLength   = 30
	DefaultPrompt           = "# "
	DefaultRedirectFileMode = 0o664

	// DefaultShutdownGracePeriod bounds how long internal/spawner waits
	// for an already-started pipeline stage to exit after it kills that
	// stage on a fatal fork error for the stage joining it (spec.md
	// §4.3's "fork failure is fatal to the shell" clause extended to
	// cover the half-started-pipeline case).
	DefaultShutdownGracePeriod = 200 * time.Millisecond
)

// Config carries the values the controller, lexer, redirect applier and
// spawner need. It is constructed once in cmd/yash and passed by value
// into the components that need it.
type Config struct {
	MaxLineLength       int
	MaxTokenLength      int
	Prompt              string
	RedirectFileMode    os.FileMode
	ShutdownGracePeriod time.Duration
}

// Default returns the Config matching spec.md's literal constants.
func Default() Config {
	return Config{
		MaxLineLength:       DefaultMaxLineLength,
		MaxTokenLength:      DefaultMaxTokenLength,
		Prompt:              DefaultPrompt,
		RedirectFileMode:    DefaultRedirectFileMode,
		ShutdownGracePeriod: DefaultShutdownGracePeriod,
	}
}

// Flags registers yash's (currently empty) flag surface on cmd. yash is
// invoked with no arguments per spec.md §6; this method exists so the
// root command is wired the same way the teacher wires every subcommand's
// Config, even though there is nothing to flag today.
func (c *Config) Flags(cmd *cobra.Command) {
	_ = cmd
}
