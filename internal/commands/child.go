// Package commands holds yash's hidden "child" cobra subcommand, the
// re-exec helper the spawner uses to apply redirections and exec the
// real target program (spec.md §4.2,
// §4.3), mirroring the teacher's own reexec/child command convention in
// internal/commands/child.go and pkg/worker.StartJobChild.
package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joshuarubin/yash/internal/config"
	"github.com/joshuarubin/yash/internal/lexer"
	"github.com/joshuarubin/yash/internal/redirect"
)

// ChildCommandName is the hidden subcommand name the spawner re-execs
// itself with.
const ChildCommandName = "child"

type child struct {
	stdin, stdout, stderr string
	cfg                   config.Config
}

// Child returns the hidden "child" command. It is never invoked directly
// by a user; internal/spawner constructs its argv.
func Child(cfg config.Config) *cobra.Command {
	var c child
	c.cfg = cfg

	cmd := &cobra.Command{
		Use:    ChildCommandName,
		Hidden: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return c.run(args)
		},
	}

	cmd.Flags().StringVar(&c.stdin, "stdin", "", "path to redirect stdin from")
	cmd.Flags().StringVar(&c.stdout, "stdout", "", "path to redirect stdout to")
	cmd.Flags().StringVar(&c.stderr, "stderr", "", "path to redirect stderr to")

	return cmd
}

// run applies c's redirections and execs args[0] with args[1:], per
// spec.md §4.2. Process-group membership was already assigned by the
// parent's SysProcAttr before this process was forked; execve preserves
// it across the exec below. This process never calls signal.Notify, so
// SIGINT/SIGTSTP/SIGCHLD are already at their default dispositions here
// and remain so after the exec, satisfying spec.md §4.5's "restore
// default dispositions before exec" without any extra code.
func (c *child) run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("child: no program given")
	}

	r := lexer.Redirection{Stdin: c.stdin, Stdout: c.stdout, Stderr: c.stderr}

	files, err := redirect.Open(r, c.cfg.RedirectFileMode)
	if err != nil {
		// spec.md §4.2/§7: a diagnostic tagged with the offending path,
		// written to the child's still-current stderr, then exit failure.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := dup2Standard(files); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	path, err := lookPath(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := syscall.Exec(path, args, os.Environ()); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
		os.Exit(1)
	}

	return nil // unreachable: syscall.Exec only returns on error
}
