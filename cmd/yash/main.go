package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/joshuarubin/yash/internal/commands"
	"github.com/joshuarubin/yash/internal/config"
	"github.com/joshuarubin/yash/internal/shell"
)

func main() {
	if err := run(); err != nil {
		if code, ok := exitCode(err); ok {
			os.Exit(code)
		}
		slog.Error("yash", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()

	root := &cobra.Command{
		Use:   "yash",
		Short: "An interactive job-control shell",

		// silenced for the same reason the teacher silences these: when
		// re-executed as the hidden "child" subcommand, cobra's own usage
		// and error output would pollute the child's stderr.
		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: func(cmd *cobra.Command, _ []string) error {
			sh, err := shell.New(cfg, "", os.Stdout)
			if err != nil {
				return err
			}
			return sh.Run()
		},
	}

	cfg.Flags(root)
	root.AddCommand(commands.Child(cfg))

	_, err := root.ExecuteContextC(context.Background())
	return err
}

func exitCode(err error) (int, bool) {
	var eerr *exec.ExitError
	if errors.As(err, &eerr) {
		return eerr.ExitCode(), true
	}
	return 0, false
}
