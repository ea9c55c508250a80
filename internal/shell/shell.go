// Package shell constructs the single owning object spec.md §9 calls
// for: every component named in spec.md §2, wired together once at
// startup.
package shell

import (
	"io"

	"github.com/joshuarubin/yash/internal/config"
	"github.com/joshuarubin/yash/internal/controller"
	"github.com/joshuarubin/yash/internal/jobtable"
	"github.com/joshuarubin/yash/internal/lineacquirer"
	"github.com/joshuarubin/yash/internal/signalrouter"
	"github.com/joshuarubin/yash/internal/spawner"
)

// Shell owns every long-lived component for one run of yash.
type Shell struct {
	cfg        config.Config
	table      *jobtable.Table
	router     *signalrouter.Router
	acquirer   *lineacquirer.Acquirer
	controller *controller.Controller
}

// New constructs a Shell. reexecCommand is the path the spawner re-execs
// to reach this binary's hidden "child" command; pass "" for the
// production default ("/proc/self/exe").
func New(cfg config.Config, reexecCommand string, out io.Writer) (*Shell, error) {
	acquirer, err := lineacquirer.New(cfg.Prompt)
	if err != nil {
		return nil, err
	}

	table := jobtable.New()
	router := signalrouter.New(table, out)
	sp := spawner.New(spawner.Config{
		ReexecCommand:       reexecCommand,
		ShutdownGracePeriod: cfg.ShutdownGracePeriod,
	}, table)
	ctl := controller.New(cfg, table, acquirer, sp, router, out)

	return &Shell{cfg: cfg, table: table, router: router, acquirer: acquirer, controller: ctl}, nil
}

// Run blocks until end-of-input, returning nil for a clean exit.
func (s *Shell) Run() error {
	defer s.Close()
	return s.controller.Run()
}

// Close releases the terminal and signal registrations.
func (s *Shell) Close() {
	s.router.Stop()
	_ = s.acquirer.Close()
}

// DefaultReexecCommand re-exports spawner's production default so
// callers outside this package (cmd/yash, tests) don't need to import
// internal/spawner just to name it.
const DefaultReexecCommand = spawner.DefaultReexecCommand
