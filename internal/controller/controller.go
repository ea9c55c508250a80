// Package controller implements the main read-dispatch-wait loop and
// built-ins described in spec.md §4.7.
package controller

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sys/unix"

	"github.com/joshuarubin/yash/internal/config"
	"github.com/joshuarubin/yash/internal/job"
	"github.com/joshuarubin/yash/internal/jobtable"
	"github.com/joshuarubin/yash/internal/lexer"
	"github.com/joshuarubin/yash/internal/lineacquirer"
	"github.com/joshuarubin/yash/internal/signalrouter"
	"github.com/joshuarubin/yash/internal/spawner"
	"github.com/joshuarubin/yash/internal/waiter"
)

// Built-in names recognized in stage 1's first token (spec.md §4.7 step 5).
const (
	builtinJobs = "jobs"
	builtinFg   = "fg"
	builtinBg   = "bg"
)

// Controller is the shell's single owning object for the main loop,
// per spec.md §9's "model as a single owning object" design note.
type Controller struct {
	cfg      config.Config
	table    *jobtable.Table
	acquirer *lineacquirer.Acquirer
	spawner  *spawner.Spawner
	router   *signalrouter.Router
	out      io.Writer
}

// New wires the components named in spec.md §2 into one Controller.
func New(cfg config.Config, table *jobtable.Table, acquirer *lineacquirer.Acquirer, sp *spawner.Spawner, router *signalrouter.Router, out io.Writer) *Controller {
	return &Controller{cfg: cfg, table: table, acquirer: acquirer, spawner: sp, router: router, out: out}
}

// Run executes the controller loop until end-of-input, returning nil on
// a clean EOF exit (spec.md §6: exit status 0).
func (c *Controller) Run() error {
	for {
		c.printDoneAndPurge()

		line, err := c.acquirer.ReadLine()
		if err != nil {
			if errors.Is(err, lineacquirer.ErrEOF) {
				return nil
			}
			if lineacquirer.IsInterrupt(err) {
				continue
			}
			return err
		}

		parsed, perr := lexer.Parse(line, c.cfg.MaxLineLength, c.cfg.MaxTokenLength)
		if perr != nil {
			fmt.Fprintln(c.out)
			continue
		}

		if len(parsed.Stages) == 0 || len(parsed.Stages[0].Argv) == 0 {
			continue
		}

		switch parsed.Stages[0].Argv[0] {
		case builtinJobs:
			c.table.PrintTable(c.out)
		case builtinFg:
			c.runFg()
		case builtinBg:
			c.runBg()
		default:
			if err := c.launch(parsed, line); err != nil {
				return err
			}
		}
	}
}

// printDoneAndPurge implements spec.md §4.7 step 3.
func (c *Controller) printDoneAndPurge() {
	notices := c.table.SweepDone()
	jobtable.PrintDoneNotices(c.out, notices)
}

// launch implements spec.md §4.7 step 6: invoke the spawner, then, for
// a foreground launch, perform the foreground wait. A fork failure is
// fatal to the shell (spec.md §4.3/§7's "own inability to fork" clause),
// so it is returned rather than merely logged.
func (c *Controller) launch(parsed *lexer.Line, raw string) error {
	if !parsed.Background {
		c.router.SetForegroundCommandText(raw)
	}

	j, err := c.spawner.Spawn(parsed, parsed.Background, raw)
	if err != nil {
		return fmt.Errorf("fork failed: %w", err)
	}

	if parsed.Background {
		return nil
	}

	c.waitForeground(j)
	return nil
}

// waitForeground blocks on every process in j.PIDs in turn, recording
// each member's exit on the table as it completes so a pipeline is not
// marked Done until every stage has been accounted for (spec.md §8
// scenario S5), then applies spec.md §4.6's three-way outcome
// classification once the job as a whole is resolved.
func (c *Controller) waitForeground(j *job.Job) {
	for _, pid := range j.PIDs {
		res, err := waiter.WaitOne(pid)
		if err != nil {
			slog.Error("foreground wait failed", "pgid", j.PGID, "pid", pid, "err", err)
			c.table.Remove(j.PGID)
			return
		}

		switch res.Outcome {
		case waiter.OutcomeStopped:
			c.table.SetStatus(j.PGID, job.StatusStopped)
			c.table.SetForegroundFlag(j.PGID, false)
			return
		case waiter.OutcomeAlreadyReaped:
			// internal/signalrouter's SIGCHLD handler won the race to
			// reap pid and already recorded its exit on the table;
			// move on to any other member still outstanding.
		case waiter.OutcomeExited, waiter.OutcomeSignaled:
			c.table.RecordMemberExit(j.PGID, pid)
		}
	}

	if found := c.table.FindByPGID(j.PGID); found != nil && found.Status == job.StatusDone {
		c.table.Remove(j.PGID)
	}
}

// runFg implements spec.md §4.7 step 5's fg built-in.
func (c *Controller) runFg() {
	j := c.table.MostRecentStoppedOrBackground()
	if j == nil {
		return
	}

	fmt.Fprintln(c.out, j.CommandText)

	c.table.SetStatus(j.PGID, job.StatusRunning)
	c.table.SetForegroundFlag(j.PGID, true)
	c.router.SetForegroundCommandText(j.CommandText)

	_ = signalrouter.KillGroup(j.PGID, unix.SIGCONT)

	c.waitForeground(j)
}

// runBg implements spec.md §4.7 step 5's bg built-in.
func (c *Controller) runBg() {
	j := c.table.MostRecentStopped()
	if j == nil {
		return
	}

	c.table.PromoteToBackground(j.PGID)
	_ = signalrouter.KillGroup(j.PGID, unix.SIGCONT)
}
