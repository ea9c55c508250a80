// Package signalrouter installs the shell's terminal signal handling,
// per spec.md §4.5. Unlike a C signal handler, a Go signal handler
// (the goroutine behind signal.Notify) runs fully concurrently with
// whatever the main goroutine is doing — including a blocked foreground
// wait — so interrupt and stop forwarding, and background reaping, are
// done directly from that goroutine against internal/jobtable, which is
// safe for concurrent access by its own mutex. This is the same
// discipline spec.md §9 describes in source terms ("handlers only
// append, mutate status, or remove nodes they just reaped").
package signalrouter

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/joshuarubin/yash/internal/job"
	"github.com/joshuarubin/yash/internal/jobtable"
	"github.com/joshuarubin/yash/internal/waiter"
)

// Event notifies the controller that something happened asynchronously
// and the prompt may need redrawing. The router has already applied any
// job-table mutation by the time an Event is sent.
type Event struct{}

// Router owns the OS signal registration and reacts to it against a
// shared job table.
type Router struct {
	table *jobtable.Table
	out   io.Writer

	sigCh   chan os.Signal
	eventCh chan Event
	done    chan struct{}

	mu                    sync.Mutex
	foregroundCommandText string
}

const eventBuffer = 64

// New installs signal handlers for SIGINT, SIGTSTP and SIGCHLD and
// starts routing them against table. Output belonging to "no foreground
// job" cases (a bare newline before redrawing the prompt) is written to
// out. Call Stop to release the registration.
func New(table *jobtable.Table, out io.Writer) *Router {
	r := &Router{
		table:   table,
		out:     out,
		sigCh:   make(chan os.Signal, eventBuffer),
		eventCh: make(chan Event, eventBuffer),
		done:    make(chan struct{}),
	}

	signal.Notify(r.sigCh, unix.SIGINT, unix.SIGTSTP, unix.SIGCHLD)

	// SIGTTIN/SIGTTOU arrive when a background job tries to read from or
	// write to the terminal; spec.md §4.5 has the shell ignore both
	// rather than let the default action stop it.
	signal.Ignore(unix.SIGTTIN, unix.SIGTTOU)

	go r.pump()

	return r
}

func (r *Router) pump() {
	for {
		select {
		case sig := <-r.sigCh:
			switch sig {
			case unix.SIGINT:
				r.handleInterrupt()
			case unix.SIGTSTP:
				r.handleStop()
			case unix.SIGCHLD:
				r.handleChild()
			}
		case <-r.done:
			return
		}
	}
}

// SetForegroundCommandText caches text as the command string for
// whichever Job is about to become foreground, so handleChild can
// synthesize a Job if a stop races ahead of the spawner's own insert
// (spec.md §4.6's race handling). The spawner inserts the Job before
// this race window can matter in practice, but the cache is kept live
// for every foreground launch regardless.
func (r *Router) SetForegroundCommandText(text string) {
	r.mu.Lock()
	r.foregroundCommandText = text
	r.mu.Unlock()
}

func (r *Router) cachedForegroundCommandText() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.foregroundCommandText
}

func (r *Router) handleInterrupt() {
	if j := r.table.ForegroundJob(); j != nil {
		_ = KillGroup(j.PGID, unix.SIGINT)
		return
	}
	fmt.Fprintln(r.out)
	r.notify()
}

func (r *Router) handleStop() {
	if j := r.table.ForegroundJob(); j != nil {
		r.table.SetForegroundFlag(j.PGID, false)
		_ = KillGroup(j.PGID, unix.SIGTSTP)
		return
	}
	fmt.Fprintln(r.out)
	r.notify()
}

// handleChild drains every reapable child non-blockingly and applies
// spec.md §4.6's background-reap translation. The reaped pid may be a
// pipeline's trailing stage rather than its pgid-naming leader, so the
// Job is looked up by member pid and all table mutation below is keyed
// off that Job's own PGID. A pid that races ahead of the spawner's
// table insert is synthesized as a Stopped Job per spec.md §4.6's
// race-handling clause; a race on exit/signal-termination is otherwise
// silently absorbed, since there is nothing useful to show for a Job
// that was never inserted.
func (r *Router) handleChild() {
	for _, res := range waiter.ReapBackground() {
		j := r.table.FindByMemberPID(res.PID)
		if j == nil {
			if res.Outcome == waiter.OutcomeStopped {
				r.table.Push(r.cachedForegroundCommandText(), res.PID, []int{res.PID}, job.StatusStopped, false)
			}
			continue
		}

		switch res.Outcome {
		case waiter.OutcomeExited, waiter.OutcomeSignaled:
			r.table.RecordMemberExit(j.PGID, res.PID)
		case waiter.OutcomeStopped:
			r.table.SetStatus(j.PGID, job.StatusStopped)
			r.table.SetForegroundFlag(j.PGID, false)
		}
	}

	r.notify()
}

func (r *Router) notify() {
	select {
	case r.eventCh <- Event{}:
	default:
	}
}

// Events returns the channel of asynchronous notifications. The
// controller is not required to drain it for correctness — all table
// mutation already happened — but can use it to redraw promptly.
func (r *Router) Events() <-chan Event {
	return r.eventCh
}

// Stop unregisters the signal handlers and halts the pump goroutine.
func (r *Router) Stop() {
	signal.Stop(r.sigCh)
	close(r.done)
}

// KillGroup sends sig to every process in the group led by pgid, the
// mechanism spec.md §4.5 uses to forward SIGINT/SIGTSTP to the
// foreground job's whole process group.
func KillGroup(pgid int, sig unix.Signal) error {
	return unix.Kill(-pgid, sig)
}
