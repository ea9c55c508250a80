// Package waiter reaps child processes and classifies their outcome,
// per spec.md §4.6. The standard library's os.Process.Wait cannot
// report stop-by-signal (no WUNTRACED support), so this package calls
// golang.org/x/sys/unix.Wait4 directly, which is safe here because the
// spawner always gives exec.Cmd file-backed (not pipe-backed) standard
// streams, so no goroutine is racing to call cmd.Wait() on the same pid.
package waiter

import (
	"golang.org/x/sys/unix"
)

// Outcome is the three-way classification spec.md §4.6 requires.
type Outcome int

const (
	// OutcomeExited means the reaped process exited normally.
	OutcomeExited Outcome = iota
	// OutcomeSignaled means the reaped process was terminated by a
	// signal.
	OutcomeSignaled
	// OutcomeStopped means the reaped process was stopped by a
	// terminal-stop signal (e.g. forwarded SIGTSTP) and is resumable.
	OutcomeStopped
	// OutcomeAlreadyReaped means internal/signalrouter's SIGCHLD handler
	// won the race to reap pid first (spec.md §4.6's race handling); the
	// job table already reflects whatever it found.
	OutcomeAlreadyReaped
)

// Result is one reap outcome.
type Result struct {
	PID     int
	Outcome Outcome
}

// WaitForeground blocks until every pid in pids has been accounted for,
// per spec.md §4.6's foreground wait and §8 scenario S5 (a pipeline is
// not Done until both of its stages have exited). pids is a job's PIDs
// in stage order; for a single command it has one element.
//
// A Stopped outcome for any pid ends the wait immediately and is
// reported as the job's outcome: a stop signal forwarded to the whole
// process group (internal/signalrouter) stops every member at once, so
// there is no need to wait for the rest to report their own stop — the
// background SIGCHLD sweep picks those up later. An Exited or Signaled
// pid is recorded and the wait moves on to the next one; the last one
// observed is the job's reported outcome once all are accounted for.
func WaitForeground(pids ...int) (Result, error) {
	var last Result

	for _, pid := range pids {
		res, err := WaitOne(pid)
		if err != nil {
			return Result{}, err
		}

		last = res
		if res.Outcome == OutcomeStopped {
			return res, nil
		}
	}

	return last, nil
}

// WaitOne blocks on a single pid, per spec.md §4.6. internal/controller
// uses this directly (rather than WaitForeground) when it needs to
// record each pipeline member's exit on the job table as it happens.
func WaitOne(pid int) (Result, error) {
	var status unix.WaitStatus

	for {
		_, err := unix.Wait4(pid, &status, unix.WUNTRACED, nil)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if err == unix.ECHILD {
				return Result{PID: pid, Outcome: OutcomeAlreadyReaped}, nil
			}
			return Result{}, err
		}
		break
	}

	return Result{PID: pid, Outcome: classify(status)}, nil
}

// ReapBackground performs one non-blocking sweep of every reapable
// child, used for SIGCHLD-driven reaps in internal/signalrouter (spec.md
// §4.6). The controller's pre-prompt step does not call it; it only
// sweeps Jobs already marked Done.
func ReapBackground() []Result {
	var results []Result

	for {
		var status unix.WaitStatus
		pid, err := unix.Wait4(-1, &status, unix.WNOHANG|unix.WUNTRACED, nil)
		if err != nil || pid <= 0 {
			break
		}
		results = append(results, Result{PID: pid, Outcome: classify(status)})
	}

	return results
}

func classify(status unix.WaitStatus) Outcome {
	switch {
	case status.Stopped():
		return OutcomeStopped
	case status.Signaled():
		return OutcomeSignaled
	default:
		return OutcomeExited
	}
}
