// Package job defines the Job record tracked by the job table (spec.md §3).
package job

import "strings"

// Job is a pipeline submitted by one user command.
//
// Job is not safe for concurrent use; every access to a live Job goes
// through internal/jobtable, whose mutex serializes the controller
// goroutine against internal/signalrouter's pump goroutine (spec.md §5).
type Job struct {
	// ID is the dense small integer assigned at insert time (spec.md §3).
	ID int

	// PGID is the OS process group id, equal to the first child's pid at
	// fork time.
	PGID int

	// PIDs holds every process in the pipeline, in stage order (one
	// entry for a single command, two for a pipeline). PIDs[0] always
	// equals PGID. The foreground wait blocks on every entry so a
	// pipeline is not reported Done until both stages have exited
	// (spec.md §8 scenario S5).
	PIDs []int

	// CommandText is the literal input line as typed, with a trailing
	// " &" appended the first time the job is demoted to the background
	// via bg (spec.md §4.5/§9).
	CommandText string

	// Status is one of Running, Stopped or Done.
	Status Status

	// InForeground is true while the shell is blocked in the foreground
	// wait for this job.
	InForeground bool

	// exitedPIDs tracks which of PIDs have individually been reaped as
	// exited or signaled. nil until the first member exits.
	exitedPIDs map[int]bool
}

// backgroundSuffix is appended to CommandText on a bg promotion unless
// CommandText already ends with it, so it appears at most once however
// often bg is run (spec.md §9's Open Question resolution).
const backgroundSuffix = " &"

// PromoteToBackground marks j Running and not in the foreground, and
// appends backgroundSuffix to its command text unless already present
// (testable property 8 in spec.md §8).
func (j *Job) PromoteToBackground() {
	j.Status = StatusRunning
	j.InForeground = false
	if !strings.HasSuffix(j.CommandText, backgroundSuffix) {
		j.CommandText += backgroundSuffix
	}
}

// IsBackground reports whether j is not currently the foreground job and
// has not finished, i.e. it is eligible for fg (spec.md §4.4's
// most_recent_stopped_or_background).
func (j *Job) IsBackground() bool {
	return !j.InForeground && j.Status != StatusDone
}

// RecordExit marks pid, a member of j.PIDs, as individually exited or
// signaled and reports whether every member has now been accounted
// for — the condition under which a pipeline job becomes Done (spec.md
// §8 scenario S5: a pipeline is not Done until both stages exit).
func (j *Job) RecordExit(pid int) bool {
	if j.exitedPIDs == nil {
		j.exitedPIDs = make(map[int]bool, len(j.PIDs))
	}
	j.exitedPIDs[pid] = true

	for _, p := range j.PIDs {
		if !j.exitedPIDs[p] {
			return false
		}
	}
	return true
}
