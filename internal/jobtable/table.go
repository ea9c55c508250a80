// Package jobtable implements the ordered job table described in
// spec.md §3/§4.4: an ordered sequence of Jobs with a distinguished
// head (most recently inserted), addressed by process group id.
package jobtable

import (
	"container/list"
	"sync"

	"github.com/joshuarubin/yash/internal/job"
)

// Table is the job table. The zero value is not usable; use New.
//
// Table owns a mutex because it is mutated from two goroutines: the
// controller's and internal/signalrouter's signal pump, which applies
// SIGCHLD-derived status changes directly (spec.md §5, §9). The cost is
// negligible since the table is never on a hot path.
type Table struct {
	mu          sync.Mutex
	entries     *list.List // front = head (most recent), back = tail (oldest)
	byPGID      map[int]*list.Element
	byMemberPID map[int]*list.Element
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		entries:     list.New(),
		byPGID:      map[int]*list.Element{},
		byMemberPID: map[int]*list.Element{},
	}
}

// Push inserts a new Job at the head, assigning it job_id = head.job_id + 1
// (or 1 if the table is empty), per spec.md §3/§4.4. pids holds every
// process in the pipeline (pids[0] == pgid); each is indexed so a
// pipeline's non-leader member can still be resolved back to its Job.
func (t *Table) Push(commandText string, pgid int, pids []int, status job.Status, inForeground bool) *job.Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := 1
	if front := t.entries.Front(); front != nil {
		id = front.Value.(*job.Job).ID + 1
	}

	j := &job.Job{
		ID:           id,
		PGID:         pgid,
		PIDs:         pids,
		CommandText:  commandText,
		Status:       status,
		InForeground: inForeground,
	}

	el := t.entries.PushFront(j)
	t.byPGID[pgid] = el
	for _, pid := range pids {
		t.byMemberPID[pid] = el
	}
	return j
}

// FindByPGID returns the Job with the given pgid, or nil.
func (t *Table) FindByPGID(pgid int) *job.Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	el, ok := t.byPGID[pgid]
	if !ok {
		return nil
	}
	return el.Value.(*job.Job)
}

// FindByMemberPID returns the Job owning pid, whether pid is the
// pipeline leader (its pgid) or a trailing stage, or nil. Used by
// internal/signalrouter, which only ever learns a reaped process's own
// pid from wait(2), not which job it belongs to.
func (t *Table) FindByMemberPID(pid int) *job.Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	el, ok := t.byMemberPID[pid]
	if !ok {
		return nil
	}
	return el.Value.(*job.Job)
}

// ForegroundJob returns the unique Job with InForeground set, or nil.
func (t *Table) ForegroundJob() *job.Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	for el := t.entries.Front(); el != nil; el = el.Next() {
		if j := el.Value.(*job.Job); j.InForeground {
			return j
		}
	}
	return nil
}

// MostRecentStoppedOrBackground returns the first Job, in head-to-tail
// order, whose status is Stopped or which is a non-Done background job.
// It is used by fg (spec.md §4.4).
func (t *Table) MostRecentStoppedOrBackground() *job.Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	for el := t.entries.Front(); el != nil; el = el.Next() {
		j := el.Value.(*job.Job)
		if j.Status == job.StatusStopped || j.IsBackground() {
			return j
		}
	}
	return nil
}

// MostRecentStopped returns the first Stopped Job in head-to-tail order.
// It is used by bg (spec.md §4.4).
func (t *Table) MostRecentStopped() *job.Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	for el := t.entries.Front(); el != nil; el = el.Next() {
		if j := el.Value.(*job.Job); j.Status == job.StatusStopped {
			return j
		}
	}
	return nil
}

// SetStatus updates the status of the Job with the given pgid, if any.
func (t *Table) SetStatus(pgid int, status job.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if el, ok := t.byPGID[pgid]; ok {
		el.Value.(*job.Job).Status = status
	}
}

// RecordMemberExit marks pid as individually exited on the Job led by
// pgid and, once every one of its members has been accounted for, sets
// its status to Done and clears InForeground. It reports whether the
// Job is now Done.
func (t *Table) RecordMemberExit(pgid, pid int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	el, ok := t.byPGID[pgid]
	if !ok {
		return false
	}

	j := el.Value.(*job.Job)
	if !j.RecordExit(pid) {
		return false
	}

	j.Status = job.StatusDone
	j.InForeground = false
	return true
}

// SetForegroundFlag updates InForeground on the Job with the given pgid,
// if any.
func (t *Table) SetForegroundFlag(pgid int, flag bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if el, ok := t.byPGID[pgid]; ok {
		el.Value.(*job.Job).InForeground = flag
	}
}

// PromoteToBackground applies job.Job.PromoteToBackground to the Job
// with the given pgid under the table's lock, if any, and reports
// whether it found one.
func (t *Table) PromoteToBackground(pgid int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	el, ok := t.byPGID[pgid]
	if !ok {
		return false
	}
	el.Value.(*job.Job).PromoteToBackground()
	return true
}

// Remove structurally deletes the Job with the given pgid, if any.
func (t *Table) Remove(pgid int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.removeLocked(pgid)
}

func (t *Table) removeLocked(pgid int) {
	el, ok := t.byPGID[pgid]
	if !ok {
		return
	}
	for _, pid := range el.Value.(*job.Job).PIDs {
		delete(t.byMemberPID, pid)
	}
	t.entries.Remove(el)
	delete(t.byPGID, pgid)
}

// DoneNotice pairs a just-removed Job with the marker its listing line
// should use, captured at the instant it was still in the table.
type DoneNotice struct {
	Job    *job.Job
	Marker string
}

// SweepDone removes every Job with status Done and returns a notice per
// removed Job in tail-to-head (oldest first) order, the order spec.md §6
// prints Done notices in.
func (t *Table) SweepDone() []DoneNotice {
	t.mu.Lock()
	defer t.mu.Unlock()

	var done []DoneNotice
	for el := t.entries.Back(); el != nil; {
		prev := el.Prev()
		j := el.Value.(*job.Job)
		if j.Status == job.StatusDone {
			done = append(done, DoneNotice{Job: j, Marker: t.marker(j.PGID)})
			t.removeLocked(j.PGID)
		}
		el = prev
	}
	return done
}

// Jobs returns every Job in tail-to-head (oldest first) order, the order
// spec.md §6 prints the job table in. The head job (front of the list) is
// last in this slice.
func (t *Table) Jobs() []*job.Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	jobs := make([]*job.Job, 0, t.entries.Len())
	for el := t.entries.Back(); el != nil; el = el.Prev() {
		jobs = append(jobs, el.Value.(*job.Job))
	}
	return jobs
}

// Len returns the number of Jobs currently in the table.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries.Len()
}
