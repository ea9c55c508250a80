package jobtable

import (
	"fmt"
	"io"

	"github.com/joshuarubin/yash/internal/job"
)

// statusColumnWidth is the field width the status token is padded to so
// that command text lines up regardless of whether the status is
// "Running", "Stopped" or "Done" (spec.md §6).
const statusColumnWidth = 16

// formatLine renders one job-listing line per spec.md §6:
//
//	[<job_id>]<marker>  <status>         <command_text>
func formatLine(j *job.Job, marker string) string {
	return fmt.Sprintf("[%d]%s  %-*s%s", j.ID, marker, statusColumnWidth, j.Status.String(), j.CommandText)
}

// marker returns "+" for the head job (most recently inserted, still in
// the table) and "-" for every other job.
func (t *Table) marker(pgid int) string {
	if front := t.entries.Front(); front != nil && front.Value.(*job.Job).PGID == pgid {
		return "+"
	}
	return "-"
}

// PrintTable writes one line per Job, in tail-to-head (oldest-first)
// order, to w (spec.md §4.4's print_table).
func (t *Table) PrintTable(w io.Writer) {
	t.mu.Lock()
	lines := make([]string, 0, t.entries.Len())
	for el := t.entries.Back(); el != nil; el = el.Prev() {
		j := el.Value.(*job.Job)
		lines = append(lines, formatLine(j, t.marker(j.PGID)))
	}
	t.mu.Unlock()

	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

// PrintDoneNotices writes one line per notice, in the order given
// (SweepDone already returns tail-to-head order), to w (spec.md §4.4's
// print_done_notices / §6's Done notice).
func PrintDoneNotices(w io.Writer, notices []DoneNotice) {
	for _, n := range notices {
		fmt.Fprintln(w, formatLine(n.Job, n.Marker))
	}
}
