package job

// Status is the enum representing the lifecycle state of a Job, per
// spec.md §3.
type Status int

const (
	// StatusRunning means the job's process group is running in the
	// foreground or background.
	StatusRunning Status = iota
	// StatusStopped means the job's process group has been halted by a
	// terminal-stop signal and is resumable via fg or bg.
	StatusStopped
	// StatusDone means every process in the job's group has exited or
	// been terminated by a signal.
	StatusDone
)

// String returns the exact token used in the job-listing format
// (spec.md §6): "Running", "Stopped" or "Done".
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "Running"
	case StatusStopped:
		return "Stopped"
	case StatusDone:
		return "Done"
	default:
		return "Unknown"
	}
}
