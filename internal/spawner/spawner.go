// Package spawner implements the two entry points of spec.md §4.3:
// launching a single-stage command and launching a two-stage pipeline,
// each in its own fresh process group, with a Job pushed onto the table
// immediately after fork.
package spawner

import (
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/joshuarubin/yash/internal/commands"
	"github.com/joshuarubin/yash/internal/job"
	"github.com/joshuarubin/yash/internal/jobtable"
	"github.com/joshuarubin/yash/internal/lexer"
)

// Config carries the spawner's own knobs.
type Config struct {
	// ReexecCommand is the path to re-exec in order to reach this
	// binary's hidden "child" command (spec.md §4.2). It defaults to
	// "/proc/self/exe" in production; tests override it with
	// os.Args[0], exactly like the teacher's own ReexecCommand field
	// (pkg/worker.Config).
	ReexecCommand string

	// ReexecEnv, if non-empty, is appended to the re-exec'd process's
	// environment. Tests use it to set GO_TEST_MODE=child so the test
	// binary recognizes itself as the "child" invocation, mirroring the
	// teacher's own Config.ReexecEnv (pkg/worker.Config).
	ReexecEnv []string

	// ShutdownGracePeriod bounds how long spawnPipeline waits for an
	// already-started first stage to exit after killing it because the
	// second stage failed to start (spec.md §4.3's fork-fatal clause).
	ShutdownGracePeriod time.Duration
}

// DefaultReexecCommand is the Linux magic symlink that always points at
// the running binary, even after this process has re-exec'd itself.
const DefaultReexecCommand = "/proc/self/exe"

// Spawner launches pipelines and tracks them in a job table.
type Spawner struct {
	cfg   Config
	table *jobtable.Table
}

// New returns a Spawner that pushes Jobs onto table.
func New(cfg Config, table *jobtable.Table) *Spawner {
	if cfg.ReexecCommand == "" {
		cfg.ReexecCommand = DefaultReexecCommand
	}
	return &Spawner{cfg: cfg, table: table}
}

// Spawn launches line (one or two stages) as described in spec.md §4.3
// and inserts a Job at the table's head. commandText is the literal
// input line as typed, including any trailing "&" the user entered.
// background selects whether the new Job starts in the foreground.
//
// A non-nil error here is always a fork-level failure (spec.md §4.3:
// "fork failure is fatal to the shell"); exec and redirection failures
// happen inside the re-exec'd child and are only ever observed later,
// through the normal reap path.
func (s *Spawner) Spawn(line *lexer.Line, background bool, commandText string) (*job.Job, error) {
	trace := newTraceID()

	var pids []int
	var err error

	switch len(line.Stages) {
	case 1:
		pids, err = s.spawnSingle(line.Stages[0])
	case 2:
		pids, err = s.spawnPipeline(line.Stages[0], line.Stages[1])
	default:
		err = errInvalidStageCount
	}

	if err != nil {
		slog.Error("spawn failed", "trace_id", trace.String(), "err", err)
		return nil, err
	}

	return s.table.Push(commandText, pids[0], pids, job.StatusRunning, !background), nil
}

var errInvalidStageCount = &stageCountError{}

type stageCountError struct{}

func (*stageCountError) Error() string { return "a pipeline must have one or two stages" }

// childCmd builds the exec.Cmd that re-execs this binary's hidden
// "child" command to apply stage's redirections and exec stage.Argv[0].
func (s *Spawner) childCmd(stage lexer.Stage) *exec.Cmd {
	args := []string{commands.ChildCommandName}

	if stage.Redir.Stdin != "" {
		args = append(args, "--stdin="+stage.Redir.Stdin)
	}
	if stage.Redir.Stdout != "" {
		args = append(args, "--stdout="+stage.Redir.Stdout)
	}
	if stage.Redir.Stderr != "" {
		args = append(args, "--stderr="+stage.Redir.Stderr)
	}

	args = append(args, "--")
	args = append(args, stage.Argv...)

	cmd := exec.Command(s.cfg.ReexecCommand, args...)
	if len(s.cfg.ReexecEnv) > 0 {
		cmd.Env = append(os.Environ(), s.cfg.ReexecEnv...)
	}

	return cmd
}

// spawnSingle implements spec.md §4.3's single-stage entry point.
func (s *Spawner) spawnSingle(stage lexer.Stage) ([]int, error) {
	cmd := s.childCmd(stage)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: 0}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return []int{cmd.Process.Pid}, nil
}

// spawnPipeline implements spec.md §4.3's two-stage entry point.
func (s *Spawner) spawnPipeline(stage1, stage2 lexer.Stage) ([]int, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	cmd1 := s.childCmd(stage1)
	cmd1.Stdin = os.Stdin
	cmd1.Stdout = w
	cmd1.Stderr = os.Stderr
	cmd1.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: 0}

	if err := cmd1.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return nil, err
	}

	pgid := cmd1.Process.Pid

	cmd2 := s.childCmd(stage2)
	cmd2.Stdin = r
	cmd2.Stdout = os.Stdout
	cmd2.Stderr = os.Stderr
	cmd2.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: pgid}

	if err := cmd2.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		// stage 1 already started; it would otherwise leak as an
		// untracked member of its own group. Kill it and drain its exit
		// within the configured grace period (spec.md §4.3's fork-fatal
		// clause), rather than leaving it to be discovered later by the
		// background reaper with no Job to attribute it to.
		s.drainOrphan(pgid)
		return nil, err
	}

	_ = r.Close()
	_ = w.Close()

	return []int{pgid, cmd2.Process.Pid}, nil
}

// drainOrphan kills the group led by pgid and waits up to
// s.cfg.ShutdownGracePeriod for it to be reaped, logging if it is still
// alive once the grace period elapses (it will then be picked up by the
// next background SIGCHLD sweep regardless).
func (s *Spawner) drainOrphan(pgid int) {
	_ = unix.Kill(-pgid, unix.SIGKILL)

	grace := s.cfg.ShutdownGracePeriod
	if grace <= 0 {
		return
	}

	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		var status unix.WaitStatus
		reaped, err := unix.Wait4(pgid, &status, unix.WNOHANG, nil)
		if err != nil || reaped == pgid {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}

	slog.Error("orphaned pipeline stage did not exit within grace period", "pgid", pgid)
}
