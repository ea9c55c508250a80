package spawner

import (
	"fmt"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/joshuarubin/yash/internal/commands"
	"github.com/joshuarubin/yash/internal/config"
	"github.com/joshuarubin/yash/internal/job"
	"github.com/joshuarubin/yash/internal/jobtable"
	"github.com/joshuarubin/yash/internal/lexer"
	"github.com/joshuarubin/yash/internal/waiter"
)

// TestMain recognizes a re-exec into this test binary's hidden "child"
// mode, the same GO_TEST_MODE convention the teacher uses in
// pkg/worker/worker_test.go, generalized from a single worker() call to
// cobra's own command dispatch since our child subcommand already knows
// how to parse its own flags.
func TestMain(m *testing.M) {
	switch os.Getenv("GO_TEST_MODE") {
	case "":
		os.Exit(m.Run())
	case "child":
		cmd := commands.Child(config.Default())
		cmd.SetArgs(os.Args[2:]) // os.Args[0]=binary, os.Args[1]="child"
		if err := cmd.Execute(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	}
}

func newTestSpawner(t *testing.T, table *jobtable.Table) *Spawner {
	t.Helper()
	return New(Config{
		ReexecCommand: os.Args[0],
		ReexecEnv:     []string{"GO_TEST_MODE=child"},
	}, table)
}

func waitDone(t *testing.T, pids []int) waiter.Result {
	t.Helper()
	res, err := waiter.WaitForeground(pids...)
	require.NoError(t, err)
	return res
}

func TestSpawnSingleStageRunsProgram(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	dir := t.TempDir()
	out := dir + "/out.txt"

	table := jobtable.New()
	sp := newTestSpawner(t, table)

	line := &lexer.Line{Stages: []lexer.Stage{{
		Argv:  []string{"sh", "-c", "echo hello"},
		Redir: lexer.Redirection{Stdout: out},
	}}}

	j, err := sp.Spawn(line, false, "sh -c 'echo hello' > out.txt")
	require.NoError(err)
	require.True(j.InForeground)
	require.Equal(job.StatusRunning, j.Status)
	require.Len(j.PIDs, 1)

	res := waitDone(t, j.PIDs)
	assert.Equal(waiter.OutcomeExited, res.Outcome)

	data, err := os.ReadFile(out)
	require.NoError(err)
	assert.Equal("hello\n", string(data))
}

func TestSpawnPipelineConnectsStages(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	dir := t.TempDir()
	in := dir + "/in.txt"
	out := dir + "/out.txt"
	require.NoError(os.WriteFile(in, []byte("a\nb\nc\n"), 0o644))

	table := jobtable.New()
	sp := newTestSpawner(t, table)

	line := &lexer.Line{Stages: []lexer.Stage{
		{Argv: []string{"cat"}, Redir: lexer.Redirection{Stdin: in}},
		{Argv: []string{"wc", "-l"}, Redir: lexer.Redirection{Stdout: out}},
	}}

	j, err := sp.Spawn(line, false, "cat < in.txt | wc -l > out.txt")
	require.NoError(err)
	require.Len(j.PIDs, 2)

	// WaitForeground blocks on both stages, so by the time it returns wc
	// has already exited and its output is fully written.
	res := waitDone(t, j.PIDs)
	assert.Equal(waiter.OutcomeExited, res.Outcome)

	data, err := os.ReadFile(out)
	require.NoError(err)
	assert.Equal("3\n", string(data))
}

func TestSpawnPushesJobWithBackgroundFlag(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	table := jobtable.New()
	sp := newTestSpawner(t, table)

	line := &lexer.Line{Stages: []lexer.Stage{{Argv: []string{"sh", "-c", "exit 0"}}}}

	j, err := sp.Spawn(line, true, "sh -c 'exit 0' &")
	require.NoError(err)
	assert.False(j.InForeground)

	found := table.FindByPGID(j.PGID)
	require.NotNil(found)
	assert.Equal(j.ID, found.ID)

	waitDone(t, j.PIDs)
}

func TestDrainOrphanReapsKilledGroup(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	sp := newTestSpawner(t, jobtable.New())
	sp.cfg.ShutdownGracePeriod = 2 * time.Second

	cmd := sp.childCmd(lexer.Stage{Argv: []string{"sleep", "5"}})
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: 0}
	require.NoError(cmd.Start())

	sp.drainOrphan(cmd.Process.Pid)

	// the group is gone; signaling it now must report no such process.
	assert.ErrorIs(unix.Kill(-cmd.Process.Pid, 0), unix.ESRCH)
}
