package commands

import (
	"os/exec"

	"golang.org/x/sys/unix"

	"github.com/joshuarubin/yash/internal/redirect"
)

// dup2Standard duplicates each opened file over its corresponding
// standard stream and closes the original, per spec.md §4.2. unix.Dup2
// is used instead of the standard library's syscall.Dup2, which is
// unavailable on some architectures that only implement dup3.
func dup2Standard(files *redirect.Files) error {
	if files.Stdin != nil {
		if err := unix.Dup2(int(files.Stdin.Fd()), 0); err != nil {
			return err
		}
		_ = files.Stdin.Close()
	}

	if files.Stdout != nil {
		if err := unix.Dup2(int(files.Stdout.Fd()), 1); err != nil {
			return err
		}
		_ = files.Stdout.Close()
	}

	if files.Stderr != nil {
		if err := unix.Dup2(int(files.Stderr.Fd()), 2); err != nil {
			return err
		}
		_ = files.Stderr.Close()
	}

	return nil
}

// lookPath resolves program to an absolute path, the way the teacher's
// StartJobChild does before its own syscall.Exec (pkg/worker/worker.go).
func lookPath(program string) (string, error) {
	return exec.LookPath(program)
}
