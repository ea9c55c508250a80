// Package redirect opens the files named by a stage's Redirection so the
// re-exec'd child (internal/commands) can duplicate them over its
// standard streams before exec, per spec.md §4.2.
package redirect

import (
	"fmt"
	"os"

	"github.com/joshuarubin/yash/internal/lexer"
)

// Files holds the *os.File values opened for one stage's redirections,
// along with the list of every file Open opened.
type Files struct {
	Stdin, Stdout, Stderr *os.File
	opened                []*os.File
}

// Close releases every file Open opened for this Files.
func (f *Files) Close() {
	for _, file := range f.opened {
		_ = file.Close()
	}
}

// Open opens the named targets in r using fileMode for files created by
// ">"/"2>", per spec.md §4.2:
//   - stdin: open read-only; an error here fails the whole Open call.
//   - stdout/stderr: open write-only, create if absent, truncate if
//     present.
//
// Open runs inside the re-exec'd "child" process (internal/commands),
// after fork but before the target program is exec'd, so a failure here
// is fatal to that child alone: it writes its own diagnostic to its
// still-inherited stderr and exits, per spec.md §4.2/§7.
func Open(r lexer.Redirection, fileMode os.FileMode) (*Files, error) {
	files := &Files{}

	if r.Stdin != "" {
		f, err := os.OpenFile(r.Stdin, os.O_RDONLY, 0)
		if err != nil {
			files.Close()
			return nil, fmt.Errorf("%s: %w", r.Stdin, err)
		}
		files.Stdin = f
		files.opened = append(files.opened, f)
	}

	if r.Stdout != "" {
		f, err := os.OpenFile(r.Stdout, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode)
		if err != nil {
			files.Close()
			return nil, fmt.Errorf("%s: %w", r.Stdout, err)
		}
		files.Stdout = f
		files.opened = append(files.opened, f)
	}

	if r.Stderr != "" {
		f, err := os.OpenFile(r.Stderr, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode)
		if err != nil {
			files.Close()
			return nil, fmt.Errorf("%s: %w", r.Stderr, err)
		}
		files.Stderr = f
		files.opened = append(files.opened, f)
	}

	return files, nil
}
