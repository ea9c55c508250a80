// Package lineacquirer wraps github.com/chzyer/readline as the "line
// acquirer" external collaborator named in spec.md §2: it produces one
// line of input at a time, or signals EOF. History and tab completion
// are both disabled, since spec.md's non-goals exclude their semantics
// even though nothing stops yash from using a real line editor for
// cursor movement and basic editing.
package lineacquirer

import (
	"errors"
	"io"

	"github.com/chzyer/readline"
)

// ErrEOF is returned by ReadLine when the user signals end of input
// (Ctrl-D on an empty line), per spec.md §6.
var ErrEOF = io.EOF

// Acquirer reads lines from the controlling terminal.
type Acquirer struct {
	rl *readline.Instance
}

// New constructs an Acquirer that prompts with prompt.
func New(prompt string) (*Acquirer, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 prompt,
		HistoryLimit:           -1, // disabled
		DisableAutoSaveHistory: true,
		AutoComplete:           nil,
	})
	if err != nil {
		return nil, err
	}
	return &Acquirer{rl: rl}, nil
}

// ReadLine returns the next line of input, without its trailing
// newline. It returns ErrEOF when the user signals end of input.
// A bare interrupt (Ctrl-C on an empty line) is reported as
// readline.ErrInterrupt and is not itself EOF; the controller decides
// what an interrupt means for the current foreground job.
func (a *Acquirer) ReadLine() (string, error) {
	line, err := a.rl.Readline()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrEOF
		}
		return "", err
	}
	return line, nil
}

// SetPrompt updates the prompt text shown before the next ReadLine.
func (a *Acquirer) SetPrompt(prompt string) {
	a.rl.SetPrompt(prompt)
}

// Close releases the underlying terminal state.
func (a *Acquirer) Close() error {
	return a.rl.Close()
}

// IsInterrupt reports whether err is readline's interrupt sentinel
// (Ctrl-C), distinct from ErrEOF.
func IsInterrupt(err error) bool {
	return errors.Is(err, readline.ErrInterrupt)
}
