// Package terminal decides whether command output is styled for a terminal.
package terminal

import (
	"io"

	"golang.org/x/term"
)

// fder is implemented by *os.File and anything else backed by a descriptor.
type fder interface {
	Fd() uintptr
}

// IsTerminal reports whether w writes to a terminal. Buffers, pipes, and
// files all report false.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(fder)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
