//go:build !windows

package process

import (
	"errors"
	"os"
	"syscall"

	"github.com/creack/pty"
)

// openPTY opens a pseudo-terminal pair sized like the parent's stdout
func openPTY() (ptmx, tty *os.File, err error) {
	ptmx, tty, err = pty.Open()
	if err != nil {
		return nil, nil, err
	}

	// Not fatal: stdout may not be a terminal
	_ = copyTerminalSize(ptmx)

	return ptmx, tty, nil
}

// copyTerminalSize copies the terminal size from stdout to the PTY
func copyTerminalSize(ptmx *os.File) error {
	size, err := pty.GetsizeFull(os.Stdout)
	if err != nil {
		return err
	}

	return pty.Setsize(ptmx, size)
}

// isPTYClosed reports whether a read error means the PTY slave side has
// been closed by every child, the PTY equivalent of EOF.
func isPTYClosed(err error) bool {
	return errors.Is(err, syscall.EIO)
}
