//go:build windows

package process

import (
	"errors"
	"os"
)

var errPTYUnsupported = errors.New("tty mode is not supported on windows")

func openPTY() (ptmx, tty *os.File, err error) {
	return nil, nil, errPTYUnsupported
}

func copyTerminalSize(ptmx *os.File) error {
	return errPTYUnsupported
}

func isPTYClosed(err error) bool {
	return false
}
