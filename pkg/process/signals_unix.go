//go:build !windows

package process

import (
	"os"
	"syscall"
)

// forwardedSignals are passed on to every child
var forwardedSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP}

// resizeSignal triggers a PTY size refresh in tty mode
var resizeSignal os.Signal = syscall.SIGWINCH

var terminateSignal os.Signal = syscall.SIGTERM
