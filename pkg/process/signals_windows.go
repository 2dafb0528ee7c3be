//go:build windows

package process

import "os"

var forwardedSignals = []os.Signal{os.Interrupt}

var resizeSignal os.Signal

var terminateSignal os.Signal = os.Kill
