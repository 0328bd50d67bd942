//go:build windows

package providers

import (
	"errors"
	"os"
)

var errNoProcessSuspend = errors.New("process suspension is not supported on this platform")

func suspendProcess(proc *os.Process) error {
	return errNoProcessSuspend
}

func resumeProcess(proc *os.Process) error {
	return errNoProcessSuspend
}
