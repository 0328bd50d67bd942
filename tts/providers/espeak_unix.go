//go:build !windows

package providers

import (
	"os"
	"syscall"
)

// suspendProcess pauses a running engine subprocess in place so playback
// can resume mid-utterance.
func suspendProcess(proc *os.Process) error {
	return proc.Signal(syscall.SIGSTOP)
}

func resumeProcess(proc *os.Process) error {
	return proc.Signal(syscall.SIGCONT)
}
