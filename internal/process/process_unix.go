//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// Isolate makes cmd start in a new process group so that signals reach the
// command and its children together.
func Isolate(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort; callers also Wait on the command.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

// Suspend stops the process group with SIGSTOP.
func Suspend(pid int) error {
	return syscall.Kill(-pid, syscall.SIGSTOP)
}

// Continue resumes a group previously stopped by Suspend.
func Continue(pid int) error {
	return syscall.Kill(-pid, syscall.SIGCONT)
}
