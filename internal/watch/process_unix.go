//go:build !windows

package watch

import (
	"os/exec"
	"syscall"
)

// killPid sends SIGKILL to pid. A pid that is already gone is not an error.
func killPid(pid int) error {
	if pid <= 0 {
		return nil
	}
	if err := syscall.Kill(pid, syscall.SIGKILL); err != nil && err != syscall.ESRCH {
		return err
	}
	return nil
}

// terminatePid sends SIGTERM to pid, used for the driver's graceful stop.
func terminatePid(pid int) error {
	if pid <= 0 {
		return nil
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil && err != syscall.ESRCH {
		return err
	}
	return nil
}

// processAlive probes liveness with signal 0.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return syscall.Kill(pid, syscall.Signal(0)) == nil
}

// setProcAttr puts the driver in its own session so its process group can
// be signaled independently of this process's.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
