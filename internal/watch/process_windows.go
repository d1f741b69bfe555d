//go:build windows

package watch

import (
	"os"
	"os/exec"
	"syscall"

	gopsprocess "github.com/shirou/gopsutil/v4/process"
)

// killPid kills pid. Windows has no SIGKILL; Process.Kill() is the closest
// equivalent.
func killPid(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	if err := proc.Kill(); err != nil && err.Error() != "os: process already finished" {
		return err
	}
	return nil
}

// terminatePid on Windows has no graceful-signal equivalent to SIGTERM
// without attaching a console control handler, so it falls back to Kill.
func terminatePid(pid int) error {
	return killPid(pid)
}

// processAlive probes liveness via the process table rather than a signal.
func processAlive(pid int) bool {
	alive, err := gopsprocess.PidExists(int32(pid))
	return err == nil && alive
}

// setProcAttr creates a new process group so the driver's children are
// distinguishable from this process's own.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
