package watch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gopsprocess "github.com/shirou/gopsutil/v4/process"
)

// errDebuggeeNotFound is returned by findDebuggeeChild when no process in
// the table currently matches the discovery rule.
var errDebuggeeNotFound = errors.New("no debuggee process found")

// findDebuggeeChild scans the process table for the actual running
// application, not the rebuild driver or one of its transient tool
// children (the MSBuild node, a nested "dotnet watch", etc).
//
// The rule: the debuggee's command line contains "<project>/bin/" and does
// not contain "watch", "MSBuild", or "grep". excludePid skips a pid known
// not to be the debuggee (the previous debuggee, during reattach).
func findDebuggeeChild(projectDir string, excludePid int32) (int32, error) {
	marker := filepath.ToSlash(filepath.Join(projectDir, "bin")) + "/"

	procs, err := gopsprocess.Processes()
	if err != nil {
		return 0, fmt.Errorf("failed to enumerate processes: %w", err)
	}

	for _, p := range procs {
		if p.Pid == excludePid {
			continue
		}
		cmdline, err := p.Cmdline()
		if err != nil || cmdline == "" {
			continue
		}
		normalized := filepath.ToSlash(cmdline)
		if !strings.Contains(normalized, marker) {
			continue
		}
		if strings.Contains(normalized, "watch") ||
			strings.Contains(normalized, "MSBuild") ||
			strings.Contains(normalized, "grep") {
			continue
		}
		return p.Pid, nil
	}

	return 0, errDebuggeeNotFound
}

// isOrphaned reports whether pid has been reparented to pid 1 (init), the
// signature of the driver having killed its direct child wrapper while
// leaving the application process behind.
func isOrphaned(pid int32) bool {
	p, err := gopsprocess.NewProcess(pid)
	if err != nil {
		return false
	}
	ppid, err := p.Ppid()
	if err != nil {
		return false
	}
	return ppid == 1
}
