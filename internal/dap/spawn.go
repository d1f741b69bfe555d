package dap

import (
	"fmt"
	"os/exec"
)

// SpawnNetcoredbg starts a netcoredbg child process in "--interpreter=vscode"
// mode and wires a Client to its stdio pipes. It does not issue any DAP
// requests; callers drive Initialize/Launch/Attach/ConfigurationDone
// themselves once the returned Client is ready.
func SpawnNetcoredbg(path string, extraArgs []string) (*Client, *exec.Cmd, error) {
	args := append(append([]string{}, extraArgs...), "--interpreter=vscode")
	cmd := exec.Command(path, args...)
	setProcAttr(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open netcoredbg stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open netcoredbg stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("failed to start netcoredbg: %w", err)
	}

	transport := NewStdioTransport(stdin, stdout)
	client := NewClient(transport)

	return client, cmd, nil
}

// KillProcessGroup kills the netcoredbg process started by SpawnNetcoredbg,
// and its process group where the platform supports one.
func KillProcessGroup(pid int, cmd *exec.Cmd) error {
	return killProcessGroup(pid, cmd)
}
