// Package harness builds argument vectors for the reflection-invocation
// harness binary and runs it either to completion (no-debug) or as a
// launched Session debuggee (debug). The harness itself is opaque: this
// package only knows its command-line contract, not its implementation.
package harness

import (
	"context"
	"fmt"
	"os/exec"

	netdaperrors "github.com/netdap/netdap-mcp/internal/errors"
)

// InvokeRequest is the argument contract of the invoke tool.
type InvokeRequest struct {
	Assembly string
	Type     string
	Method   string
	Args     []string
	CtorArgs []string
	Cwd      string
}

// BuildArgs renders the harness's command-line contract:
// --assembly <path> --type <FQTN> --method <name> [--arg <v>]... [--ctor-arg <v>]...
func BuildArgs(req InvokeRequest) []string {
	args := []string{
		"--assembly", req.Assembly,
		"--type", req.Type,
		"--method", req.Method,
	}
	for _, a := range req.Args {
		args = append(args, "--arg", a)
	}
	for _, a := range req.CtorArgs {
		args = append(args, "--ctor-arg", a)
	}
	return args
}

// Run executes the harness to completion (the invoke tool's debug=false
// path) and returns its combined stdout+stderr.
func Run(ctx context.Context, harnessPath string, req InvokeRequest) (string, error) {
	if harnessPath == "" {
		return "", netdaperrors.Wrap(netdaperrors.CodeConfigInvalid, "no harness binary configured", "Set harnessPath in the configuration file.", nil)
	}

	cmd := exec.CommandContext(ctx, harnessPath, BuildArgs(req)...)
	if req.Cwd != "" {
		cmd.Dir = req.Cwd
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), netdaperrors.Wrap(netdaperrors.CodeAdapterSpawnFailed,
			fmt.Sprintf("harness invocation failed: %v", err),
			"Check that the harness binary, assembly path, type, and method name are correct.", err).
			WithDetails("output", string(out))
	}
	return string(out), nil
}
