package session

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	godap "github.com/google/go-dap"

	"github.com/netdap/netdap-mcp/internal/dap"
	netdaperrors "github.com/netdap/netdap-mcp/internal/errors"
	"github.com/netdap/netdap-mcp/internal/profile"
	"github.com/netdap/netdap-mcp/internal/watch"
	"github.com/netdap/netdap-mcp/pkg/types"
)

// Launch cleans up any existing client, starts a fresh netcoredbg, and
// issues launch + configurationDone against cfg.Program.
func (s *Session) Launch(ctx context.Context, cfg types.SessionConfig) (*LaunchCapabilities, error) {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()

	client, cmd, err := dap.SpawnNetcoredbg(s.netcoredbgPath, s.netcoredbgArgs)
	if err != nil {
		return nil, netdaperrors.AdapterSpawnFailed(err)
	}

	initResp, err := client.Initialize("netdap-mcp", "netdap-mcp")
	if err != nil {
		_ = client.Close()
		return nil, netdaperrors.DAPInitFailed(err)
	}

	resolvedEnv := resolveEnv(cfg)

	launchArgs := map[string]interface{}{
		"program":     cfg.Program,
		"args":        cfg.Args,
		"cwd":         cfg.Cwd,
		"stopAtEntry": cfg.StopAtEntry,
		"console":     "internalConsole",
	}
	if len(resolvedEnv) > 0 {
		launchArgs["env"] = resolvedEnv
	}

	if _, err := client.Launch(launchArgs); err != nil {
		_ = client.Close()
		return nil, netdaperrors.DAPLaunchFailed(cfg.Program, err)
	}

	if err := client.ConfigurationDone(); err != nil {
		_ = client.Close()
		return nil, netdaperrors.DAPLaunchFailed(cfg.Program, err)
	}

	s.wireClientEvents(client)

	cfg.Mode = types.ModeLaunch
	cfg.ResolvedEnv = resolvedEnv
	cfg.ProcessID = processPID(cmd)
	cfg.StartTime = time.Now()

	s.mu.Lock()
	s.client = client
	s.mode = types.ModeLaunch
	s.config = cfg
	s.mu.Unlock()

	return &LaunchCapabilities{Capabilities: initResp.Body, ResolvedEnv: resolvedEnv}, nil
}

// LaunchCapabilities is the information Launch/Attach report back.
type LaunchCapabilities struct {
	Capabilities godap.Capabilities
	ResolvedEnv  map[string]string
}

// resolveEnv implements launchProfile.environmentVariables ∪
// {ASPNETCORE_URLS ← launchProfile.applicationUrl} ∪ explicitEnv, with
// explicit winning on key conflicts.
func resolveEnv(cfg types.SessionConfig) map[string]string {
	resolved := make(map[string]string)

	if cfg.LaunchProfile != "" {
		if prof, err := profile.Resolve(filepath.Dir(cfg.Program), cfg.LaunchProfile); err == nil {
			for k, v := range prof.EnvironmentVariables {
				resolved[k] = v
			}
			if prof.ApplicationURL != "" {
				resolved["ASPNETCORE_URLS"] = prof.ApplicationURL
			}
		}
	}

	for k, v := range cfg.ExplicitEnv {
		resolved[k] = v
	}

	return resolved
}

// Attach cleans up any existing client, starts a fresh netcoredbg, and
// attaches to pid.
func (s *Session) Attach(ctx context.Context, pid int) (*LaunchCapabilities, error) {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()

	client, _, err := dap.SpawnNetcoredbg(s.netcoredbgPath, s.netcoredbgArgs)
	if err != nil {
		return nil, netdaperrors.AdapterSpawnFailed(err)
	}

	initResp, err := client.Initialize("netdap-mcp", "netdap-mcp")
	if err != nil {
		_ = client.Close()
		return nil, netdaperrors.DAPInitFailed(err)
	}

	if _, err := client.Attach(map[string]interface{}{"processId": pid}); err != nil {
		_ = client.Close()
		return nil, netdaperrors.DAPAttachFailed(pid, err)
	}

	if err := client.ConfigurationDone(); err != nil {
		_ = client.Close()
		return nil, netdaperrors.DAPAttachFailed(pid, err)
	}

	s.wireClientEvents(client)

	s.mu.Lock()
	s.client = client
	s.mode = types.ModeAttach
	s.config = types.SessionConfig{
		Mode:      types.ModeAttach,
		ProcessID: pid,
		StartTime: time.Now(),
	}
	s.mu.Unlock()

	return &LaunchCapabilities{Capabilities: initResp.Body, ResolvedEnv: nil}, nil
}

// Restart re-launches a launch-mode session from its saved config,
// optionally rebuilding the project first. Restart is only meaningful for
// launch-mode sessions: attach and watch sessions manage their own
// process lifecycle.
func (s *Session) Restart(ctx context.Context, rebuild bool) (*LaunchCapabilities, error) {
	s.mu.Lock()
	cfg := s.config
	mode := s.mode
	s.mu.Unlock()

	if mode != types.ModeLaunch {
		return nil, netdaperrors.InvalidParameter("mode", string(mode), "restart is only supported for launch-mode sessions")
	}

	if rebuild {
		buildCmd := exec.CommandContext(ctx, s.dotnetPath, "build")
		buildCmd.Dir = filepath.Dir(cfg.Program)
		if out, err := buildCmd.CombinedOutput(); err != nil {
			s.AppendOutput(fmt.Sprintf("[restart] dotnet build failed: %v: %s", err, string(out)))
		} else {
			s.AppendOutput("[restart] dotnet build succeeded")
		}
	}

	return s.Launch(ctx, cfg)
}

// StartWatch resolves the project's launch profile, starts the rebuild
// driver, and attaches to the first debuggee it discovers.
func (s *Session) StartWatch(ctx context.Context, projectPath, launchProfileName string, args []string, noHotReload bool) (int, error) {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()

	watchCtx, cancel := context.WithCancel(ctx)
	ctl := watch.NewController(s.dotnetPath, s.netcoredbgPath, s.netcoredbgArgs, s)

	client, pid, err := ctl.Start(watchCtx, projectPath, launchProfileName, args, noHotReload)
	if err != nil {
		cancel()
		return 0, err
	}

	s.wireClientEvents(client)

	s.mu.Lock()
	s.client = client
	s.watchCtl = ctl
	s.watchCancel = cancel
	s.mode = types.ModeWatch
	s.config = types.SessionConfig{
		Mode:          types.ModeWatch,
		Program:       projectPath,
		Args:          args,
		LaunchProfile: launchProfileName,
		ProcessID:     pid,
		StartTime:     time.Now(),
	}
	s.mu.Unlock()

	return pid, nil
}

// StopWatch terminates the driver and the attached client, discarding all
// watch state. Launch, Attach, StartWatch and Terminate run the same
// teardown (resetLocked) before doing their own work.
func (s *Session) StopWatch() error {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	return nil
}

// resetLocked tears down whatever client and watch controller are
// currently active. Must be called with s.mu held. When a watch
// controller owns the current client, its own Stop() performs
// Disconnect/Close, so the session only drops its reference here rather
// than closing the client a second time.
func (s *Session) resetLocked() {
	if s.watchCtl != nil {
		ctl := s.watchCtl
		s.watchCtl = nil
		s.client = nil
		if s.watchCancel != nil {
			s.watchCancel()
			s.watchCancel = nil
		}
		go func() { _ = ctl.Stop() }()
		return
	}
	s.cleanupClientLocked()
}

// Terminate tears down whatever is running: the client, the watch
// controller, and the driver.
func (s *Session) Terminate() error {
	s.mu.Lock()
	s.resetLocked()
	s.stop = lastStop{}
	s.mu.Unlock()
	return nil
}

func processPID(cmd *exec.Cmd) int {
	if cmd == nil || cmd.Process == nil {
		return 0
	}
	return cmd.Process.Pid
}

// --- watch.Host implementation ---

// OnReconnectStart marks the session as mid-reconnect; guard() starts
// rejecting operations with a Reconnecting error until OnReconnectEnd.
func (s *Session) OnReconnectStart() {
	s.mu.Lock()
	s.reconnecting = true
	s.mu.Unlock()
	s.AppendOutput("[watch] rebuild detected, reconnecting...")
}

// OnAttach stores the freshly (re)attached client and process id.
func (s *Session) OnAttach(client *dap.Client, pid int) {
	s.wireClientEvents(client)

	s.mu.Lock()
	s.client = client
	s.config.ProcessID = pid
	s.config.StartTime = time.Now()
	s.stop = lastStop{}
	s.mu.Unlock()
}

// OnReconnectEnd clears the reconnecting flag.
func (s *Session) OnReconnectEnd(success bool) {
	s.mu.Lock()
	s.reconnecting = false
	s.mu.Unlock()

	if success {
		s.AppendOutput("[watch] reattached")
	} else {
		s.AppendOutput("[watch] reattach failed, session idle")
	}
}
