// Package watch implements the hot-reload reconnection engine: it drives
// "dotnet watch run" as a rebuild driver, discovers the actual debuggee
// process under it, and keeps a DAP client attached across every rebuild
// cycle, reapplying the prior breakpoint set on each reattach.
package watch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	godap "github.com/google/go-dap"
	"github.com/netdap/netdap-mcp/internal/dap"
	netdaperrors "github.com/netdap/netdap-mcp/internal/errors"
	"github.com/netdap/netdap-mcp/internal/profile"
)

const (
	findDebuggeePollInterval = 500 * time.Millisecond
	findDebuggeeTimeout      = 30 * time.Second
	postDiscoveryDelay       = 1 * time.Second
	oldPidPollInterval       = 50 * time.Millisecond
	oldPidTimeout            = 5 * time.Second
	portPollInterval         = 300 * time.Millisecond
	portTimeout              = 10 * time.Second
	livenessPollInterval     = 1 * time.Second
)

// Host is the callback surface a Session implements so the Controller can
// hand back attached clients and push status/output changes without the
// watch package importing session (which would cycle back here).
type Host interface {
	// AppendOutput appends one line to the session's bounded output buffer.
	AppendOutput(line string)
	// ReplayBreakpoints re-sends every tracked breakpoint file's full set
	// over a freshly attached client. Per-file failures must be absorbed
	// by the implementation so one broken file cannot break the reconnect.
	ReplayBreakpoints(client *dap.Client)
	// OnReconnectStart fires synchronously the instant a reconnect begins.
	OnReconnectStart()
	// OnAttach fires after every successful reattach with the live client
	// and the debuggee's pid; the first attach is returned by Start instead.
	OnAttach(client *dap.Client, pid int)
	// OnReconnectEnd fires when a reconnect cycle finishes; success is
	// false if no new debuggee was found before the timeout.
	OnReconnectEnd(success bool)
}

// Controller owns the "dotnet watch run" driver process, tracks the
// debuggee it spawns, and orchestrates kill/wait/reattach cycles across
// rebuilds.
type Controller struct {
	dotnetPath     string
	netcoredbgPath string
	netcoredbgArgs []string

	host Host

	projectDir        string
	launchProfileName string
	userArgs          []string
	noHotReload       bool
	ports             []int

	mu            sync.Mutex
	driverCmd     *exec.Cmd
	netcoredbgCmd *exec.Cmd
	client        *dap.Client
	lastChildPid  int32
	reconnecting  bool
	earlyDone     bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController builds a Controller that will spawn netcoredbg at
// netcoredbgPath (with netcoredbgArgs ahead of "--interpreter=vscode") for
// every attach and reattach.
func NewController(dotnetPath, netcoredbgPath string, netcoredbgArgs []string, host Host) *Controller {
	return &Controller{
		dotnetPath:     dotnetPath,
		netcoredbgPath: netcoredbgPath,
		netcoredbgArgs: netcoredbgArgs,
		host:           host,
	}
}

// Start resolves the launch profile, spawns the driver, discovers and
// attaches to the first debuggee, then kicks off the background rebuild
// detector and liveness poller. It returns once the first attach succeeds
// or the discovery timeout expires.
func (c *Controller) Start(ctx context.Context, projectPath, launchProfileName string, args []string, noHotReload bool) (*dap.Client, int, error) {
	projectDir, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to resolve project path: %w", err)
	}
	c.projectDir = projectDir
	c.launchProfileName = launchProfileName
	c.userArgs = args
	c.noHotReload = noHotReload

	if launchProfileName != "" {
		if prof, err := profile.Resolve(projectDir, launchProfileName); err == nil {
			c.ports = profile.ExtractPorts(prof.ApplicationURL)
		}
		// A missing or malformed profile is tolerated here: the project may
		// simply have no launch profile, and the port wait degrades to a
		// no-op rather than blocking hot reload entirely.
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	if err := c.spawnDriver(); err != nil {
		return nil, 0, netdaperrors.WatchStartFailed("failed to start dotnet watch", err)
	}

	pid, err := c.pollForDebuggee(0, findDebuggeeTimeout)
	if err != nil {
		c.killDriver()
		return nil, 0, netdaperrors.WatchStartFailed("debuggee never appeared under the driver", err)
	}

	time.Sleep(postDiscoveryDelay)

	client, cmd, err := c.attachTo(pid)
	if err != nil {
		c.killDriver()
		return nil, 0, netdaperrors.DAPAttachFailed(int(pid), err)
	}

	c.mu.Lock()
	c.client = client
	c.netcoredbgCmd = cmd
	c.lastChildPid = pid
	c.mu.Unlock()

	c.wireTerminatedTrigger(client)

	c.wg.Add(1)
	go c.livenessLoop()

	return client, int(pid), nil
}

func (c *Controller) spawnDriver() error {
	watchArgs := []string{"watch"}
	if c.noHotReload {
		watchArgs = append(watchArgs, "--no-hot-reload")
	}
	watchArgs = append(watchArgs, "run")
	if c.launchProfileName != "" {
		watchArgs = append(watchArgs, "--launch-profile", c.launchProfileName)
	} else {
		watchArgs = append(watchArgs, "--no-launch-profile")
	}
	watchArgs = append(watchArgs, "--")
	watchArgs = append(watchArgs, c.userArgs...)

	cmd := exec.CommandContext(c.ctx, c.dotnetPath, watchArgs...)
	cmd.Dir = c.projectDir
	cmd.Env = append(cmd.Environ(), "DOTNET_WATCH_RESTART_ON_RUDE_EDIT=1")
	setProcAttr(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open driver stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to open driver stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start dotnet watch: %w", err)
	}

	c.driverCmd = cmd

	c.wg.Add(2)
	go c.readDriverStream("", stdout)
	go c.readDriverStream("[stderr] ", stderr)

	return nil
}

// readDriverStream forwards the driver's stdout/stderr to the session
// output buffer line by line and watches for the rebuild-start signal.
func (c *Controller) readDriverStream(prefix string, r io.Reader) {
	defer c.wg.Done()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		c.host.AppendOutput(prefix + line)
		if strings.Contains(line, "Building...") {
			c.triggerEarlyReconnect()
		}
	}
}

// attachTo spawns a fresh netcoredbg and drives it through
// initialize/attach/configurationDone against pid.
func (c *Controller) attachTo(pid int32) (*dap.Client, *exec.Cmd, error) {
	client, cmd, err := dap.SpawnNetcoredbg(c.netcoredbgPath, c.netcoredbgArgs)
	if err != nil {
		return nil, nil, err
	}

	if _, err := client.Initialize("netdap-mcp", "netdap-mcp"); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	if _, err := client.Attach(map[string]interface{}{"processId": int(pid)}); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	if err := client.ConfigurationDone(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	return client, cmd, nil
}

// wireTerminatedTrigger registers the trigger for reconnect path (d): a
// "terminated" DAP event arriving outside of a driver-initiated rebuild
// (e.g. the user ran "dotnet build" by hand, or the process crashed), or
// the client's synthetic "closed" event for a transport that died without
// ever sending "terminated" at all (netcoredbg itself crashed).
func (c *Controller) wireTerminatedTrigger(client *dap.Client) {
	trigger := func(name string, msg godap.Message) {
		c.mu.Lock()
		pid := c.lastChildPid
		c.mu.Unlock()
		c.triggerReconnect(pid)
	}
	client.On("terminated", trigger)
	client.On("closed", trigger)
}

// pollForDebuggee polls the process table for a debuggee distinct from
// excludePid, at findDebuggeePollInterval, until timeout elapses.
func (c *Controller) pollForDebuggee(excludePid int32, timeout time.Duration) (int32, error) {
	deadline := time.Now().Add(timeout)
	for {
		pid, err := findDebuggeeChild(c.projectDir, excludePid)
		if err == nil {
			return pid, nil
		}
		if time.Now().After(deadline) {
			return 0, netdaperrors.Timeout("find debuggee process", timeout.Seconds())
		}
		select {
		case <-c.ctx.Done():
			return 0, c.ctx.Err()
		case <-time.After(findDebuggeePollInterval):
		}
	}
}

// triggerEarlyReconnect is the "Building..." path: it performs the
// eager disconnect and kill synchronously, then hands off the rest of the
// reconnect to a background goroutine.
func (c *Controller) triggerEarlyReconnect() {
	c.mu.Lock()
	if c.reconnecting {
		c.mu.Unlock()
		return
	}
	c.reconnecting = true
	c.earlyDone = true
	client := c.client
	oldPid := c.lastChildPid
	c.client = nil
	c.mu.Unlock()

	c.host.OnReconnectStart()

	if client != nil {
		_ = client.Disconnect(true)
		_ = client.Close()
	}
	if oldPid > 0 {
		_ = killPid(int(oldPid))
	}

	c.wg.Add(1)
	go c.finishReconnect(oldPid)
}

// triggerReconnect starts a reconnect cycle for the liveness/orphan/
// terminated-event paths, which have not done any cleanup yet.
func (c *Controller) triggerReconnect(oldPid int32) {
	c.mu.Lock()
	if c.reconnecting {
		c.mu.Unlock()
		return
	}
	c.reconnecting = true
	c.earlyDone = false
	c.mu.Unlock()

	c.host.OnReconnectStart()

	c.wg.Add(1)
	go c.finishReconnect(oldPid)
}

func (c *Controller) finishReconnect(oldPid int32) {
	defer c.wg.Done()
	defer func() {
		c.mu.Lock()
		c.reconnecting = false
		c.earlyDone = false
		c.mu.Unlock()
	}()

	c.mu.Lock()
	earlyDone := c.earlyDone
	client := c.client
	c.client = nil
	c.mu.Unlock()

	if !earlyDone {
		if client != nil {
			_ = client.Disconnect(true)
			_ = client.Close()
		}
		if oldPid > 0 && processAlive(int(oldPid)) {
			_ = killPid(int(oldPid))
		}
	}

	c.waitOldPidGone(oldPid)
	c.waitPortsReleased()

	newPid, err := c.pollForDebuggee(oldPid, findDebuggeeTimeout)
	if err != nil {
		c.host.OnReconnectEnd(false)
		return
	}

	time.Sleep(postDiscoveryDelay)

	newClient, cmd, err := c.attachTo(newPid)
	if err != nil {
		c.host.AppendOutput(fmt.Sprintf("[watch] reattach to pid %d failed: %v", newPid, err))
		c.host.OnReconnectEnd(false)
		return
	}

	c.wireTerminatedTrigger(newClient)

	c.mu.Lock()
	c.client = newClient
	c.netcoredbgCmd = cmd
	c.lastChildPid = newPid
	c.mu.Unlock()

	c.host.ReplayBreakpoints(newClient)
	c.host.OnAttach(newClient, int(newPid))
	c.host.OnReconnectEnd(true)
}

func (c *Controller) waitOldPidGone(pid int32) {
	if pid <= 0 {
		return
	}
	deadline := time.Now().Add(oldPidTimeout)
	for processAlive(int(pid)) {
		if time.Now().After(deadline) {
			return
		}
		time.Sleep(oldPidPollInterval)
	}
}

func (c *Controller) waitPortsReleased() {
	if len(c.ports) == 0 {
		return
	}

	deadline := time.Now().Add(portTimeout)
	remaining := append([]int{}, c.ports...)

	for len(remaining) > 0 && time.Now().Before(deadline) {
		still := remaining[:0]
		for _, port := range remaining {
			busy, err := portBusy(c.ctx, port)
			if err != nil || busy {
				still = append(still, port)
			}
		}
		remaining = still
		if len(remaining) == 0 {
			return
		}
		time.Sleep(portPollInterval)
	}

	for _, port := range remaining {
		c.host.AppendOutput(fmt.Sprintf("[watch] port %d still busy after %.0fs, proceeding anyway", port, portTimeout.Seconds()))
	}
}

// livenessLoop polls once per second for the current debuggee's liveness
// and orphan state, triggering a reconnect on either condition.
func (c *Controller) livenessLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(livenessPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		reconnecting := c.reconnecting
		pid := c.lastChildPid
		c.mu.Unlock()

		if reconnecting || pid == 0 {
			continue
		}

		if !processAlive(int(pid)) {
			c.triggerReconnect(pid)
			continue
		}

		if isOrphaned(pid) {
			_ = killPid(int(pid))
			c.triggerReconnect(pid)
		}
	}
}

// IsReconnecting reports whether a reconnect cycle is currently in flight.
func (c *Controller) IsReconnecting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reconnecting
}

// LastPID returns the most recently attached debuggee pid, or 0 if none.
func (c *Controller) LastPID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int(c.lastChildPid)
}

func (c *Controller) killDriver() {
	if c.driverCmd != nil && c.driverCmd.Process != nil {
		_ = terminatePid(c.driverCmd.Process.Pid)
	}
}

// Stop implements stopWatch: terminates the driver, cleans up the current
// Transport, and tears down all tracked state.
func (c *Controller) Stop() error {
	c.mu.Lock()
	client := c.client
	c.client = nil
	c.mu.Unlock()

	if client != nil {
		_ = client.Disconnect(true)
		_ = client.Close()
	}

	c.killDriver()

	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	if c.driverCmd != nil {
		_ = c.driverCmd.Wait()
	}

	return nil
}
