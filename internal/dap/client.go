package dap

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/go-dap"

	netdaperrors "github.com/netdap/netdap-mcp/internal/errors"
)

// StoppedInfo contains information about why the debugger stopped
type StoppedInfo struct {
	Reason      string
	ThreadID    int
	Description string
	AllStopped  bool
}

// EventListener is invoked for every DAP event the client receives. name is
// the event's "event" field (e.g. "output", "terminated", "continued").
type EventListener func(name string, msg dap.Message)

// Client provides a high-level API for DAP operations against netcoredbg.
type Client struct {
	transport *Transport

	// Response handling
	pendingRequests map[int]chan dap.Message
	mu              sync.Mutex

	// Event handling: listeners registered for a specific event name, plus
	// listeners registered for every event ("").
	listenersMu sync.Mutex
	listeners   map[string][]EventListener

	// Capabilities from initialize response
	capabilities dap.Capabilities

	// Initialization synchronization
	initialized     chan struct{}
	initializedOnce sync.Once

	// Stopped event handling
	stoppedChan chan *StoppedInfo
	stoppedMu   sync.Mutex

	// Context for shutdown
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	deathOnce sync.Once
}

// NewClient creates a new DAP client with the given transport
func NewClient(transport *Transport) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		transport:       transport,
		pendingRequests: make(map[int]chan dap.Message),
		listeners:       make(map[string][]EventListener),
		initialized:     make(chan struct{}),
		ctx:             ctx,
		cancel:          cancel,
	}

	c.wg.Add(1)
	go c.readLoop()

	return c
}

// On registers a listener for a named event ("output", "terminated",
// "continued", ...). Passing "" registers the listener for every event.
func (c *Client) On(name string, listener EventListener) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.listeners[name] = append(c.listeners[name], listener)
}

func (c *Client) dispatchEvent(name string, msg dap.Message) {
	c.listenersMu.Lock()
	handlers := append(append([]EventListener{}, c.listeners[name]...), c.listeners[""]...)
	c.listenersMu.Unlock()

	for _, h := range handlers {
		h(name, msg)
	}
}

// readLoop continuously reads messages from the transport
func (c *Client) readLoop() {
	defer c.wg.Done()

	consecutiveErrors := 0
	const maxConsecutiveErrors = 5

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		msg, err := c.transport.Receive()
		if err != nil {
			select {
			case <-c.ctx.Done():
				return
			default:
				consecutiveErrors++
				slog.Warn("dap transport read error", "attempt", consecutiveErrors, "max", maxConsecutiveErrors, "error", err)

				if consecutiveErrors >= maxConsecutiveErrors {
					slog.Error("dap transport: too many consecutive errors, stopping read loop")
					c.closeOnDeath()
					return
				}
				continue
			}
		}

		consecutiveErrors = 0
		c.handleMessage(msg)
	}
}

// closeOnDeath tears the client down after the transport itself has failed,
// as opposed to a caller-initiated Close: it cancels the context so every
// request blocked in sendRequest (or any Wait* call) returns immediately,
// drops the pending-request table, and dispatches a synthetic "closed"
// event so a Session or Watch Controller can react to a debugger that
// disappeared without a clean "terminated" DAP event.
func (c *Client) closeOnDeath() {
	c.deathOnce.Do(func() {
		c.cancel()
		c.mu.Lock()
		c.pendingRequests = make(map[int]chan dap.Message)
		c.mu.Unlock()
		c.dispatchEvent("closed", nil)
	})
}

// handleMessage routes incoming messages to the appropriate handler
func (c *Client) handleMessage(msg dap.Message) {
	var requestSeq int
	var isResponse bool

	switch m := msg.(type) {
	case *dap.InitializeResponse:
		requestSeq, isResponse = m.RequestSeq, true
	case *dap.LaunchResponse:
		requestSeq, isResponse = m.RequestSeq, true
	case *dap.AttachResponse:
		requestSeq, isResponse = m.RequestSeq, true
	case *dap.DisconnectResponse:
		requestSeq, isResponse = m.RequestSeq, true
	case *dap.TerminateResponse:
		requestSeq, isResponse = m.RequestSeq, true
	case *dap.ConfigurationDoneResponse:
		requestSeq, isResponse = m.RequestSeq, true
	case *dap.ThreadsResponse:
		requestSeq, isResponse = m.RequestSeq, true
	case *dap.StackTraceResponse:
		requestSeq, isResponse = m.RequestSeq, true
	case *dap.ScopesResponse:
		requestSeq, isResponse = m.RequestSeq, true
	case *dap.VariablesResponse:
		requestSeq, isResponse = m.RequestSeq, true
	case *dap.EvaluateResponse:
		requestSeq, isResponse = m.RequestSeq, true
	case *dap.SetBreakpointsResponse:
		requestSeq, isResponse = m.RequestSeq, true
	case *dap.ContinueResponse:
		requestSeq, isResponse = m.RequestSeq, true
	case *dap.NextResponse:
		requestSeq, isResponse = m.RequestSeq, true
	case *dap.StepInResponse:
		requestSeq, isResponse = m.RequestSeq, true
	case *dap.StepOutResponse:
		requestSeq, isResponse = m.RequestSeq, true
	case *dap.PauseResponse:
		requestSeq, isResponse = m.RequestSeq, true
	case *dap.ErrorResponse:
		requestSeq, isResponse = m.RequestSeq, true
	case *dap.InitializedEvent:
		c.initializedOnce.Do(func() {
			close(c.initialized)
		})
		c.dispatchEvent("initialized", msg)
		return
	case *dap.StoppedEvent:
		info := &StoppedInfo{
			Reason:      m.Body.Reason,
			ThreadID:    m.Body.ThreadId,
			Description: m.Body.Description,
			AllStopped:  m.Body.AllThreadsStopped,
		}
		c.stoppedMu.Lock()
		if c.stoppedChan != nil {
			select {
			case c.stoppedChan <- info:
			default:
			}
		}
		c.stoppedMu.Unlock()
		c.dispatchEvent("stopped", msg)
		return
	case *dap.OutputEvent:
		c.dispatchEvent("output", msg)
		return
	case *dap.TerminatedEvent:
		c.dispatchEvent("terminated", msg)
		return
	case *dap.ExitedEvent:
		c.dispatchEvent("exited", msg)
		return
	case *dap.ContinuedEvent:
		c.dispatchEvent("continued", msg)
		return
	case *dap.ThreadEvent:
		c.dispatchEvent("thread", msg)
		return
	case *dap.BreakpointEvent:
		c.dispatchEvent("breakpoint", msg)
		return
	}

	if isResponse {
		c.mu.Lock()
		if ch, ok := c.pendingRequests[requestSeq]; ok {
			ch <- msg
			delete(c.pendingRequests, requestSeq)
		}
		c.mu.Unlock()
		return
	}

	c.dispatchEvent("", msg)
}

// sendRequest sends a request and waits for the response. It blocks until
// the response arrives or the client is closed (by the caller or by the
// transport dying) -- netcoredbg calls have no fixed deadline; a caller
// that needs one wraps this in its own context/timer.
func (c *Client) sendRequest(req dap.RequestMessage) (dap.Message, error) {
	seq := c.transport.NextSeq()

	switch r := req.(type) {
	case *dap.InitializeRequest:
		r.Seq = seq
	case *dap.LaunchRequest:
		r.Seq = seq
	case *dap.AttachRequest:
		r.Seq = seq
	case *dap.DisconnectRequest:
		r.Seq = seq
	case *dap.TerminateRequest:
		r.Seq = seq
	case *dap.ConfigurationDoneRequest:
		r.Seq = seq
	case *dap.ThreadsRequest:
		r.Seq = seq
	case *dap.StackTraceRequest:
		r.Seq = seq
	case *dap.ScopesRequest:
		r.Seq = seq
	case *dap.VariablesRequest:
		r.Seq = seq
	case *dap.EvaluateRequest:
		r.Seq = seq
	case *dap.SetBreakpointsRequest:
		r.Seq = seq
	case *dap.ContinueRequest:
		r.Seq = seq
	case *dap.NextRequest:
		r.Seq = seq
	case *dap.StepInRequest:
		r.Seq = seq
	case *dap.StepOutRequest:
		r.Seq = seq
	case *dap.PauseRequest:
		r.Seq = seq
	}

	respCh := make(chan dap.Message, 1)
	c.mu.Lock()
	c.pendingRequests[seq] = respCh
	c.mu.Unlock()

	if err := c.transport.Send(req); err != nil {
		c.mu.Lock()
		delete(c.pendingRequests, seq)
		c.mu.Unlock()
		return nil, err
	}

	select {
	case resp := <-respCh:
		return resp, nil
	case <-c.ctx.Done():
		c.mu.Lock()
		delete(c.pendingRequests, seq)
		c.mu.Unlock()
		return nil, netdaperrors.ClientClosed()
	}
}

// Initialize sends the initialize request
func (c *Client) Initialize(clientID, clientName string) (*dap.InitializeResponse, error) {
	req := &dap.InitializeRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Type: "request"},
			Command:         "initialize",
		},
		Arguments: dap.InitializeRequestArguments{
			ClientID:                     clientID,
			ClientName:                   clientName,
			AdapterID:                    "netcoredbg",
			Locale:                       "en-US",
			LinesStartAt1:                true,
			ColumnsStartAt1:              true,
			PathFormat:                   "path",
			SupportsVariableType:         true,
			SupportsVariablePaging:       true,
			SupportsRunInTerminalRequest: false,
		},
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	initResp, ok := resp.(*dap.InitializeResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", resp)
	}

	if !initResp.Success {
		return nil, fmt.Errorf("initialize failed: %s", initResp.Message)
	}

	c.capabilities = initResp.Body

	return initResp, nil
}

// WaitInitialized waits for the initialized event with a timeout
func (c *Client) WaitInitialized(timeout time.Duration) error {
	select {
	case <-c.initialized:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for initialized event")
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

// Launch sends a launch request.
// Note: after calling Launch, the caller should wait for the InitializedEvent,
// then call ConfigurationDone -- netcoredbg's launch response does not arrive
// until after configurationDone is sent.
func (c *Client) Launch(args map[string]interface{}) (*dap.LaunchResponse, error) {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal launch args: %w", err)
	}

	req := &dap.LaunchRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Type: "request"},
			Command:         "launch",
		},
		Arguments: argsJSON,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	launchResp, ok := resp.(*dap.LaunchResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", resp)
	}

	if !launchResp.Success {
		return nil, fmt.Errorf("launch failed: %s", launchResp.Message)
	}

	return launchResp, nil
}

// LaunchAsync sends a launch request without waiting for the response.
// Returns a channel that will receive the response.
func (c *Client) LaunchAsync(args map[string]interface{}) (chan dap.Message, error) {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal launch args: %w", err)
	}

	seq := c.transport.NextSeq()

	req := &dap.LaunchRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Type: "request", Seq: seq},
			Command:         "launch",
		},
		Arguments: argsJSON,
	}

	respCh := make(chan dap.Message, 1)
	c.mu.Lock()
	c.pendingRequests[seq] = respCh
	c.mu.Unlock()

	if err := c.transport.Send(req); err != nil {
		c.mu.Lock()
		delete(c.pendingRequests, seq)
		c.mu.Unlock()
		return nil, err
	}

	return respCh, nil
}

// WaitForLaunchResponse waits for the launch response on the channel
func (c *Client) WaitForLaunchResponse(respCh chan dap.Message, timeout time.Duration) (*dap.LaunchResponse, error) {
	select {
	case resp := <-respCh:
		launchResp, ok := resp.(*dap.LaunchResponse)
		if !ok {
			return nil, fmt.Errorf("unexpected response type: %T", resp)
		}
		if !launchResp.Success {
			return nil, fmt.Errorf("launch failed: %s", launchResp.Message)
		}
		return launchResp, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("launch response timeout")
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	}
}

// Attach sends an attach request
func (c *Client) Attach(args map[string]interface{}) (*dap.AttachResponse, error) {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attach args: %w", err)
	}

	req := &dap.AttachRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Type: "request"},
			Command:         "attach",
		},
		Arguments: argsJSON,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	attachResp, ok := resp.(*dap.AttachResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", resp)
	}

	if !attachResp.Success {
		return nil, fmt.Errorf("attach failed: %s", attachResp.Message)
	}

	return attachResp, nil
}

// ConfigurationDone signals that configuration is complete
func (c *Client) ConfigurationDone() error {
	req := &dap.ConfigurationDoneRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Type: "request"},
			Command:         "configurationDone",
		},
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}

	configResp, ok := resp.(*dap.ConfigurationDoneResponse)
	if !ok {
		return fmt.Errorf("unexpected response type: %T", resp)
	}

	if !configResp.Success {
		return fmt.Errorf("configurationDone failed: %s", configResp.Message)
	}

	return nil
}

// Disconnect ends the debug session
func (c *Client) Disconnect(terminateDebuggee bool) error {
	req := &dap.DisconnectRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Type: "request"},
			Command:         "disconnect",
		},
		Arguments: &dap.DisconnectArguments{
			TerminateDebuggee: terminateDebuggee,
		},
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}

	disconnectResp, ok := resp.(*dap.DisconnectResponse)
	if !ok {
		return fmt.Errorf("unexpected response type: %T", resp)
	}

	if !disconnectResp.Success {
		return fmt.Errorf("disconnect failed: %s", disconnectResp.Message)
	}

	return nil
}

// Terminate asks the debuggee to shut down gracefully if the adapter
// advertises support for it; otherwise it falls back to a disconnect that
// terminates the debuggee.
func (c *Client) Terminate() error {
	if !c.capabilities.SupportsTerminateRequest {
		return c.Disconnect(true)
	}

	req := &dap.TerminateRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Type: "request"},
			Command:         "terminate",
		},
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}

	termResp, ok := resp.(*dap.TerminateResponse)
	if !ok {
		return fmt.Errorf("unexpected response type: %T", resp)
	}

	if !termResp.Success {
		return fmt.Errorf("terminate failed: %s", termResp.Message)
	}

	return nil
}

// Threads gets all threads
func (c *Client) Threads() ([]dap.Thread, error) {
	req := &dap.ThreadsRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Type: "request"},
			Command:         "threads",
		},
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	threadsResp, ok := resp.(*dap.ThreadsResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", resp)
	}

	if !threadsResp.Success {
		return nil, fmt.Errorf("threads request failed: %s", threadsResp.Message)
	}

	return threadsResp.Body.Threads, nil
}

// StackTrace gets the stack trace for a thread
func (c *Client) StackTrace(threadID, startFrame, levels int) ([]dap.StackFrame, int, error) {
	req := &dap.StackTraceRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Type: "request"},
			Command:         "stackTrace",
		},
		Arguments: dap.StackTraceArguments{
			ThreadId:   threadID,
			StartFrame: startFrame,
			Levels:     levels,
		},
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, 0, err
	}

	stackResp, ok := resp.(*dap.StackTraceResponse)
	if !ok {
		return nil, 0, fmt.Errorf("unexpected response type: %T", resp)
	}

	if !stackResp.Success {
		return nil, 0, fmt.Errorf("stackTrace request failed: %s", stackResp.Message)
	}

	return stackResp.Body.StackFrames, stackResp.Body.TotalFrames, nil
}

// Scopes gets the scopes for a stack frame
func (c *Client) Scopes(frameID int) ([]dap.Scope, error) {
	req := &dap.ScopesRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Type: "request"},
			Command:         "scopes",
		},
		Arguments: dap.ScopesArguments{
			FrameId: frameID,
		},
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	scopesResp, ok := resp.(*dap.ScopesResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", resp)
	}

	if !scopesResp.Success {
		return nil, fmt.Errorf("scopes request failed: %s", scopesResp.Message)
	}

	return scopesResp.Body.Scopes, nil
}

// Variables gets variables for a reference
func (c *Client) Variables(variablesRef int, filter string, start, count int) ([]dap.Variable, error) {
	args := dap.VariablesArguments{
		VariablesReference: variablesRef,
	}
	if filter != "" {
		args.Filter = filter
	}
	if start > 0 {
		args.Start = start
	}
	if count > 0 {
		args.Count = count
	}

	req := &dap.VariablesRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Type: "request"},
			Command:         "variables",
		},
		Arguments: args,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	varsResp, ok := resp.(*dap.VariablesResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", resp)
	}

	if !varsResp.Success {
		return nil, fmt.Errorf("variables request failed: %s", varsResp.Message)
	}

	return varsResp.Body.Variables, nil
}

// Evaluate evaluates an expression
func (c *Client) Evaluate(expression string, frameID int, context string) (*dap.EvaluateResponseBody, error) {
	req := &dap.EvaluateRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Type: "request"},
			Command:         "evaluate",
		},
		Arguments: dap.EvaluateArguments{
			Expression: expression,
			FrameId:    frameID,
			Context:    context,
		},
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	evalResp, ok := resp.(*dap.EvaluateResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", resp)
	}

	if !evalResp.Success {
		return nil, fmt.Errorf("evaluate failed: %s", evalResp.Message)
	}

	return &evalResp.Body, nil
}

// SetBreakpoints sets breakpoints in a source file
func (c *Client) SetBreakpoints(source dap.Source, breakpoints []dap.SourceBreakpoint) ([]dap.Breakpoint, error) {
	req := &dap.SetBreakpointsRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Type: "request"},
			Command:         "setBreakpoints",
		},
		Arguments: dap.SetBreakpointsArguments{
			Source:      source,
			Breakpoints: breakpoints,
		},
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	bpResp, ok := resp.(*dap.SetBreakpointsResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", resp)
	}

	if !bpResp.Success {
		return nil, fmt.Errorf("setBreakpoints failed: %s", bpResp.Message)
	}

	return bpResp.Body.Breakpoints, nil
}

// Continue continues execution
func (c *Client) Continue(threadID int) (bool, error) {
	req := &dap.ContinueRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Type: "request"},
			Command:         "continue",
		},
		Arguments: dap.ContinueArguments{
			ThreadId: threadID,
		},
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return false, err
	}

	contResp, ok := resp.(*dap.ContinueResponse)
	if !ok {
		return false, fmt.Errorf("unexpected response type: %T", resp)
	}

	if !contResp.Success {
		return false, fmt.Errorf("continue failed: %s", contResp.Message)
	}

	return contResp.Body.AllThreadsContinued, nil
}

// Next steps over
func (c *Client) Next(threadID int) error {
	req := &dap.NextRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Type: "request"},
			Command:         "next",
		},
		Arguments: dap.NextArguments{
			ThreadId: threadID,
		},
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}

	nextResp, ok := resp.(*dap.NextResponse)
	if !ok {
		return fmt.Errorf("unexpected response type: %T", resp)
	}

	if !nextResp.Success {
		return fmt.Errorf("next failed: %s", nextResp.Message)
	}

	return nil
}

// StepIn steps into
func (c *Client) StepIn(threadID int) error {
	req := &dap.StepInRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Type: "request"},
			Command:         "stepIn",
		},
		Arguments: dap.StepInArguments{
			ThreadId: threadID,
		},
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}

	stepResp, ok := resp.(*dap.StepInResponse)
	if !ok {
		return fmt.Errorf("unexpected response type: %T", resp)
	}

	if !stepResp.Success {
		return fmt.Errorf("stepIn failed: %s", stepResp.Message)
	}

	return nil
}

// StepOut steps out
func (c *Client) StepOut(threadID int) error {
	req := &dap.StepOutRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Type: "request"},
			Command:         "stepOut",
		},
		Arguments: dap.StepOutArguments{
			ThreadId: threadID,
		},
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}

	stepResp, ok := resp.(*dap.StepOutResponse)
	if !ok {
		return fmt.Errorf("unexpected response type: %T", resp)
	}

	if !stepResp.Success {
		return fmt.Errorf("stepOut failed: %s", stepResp.Message)
	}

	return nil
}

// Pause pauses execution
func (c *Client) Pause(threadID int) error {
	req := &dap.PauseRequest{
		Request: dap.Request{
			ProtocolMessage: dap.ProtocolMessage{Type: "request"},
			Command:         "pause",
		},
		Arguments: dap.PauseArguments{
			ThreadId: threadID,
		},
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}

	pauseResp, ok := resp.(*dap.PauseResponse)
	if !ok {
		return fmt.Errorf("unexpected response type: %T", resp)
	}

	if !pauseResp.Success {
		return fmt.Errorf("pause failed: %s", pauseResp.Message)
	}

	return nil
}

// Capabilities returns the capabilities from the initialize response
func (c *Client) Capabilities() dap.Capabilities {
	return c.capabilities
}

// WaitForStopped waits for the debugger to stop (hit breakpoint, step complete, etc.)
func (c *Client) WaitForStopped(timeout time.Duration) (*StoppedInfo, error) {
	stoppedCh := make(chan *StoppedInfo, 1)

	c.stoppedMu.Lock()
	c.stoppedChan = stoppedCh
	c.stoppedMu.Unlock()

	defer func() {
		c.stoppedMu.Lock()
		c.stoppedChan = nil
		c.stoppedMu.Unlock()
	}()

	select {
	case info := <-stoppedCh:
		return info, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("timeout waiting for stopped event")
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	}
}

// ContinueAndWait continues execution and waits for the program to stop
func (c *Client) ContinueAndWait(threadID int, timeout time.Duration) (*StoppedInfo, error) {
	stoppedCh := make(chan *StoppedInfo, 1)

	c.stoppedMu.Lock()
	c.stoppedChan = stoppedCh
	c.stoppedMu.Unlock()

	defer func() {
		c.stoppedMu.Lock()
		c.stoppedChan = nil
		c.stoppedMu.Unlock()
	}()

	_, err := c.Continue(threadID)
	if err != nil {
		return nil, err
	}

	select {
	case info := <-stoppedCh:
		return info, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("timeout waiting for stopped event after continue")
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	}
}

// Close shuts down the client: it cancels the context (unblocking any
// sendRequest/Wait* call still in flight), drops the pending-request
// table, and tears down the transport, which unblocks the read loop's
// pending Receive so the read loop can exit before Close returns.
func (c *Client) Close() error {
	c.cancel()
	c.mu.Lock()
	c.pendingRequests = make(map[int]chan dap.Message)
	c.mu.Unlock()
	err := c.transport.Close()
	c.wg.Wait()
	return err
}
