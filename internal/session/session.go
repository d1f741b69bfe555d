// Package session implements the per-program debug conversation: it owns
// exactly one DAP client at a time, the breakpoint/condition model, the
// output buffer, last-stop tracking, and — in watch mode — a hot-reload
// Watch Controller that keeps the client attached across rebuilds.
package session

import (
	"context"
	"sync"
	"time"

	godap "github.com/google/go-dap"

	"github.com/netdap/netdap-mcp/internal/dap"
	netdaperrors "github.com/netdap/netdap-mcp/internal/errors"
	"github.com/netdap/netdap-mcp/internal/watch"
	"github.com/netdap/netdap-mcp/pkg/types"
)

// lastStop caches the most recent "stopped" event body.
type lastStop struct {
	reason   string
	threadID int
	have     bool
}

// fileBreakpoints is the per-file breakpoint model: the set of lines with
// their conditions, plus the debugger's latest echo for each line.
type fileBreakpoints struct {
	conditions map[int]string
	echoes     map[int]types.BreakpointInfo
}

// Session is a single debug conversation: it owns at most one DAP client
// and, optionally, one Watch Controller.
type Session struct {
	id        string
	createdAt time.Time

	netcoredbgPath string
	netcoredbgArgs []string
	dotnetPath     string

	mu            sync.Mutex
	client        *dap.Client
	watchCtl      *watch.Controller
	mode          types.SessionMode
	config        types.SessionConfig
	stop          lastStop
	reconnecting  bool
	breakpoints   map[string]*fileBreakpoints
	output        outputBuffer
	watchCancel   context.CancelFunc
}

// New creates an idle Session with no live client.
func New(id, netcoredbgPath string, netcoredbgArgs []string, dotnetPath string) *Session {
	return &Session{
		id:             id,
		createdAt:      time.Now(),
		netcoredbgPath: netcoredbgPath,
		netcoredbgArgs: netcoredbgArgs,
		dotnetPath:     dotnetPath,
		breakpoints:    make(map[string]*fileBreakpoints),
	}
}

// ID returns the session's stable identifier.
func (s *Session) ID() string {
	return s.id
}

// guard must be called with s.mu held. It returns a structured error if
// the session has no live client (and is not mid-reconnect) or is
// currently in its watch reconnecting window.
func (s *Session) guard() error {
	if s.reconnecting {
		return netdaperrors.Reconnecting(s.id)
	}
	if s.client == nil {
		return netdaperrors.NotRunning(s.id)
	}
	return nil
}

// AppendOutput appends one line to the bounded output buffer. Safe to call
// from any goroutine, including Watch Controller callbacks.
func (s *Session) AppendOutput(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output.append(line)
}

// Output returns the last n entries, oldest-first (i.e. "newest-last").
func (s *Session) Output(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output.tail(n)
}

func (s *Session) cleanupClientLocked() {
	if s.client != nil {
		_ = s.client.Disconnect(true)
		_ = s.client.Close()
		s.client = nil
	}
}

// wireClientEvents subscribes to the events the session cares about. Must
// be called without s.mu held (the handlers acquire it themselves).
func (s *Session) wireClientEvents(client *dap.Client) {
	client.On("stopped", func(name string, msg godap.Message) {
		ev, ok := msg.(*godap.StoppedEvent)
		if !ok {
			return
		}
		s.mu.Lock()
		s.stop = lastStop{reason: ev.Body.Reason, threadID: ev.Body.ThreadId, have: true}
		s.mu.Unlock()
	})

	client.On("output", func(name string, msg godap.Message) {
		ev, ok := msg.(*godap.OutputEvent)
		if !ok {
			return
		}
		s.AppendOutput(ev.Body.Output)
	})

	terminatedHandler := func(name string, msg godap.Message) {
		s.mu.Lock()
		isWatch := s.mode == types.ModeWatch
		s.mu.Unlock()
		if !isWatch {
			// This runs on the client's read loop, which has to stay free to
			// read the disconnect response, so the teardown runs apart from it.
			s.mu.Lock()
			dead := s.client
			s.client = nil
			s.stop = lastStop{}
			s.mu.Unlock()
			if dead != nil {
				go func() {
					_ = dead.Disconnect(true)
					_ = dead.Close()
				}()
			}
		}
		// In watch mode the Watch Controller's own listener (wired in
		// watch.Controller) drives the reconnect; this session only needs
		// to react for non-watch sessions.
	}
	client.On("terminated", terminatedHandler)

	// "closed" is the client's synthetic event for a transport that died
	// without ever sending a "terminated" DAP event (e.g. netcoredbg
	// crashed outright); treat it the same way so a non-watch session
	// doesn't keep reporting "running" against a dead client.
	client.On("closed", terminatedHandler)
}

// resolveThreadID implements the explicit-argument -> last-stop -> 1
// default resolution order shared by every execution-control operation.
func (s *Session) resolveThreadID(explicit int) int {
	if explicit != 0 {
		return explicit
	}
	if s.stop.have {
		return s.stop.threadID
	}
	return 1
}
