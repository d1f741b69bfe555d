package session

import (
	"io"
	"testing"

	godap "github.com/google/go-dap"

	"github.com/netdap/netdap-mcp/internal/dap"
)

// newPipeClient returns a dap.Client wired to an adapterTransport standing
// in for netcoredbg, so tests can read the client's outgoing requests and
// write back canned responses/events without spawning a real debugger.
func newPipeClient(t *testing.T) (*dap.Client, *dap.Transport) {
	t.Helper()

	clientRead, adapterWrite := io.Pipe()
	adapterRead, clientWrite := io.Pipe()

	clientTransport := dap.NewStdioTransport(clientWrite, clientRead)
	adapterTransport := dap.NewStdioTransport(adapterWrite, adapterRead)

	client := dap.NewClient(clientTransport)
	t.Cleanup(func() {
		// Close the adapter side too, so neither end of the pipes is left
		// open once the test ends.
		_ = adapterTransport.Close()
		_ = client.Close()
	})

	return client, adapterTransport
}

// respondOnce reads one request off adapter and replies with the response
// buildResponse makes for that request's seq.
func respondOnce(t *testing.T, adapter *dap.Transport, buildResponse func(seq int) godap.Message) {
	t.Helper()
	msg, err := adapter.Receive()
	if err != nil {
		t.Errorf("adapter Receive failed: %v", err)
		return
	}
	req, ok := msg.(godap.RequestMessage)
	if !ok {
		t.Errorf("expected a request message, got %T", msg)
		return
	}
	seq := requestSeqOf(req)
	if err := adapter.Send(buildResponse(seq)); err != nil {
		t.Errorf("adapter Send failed: %v", err)
	}
}

func requestSeqOf(req godap.RequestMessage) int {
	switch r := req.(type) {
	case *godap.SetBreakpointsRequest:
		return r.Seq
	case *godap.ContinueRequest:
		return r.Seq
	case *godap.NextRequest:
		return r.Seq
	case *godap.StepInRequest:
		return r.Seq
	case *godap.StepOutRequest:
		return r.Seq
	case *godap.PauseRequest:
		return r.Seq
	case *godap.ThreadsRequest:
		return r.Seq
	case *godap.StackTraceRequest:
		return r.Seq
	case *godap.ScopesRequest:
		return r.Seq
	case *godap.VariablesRequest:
		return r.Seq
	case *godap.EvaluateRequest:
		return r.Seq
	case *godap.DisconnectRequest:
		return r.Seq
	default:
		return 0
	}
}

// newAttachedSession returns a Session with a live client wired up exactly
// as Launch/Attach/OnAttach would leave it, without spawning netcoredbg.
func newAttachedSession(t *testing.T) (*Session, *dap.Transport) {
	t.Helper()
	s := New("s1", "netcoredbg", nil, "dotnet")
	client, adapter := newPipeClient(t)
	s.wireClientEvents(client)
	s.mu.Lock()
	s.client = client
	s.mu.Unlock()
	return s, adapter
}
