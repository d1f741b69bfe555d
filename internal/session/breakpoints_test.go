package session

import (
	"testing"

	godap "github.com/google/go-dap"
)

func TestSetBreakpoint_NotRunning(t *testing.T) {
	s := New("s1", "netcoredbg", nil, "dotnet")

	_, err := s.SetBreakpoint("/src/Program.cs", 10, "")
	if err == nil {
		t.Fatal("expected NotRunning error with no live client")
	}
}

func TestSetBreakpoint_StoresAndEchoes(t *testing.T) {
	s, adapter := newAttachedSession(t)

	go respondOnce(t, adapter, func(seq int) godap.Message {
		return &godap.SetBreakpointsResponse{
			Response: godap.Response{
				ProtocolMessage: godap.ProtocolMessage{Type: "response"},
				RequestSeq:      seq,
				Success:         true,
				Command:         "setBreakpoints",
			},
			Body: godap.SetBreakpointsResponseBody{
				Breakpoints: []godap.Breakpoint{
					{Id: 1, Verified: true, Line: 10},
				},
			},
		}
	})

	info, err := s.SetBreakpoint("/src/Program.cs", 10, "")
	if err != nil {
		t.Fatalf("SetBreakpoint failed: %v", err)
	}
	if !info.Verified || info.ID != 1 || info.Line != 10 {
		t.Errorf("unexpected breakpoint info: %+v", info)
	}
}

func TestSetBreakpoint_ConditionPassedThrough(t *testing.T) {
	s, adapter := newAttachedSession(t)

	var gotCondition string
	done := make(chan struct{})
	go func() {
		defer close(done)
		msg, err := adapter.Receive()
		if err != nil {
			t.Errorf("adapter Receive failed: %v", err)
			return
		}
		req := msg.(*godap.SetBreakpointsRequest)
		if len(req.Arguments.Breakpoints) != 1 {
			t.Errorf("expected 1 breakpoint in request, got %d", len(req.Arguments.Breakpoints))
			return
		}
		gotCondition = req.Arguments.Breakpoints[0].Condition
		resp := &godap.SetBreakpointsResponse{
			Response: godap.Response{
				ProtocolMessage: godap.ProtocolMessage{Type: "response"},
				RequestSeq:      req.Seq,
				Success:         true,
				Command:         "setBreakpoints",
			},
			Body: godap.SetBreakpointsResponseBody{
				Breakpoints: []godap.Breakpoint{{Id: 2, Verified: true, Line: 20}},
			},
		}
		_ = adapter.Send(resp)
	}()

	_, err := s.SetBreakpoint("/src/Program.cs", 20, "x > 5")
	if err != nil {
		t.Fatalf("SetBreakpoint failed: %v", err)
	}
	<-done
	if gotCondition != "x > 5" {
		t.Errorf("expected condition 'x > 5' to reach the debugger, got %q", gotCondition)
	}
}

func TestRemoveBreakpoint_NotFound(t *testing.T) {
	s, _ := newAttachedSession(t)

	err := s.RemoveBreakpoint("/src/Program.cs", 99)
	if err == nil {
		t.Fatal("expected BreakpointNotFound for an untracked line")
	}
}

func TestRemoveBreakpoint_RemovesTrackedLine(t *testing.T) {
	s, adapter := newAttachedSession(t)

	go respondOnce(t, adapter, func(seq int) godap.Message {
		return &godap.SetBreakpointsResponse{
			Response: godap.Response{ProtocolMessage: godap.ProtocolMessage{Type: "response"}, RequestSeq: seq, Success: true, Command: "setBreakpoints"},
			Body:     godap.SetBreakpointsResponseBody{Breakpoints: []godap.Breakpoint{{Id: 1, Verified: true, Line: 10}}},
		}
	})
	if _, err := s.SetBreakpoint("/src/Program.cs", 10, ""); err != nil {
		t.Fatalf("SetBreakpoint failed: %v", err)
	}

	go respondOnce(t, adapter, func(seq int) godap.Message {
		return &godap.SetBreakpointsResponse{
			Response: godap.Response{ProtocolMessage: godap.ProtocolMessage{Type: "response"}, RequestSeq: seq, Success: true, Command: "setBreakpoints"},
			Body:     godap.SetBreakpointsResponseBody{Breakpoints: []godap.Breakpoint{}},
		}
	})
	if err := s.RemoveBreakpoint("/src/Program.cs", 10); err != nil {
		t.Fatalf("RemoveBreakpoint failed: %v", err)
	}

	if len(s.ListBreakpoints()) != 0 {
		t.Errorf("expected no tracked breakpoints after removal, got %v", s.ListBreakpoints())
	}
}

func TestListBreakpoints_FlattensAcrossFiles(t *testing.T) {
	s, adapter := newAttachedSession(t)

	go respondOnce(t, adapter, func(seq int) godap.Message {
		return &godap.SetBreakpointsResponse{
			Response: godap.Response{ProtocolMessage: godap.ProtocolMessage{Type: "response"}, RequestSeq: seq, Success: true, Command: "setBreakpoints"},
			Body:     godap.SetBreakpointsResponseBody{Breakpoints: []godap.Breakpoint{{Id: 1, Verified: true, Line: 10}}},
		}
	})
	if _, err := s.SetBreakpoint("/src/A.cs", 10, ""); err != nil {
		t.Fatalf("SetBreakpoint failed: %v", err)
	}

	go respondOnce(t, adapter, func(seq int) godap.Message {
		return &godap.SetBreakpointsResponse{
			Response: godap.Response{ProtocolMessage: godap.ProtocolMessage{Type: "response"}, RequestSeq: seq, Success: true, Command: "setBreakpoints"},
			Body:     godap.SetBreakpointsResponseBody{Breakpoints: []godap.Breakpoint{{Id: 2, Verified: true, Line: 5}}},
		}
	})
	if _, err := s.SetBreakpoint("/src/B.cs", 5, ""); err != nil {
		t.Fatalf("SetBreakpoint failed: %v", err)
	}

	all := s.ListBreakpoints()
	if len(all) != 2 {
		t.Fatalf("expected 2 breakpoints across both files, got %d", len(all))
	}
}

func TestReplayBreakpoints_AbsorbsPerFileFailure(t *testing.T) {
	s, adapter := newAttachedSession(t)

	go respondOnce(t, adapter, func(seq int) godap.Message {
		return &godap.SetBreakpointsResponse{
			Response: godap.Response{ProtocolMessage: godap.ProtocolMessage{Type: "response"}, RequestSeq: seq, Success: true, Command: "setBreakpoints"},
			Body:     godap.SetBreakpointsResponseBody{Breakpoints: []godap.Breakpoint{{Id: 1, Verified: true, Line: 10}}},
		}
	})
	if _, err := s.SetBreakpoint("/src/A.cs", 10, ""); err != nil {
		t.Fatalf("SetBreakpoint failed: %v", err)
	}

	// Replay against a second client that fails the request; ReplayBreakpoints
	// must absorb the error rather than propagate it.
	failClient, failAdapter := newPipeClient(t)
	go respondOnce(t, failAdapter, func(seq int) godap.Message {
		return &godap.SetBreakpointsResponse{
			Response: godap.Response{ProtocolMessage: godap.ProtocolMessage{Type: "response"}, RequestSeq: seq, Success: false, Message: "adapter busy", Command: "setBreakpoints"},
		}
	})

	s.ReplayBreakpoints(failClient)

	lines := s.Output(10)
	found := false
	for _, l := range lines {
		if l != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected ReplayBreakpoints to log the per-file failure to session output")
	}
}
