package session

import (
	"testing"

	godap "github.com/google/go-dap"
)

func TestContinue_NotRunning(t *testing.T) {
	s := New("s1", "netcoredbg", nil, "dotnet")
	if err := s.Continue(1); err == nil {
		t.Fatal("expected NotRunning error with no live client")
	}
}

func TestContinue_ClearsLastStop(t *testing.T) {
	s, adapter := newAttachedSession(t)

	s.mu.Lock()
	s.stop = lastStop{reason: "breakpoint", threadID: 1, have: true}
	s.mu.Unlock()

	go respondOnce(t, adapter, func(seq int) godap.Message {
		return &godap.ContinueResponse{
			Response: godap.Response{ProtocolMessage: godap.ProtocolMessage{Type: "response"}, RequestSeq: seq, Success: true, Command: "continue"},
			Body:     godap.ContinueResponseBody{AllThreadsContinued: true},
		}
	})

	if err := s.Continue(1); err != nil {
		t.Fatalf("Continue failed: %v", err)
	}

	s.mu.Lock()
	have := s.stop.have
	s.mu.Unlock()
	if have {
		t.Error("expected Continue to clear the cached last-stop reason")
	}
}

func TestPause_UsesResolvedThread(t *testing.T) {
	s, adapter := newAttachedSession(t)

	s.mu.Lock()
	s.stop = lastStop{reason: "breakpoint", threadID: 7, have: true}
	s.mu.Unlock()

	var gotThreadID int
	done := make(chan struct{})
	go func() {
		defer close(done)
		msg, err := adapter.Receive()
		if err != nil {
			t.Errorf("adapter Receive failed: %v", err)
			return
		}
		req := msg.(*godap.PauseRequest)
		gotThreadID = req.Arguments.ThreadId
		resp := &godap.PauseResponse{
			Response: godap.Response{ProtocolMessage: godap.ProtocolMessage{Type: "response"}, RequestSeq: req.Seq, Success: true, Command: "pause"},
		}
		_ = adapter.Send(resp)
	}()

	// threadID 0 means "use the implicit thread" -> should resolve to 7.
	if err := s.Pause(0); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	<-done
	if gotThreadID != 7 {
		t.Errorf("expected the resolved last-stop thread 7 to be used, got %d", gotThreadID)
	}
}

func TestStepOver_Failure(t *testing.T) {
	s, adapter := newAttachedSession(t)

	go respondOnce(t, adapter, func(seq int) godap.Message {
		return &godap.NextResponse{
			Response: godap.Response{ProtocolMessage: godap.ProtocolMessage{Type: "response"}, RequestSeq: seq, Success: false, Message: "not stopped", Command: "next"},
		}
	})

	if err := s.StepOver(1); err == nil {
		t.Fatal("expected a StepFailed error when the adapter rejects the request")
	}
}

func TestStepInto_Success(t *testing.T) {
	s, adapter := newAttachedSession(t)

	go respondOnce(t, adapter, func(seq int) godap.Message {
		return &godap.StepInResponse{
			Response: godap.Response{ProtocolMessage: godap.ProtocolMessage{Type: "response"}, RequestSeq: seq, Success: true, Command: "stepIn"},
		}
	})

	if err := s.StepInto(1); err != nil {
		t.Fatalf("StepInto failed: %v", err)
	}
}

func TestStepOut_Success(t *testing.T) {
	s, adapter := newAttachedSession(t)

	go respondOnce(t, adapter, func(seq int) godap.Message {
		return &godap.StepOutResponse{
			Response: godap.Response{ProtocolMessage: godap.ProtocolMessage{Type: "response"}, RequestSeq: seq, Success: true, Command: "stepOut"},
		}
	})

	if err := s.StepOut(1); err != nil {
		t.Fatalf("StepOut failed: %v", err)
	}
}
