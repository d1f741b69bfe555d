package session

import (
	"testing"

	godap "github.com/google/go-dap"
)

func TestThreads_NotRunning(t *testing.T) {
	s := New("s1", "netcoredbg", nil, "dotnet")
	if _, err := s.Threads(); err == nil {
		t.Fatal("expected NotRunning error with no live client")
	}
}

func TestThreads_EmptyReturnsNoThreads(t *testing.T) {
	s, adapter := newAttachedSession(t)

	go respondOnce(t, adapter, func(seq int) godap.Message {
		return &godap.ThreadsResponse{
			Response: godap.Response{ProtocolMessage: godap.ProtocolMessage{Type: "response"}, RequestSeq: seq, Success: true, Command: "threads"},
			Body:     godap.ThreadsResponseBody{Threads: []godap.Thread{}},
		}
	})

	_, err := s.Threads()
	if err == nil {
		t.Fatal("expected NoThreads error when the adapter reports no threads")
	}
}

func TestThreads_ReturnsList(t *testing.T) {
	s, adapter := newAttachedSession(t)

	go respondOnce(t, adapter, func(seq int) godap.Message {
		return &godap.ThreadsResponse{
			Response: godap.Response{ProtocolMessage: godap.ProtocolMessage{Type: "response"}, RequestSeq: seq, Success: true, Command: "threads"},
			Body: godap.ThreadsResponseBody{Threads: []godap.Thread{
				{Id: 1, Name: "main"},
			}},
		}
	})

	threads, err := s.Threads()
	if err != nil {
		t.Fatalf("Threads failed: %v", err)
	}
	if len(threads) != 1 || threads[0].Name != "main" {
		t.Errorf("unexpected threads: %+v", threads)
	}
}

func TestStackTrace_DefaultsDepth(t *testing.T) {
	s, adapter := newAttachedSession(t)

	var gotLevels int
	done := make(chan struct{})
	go func() {
		defer close(done)
		msg, err := adapter.Receive()
		if err != nil {
			t.Errorf("adapter Receive failed: %v", err)
			return
		}
		req := msg.(*godap.StackTraceRequest)
		gotLevels = req.Arguments.Levels
		resp := &godap.StackTraceResponse{
			Response: godap.Response{ProtocolMessage: godap.ProtocolMessage{Type: "response"}, RequestSeq: req.Seq, Success: true, Command: "stackTrace"},
			Body: godap.StackTraceResponseBody{
				StackFrames: []godap.StackFrame{{Id: 1, Name: "Main"}},
				TotalFrames: 1,
			},
		}
		_ = adapter.Send(resp)
	}()

	frames, total, err := s.StackTrace(1, 0)
	if err != nil {
		t.Fatalf("StackTrace failed: %v", err)
	}
	<-done
	if gotLevels != 20 {
		t.Errorf("expected depth to default to 20, got %d", gotLevels)
	}
	if len(frames) != 1 || total != 1 {
		t.Errorf("unexpected stack trace result: frames=%v total=%d", frames, total)
	}
}

func TestScopes_ReturnsList(t *testing.T) {
	s, adapter := newAttachedSession(t)

	go respondOnce(t, adapter, func(seq int) godap.Message {
		return &godap.ScopesResponse{
			Response: godap.Response{ProtocolMessage: godap.ProtocolMessage{Type: "response"}, RequestSeq: seq, Success: true, Command: "scopes"},
			Body:     godap.ScopesResponseBody{Scopes: []godap.Scope{{Name: "Locals", VariablesReference: 10}}},
		}
	})

	scopes, err := s.Scopes(1)
	if err != nil {
		t.Fatalf("Scopes failed: %v", err)
	}
	if len(scopes) != 1 || scopes[0].Name != "Locals" {
		t.Errorf("unexpected scopes: %+v", scopes)
	}
}

func TestVariables_ReturnsList(t *testing.T) {
	s, adapter := newAttachedSession(t)

	go respondOnce(t, adapter, func(seq int) godap.Message {
		return &godap.VariablesResponse{
			Response: godap.Response{ProtocolMessage: godap.ProtocolMessage{Type: "response"}, RequestSeq: seq, Success: true, Command: "variables"},
			Body:     godap.VariablesResponseBody{Variables: []godap.Variable{{Name: "x", Value: "5"}}},
		}
	})

	vars, err := s.Variables(10)
	if err != nil {
		t.Fatalf("Variables failed: %v", err)
	}
	if len(vars) != 1 || vars[0].Name != "x" {
		t.Errorf("unexpected variables: %+v", vars)
	}
}

func TestEvaluate_Failure(t *testing.T) {
	s, adapter := newAttachedSession(t)

	go respondOnce(t, adapter, func(seq int) godap.Message {
		return &godap.EvaluateResponse{
			Response: godap.Response{ProtocolMessage: godap.ProtocolMessage{Type: "response"}, RequestSeq: seq, Success: false, Message: "bad expression", Command: "evaluate"},
		}
	})

	if _, err := s.Evaluate("x +", 1); err == nil {
		t.Fatal("expected an EvaluationFailed error for a rejected expression")
	}
}

func TestEvaluate_Success(t *testing.T) {
	s, adapter := newAttachedSession(t)

	go respondOnce(t, adapter, func(seq int) godap.Message {
		return &godap.EvaluateResponse{
			Response: godap.Response{ProtocolMessage: godap.ProtocolMessage{Type: "response"}, RequestSeq: seq, Success: true, Command: "evaluate"},
			Body:     godap.EvaluateResponseBody{Result: "5", Type: "int"},
		}
	})

	body, err := s.Evaluate("2 + 3", 1)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if body.Result != "5" {
		t.Errorf("expected result 5, got %q", body.Result)
	}
}
