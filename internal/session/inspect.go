package session

import (
	godap "github.com/google/go-dap"

	netdaperrors "github.com/netdap/netdap-mcp/internal/errors"
)

// Threads lists all threads in the debuggee.
func (s *Session) Threads() ([]godap.Thread, error) {
	s.mu.Lock()
	if err := s.guard(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	client := s.client
	s.mu.Unlock()

	threads, err := client.Threads()
	if err != nil {
		return nil, netdaperrors.FromError(err)
	}
	if len(threads) == 0 {
		return nil, netdaperrors.NoThreads()
	}
	return threads, nil
}

// StackTrace returns up to depth frames for the given or implicit thread.
func (s *Session) StackTrace(threadID, depth int) ([]godap.StackFrame, int, error) {
	if depth <= 0 {
		depth = 20
	}

	s.mu.Lock()
	if err := s.guard(); err != nil {
		s.mu.Unlock()
		return nil, 0, err
	}
	client := s.client
	tid := s.resolveThreadID(threadID)
	s.mu.Unlock()

	frames, total, err := client.StackTrace(tid, 0, depth)
	if err != nil {
		return nil, 0, netdaperrors.FromError(err)
	}
	return frames, total, nil
}

// Scopes returns the variable scopes visible at frameID.
func (s *Session) Scopes(frameID int) ([]godap.Scope, error) {
	s.mu.Lock()
	if err := s.guard(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	client := s.client
	s.mu.Unlock()

	scopes, err := client.Scopes(frameID)
	if err != nil {
		return nil, netdaperrors.FromError(err)
	}
	return scopes, nil
}

// Variables returns the children of variablesReference.
func (s *Session) Variables(variablesReference int) ([]godap.Variable, error) {
	s.mu.Lock()
	if err := s.guard(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	client := s.client
	s.mu.Unlock()

	vars, err := client.Variables(variablesReference, "", 0, 0)
	if err != nil {
		return nil, netdaperrors.FromError(err)
	}
	return vars, nil
}

// Evaluate evaluates expression at frameID (0 for the global scope) in the
// REPL context.
func (s *Session) Evaluate(expression string, frameID int) (*godap.EvaluateResponseBody, error) {
	s.mu.Lock()
	if err := s.guard(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	client := s.client
	s.mu.Unlock()

	body, err := client.Evaluate(expression, frameID, "repl")
	if err != nil {
		return nil, netdaperrors.EvaluationFailed(expression, err)
	}
	return body, nil
}
