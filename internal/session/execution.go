package session

import (
	"github.com/netdap/netdap-mcp/internal/dap"
	netdaperrors "github.com/netdap/netdap-mcp/internal/errors"
)

// Continue resumes execution on the given or implicit thread, clearing the
// cached last-stop reason and thread id.
func (s *Session) Continue(threadID int) error {
	client, tid, err := s.beginStep(threadID)
	if err != nil {
		return err
	}

	if _, err := client.Continue(tid); err != nil {
		return netdaperrors.StepFailed("continue", err)
	}

	s.mu.Lock()
	s.stop = lastStop{}
	s.mu.Unlock()

	return nil
}

// Pause suspends the given or implicit thread.
func (s *Session) Pause(threadID int) error {
	client, tid, err := s.beginStep(threadID)
	if err != nil {
		return err
	}
	if err := client.Pause(tid); err != nil {
		return netdaperrors.StepFailed("pause", err)
	}
	return nil
}

// StepOver steps over the current line on the given or implicit thread.
func (s *Session) StepOver(threadID int) error {
	client, tid, err := s.beginStep(threadID)
	if err != nil {
		return err
	}
	if err := client.Next(tid); err != nil {
		return netdaperrors.StepFailed("step_over", err)
	}
	return nil
}

// StepInto steps into a call on the given or implicit thread.
func (s *Session) StepInto(threadID int) error {
	client, tid, err := s.beginStep(threadID)
	if err != nil {
		return err
	}
	if err := client.StepIn(tid); err != nil {
		return netdaperrors.StepFailed("step_into", err)
	}
	return nil
}

// StepOut steps out of the current function on the given or implicit thread.
func (s *Session) StepOut(threadID int) error {
	client, tid, err := s.beginStep(threadID)
	if err != nil {
		return err
	}
	if err := client.StepOut(tid); err != nil {
		return netdaperrors.StepFailed("step_out", err)
	}
	return nil
}

// beginStep validates the guard and resolves the effective thread id under
// the lock, then returns the client for the caller to use unlocked (DAP
// calls block on I/O and must not hold the session mutex).
func (s *Session) beginStep(explicit int) (*dap.Client, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return nil, 0, err
	}
	return s.client, s.resolveThreadID(explicit), nil
}
