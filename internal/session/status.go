package session

import (
	"time"

	"github.com/netdap/netdap-mcp/pkg/types"
)

// Status derives the session's current state, as described by the status
// tool: running/stopped/reconnecting/terminated, with stop and uptime
// details where applicable.
func (s *Session) Status() types.StatusInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := types.StatusInfo{
		SessionID:       s.id,
		ProcessID:       s.config.ProcessID,
		BreakpointCount: s.breakpointCountLocked(),
		OutputLineCount: s.output.len(),
	}

	switch {
	case s.reconnecting:
		info.State = types.StateReconnecting
	case s.client == nil:
		info.State = types.StateTerminated
	case s.stop.have:
		info.State = types.StateStopped
		info.StopReason = s.stop.reason
		info.StoppedThreadID = s.stop.threadID
	default:
		info.State = types.StateRunning
	}

	if !s.config.StartTime.IsZero() && info.State != types.StateTerminated {
		info.UptimeSeconds = time.Since(s.config.StartTime).Seconds()
	}

	return info
}

// Summary returns the condensed row reported by list_sessions.
func (s *Session) Summary(isDefault bool) types.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := types.StateRunning
	switch {
	case s.reconnecting:
		state = types.StateReconnecting
	case s.client == nil:
		state = types.StateTerminated
	case s.stop.have:
		state = types.StateStopped
	}

	return types.SessionSummary{
		SessionID: s.id,
		Program:   s.config.Program,
		Mode:      s.mode,
		State:     state,
		IsDefault: isDefault,
	}
}

// Config returns a copy of the session's saved launch configuration.
func (s *Session) Config() types.SessionConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

func (s *Session) breakpointCountLocked() int {
	count := 0
	for _, fb := range s.breakpoints {
		count += len(fb.conditions)
	}
	return count
}
