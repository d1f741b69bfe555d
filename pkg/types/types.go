// Package types defines the shared data model used across the mediator:
// session configuration, watch state, and the JSON-facing shapes returned
// by the tool surface (as opposed to the wire-level DAP shapes, which live
// in github.com/google/go-dap and are used directly where possible).
package types

import "time"

// SessionMode records how a Session's current (or most recent) Transport
// was established.
type SessionMode string

const (
	ModeLaunch SessionMode = "launch"
	ModeAttach SessionMode = "attach"
	ModeWatch  SessionMode = "watch"
)

// SessionState is the derived, not-stored status reported by the status tool.
type SessionState string

const (
	StateRunning      SessionState = "running"
	StateStopped      SessionState = "stopped"
	StateReconnecting SessionState = "reconnecting"
	StateTerminated   SessionState = "terminated"
)

// SessionConfig is immutable after creation aside from ProcessID and
// StartTime, which are refreshed on every (re)attach.
type SessionConfig struct {
	Program       string            `json:"program"`
	Args          []string          `json:"args,omitempty"`
	Cwd           string            `json:"cwd,omitempty"`
	StopAtEntry   bool              `json:"stopAtEntry,omitempty"`
	Mode          SessionMode       `json:"mode"`
	LaunchProfile string            `json:"launchProfile,omitempty"`
	ExplicitEnv   map[string]string `json:"explicitEnv,omitempty"`
	ResolvedEnv   map[string]string `json:"resolvedEnv,omitempty"`
	ProcessID     int               `json:"processId,omitempty"`
	StartTime     time.Time         `json:"startTime"`
}

// BreakpointInfo is the flattened, JSON-facing view of a dap.Breakpoint
// plus the path it belongs to (the debugger's own Breakpoint body does not
// always echo the source).
type BreakpointInfo struct {
	ID       int    `json:"id"`
	Verified bool   `json:"verified"`
	Message  string `json:"message,omitempty"`
	Path     string `json:"path"`
	Line     int    `json:"line"`
	Column   int    `json:"column,omitempty"`
}

// StatusInfo is the derived, not-stored session status reported by the
// status tool: running, stopped, reconnecting, or terminated, plus the
// last stop reason and accumulated counts.
type StatusInfo struct {
	SessionID       string       `json:"sessionId"`
	State           SessionState `json:"state"`
	StopReason      string       `json:"stopReason,omitempty"`
	StoppedThreadID int          `json:"stoppedThreadId,omitempty"`
	ProcessID       int          `json:"processId,omitempty"`
	UptimeSeconds   float64      `json:"uptimeSeconds"`
	BreakpointCount int          `json:"breakpointCount"`
	OutputLineCount int          `json:"outputLineCount"`
}

// LaunchProfile is one named entry of a launchSettings.json's "profiles" map.
type LaunchProfile struct {
	EnvironmentVariables map[string]string `json:"environmentVariables,omitempty"`
	ApplicationURL       string            `json:"applicationUrl,omitempty"`
}

// SessionSummary is the per-session row returned by list_sessions.
type SessionSummary struct {
	SessionID string       `json:"sessionId"`
	Program   string       `json:"program"`
	Mode      SessionMode  `json:"mode"`
	State     SessionState `json:"state"`
	IsDefault bool         `json:"isDefault"`
}
