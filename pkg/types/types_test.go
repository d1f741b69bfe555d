package types

import (
	"encoding/json"
	"testing"
)

func TestSessionModeConstants(t *testing.T) {
	tests := []struct {
		mode     SessionMode
		expected string
	}{
		{ModeLaunch, "launch"},
		{ModeAttach, "attach"},
		{ModeWatch, "watch"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			if string(tc.mode) != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, string(tc.mode))
			}
		})
	}
}

func TestSessionStateConstants(t *testing.T) {
	tests := []struct {
		state    SessionState
		expected string
	}{
		{StateRunning, "running"},
		{StateStopped, "stopped"},
		{StateReconnecting, "reconnecting"},
		{StateTerminated, "terminated"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			if string(tc.state) != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, string(tc.state))
			}
		})
	}
}

func TestSessionConfig_JSONRoundTrip(t *testing.T) {
	cfg := SessionConfig{
		Program:       "/path/to/app.dll",
		Args:          []string{"--flag", "value"},
		Cwd:           "/project",
		StopAtEntry:   true,
		Mode:          ModeLaunch,
		LaunchProfile: "Development",
		ExplicitEnv:   map[string]string{"ASPNETCORE_ENVIRONMENT": "Development"},
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded SessionConfig
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded.Program != cfg.Program {
		t.Errorf("expected program %q, got %q", cfg.Program, decoded.Program)
	}
	if decoded.Mode != cfg.Mode {
		t.Errorf("expected mode %q, got %q", cfg.Mode, decoded.Mode)
	}
	if len(decoded.Args) != 2 || decoded.Args[1] != "value" {
		t.Errorf("expected args to round-trip, got %v", decoded.Args)
	}
	if decoded.ExplicitEnv["ASPNETCORE_ENVIRONMENT"] != "Development" {
		t.Errorf("expected explicit env to round-trip, got %v", decoded.ExplicitEnv)
	}
}

func TestSessionConfig_OmitsEmptyFields(t *testing.T) {
	cfg := SessionConfig{
		Program: "/path/to/app.dll",
		Mode:    ModeAttach,
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, field := range []string{"args", "cwd", "stopAtEntry", "launchProfile", "explicitEnv", "resolvedEnv", "processId"} {
		if _, ok := raw[field]; ok {
			t.Errorf("expected field %q to be omitted when empty, but it was present", field)
		}
	}
}

func TestBreakpointInfo_JSONRoundTrip(t *testing.T) {
	bp := BreakpointInfo{
		ID:       3,
		Verified: true,
		Path:     "/src/Program.cs",
		Line:     42,
	}

	data, err := json.Marshal(bp)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded BreakpointInfo
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded != bp {
		t.Errorf("expected round-tripped breakpoint to equal original, got %+v", decoded)
	}
}

func TestStatusInfo_JSONFieldNames(t *testing.T) {
	info := StatusInfo{
		SessionID:       "s1",
		State:           StateStopped,
		StopReason:      "breakpoint",
		StoppedThreadID: 1,
		ProcessID:       1234,
		UptimeSeconds:   12.5,
		BreakpointCount: 2,
		OutputLineCount: 10,
	}

	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, field := range []string{"sessionId", "state", "stopReason", "stoppedThreadId", "processId", "uptimeSeconds", "breakpointCount", "outputLineCount"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("expected field %q in marshaled StatusInfo, got %v", field, raw)
		}
	}
}

func TestSessionSummary_JSONRoundTrip(t *testing.T) {
	summary := SessionSummary{
		SessionID: "s1",
		Program:   "/path/to/app.dll",
		Mode:      ModeWatch,
		State:     StateRunning,
		IsDefault: true,
	}

	data, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded SessionSummary
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded != summary {
		t.Errorf("expected round-tripped summary to equal original, got %+v", decoded)
	}
}
