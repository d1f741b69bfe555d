package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DotnetPath != "dotnet" {
		t.Errorf("expected DotnetPath 'dotnet', got %s", cfg.DotnetPath)
	}
	if cfg.MaxSessions != 10 {
		t.Errorf("expected MaxSessions 10, got %d", cfg.MaxSessions)
	}
	if cfg.SessionTimeout != 30*time.Minute {
		t.Errorf("expected SessionTimeout 30m, got %v", cfg.SessionTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel 'info', got %s", cfg.LogLevel)
	}
	if cfg.NetcoredbgPath == "" {
		t.Error("expected a non-empty NetcoredbgPath fallback")
	}
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defaults := DefaultConfig()
	if cfg.DotnetPath != defaults.DotnetPath {
		t.Errorf("expected default DotnetPath, got %s", cfg.DotnetPath)
	}
	if cfg.MaxSessions != defaults.MaxSessions {
		t.Errorf("expected default MaxSessions, got %d", cfg.MaxSessions)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	configJSON := `{
		"netcoredbgPath": "/custom/netcoredbg",
		"dotnetPath": "/custom/dotnet",
		"harnessPath": "/opt/harness",
		"maxSessions": 3,
		"sessionTimeout": 60000000000,
		"logLevel": "debug"
	}`

	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.NetcoredbgPath != "/custom/netcoredbg" {
		t.Errorf("expected NetcoredbgPath '/custom/netcoredbg', got %s", cfg.NetcoredbgPath)
	}
	if cfg.HarnessPath != "/opt/harness" {
		t.Errorf("expected HarnessPath '/opt/harness', got %s", cfg.HarnessPath)
	}
	if cfg.MaxSessions != 3 {
		t.Errorf("expected MaxSessions 3, got %d", cfg.MaxSessions)
	}
	if cfg.SessionTimeout != time.Minute {
		t.Errorf("expected SessionTimeout 1m, got %v", cfg.SessionTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected LogLevel 'debug', got %s", cfg.LogLevel)
	}
}

func TestLoadConfig_PartialOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"logLevel": "warn"}`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("expected overridden LogLevel 'warn', got %s", cfg.LogLevel)
	}
	if cfg.MaxSessions != 10 {
		t.Errorf("expected MaxSessions to retain default (10), got %d", cfg.MaxSessions)
	}
}

func TestLoadConfig_NonExistent(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.json")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{invalid}`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Error("expected error for invalid JSON")
	}
}
