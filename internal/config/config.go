// Package config provides configuration management for the debugger-control
// mediator.
//
// Configuration controls the paths to the external tools this process
// drives (netcoredbg, dotnet), the harness binary the tool surface
// delegates reflection calls to, and safety limits on session count and
// idle lifetime.
//
// Configuration can be loaded from a JSON file or use sensible defaults.
package config

import (
	"encoding/json"
	"os"
	"os/exec"
	"time"
)

// Config holds the server configuration
type Config struct {
	// NetcoredbgPath is the path to the netcoredbg binary.
	NetcoredbgPath string `json:"netcoredbgPath"`
	// NetcoredbgArgs are extra arguments passed to netcoredbg, before
	// "--interpreter=vscode".
	NetcoredbgArgs []string `json:"netcoredbgArgs,omitempty"`

	// DotnetPath is the path to the dotnet CLI, used to drive "dotnet watch run".
	DotnetPath string `json:"dotnetPath"`

	// HarnessPath is the path to the reflection-invocation harness binary.
	HarnessPath string `json:"harnessPath,omitempty"`

	// MaxSessions caps the number of concurrent sessions the manager will track.
	MaxSessions int `json:"maxSessions"`
	// SessionTimeout is how long an idle session is kept before the reaper
	// terminates it. Zero disables the reaper.
	SessionTimeout time.Duration `json:"sessionTimeout"`

	// LogLevel controls the verbosity of the structured logger ("debug",
	// "info", "warn", "error").
	LogLevel string `json:"logLevel"`
}

// findNetcoredbg searches PATH and a few common install locations.
func findNetcoredbg() string {
	if path, err := exec.LookPath("netcoredbg"); err == nil {
		return path
	}

	locations := []string{
		"/usr/local/bin/netcoredbg",
		"/usr/bin/netcoredbg",
		"/opt/netcoredbg/netcoredbg",
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return "netcoredbg"
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		NetcoredbgPath: findNetcoredbg(),
		DotnetPath:     "dotnet",
		MaxSessions:    10,
		SessionTimeout: 30 * time.Minute,
		LogLevel:       "info",
	}
}

// LoadConfig loads configuration from a JSON file, layering it over
// DefaultConfig. An empty path returns the defaults unchanged.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
