// Package profile reads .NET launch profiles from a project's
// Properties/launchSettings.json, the file "dotnet run" and "dotnet watch
// run" consult for per-profile environment variables and URLs.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	netdaperrors "github.com/netdap/netdap-mcp/internal/errors"
	"github.com/netdap/netdap-mcp/pkg/types"
)

// MaxWalkLevels bounds how far Discover climbs from a starting path before
// giving up. A compiled artifact typically sits at
// <project>/bin/<config>/<tfm>/app.dll, four levels below the project
// directory that holds Properties/, so five levels of climbing covers the
// common layouts with margin.
const MaxWalkLevels = 5

const launchSettingsRelPath = "Properties/launchSettings.json"

// launchSettings mirrors the subset of launchSettings.json this mediator reads.
type launchSettings struct {
	Profiles map[string]profileEntry `json:"profiles"`
}

type profileEntry struct {
	CommandName          string            `json:"commandName,omitempty"`
	EnvironmentVariables map[string]string `json:"environmentVariables,omitempty"`
	ApplicationURL       string            `json:"applicationUrl,omitempty"`
}

// Discover walks up from startPath (a file or directory) looking for
// Properties/launchSettings.json, climbing at most MaxWalkLevels directory
// levels.
func Discover(startPath string) (string, error) {
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err == nil && !info.IsDir() {
		absPath = filepath.Dir(absPath)
	} else if err != nil {
		// startPath may not exist yet (e.g. a not-yet-built artifact path);
		// still search from its directory.
		absPath = filepath.Dir(absPath)
	}

	current := absPath
	for level := 0; level <= MaxWalkLevels; level++ {
		candidate := filepath.Join(current, launchSettingsRelPath)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", fmt.Errorf("no %s found within %d levels of %s", launchSettingsRelPath, MaxWalkLevels, startPath)
}

// Load parses a launchSettings.json file at an explicit path.
func Load(path string) (map[string]types.LaunchProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ls launchSettings
	if err := json.Unmarshal(data, &ls); err != nil {
		return nil, netdaperrors.ConfigInvalid(path, err.Error())
	}

	profiles := make(map[string]types.LaunchProfile, len(ls.Profiles))
	for name, entry := range ls.Profiles {
		profiles[name] = types.LaunchProfile{
			EnvironmentVariables: entry.EnvironmentVariables,
			ApplicationURL:       entry.ApplicationURL,
		}
	}
	return profiles, nil
}

// Resolve discovers and loads the launch profile named profileName, starting
// the directory walk from startPath. A malformed file is reported as
// ConfigInvalid; a well-formed file missing the requested profile is
// reported as ConfigNotFound with the available profile names attached.
func Resolve(startPath, profileName string) (*types.LaunchProfile, error) {
	path, err := Discover(startPath)
	if err != nil {
		return nil, err
	}

	profiles, err := Load(path)
	if err != nil {
		return nil, err
	}

	prof, ok := profiles[profileName]
	if !ok {
		available := make([]string, 0, len(profiles))
		for name := range profiles {
			available = append(available, name)
		}
		return nil, netdaperrors.ConfigNotFound(profileName, available)
	}

	return &prof, nil
}

var portPattern = regexp.MustCompile(`:(\d+)`)

// ExtractPorts returns every integer that follows a colon in a
// semicolon-delimited list of URLs, the shape applicationUrl takes
// (e.g. "https://localhost:5443;http://localhost:5080").
func ExtractPorts(applicationURL string) []int {
	matches := portPattern.FindAllStringSubmatch(applicationURL, -1)
	ports := make([]int, 0, len(matches))
	for _, m := range matches {
		port, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		ports = append(ports, port)
	}
	return ports
}
