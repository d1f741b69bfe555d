package profile

import (
	"os"
	"path/filepath"
	"testing"

	netdaperrors "github.com/netdap/netdap-mcp/internal/errors"
)

func writeLaunchSettings(t *testing.T, projectDir, contents string) {
	t.Helper()
	propsDir := filepath.Join(projectDir, "Properties")
	if err := os.MkdirAll(propsDir, 0755); err != nil {
		t.Fatalf("failed to create Properties dir: %v", err)
	}
	path := filepath.Join(propsDir, "launchSettings.json")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write launchSettings.json: %v", err)
	}
}

const sampleLaunchSettings = `{
	"profiles": {
		"Development": {
			"commandName": "Project",
			"environmentVariables": {
				"ASPNETCORE_ENVIRONMENT": "Development"
			},
			"applicationUrl": "https://localhost:5443;http://localhost:5080"
		},
		"Production": {
			"commandName": "Project",
			"environmentVariables": {
				"ASPNETCORE_ENVIRONMENT": "Production"
			}
		}
	}
}`

func TestDiscover_FromProjectDirectory(t *testing.T) {
	projectDir := t.TempDir()
	writeLaunchSettings(t, projectDir, sampleLaunchSettings)

	found, err := Discover(projectDir)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	want := filepath.Join(projectDir, launchSettingsRelPath)
	if found != want {
		t.Errorf("expected %q, got %q", want, found)
	}
}

func TestDiscover_ClimbsFromNestedBuildArtifact(t *testing.T) {
	projectDir := t.TempDir()
	writeLaunchSettings(t, projectDir, sampleLaunchSettings)

	artifactDir := filepath.Join(projectDir, "bin", "Debug", "net8.0")
	if err := os.MkdirAll(artifactDir, 0755); err != nil {
		t.Fatalf("failed to create artifact dir: %v", err)
	}
	artifactPath := filepath.Join(artifactDir, "App.dll")

	found, err := Discover(artifactPath)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	want := filepath.Join(projectDir, launchSettingsRelPath)
	if found != want {
		t.Errorf("expected %q, got %q", want, found)
	}
}

func TestDiscover_NotFound(t *testing.T) {
	dir := t.TempDir()

	_, err := Discover(dir)
	if err == nil {
		t.Error("expected an error when no launchSettings.json exists within range")
	}
}

func TestLoad(t *testing.T) {
	projectDir := t.TempDir()
	writeLaunchSettings(t, projectDir, sampleLaunchSettings)
	path := filepath.Join(projectDir, launchSettingsRelPath)

	profiles, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	dev, ok := profiles["Development"]
	if !ok {
		t.Fatal("expected a 'Development' profile")
	}
	if dev.EnvironmentVariables["ASPNETCORE_ENVIRONMENT"] != "Development" {
		t.Errorf("expected ASPNETCORE_ENVIRONMENT=Development, got %v", dev.EnvironmentVariables)
	}
	if dev.ApplicationURL != "https://localhost:5443;http://localhost:5080" {
		t.Errorf("unexpected applicationUrl: %q", dev.ApplicationURL)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	projectDir := t.TempDir()
	writeLaunchSettings(t, projectDir, "{not json")
	path := filepath.Join(projectDir, launchSettingsRelPath)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected an error for invalid JSON")
	}
	de, ok := err.(*netdaperrors.DebugError)
	if !ok {
		t.Fatalf("expected a *DebugError, got %T", err)
	}
	if de.Code != netdaperrors.CodeConfigInvalid {
		t.Errorf("expected code %s, got %s", netdaperrors.CodeConfigInvalid, de.Code)
	}
}

func TestResolve_Found(t *testing.T) {
	projectDir := t.TempDir()
	writeLaunchSettings(t, projectDir, sampleLaunchSettings)

	prof, err := Resolve(projectDir, "Production")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if prof.EnvironmentVariables["ASPNETCORE_ENVIRONMENT"] != "Production" {
		t.Errorf("expected Production environment, got %v", prof.EnvironmentVariables)
	}
}

func TestResolve_ProfileNotFound(t *testing.T) {
	projectDir := t.TempDir()
	writeLaunchSettings(t, projectDir, sampleLaunchSettings)

	_, err := Resolve(projectDir, "Staging")
	if err == nil {
		t.Fatal("expected an error for a missing profile")
	}
	de, ok := err.(*netdaperrors.DebugError)
	if !ok {
		t.Fatalf("expected a *DebugError, got %T", err)
	}
	if de.Code != netdaperrors.CodeConfigNotFound {
		t.Errorf("expected code %s, got %s", netdaperrors.CodeConfigNotFound, de.Code)
	}
	available, _ := de.Details["available"].([]string)
	if len(available) != 2 {
		t.Errorf("expected 2 available profiles listed, got %v", available)
	}
}

func TestExtractPorts(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want []int
	}{
		{"single https", "https://localhost:5443", []int{5443}},
		{"two urls", "https://localhost:5443;http://localhost:5080", []int{5443, 5080}},
		{"no port", "https://localhost", nil},
		{"empty", "", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractPorts(tc.url)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}

