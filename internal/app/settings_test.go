package app

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestSettings_InvalidPackage(t *testing.T) {
	tests := []struct {
		name string
		pkg  string
		want string
	}{
		{name: "empty", pkg: "", want: "package name missing"},
		{name: "single segment", pkg: "mail", want: "malformed package name"},
		{name: "shell metacharacters", pkg: "com.example;reboot", want: "malformed package name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// adb points nowhere: validation must fail before any command runs.
			_, stderr, err := runCLI(t, "settings", tt.pkg, "--adb", "/nonexistent/adb")
			if code := ExitCode(err); code != ExitInvalidPackage {
				t.Errorf("expected exit code %d, got %d (%v)", ExitInvalidPackage, code, err)
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("expected %q in stderr, got %q", tt.want, stderr)
			}
		})
	}
}

func TestSettings_InvalidPackageBeforeSource(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.db")

	tests := []struct {
		name string
		args []string
	}{
		{name: "db without mirror", args: []string{"settings", "", "--source", "db", "--db", missing}},
		{name: "export not configured", args: []string{"settings", "bad", "--source", "export"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			if code := ExitCode(err); code != ExitInvalidPackage {
				t.Errorf("expected exit code %d, got %d (%v)", ExitInvalidPackage, code, err)
			}
		})
	}
}

func TestSettings_InvalidPackageJSON(t *testing.T) {
	stdout, _, err := runCLI(t, "settings", "bad", "-o", "json", "--adb", "/nonexistent/adb")
	if ExitCode(err) != ExitInvalidPackage {
		t.Fatalf("expected invalid package, got %v", err)
	}
	if !strings.Contains(stdout, `"kind": "InvalidPackage"`) {
		t.Errorf("expected error document, got:\n%s", stdout)
	}
}

func TestSettings_ExportCannotNavigate(t *testing.T) {
	path := writeExport(t, fixtureExport)

	_, stderr, err := runCLI(t, "settings", "--source", "export", "--export", path)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if code := ExitCode(err); code != ExitError {
		t.Errorf("expected exit code %d, got %d", ExitError, code)
	}
	if !strings.Contains(stderr, "not supported") {
		t.Errorf("expected unsupported navigation error, got %q", stderr)
	}
}

func TestSettings_TooManyArgs(t *testing.T) {
	_, _, err := runCLI(t, "settings", "com.example.a", "com.example.b")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
