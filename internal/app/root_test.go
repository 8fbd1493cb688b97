package app

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/permaudit/internal/config"
)

func TestRootCommand(t *testing.T) {
	if RootCmd.Use != "permaudit" {
		t.Errorf("expected Use to be 'permaudit', got '%s'", RootCmd.Use)
	}

	if RootCmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	if RootCmd.Long == "" {
		t.Error("expected Long description to be set")
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	foundCommands := make(map[string]bool)
	for _, cmd := range RootCmd.Commands() {
		foundCommands[cmd.Name()] = true
	}

	for _, expected := range []string{"access", "scan", "settings", "import", "watch"} {
		if !foundCommands[expected] {
			t.Errorf("expected command '%s' to be registered", expected)
		}
	}
}

func TestRootCommandHasPersistentFlags(t *testing.T) {
	flags := []string{"config", "source", "adb", "serial", "timezone", "export", "db", "output", "log-level", "log-json", "probe-window"}

	for _, name := range flags {
		flag := RootCmd.PersistentFlags().Lookup(name)
		if flag == nil {
			t.Errorf("expected --%s flag to be registered", name)
			continue
		}
		if flag.Usage == "" {
			t.Errorf("expected --%s flag to have usage text", name)
		}
	}
}

func TestFlagKeysAreConfigKeys(t *testing.T) {
	v := config.NewViper()
	for flag, key := range flagKeys {
		if !v.IsSet(key) {
			t.Errorf("flag --%s maps to unknown config key %q", flag, key)
		}
	}
}

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	path := writeExport(t, fixtureExport)

	_, _, err := runCLI(t, "access", "--source", "export", "--export", path, "-o", "json", "--log-level", "debug", "--log-json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Source != config.SourceExport {
		t.Errorf("expected source export, got %q", cfg.Source)
	}
	if cfg.Export.Path != path {
		t.Errorf("expected export path %q, got %q", path, cfg.Export.Path)
	}
	if cfg.Output != config.OutputJSON {
		t.Errorf("expected json output, got %q", cfg.Output)
	}
	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %s", log.GetLevel())
	}
	if _, ok := log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("expected JSON formatter, got %T", log.Formatter)
	}
}

func TestLoadConfig_Environment(t *testing.T) {
	path := writeExport(t, fixtureExport)
	t.Setenv("PERMAUDIT_SOURCE", "export")
	t.Setenv("PERMAUDIT_EXPORT_PATH", path)

	stdout, _, err := runCLI(t, "access")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "usage access granted") {
		t.Errorf("expected granted output, got: %s", stdout)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "output", args: []string{"access", "-o", "xml"}},
		{name: "source", args: []string{"access", "--source", "usb"}},
		{name: "window", args: []string{"scan", "--window", "yesterday"}},
		{name: "log level", args: []string{"access", "--log-level", "chatty"}},
		{name: "timezone", args: []string{"access", "--timezone", "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if code := ExitCode(err); code != ExitError {
				t.Errorf("expected exit code %d, got %d", ExitError, code)
			}
		})
	}
}
