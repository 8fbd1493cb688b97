package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// capturedAt is the capture time of the fixture export, 2024-03-01T12:00:00Z.
const capturedAt = 1709294400000

const fixtureExport = `{
  "captured_at": 1709294400000,
  "applications": [
    {"package_id": "com.example.mail", "display_name": "Mail", "is_system": false,
     "permissions": ["android.permission.CAMERA", "android.permission.INTERNET"]},
    {"package_id": "com.android.systemui", "display_name": "System UI", "is_system": true,
     "permissions": ["android.permission.STATUS_BAR"]},
    {"package_id": "com.example.idle", "display_name": "Idle", "is_system": false}
  ],
  "usage": [
    {"package_id": "com.example.mail", "last_used_at": 1709293800000}
  ]
}`

const idleExport = `{
  "captured_at": 1709294400000,
  "applications": [
    {"package_id": "com.example.mail", "display_name": "Mail", "permissions": []}
  ],
  "usage": []
}`

func TestMain(m *testing.M) {
	os.Setenv("NO_COLOR", "1")
	os.Exit(m.Run())
}

// writeExport writes an export document into a temp dir and returns its path.
func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "permaudit.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write export: %v", err)
	}
	return path
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// runCLI executes the root command with args in an isolated environment and
// reports the error the way main does.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	resetFlags(RootCmd)
	cfg = nil
	t.Cleanup(func() {
		resetFlags(RootCmd)
		cfg = nil
	})

	var out, errOut bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	RootCmd.SetArgs(args)

	err = RootCmd.Execute()
	if err != nil {
		ReportError(&out, &errOut, err)
	}
	return out.String(), errOut.String(), err
}
