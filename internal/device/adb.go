package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrPackageNotFound is returned when a package disappeared between
// enumeration and detail lookup.
var ErrPackageNotFound = errors.New("package not found")

// Runner executes adb with the given arguments and returns its stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// ExecRunner runs the adb binary on the host.
type ExecRunner struct {
	Path   string // adb binary, "adb" when empty
	Serial string // target device, passed as -s when set
	Log    logrus.FieldLogger
}

// Run invokes adb. Stderr is folded into the returned error on failure.
func (r *ExecRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	path := r.Path
	if path == "" {
		path = "adb"
	}

	full := make([]string, 0, len(args)+2)
	if r.Serial != "" {
		full = append(full, "-s", r.Serial)
	}
	full = append(full, args...)

	if r.Log != nil {
		r.Log.WithField("args", strings.Join(full, " ")).Debug("running adb")
	}

	cmd := exec.CommandContext(ctx, path, full...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("adb %s failed: %w (stderr: %s)", args[0], err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("adb %s failed: %w", args[0], err)
	}
	return output, nil
}

// Client reads installed applications, usage history and icons from a
// device over adb, and opens settings screens on it.
type Client struct {
	runner   Runner
	labels   map[string]string
	location *time.Location
	tempDir  string
	log      logrus.FieldLogger
}

// ClientOptions configures a Client.
type ClientOptions struct {
	// Labels overrides display names by package id.
	Labels map[string]string
	// Location is the timezone usagestats timestamps are printed in.
	Location *time.Location
	// TempDir receives pulled APKs during icon extraction.
	TempDir string
	Logger  logrus.FieldLogger
}

// NewClient creates a Client on top of runner.
func NewClient(runner Runner, opts ClientOptions) *Client {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	return &Client{
		runner:   runner,
		labels:   opts.Labels,
		location: loc,
		tempDir:  opts.TempDir,
		log:      log,
	}
}

func (c *Client) shell(ctx context.Context, args ...string) (string, error) {
	output, err := c.runner.Run(ctx, append([]string{"shell"}, args...)...)
	if err != nil {
		return "", err
	}
	return string(output), nil
}

// lines splits command output into trimmed, non-empty lines.
func lines(output string) []string {
	var out []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
