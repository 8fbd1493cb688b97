package app

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/blackwell-systems/permaudit/internal/analyzer"
	"github.com/blackwell-systems/permaudit/internal/config"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "access denied", err: analyzer.ErrAccessDenied, want: ExitAccessDenied},
		{name: "wrapped access denied", err: fmt.Errorf("scan: %w", analyzer.ErrAccessDenied), want: ExitAccessDenied},
		{name: "source unavailable", err: unavailable("failed", errors.New("boom")), want: ExitSourceUnavailable},
		{name: "invalid package", err: analyzer.ValidatePackageName(""), want: ExitInvalidPackage},
		{name: "reported", err: &reportedError{err: analyzer.ErrAccessDenied}, want: ExitAccessDenied},
		{name: "plain", err: errors.New("boom"), want: ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReportError(t *testing.T) {
	t.Cleanup(func() { cfg = nil })

	t.Run("table", func(t *testing.T) {
		cfg = &config.Config{Output: config.OutputTable}
		var stdout, stderr bytes.Buffer
		ReportError(&stdout, &stderr, errors.New("boom"))

		if stdout.Len() != 0 {
			t.Errorf("expected nothing on stdout, got %q", stdout.String())
		}
		if stderr.String() != "Error: boom\n" {
			t.Errorf("unexpected stderr %q", stderr.String())
		}
	})

	t.Run("json", func(t *testing.T) {
		cfg = &config.Config{Output: config.OutputJSON}
		var stdout, stderr bytes.Buffer
		ReportError(&stdout, &stderr, analyzer.ErrSourceUnavailable)

		if !strings.Contains(stdout.String(), `"kind": "SourceUnavailable"`) {
			t.Errorf("expected error document, got %q", stdout.String())
		}
		if stderr.Len() != 0 {
			t.Errorf("expected nothing on stderr, got %q", stderr.String())
		}
	})

	t.Run("no config", func(t *testing.T) {
		cfg = nil
		var stdout, stderr bytes.Buffer
		ReportError(&stdout, &stderr, errors.New("bad flag"))

		if stderr.String() != "Error: bad flag\n" {
			t.Errorf("unexpected stderr %q", stderr.String())
		}
	})

	t.Run("already reported", func(t *testing.T) {
		cfg = &config.Config{Output: config.OutputTable}
		var stdout, stderr bytes.Buffer
		ReportError(&stdout, &stderr, &reportedError{err: analyzer.ErrAccessDenied})

		if stdout.Len() != 0 || stderr.Len() != 0 {
			t.Errorf("expected no output, got stdout=%q stderr=%q", stdout.String(), stderr.String())
		}
	})
}
