package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/blackwell-systems/permaudit/internal/analyzer"
	"github.com/blackwell-systems/permaudit/internal/config"
	"github.com/blackwell-systems/permaudit/internal/output"
)

// Exit codes
const (
	ExitError             = 1
	ExitAccessDenied      = 3
	ExitSourceUnavailable = 4
	ExitInvalidPackage    = 5
)

// reportedError marks a failure the command already presented to the user.
// It only carries the exit status.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch analyzer.KindOf(err) {
	case analyzer.KindAccessDenied:
		return ExitAccessDenied
	case analyzer.KindSourceUnavailable:
		return ExitSourceUnavailable
	case analyzer.KindInvalidPackage:
		return ExitInvalidPackage
	}
	return ExitError
}

// ReportError prints err unless the command already did. With JSON output
// the error is written to stdout as an error document.
func ReportError(stdout, stderr io.Writer, err error) {
	var reported *reportedError
	if errors.As(err, &reported) {
		return
	}
	if cfg != nil && cfg.Output == config.OutputJSON {
		if output.RenderErrorJSON(stdout, err) == nil {
			return
		}
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
}
