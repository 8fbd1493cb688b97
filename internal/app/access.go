package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/permaudit/internal/analyzer"
	"github.com/blackwell-systems/permaudit/internal/config"
	"github.com/blackwell-systems/permaudit/internal/output"
)

var accessCmd = &cobra.Command{
	Use:   "access",
	Short: "Check whether usage access is granted",
	Long: `Check whether the usage history of the device is readable.

Access is probed by reading the last hour of usage history (see
probe_window). Any record means access is granted. A device that was idle
for the whole probe window is reported as denied.

Exits with status 3 when access is denied.`,
	Example: `  permaudit access
  permaudit access -o json`,
	Args: cobra.NoArgs,
	RunE: runAccess,
}

func runAccess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	src, err := openSources(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	result, err := newAnalyzer(src).CheckAccess(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.Output == config.OutputJSON {
		if err := output.RenderJSON(out, result); err != nil {
			return err
		}
	} else {
		fmt.Fprint(out, output.RenderAccess(result.Granted))
	}

	if !result.Granted {
		return &reportedError{err: analyzer.ErrAccessDenied}
	}
	return nil
}
