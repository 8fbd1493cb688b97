package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/permaudit/internal/analyzer"
	"github.com/blackwell-systems/permaudit/internal/config"
	"github.com/blackwell-systems/permaudit/internal/output"
)

var (
	scanVerbose bool

	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "Report installed apps with their permissions and last use",
		Long: `Build the audit report: one row per installed application with the
permissions it requested and the last time it was used within the window.

The usage access check runs first. When access is denied no report is
produced and the command exits with status 3; --open-settings then opens
the usage access screen on the device.

System applications are left out unless --include-system is given.
Applications that disappear while the report is being built are skipped
and counted in the summary.`,
		Example: `  # Last 24 hours
  permaudit scan

  # Last week, including system apps
  permaudit scan --window 7d --include-system

  # JSON with base64 icons
  permaudit scan --icons -o json`,
		Args: cobra.NoArgs,
		RunE: runScan,
	}
)

func init() {
	scanCmd.Flags().String("window", "24h", "trailing usage window (e.g. 12h, 7d)")
	scanCmd.Flags().Bool("include-system", false, "include system applications")
	scanCmd.Flags().Bool("icons", false, "resolve application icons")
	scanCmd.Flags().Bool("open-settings", false, "open the usage access screen when access is denied")
	scanCmd.Flags().BoolVarP(&scanVerbose, "verbose", "v", false, "list permissions of every application")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	src, err := openSources(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	a := newAnalyzer(src)

	var spinner *output.Spinner
	if cfg.Output == config.OutputTable {
		spinner = output.NewSpinner("Reading installed applications and usage history")
		spinner.SetWriter(cmd.ErrOrStderr())
		spinner.Start()
	}
	result, err := a.Scan(ctx, cfg.Window)
	if spinner != nil {
		spinner.Stop()
	}

	if errors.Is(err, analyzer.ErrAccessDenied) {
		if cfg.Output == config.OutputTable {
			fmt.Fprint(cmd.ErrOrStderr(), output.RenderAccess(false))
		}
		if cfg.OpenSettings {
			if navErr := a.RequestAccessNavigation(ctx); navErr != nil {
				log.WithError(navErr).Warn("failed to open usage access settings")
			}
		}
		return err
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.Output == config.OutputJSON {
		return output.RenderJSON(out, result)
	}

	fmt.Fprint(out, output.RenderReportTable(result.Entries, result.GeneratedAt, scanVerbose))
	fmt.Fprint(out, output.RenderSummary(result))
	return nil
}
