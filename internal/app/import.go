package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/permaudit/internal/config"
	"github.com/blackwell-systems/permaudit/internal/output"
	"github.com/blackwell-systems/permaudit/internal/scanner"
)

var (
	importFrom       string
	importFromDevice bool
	importHistory    string

	importCmd = &cobra.Command{
		Use:   "import",
		Short: "Refresh the local mirror from an export file or a device",
		Long: `Copy installed applications, their permissions and usage history into the
local SQLite mirror. The previous contents are replaced in one transaction.

Once imported, reports can be built offline with --source db. The report
clock of a db scan is the capture time of the import.`,
		Example: `  # From an export file
  permaudit import --from ./permaudit.json

  # From the connected device, keeping two weeks of usage history
  permaudit import --from-device --history 14d

  # Report from the mirror
  permaudit scan --source db --window 7d`,
		Args: cobra.NoArgs,
		RunE: runImport,
	}
)

func init() {
	importCmd.Flags().StringVar(&importFrom, "from", "", "export file to import")
	importCmd.Flags().BoolVar(&importFromDevice, "from-device", false, "import from the connected device over adb")
	importCmd.Flags().StringVar(&importHistory, "history", "30d", "usage history to copy (e.g. 24h, 30d)")
	importCmd.MarkFlagsMutuallyExclusive("from", "from-device")
	importCmd.MarkFlagsOneRequired("from", "from-device")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	history, err := config.ParseDuration(importHistory)
	if err != nil {
		return fmt.Errorf("invalid --history: %w", err)
	}

	var (
		installed scanner.Installed
		usage     scanner.Usage
		source    string
		end       = time.Now()
	)
	if importFromDevice {
		client, err := newDeviceClient()
		if err != nil {
			return err
		}
		installed, usage, source = client, client, config.SourceADB
	} else {
		src, err := loadExport(importFrom)
		if err != nil {
			return err
		}
		if at := src.CapturedAt(); !at.IsZero() {
			end = at
		}
		installed, usage, source = src, src, config.SourceExport
	}

	st, err := openStore(true)
	if err != nil {
		return err
	}
	defer st.Close()

	sc := scanner.New(st, log)

	progress := output.NewProgress(0, "Resolving applications")
	progress.SetWriter(cmd.ErrOrStderr())
	sc.OnProgress = progress.Set

	info, err := sc.Import(ctx, source, installed, usage, end.Add(-history), end)
	progress.Finish()
	if err != nil {
		return err
	}

	if cfg.Output == config.OutputJSON {
		return output.RenderJSON(cmd.OutOrStdout(), info)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %d applications and %d usage records from %s\n",
		info.ApplicationCount, info.UsageCount, info.Source)
	fmt.Fprintf(out, "Captured at %s\n", info.CapturedAt.Local().Format(time.RFC3339))
	return nil
}
