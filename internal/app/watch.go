package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/blackwell-systems/permaudit/internal/analyzer"
	"github.com/blackwell-systems/permaudit/internal/config"
	"github.com/blackwell-systems/permaudit/internal/output"
	"github.com/blackwell-systems/permaudit/internal/watcher"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool
	watchDebounce    time.Duration

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Re-run the report whenever an export file changes",
		Long: `Watch an export file and print a fresh report every time it is rewritten.

The report is built once at start. Bursts of writes are collapsed into one
run after the debounce interval. Scan settings (window, include-system,
icons, output) apply to every run.

Watch modes:
  • Foreground (default): Run in current terminal with Ctrl+C to stop
  • Daemon: Run in the background, reports go to the log file
  • Stop: Stop a running daemon`,
		Example: `  # Run in foreground (Ctrl+C to stop)
  permaudit watch --export ./permaudit.json

  # Run as background daemon
  permaudit watch --export ./permaudit.json --daemon

  # Stop running daemon
  permaudit watch --stop`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().String("window", "24h", "trailing usage window (e.g. 12h, 7d)")
	watchCmd.Flags().Bool("include-system", false, "include system applications")
	watchCmd.Flags().Bool("icons", false, "resolve application icons")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before a change triggers a run")
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: ~/.permaudit/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: ~/.permaudit/watch.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")

	// Hide the internal daemon-child flag from help
	watchCmd.Flags().MarkHidden("daemon-child")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := resolveDaemonFiles(); err != nil {
		return err
	}

	if watchStop {
		return stopWatchDaemon(cmd.OutOrStdout())
	}

	if cfg.Export.Path == "" {
		return &analyzer.Error{
			Kind:    analyzer.KindSourceUnavailable,
			Message: "no export file to watch",
			Err:     errors.New("set --export or export.path"),
		}
	}
	path, err := filepath.Abs(cfg.Export.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", cfg.Export.Path, err)
	}

	if watchDaemon {
		return startWatchDaemon(cmd, path)
	}

	out := cmd.OutOrStdout()
	w, err := watcher.New(path, watchDebounce, func(ctx context.Context) error {
		return watchScan(ctx, out, path)
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if watchDaemonChild {
		return watcher.RunDaemon(cmd.Context(), w, watchPIDFile)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (press Ctrl+C to stop)...\n", path)
	return watcher.RunDaemon(cmd.Context(), w, "")
}

// watchScan reloads the export at path and prints one report.
func watchScan(ctx context.Context, out io.Writer, path string) error {
	src, err := loadExport(path)
	if err != nil {
		return err
	}

	s := &sources{installed: src, usage: src}
	if at := src.CapturedAt(); !at.IsZero() {
		s.now = func() time.Time { return at }
	}

	result, err := newAnalyzer(s).Scan(ctx, cfg.Window)
	if err != nil {
		if cfg.Output == config.OutputJSON {
			return output.RenderErrorJSON(out, err)
		}
		fmt.Fprintf(out, "%s: %v\n", time.Now().Format(time.RFC3339), err)
		return nil
	}

	if cfg.Output == config.OutputJSON {
		return output.RenderJSON(out, result)
	}
	fmt.Fprintf(out, "\n%s\n", result.GeneratedAt.Local().Format(time.RFC3339))
	fmt.Fprint(out, output.RenderReportTable(result.Entries, result.GeneratedAt, false))
	fmt.Fprint(out, output.RenderSummary(result))
	return nil
}

func resolveDaemonFiles() error {
	if watchPIDFile != "" && watchLogFile != "" {
		return nil
	}

	dir, err := permauditDir()
	if err != nil {
		return err
	}
	if watchPIDFile == "" {
		watchPIDFile = filepath.Join(dir, "watch.pid")
	}
	if watchLogFile == "" {
		watchLogFile = filepath.Join(dir, "watch.log")
	}
	return nil
}

func stopWatchDaemon(out io.Writer) error {
	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if !running {
		fmt.Fprintln(out, "Daemon is not running")
		return nil
	}

	if err := watcher.StopDaemon(watchPIDFile); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	fmt.Fprintln(out, "✓ Daemon stopped")
	return nil
}

func startWatchDaemon(cmd *cobra.Command, path string) error {
	pid, err := watcher.StartDaemon(watchPIDFile, watchLogFile, daemonArgs(cmd, path))
	if err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Watch daemon started (PID %d)\n", pid)
	fmt.Fprintf(out, "  PID file: %s\n", watchPIDFile)
	fmt.Fprintf(out, "  Log file: %s\n", watchLogFile)
	fmt.Fprintf(out, "\nTo stop: permaudit watch --stop\n")
	return nil
}

// daemonArgs rebuilds the command line for the daemon child from the flags
// set on this invocation.
func daemonArgs(cmd *cobra.Command, path string) []string {
	args := []string{"watch", "--daemon-child",
		"--export=" + path,
		"--pid-file=" + watchPIDFile,
		"--log-file=" + watchLogFile,
	}
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			args = append(args, "--config="+abs)
		}
	}

	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "daemon", "daemon-child", "export", "pid-file", "log-file", "config":
			return
		}
		args = append(args, "--"+f.Name+"="+f.Value.String())
	})
	return args
}
