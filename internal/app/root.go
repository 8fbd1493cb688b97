package app

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/blackwell-systems/permaudit/internal/config"
)

var (
	cfgFile string

	// cfg and log are populated by loadConfig before any command runs.
	cfg *config.Config
	log = logrus.New()

	// RootCmd is the root command for permaudit
	RootCmd = &cobra.Command{
		Use:   "permaudit",
		Short: "Audit which Android apps hold permissions they are not using",
		Long: `permaudit lists every installed application on an Android device together
with the permissions it requested and the last time it was used.

Applications that hold sensitive permissions but were not used within the
usage window are candidates for revoking permissions or uninstalling.

Usage history is only readable once usage access is granted. If the report
comes back denied, grant access in the device settings:

  permaudit settings

Data sources:
  • adb (default): a device connected over USB or TCP
  • export: a JSON file written by the on-device exporter
  • db: the local mirror filled by 'permaudit import'

Examples:
  # Check usage access
  permaudit access

  # Report the last 7 days
  permaudit scan --window 7d

  # Machine-readable report from an export file
  permaudit scan --source export --export ./permaudit.json -o json

  # Open the settings screen of one app
  permaudit settings com.example.mail`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadConfig,
	}
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"source":         "source",
	"adb":            "adb.path",
	"serial":         "adb.serial",
	"timezone":       "adb.timezone",
	"export":         "export.path",
	"db":             "db.path",
	"output":         "output",
	"log-level":      "log.level",
	"log-json":       "log.json",
	"window":         "window",
	"probe-window":   "probe_window",
	"include-system": "include_system",
	"icons":          "icons",
	"open-settings":  "open_settings",
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/permaudit/config.yaml)")
	pf.String("source", config.SourceADB, "data source: adb, export or db")
	pf.String("adb", "adb", "adb binary")
	pf.StringP("serial", "s", "", "device serial")
	pf.String("timezone", "Local", "timezone of device usage timestamps")
	pf.String("export", "", "export file (source export)")
	pf.String("db", "", "mirror database path (default: ~/.permaudit/permaudit.db)")
	pf.StringP("output", "o", config.OutputTable, "output format: table or json")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")
	pf.Bool("log-json", false, "log in JSON format")
	pf.String("probe-window", "1h", "window probed by the usage access check")

	RootCmd.SuggestionsMinimumDistance = 2

	RootCmd.AddCommand(accessCmd)
	RootCmd.AddCommand(scanCmd)
	RootCmd.AddCommand(settingsCmd)
	RootCmd.AddCommand(importCmd)
	RootCmd.AddCommand(watchCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// loadConfig resolves configuration for the command being run and sets up
// logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	v := config.NewViper()

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			_ = v.BindPFlag(key, f)
		}
	})

	c, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	return setupLogging(cfg.Log)
}

// setupLogging configures the shared logger. Logs go to stderr so that
// stdout carries only the report.
func setupLogging(lc config.LogConfig) error {
	level, err := logrus.ParseLevel(lc.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	log.SetOutput(os.Stderr)
	log.SetLevel(level)
	if lc.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
