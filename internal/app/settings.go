package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/permaudit/internal/analyzer"
)

var settingsCmd = &cobra.Command{
	Use:   "settings [package]",
	Short: "Open the usage access screen or an app's settings on the device",
	Long: `Without arguments, open the usage access settings screen so access can be
granted to the audit tool.

With a package name, open that application's details screen where its
permissions can be revoked or the app uninstalled. The name is validated
before anything is sent to the device; an empty or malformed name exits
with status 5.

Only the adb source can open screens.`,
	Example: `  permaudit settings
  permaudit settings com.example.mail`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettings,
}

func runSettings(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if len(args) == 1 {
		if err := analyzer.ValidatePackageName(args[0]); err != nil {
			return err
		}
	}

	src, err := openSources(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	a := newAnalyzer(src)

	if len(args) == 0 {
		if err := a.RequestAccessNavigation(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Opened usage access settings")
		return nil
	}

	if err := a.RequestAppSettingsNavigation(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Opened settings for %s\n", args[0])
	return nil
}
