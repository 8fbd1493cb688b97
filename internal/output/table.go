// Package output renders audit results for the terminal.
//
// Tables use box-drawing rules and ANSI colors when stdout is a TTY and
// NO_COLOR is unset. JSON rendering produces the machine-readable report
// consumed by other tools.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/permaudit/internal/analyzer"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderReportTable renders one row per report entry in report order.
// Relative times are computed against now. With verbose set, each row is
// followed by its requested permissions.
func RenderReportTable(entries []analyzer.ReportEntry, now time.Time, verbose bool) string {
	if len(entries) == 0 {
		return "No applications found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-22s %-34s %-6s %s\n", "App", "Package", "Perms", "Last Used"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for _, e := range entries {
		lastUsed := formatRelativeTime(e.LastUsedTime(), now)
		if e.LastUsed == 0 {
			lastUsed = colorize(colorGray, lastUsed)
		}

		sb.WriteString(fmt.Sprintf("%-22s %-34s %-6s %s\n",
			truncate(e.AppName, 22),
			truncate(e.PackageName, 34),
			formatPermCount(len(e.Permissions), e.LastUsed == 0),
			lastUsed))

		if verbose {
			for _, p := range e.Permissions {
				sb.WriteString("    ")
				sb.WriteString(p)
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}

// formatPermCount highlights applications that hold permissions without
// having been used in the window.
func formatPermCount(n int, unused bool) string {
	s := fmt.Sprintf("%-6d", n)
	if n > 0 && unused {
		return colorize(colorYellow, s)
	}
	return s
}

// RenderSummary renders the one-line footer under the report table.
func RenderSummary(result *analyzer.ScanResult) string {
	unused := 0
	for _, e := range result.Entries {
		if e.LastUsed == 0 && len(e.Permissions) > 0 {
			unused++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n%d applications, %d holding permissions without use in the last %s",
		len(result.Entries), unused, formatWindow(result.Window)))
	if result.Skipped > 0 {
		sb.WriteString(fmt.Sprintf(" (%d skipped)", result.Skipped))
	}
	sb.WriteString("\n")
	return sb.String()
}

// RenderAccess renders the access gate result.
func RenderAccess(granted bool) string {
	if granted {
		return colorize(colorGreen, "✓ usage access granted") + "\n"
	}
	return colorize(colorRed, "✗ usage access not granted") + "\n" +
		"  Grant usage access to the shell or exporter, or run 'permaudit settings' to open the screen.\n" +
		"  A device that was not used in the last hour also reports as not granted.\n"
}

// formatWindow prints whole days as "7d" and everything else as a duration.
func formatWindow(d time.Duration) string {
	const day = 24 * time.Hour
	if d >= day && d%day == 0 {
		return fmt.Sprintf("%dd", d/day)
	}
	return d.String()
}

// formatRelativeTime formats t relative to now.
func formatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := now.Sub(t)
	switch {
	case diff < 0:
		return t.Format("2006-01-02 15:04")
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	default:
		return t.Format("2006-01-02")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// truncate shortens s to maxLen runes.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
