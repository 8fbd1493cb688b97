package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/permaudit/internal/device"
)

// row is the per-application outcome of a report build: either an entry or
// the reason the application was skipped.
type row struct {
	entry ReportEntry
	skip  string
}

// BuildReport joins installed applications with usage history over the
// trailing window and returns one entry per eligible application, in the
// installed source's enumeration order.
//
// It fails only when one of the sources cannot be queried at all. An
// application whose details cannot be resolved is left out of the report.
func (a *Analyzer) BuildReport(ctx context.Context, window time.Duration) ([]ReportEntry, error) {
	entries, _, err := a.buildReport(ctx, window, a.log)
	return entries, err
}

func (a *Analyzer) buildReport(ctx context.Context, window time.Duration, log logrus.FieldLogger) ([]ReportEntry, int, error) {
	if window <= 0 {
		return nil, 0, fmt.Errorf("invalid window %s: must be positive", window)
	}

	// 1. Usage lookup table. Later records for the same package win.
	end := a.opts.Now()
	records, err := a.usage.QueryUsage(ctx, end.Add(-window), end)
	if err != nil {
		return nil, 0, sourceUnavailable("failed to query usage history", err)
	}

	lastUsed := make(map[string]int64, len(records))
	for _, r := range records {
		lastUsed[r.PackageID] = r.LastUsedAt
	}

	// 2. Installed applications are the outer set.
	apps, err := a.installed.ListApplications(ctx)
	if err != nil {
		return nil, 0, sourceUnavailable("failed to list installed applications", err)
	}

	entries := make([]ReportEntry, 0, len(apps))
	seen := make(map[string]bool, len(apps))
	skipped := 0

	for _, app := range apps {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		// 3. System-app filter.
		if !a.includes(app) {
			continue
		}
		if seen[app.PackageID] {
			continue
		}

		r := a.resolveRow(ctx, app, lastUsed, log)
		if r.skip != "" {
			skipped++
			log.WithField("package", app.PackageID).WithField("reason", r.skip).Debug("skipping application")
			continue
		}

		seen[app.PackageID] = true
		entries = append(entries, r.entry)
	}

	log.WithField("entries", len(entries)).
		WithField("skipped", skipped).
		WithField("usage_records", len(records)).
		Debug("report built")

	return entries, skipped, nil
}

// resolveRow performs steps 4-6 for one application.
func (a *Analyzer) resolveRow(ctx context.Context, app device.Application, lastUsed map[string]int64, log logrus.FieldLogger) row {
	if app.PackageID == "" {
		return row{skip: "missing package id"}
	}

	details, err := a.installed.ApplicationDetails(ctx, app.PackageID)
	if err != nil {
		return row{skip: err.Error()}
	}
	if details == nil {
		return row{skip: "no details returned"}
	}

	name := details.DisplayName
	if name == "" {
		name = app.DisplayName
	}
	if name == "" {
		name = app.PackageID
	}

	permissions := make([]string, len(details.Permissions))
	copy(permissions, details.Permissions)

	return row{entry: ReportEntry{
		AppName:     name,
		PackageName: app.PackageID,
		Permissions: permissions,
		LastUsed:    lastUsed[app.PackageID],
		Icon:        a.resolveIcon(ctx, app, log),
	}}
}

// resolveIcon returns the icon encoding, or "" when icons are not requested
// or cannot be resolved. A missing icon never drops the entry.
func (a *Analyzer) resolveIcon(ctx context.Context, app device.Application, log logrus.FieldLogger) string {
	if !a.opts.ResolveIcons {
		return ""
	}
	if a.opts.Icons == nil {
		return app.IconRef
	}

	icon, err := a.opts.Icons.ResolveIcon(ctx, app)
	if err != nil {
		log.WithField("package", app.PackageID).WithError(err).Debug("icon unavailable")
		return ""
	}
	return icon
}
