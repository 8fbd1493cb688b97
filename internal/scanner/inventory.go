package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/blackwell-systems/permaudit/internal/device"
	"github.com/blackwell-systems/permaudit/internal/store"
)

// Installed enumerates applications and resolves their details.
type Installed interface {
	ListApplications(ctx context.Context) ([]device.Application, error)
	ApplicationDetails(ctx context.Context, packageID string) (*device.Details, error)
}

// Usage queries usage history.
type Usage interface {
	QueryUsage(ctx context.Context, start, end time.Time) ([]device.UsageRecord, error)
}

// Capture reads every application, its details and the usage records in
// [start, end] from the given sources. Applications whose details cannot be
// resolved are kept without details so the mirror reproduces the source.
func (s *Scanner) Capture(ctx context.Context, source string, installed Installed, usage Usage, start, end time.Time) (*store.Capture, error) {
	apps, err := installed.ListApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list installed applications: %w", err)
	}

	records, err := usage.QueryUsage(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage history: %w", err)
	}

	captured := make([]store.CapturedApplication, 0, len(apps))
	unresolved := 0
	for i, app := range apps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry := store.CapturedApplication{Application: app}
		if app.PackageID != "" {
			details, err := installed.ApplicationDetails(ctx, app.PackageID)
			if err != nil {
				s.log.WithField("package", app.PackageID).WithError(err).Debug("details unavailable")
			} else {
				entry.Details = details
			}
		}
		if entry.Details == nil {
			unresolved++
		}
		captured = append(captured, entry)

		if s.OnProgress != nil {
			s.OnProgress(i+1, len(apps))
		}
	}

	s.log.WithField("applications", len(captured)).
		WithField("unresolved", unresolved).
		WithField("usage_records", len(records)).
		Info("captured source")

	return &store.Capture{
		Source:       source,
		CapturedAt:   end,
		Applications: captured,
		Usage:        records,
	}, nil
}

// Import captures the sources and replaces the mirror contents with the
// result. It returns the import record.
func (s *Scanner) Import(ctx context.Context, source string, installed Installed, usage Usage, start, end time.Time) (*store.ImportInfo, error) {
	capture, err := s.Capture(ctx, source, installed, usage, start, end)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateSchema(); err != nil {
		return nil, err
	}
	if _, err := s.store.Import(ctx, capture); err != nil {
		return nil, fmt.Errorf("failed to import %s capture: %w", source, err)
	}

	return s.store.LastImport(ctx)
}
