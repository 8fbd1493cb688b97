package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blackwell-systems/permaudit/internal/device"
)

// Import replaces the mirror contents with c in a single transaction. The
// mirror never keeps more than one capture. When a package id appears more
// than once only its first record is kept.
func (s *Store) Import(ctx context.Context, c *Capture) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"applications", "application_permissions", "usage_records"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return 0, wrapQueryErr("failed to clear "+table, err)
		}
	}

	seen := make(map[string]bool, len(c.Applications))
	stored := 0
	for i, app := range c.Applications {
		if app.PackageID != "" {
			if seen[app.PackageID] {
				continue
			}
			seen[app.PackageID] = true
		}
		stored++

		var name string
		if app.Details != nil && app.Details.DisplayName != "" {
			name = app.Details.DisplayName
		} else {
			name = app.DisplayName
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO applications (position, package_id, display_name, is_system, icon_ref, resolved)
			VALUES (?, ?, ?, ?, ?, ?)
		`, i, app.PackageID, name, app.IsSystem, app.IconRef, app.Details != nil)
		if err != nil {
			return 0, fmt.Errorf("failed to insert application %s: %w", app.PackageID, err)
		}

		if app.Details == nil || app.PackageID == "" {
			continue
		}
		for pos, perm := range app.Details.Permissions {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO application_permissions (package_id, position, permission)
				VALUES (?, ?, ?)
			`, app.PackageID, pos, perm)
			if err != nil {
				return 0, fmt.Errorf("failed to insert permission %s for %s: %w", perm, app.PackageID, err)
			}
		}
	}

	for _, r := range c.Usage {
		_, err := tx.ExecContext(ctx, `INSERT INTO usage_records (package_id, last_used_at) VALUES (?, ?)`,
			r.PackageID, r.LastUsedAt)
		if err != nil {
			return 0, fmt.Errorf("failed to insert usage record for %s: %w", r.PackageID, err)
		}
	}

	var capturedAt sql.NullInt64
	if !c.CapturedAt.IsZero() {
		capturedAt = sql.NullInt64{Int64: c.CapturedAt.UnixMilli(), Valid: true}
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO imports (imported_at, source, captured_at, application_count, usage_count)
		VALUES (?, ?, ?, ?, ?)
	`, time.Now().UTC().Format(time.RFC3339), c.Source, capturedAt, stored, len(c.Usage))
	if err != nil {
		return 0, fmt.Errorf("failed to record import: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import ID: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return id, nil
}

// LastImport returns the most recent import, or nil when nothing was imported.
func (s *Store) LastImport(ctx context.Context) (*ImportInfo, error) {
	query := `
		SELECT id, imported_at, source, captured_at, application_count, usage_count
		FROM imports
		ORDER BY id DESC
		LIMIT 1
	`

	var info ImportInfo
	var importedAt string
	var capturedAt sql.NullInt64

	err := s.db.QueryRowContext(ctx, query).Scan(
		&info.ID,
		&importedAt,
		&info.Source,
		&capturedAt,
		&info.ApplicationCount,
		&info.UsageCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapQueryErr("failed to get last import", err)
	}

	info.ImportedAt, err = time.Parse(time.RFC3339, importedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse imported_at: %w", err)
	}
	if capturedAt.Valid {
		info.CapturedAt = time.UnixMilli(capturedAt.Int64)
	}

	return &info, nil
}

// ListApplications returns the mirrored applications in capture order.
func (s *Store) ListApplications(ctx context.Context) ([]device.Application, error) {
	query := `
		SELECT package_id, display_name, is_system, icon_ref
		FROM applications
		ORDER BY position
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapQueryErr("failed to list applications", err)
	}
	defer rows.Close()

	apps := []device.Application{}
	for rows.Next() {
		var app device.Application
		var name, icon sql.NullString
		if err := rows.Scan(&app.PackageID, &name, &app.IsSystem, &icon); err != nil {
			return nil, fmt.Errorf("failed to scan application row: %w", err)
		}
		app.DisplayName = name.String
		app.IconRef = icon.String
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applications: %w", err)
	}
	return apps, nil
}

// ApplicationDetails returns the mirrored details of packageID. Applications
// whose details were not resolved at capture time report ErrPackageNotFound.
func (s *Store) ApplicationDetails(ctx context.Context, packageID string) (*device.Details, error) {
	var name sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT display_name
		FROM applications
		WHERE package_id = ? AND package_id != '' AND resolved = 1
		ORDER BY position
		LIMIT 1
	`, packageID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", packageID, device.ErrPackageNotFound)
	}
	if err != nil {
		return nil, wrapQueryErr("failed to get application "+packageID, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT permission
		FROM application_permissions
		WHERE package_id = ?
		ORDER BY position
	`, packageID)
	if err != nil {
		return nil, wrapQueryErr("failed to get permissions for "+packageID, err)
	}
	defer rows.Close()

	perms := []string{}
	for rows.Next() {
		var perm string
		if err := rows.Scan(&perm); err != nil {
			return nil, fmt.Errorf("failed to scan permission row: %w", err)
		}
		perms = append(perms, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating permissions: %w", err)
	}

	return &device.Details{DisplayName: name.String, Permissions: perms}, nil
}

// QueryUsage returns mirrored usage records within [start, end] in capture
// order.
func (s *Store) QueryUsage(ctx context.Context, start, end time.Time) ([]device.UsageRecord, error) {
	query := `
		SELECT package_id, last_used_at
		FROM usage_records
		WHERE last_used_at >= ? AND last_used_at <= ?
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, wrapQueryErr("failed to query usage records", err)
	}
	defer rows.Close()

	var records []device.UsageRecord
	for rows.Next() {
		var r device.UsageRecord
		if err := rows.Scan(&r.PackageID, &r.LastUsedAt); err != nil {
			return nil, fmt.Errorf("failed to scan usage row: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage records: %w", err)
	}
	return records, nil
}
