// Package export reads the JSON document written by the on-device exporter
// and serves it as installed-application and usage-history sources.
//
// Document layout:
//
//	{
//	  "captured_at": 1709294400000,
//	  "applications": [
//	    {"package_id": "com.example.mail", "display_name": "Mail",
//	     "is_system": false, "icon": "iVBORw0...", "permissions": ["android.permission.INTERNET"]}
//	  ],
//	  "usage": [{"package_id": "com.example.mail", "last_used_at": 1709293800000}]
//	}
//
// Records are decoded loosely: numbers may be written as strings and
// booleans as 0/1.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/blackwell-systems/permaudit/internal/device"
)

type document struct {
	CapturedAt   int64         `mapstructure:"captured_at"`
	Applications []application `mapstructure:"applications"`
	Usage        []usageRecord `mapstructure:"usage"`
}

type application struct {
	PackageID   string   `mapstructure:"package_id"`
	DisplayName string   `mapstructure:"display_name"`
	IsSystem    bool     `mapstructure:"is_system"`
	Icon        string   `mapstructure:"icon"`
	Permissions []string `mapstructure:"permissions"`
}

type usageRecord struct {
	PackageID  string `mapstructure:"package_id"`
	LastUsedAt int64  `mapstructure:"last_used_at"`
}

// Source serves an export document. It is immutable once loaded.
type Source struct {
	path   string
	doc    document
	byName map[string]application
}

// Load reads and decodes the export file at path.
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export %s: %w", path, err)
	}

	src, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse export %s: %w", path, err)
	}
	src.path = path
	return src, nil
}

// Parse decodes an export document.
func Parse(data []byte) (*Source, error) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	var doc document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &doc,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid export document: %w", err)
	}

	byName := make(map[string]application, len(doc.Applications))
	for _, app := range doc.Applications {
		if app.PackageID == "" {
			continue
		}
		if _, ok := byName[app.PackageID]; !ok {
			byName[app.PackageID] = app
		}
	}

	return &Source{doc: doc, byName: byName}, nil
}

// Path returns the file the source was loaded from, if any.
func (s *Source) Path() string {
	return s.path
}

// CapturedAt returns the capture time of the document, or the zero time when
// the exporter did not record one.
func (s *Source) CapturedAt() time.Time {
	if s.doc.CapturedAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.doc.CapturedAt)
}

// ListApplications returns the exported applications in document order.
// The icon string is carried as the application's icon handle.
func (s *Source) ListApplications(ctx context.Context) ([]device.Application, error) {
	apps := make([]device.Application, 0, len(s.doc.Applications))
	for _, app := range s.doc.Applications {
		apps = append(apps, device.Application{
			PackageID:   app.PackageID,
			DisplayName: app.DisplayName,
			IsSystem:    app.IsSystem,
			IconRef:     app.Icon,
		})
	}
	return apps, nil
}

// ApplicationDetails returns the exported name and permissions of packageID.
func (s *Source) ApplicationDetails(ctx context.Context, packageID string) (*device.Details, error) {
	app, ok := s.byName[packageID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", packageID, device.ErrPackageNotFound)
	}

	perms := make([]string, len(app.Permissions))
	copy(perms, app.Permissions)
	return &device.Details{
		DisplayName: app.DisplayName,
		Permissions: perms,
	}, nil
}

// QueryUsage returns the exported usage records within [start, end], in
// document order.
func (s *Source) QueryUsage(ctx context.Context, start, end time.Time) ([]device.UsageRecord, error) {
	var records []device.UsageRecord
	for _, u := range s.doc.Usage {
		if u.LastUsedAt < start.UnixMilli() || u.LastUsedAt > end.UnixMilli() {
			continue
		}
		records = append(records, device.UsageRecord{
			PackageID:  u.PackageID,
			LastUsedAt: u.LastUsedAt,
		})
	}
	return records, nil
}

// Usage returns every exported usage record regardless of time.
func (s *Source) Usage() []device.UsageRecord {
	records := make([]device.UsageRecord, 0, len(s.doc.Usage))
	for _, u := range s.doc.Usage {
		records = append(records, device.UsageRecord{PackageID: u.PackageID, LastUsedAt: u.LastUsedAt})
	}
	return records
}
