package store

import (
	"time"

	"github.com/blackwell-systems/permaudit/internal/device"
)

// Capture is a full copy of both sources, written by Import.
type Capture struct {
	Source       string // "export" or "adb"
	CapturedAt   time.Time
	Applications []CapturedApplication
	Usage        []device.UsageRecord
}

// CapturedApplication is an enumerated application plus its details.
// Details is nil when they could not be resolved at capture time.
type CapturedApplication struct {
	device.Application
	Details *device.Details
}

// ImportInfo describes the import that produced the current mirror contents.
type ImportInfo struct {
	ID               int64     `json:"id"`
	ImportedAt       time.Time `json:"imported_at"`
	Source           string    `json:"source"`
	CapturedAt       time.Time `json:"captured_at"`
	ApplicationCount int       `json:"application_count"`
	UsageCount       int       `json:"usage_count"`
}
