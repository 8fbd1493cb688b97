package analyzer

import "time"

// ReportEntry is one application row of the audit report.
type ReportEntry struct {
	AppName     string   `json:"app_name"`
	PackageName string   `json:"package_name"`
	Permissions []string `json:"permissions"`
	LastUsed    int64    `json:"last_used"` // epoch ms, 0 when not used in the window
	Icon        string   `json:"icon,omitempty"`
}

// LastUsedTime converts LastUsed to a time.Time. It returns the zero time for
// the 0 sentinel.
func (e ReportEntry) LastUsedTime() time.Time {
	if e.LastUsed == 0 {
		return time.Time{}
	}
	return time.UnixMilli(e.LastUsed)
}

// ScanResult is the outcome of a successful Scan.
type ScanResult struct {
	ScanID      string        `json:"scan_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Window      time.Duration `json:"-"`
	WindowText  string        `json:"window"`
	Entries     []ReportEntry `json:"entries"`
	Skipped     int           `json:"skipped"` // applications omitted by partial-failure isolation
}

// AccessResult is the outcome of CheckAccess.
type AccessResult struct {
	Granted bool `json:"granted"`
}
