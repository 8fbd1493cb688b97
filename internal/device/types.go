package device

// Application represents an installed Android application as enumerated by
// the package manager.
type Application struct {
	PackageID   string
	DisplayName string
	IsSystem    bool   // FLAG_SYSTEM or FLAG_UPDATED_SYSTEM_APP
	IconRef     string // opaque handle, e.g. the APK path
}

// Details holds the per-application data resolved after enumeration.
type Details struct {
	DisplayName string
	Permissions []string // requested permissions in manifest order
}

// UsageRecord is one usage-history row for a package. LastUsedAt is in epoch
// milliseconds.
type UsageRecord struct {
	PackageID  string
	LastUsedAt int64
}
