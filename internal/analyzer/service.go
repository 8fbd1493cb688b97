package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// packageNameRE matches Android package names: at least two dot-separated
// segments, each starting with a letter.
var packageNameRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z][A-Za-z0-9_]*)+$`)

// ValidatePackageName returns an InvalidPackage error when name is empty or
// not a well-formed package name.
func ValidatePackageName(name string) error {
	if name == "" {
		return &Error{Kind: KindInvalidPackage, Message: "package name missing"}
	}
	if !packageNameRE.MatchString(name) {
		return &Error{Kind: KindInvalidPackage, Message: fmt.Sprintf("malformed package name %q", name)}
	}
	return nil
}

// CheckAccess runs the access gate.
func (a *Analyzer) CheckAccess(ctx context.Context) (*AccessResult, error) {
	granted, err := a.HasUsageAccess(ctx)
	if err != nil {
		return nil, err
	}
	return &AccessResult{Granted: granted}, nil
}

// Scan checks usage access and, when granted, builds the report for the
// trailing window. A denied gate yields ErrAccessDenied and no report.
func (a *Analyzer) Scan(ctx context.Context, window time.Duration) (*ScanResult, error) {
	scanID := uuid.NewString()
	log := a.log.WithField("scan_id", scanID)

	granted, err := a.HasUsageAccess(ctx)
	if err != nil {
		return nil, err
	}
	if !granted {
		log.Warn("usage access probe returned no records")
		return nil, ErrAccessDenied
	}

	generatedAt := a.opts.Now()
	entries, skipped, err := a.buildReport(ctx, window, log)
	if err != nil {
		return nil, err
	}

	if skipped > 0 {
		log.WithField("skipped", skipped).Info("some applications could not be resolved and were omitted")
	}

	return &ScanResult{
		ScanID:      scanID,
		GeneratedAt: generatedAt,
		Window:      window,
		WindowText:  window.String(),
		Entries:     entries,
		Skipped:     skipped,
	}, nil
}

// RequestAccessNavigation asks the navigator to open the usage-access
// settings screen.
func (a *Analyzer) RequestAccessNavigation(ctx context.Context) error {
	if a.opts.Navigator == nil {
		return fmt.Errorf("settings navigation is not supported by this source")
	}
	return a.opts.Navigator.OpenUsageAccessSettings(ctx)
}

// RequestAppSettingsNavigation opens the settings screen of one application.
// The package name is validated before anything is sent to the device.
func (a *Analyzer) RequestAppSettingsNavigation(ctx context.Context, packageName string) error {
	if err := ValidatePackageName(packageName); err != nil {
		return err
	}
	if a.opts.Navigator == nil {
		return fmt.Errorf("settings navigation is not supported by this source")
	}
	return a.opts.Navigator.OpenAppSettings(ctx, packageName)
}
