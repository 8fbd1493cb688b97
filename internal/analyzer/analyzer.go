package analyzer

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/permaudit/internal/device"
)

// DefaultProbeWindow is the trailing window HasUsageAccess queries.
const DefaultProbeWindow = time.Hour

// DefaultWindow is the trailing usage window used when a scan does not ask
// for a specific one.
const DefaultWindow = 24 * time.Hour

// InstalledSource enumerates installed applications and resolves their details.
type InstalledSource interface {
	// ListApplications returns every installed application in the order the
	// platform enumerates them.
	ListApplications(ctx context.Context) ([]device.Application, error)

	// ApplicationDetails resolves the display name and requested permissions
	// of a single package. It fails when the package vanished after enumeration.
	ApplicationDetails(ctx context.Context, packageID string) (*device.Details, error)
}

// UsageSource returns usage-history records whose last use falls in [start, end].
type UsageSource interface {
	QueryUsage(ctx context.Context, start, end time.Time) ([]device.UsageRecord, error)
}

// IconResolver turns an application's icon handle into a transmissible encoding.
type IconResolver interface {
	ResolveIcon(ctx context.Context, app device.Application) (string, error)
}

// Navigator directs the user to platform settings screens.
type Navigator interface {
	OpenUsageAccessSettings(ctx context.Context) error
	OpenAppSettings(ctx context.Context, packageName string) error
}

// Options configures an Analyzer. The zero value excludes system
// applications, probes the last hour and resolves no icons.
type Options struct {
	IncludeSystem bool
	ResolveIcons  bool
	ProbeWindow   time.Duration
	Icons         IconResolver
	Navigator     Navigator
	Logger        logrus.FieldLogger
	Now           func() time.Time
}

// Analyzer reconciles installed applications with usage history.
// It holds no state between calls.
type Analyzer struct {
	installed InstalledSource
	usage     UsageSource
	opts      Options
	log       logrus.FieldLogger
}

// New creates a new Analyzer over the given sources.
func New(installed InstalledSource, usage UsageSource, opts Options) *Analyzer {
	if opts.ProbeWindow <= 0 {
		opts.ProbeWindow = DefaultProbeWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	log := opts.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	return &Analyzer{
		installed: installed,
		usage:     usage,
		opts:      opts,
		log:       log,
	}
}

// includes is the system-app filter.
func (a *Analyzer) includes(app device.Application) bool {
	return a.opts.IncludeSystem || !app.IsSystem
}
