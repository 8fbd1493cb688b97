package analyzer

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/permaudit/internal/device"
)

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeInstalled is an in-memory InstalledSource.
type fakeInstalled struct {
	apps    []device.Application
	perms   map[string][]string
	names   map[string]string
	failing map[string]bool // packages whose detail lookup fails
	listErr error
	lookups int
}

func (f *fakeInstalled) ListApplications(ctx context.Context) ([]device.Application, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.apps, nil
}

func (f *fakeInstalled) ApplicationDetails(ctx context.Context, packageID string) (*device.Details, error) {
	f.lookups++
	if f.failing[packageID] {
		return nil, errors.New("package " + packageID + " not found")
	}
	return &device.Details{
		DisplayName: f.names[packageID],
		Permissions: f.perms[packageID],
	}, nil
}

// fakeUsage is an in-memory UsageSource that honors the query window.
type fakeUsage struct {
	records []device.UsageRecord
	err     error
	queries [][2]time.Time
}

func (f *fakeUsage) QueryUsage(ctx context.Context, start, end time.Time) ([]device.UsageRecord, error) {
	f.queries = append(f.queries, [2]time.Time{start, end})
	if f.err != nil {
		return nil, f.err
	}
	var out []device.UsageRecord
	for _, r := range f.records {
		if r.LastUsedAt >= start.UnixMilli() && r.LastUsedAt <= end.UnixMilli() {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeIcons struct {
	icons map[string]string
}

func (f *fakeIcons) ResolveIcon(ctx context.Context, app device.Application) (string, error) {
	icon, ok := f.icons[app.PackageID]
	if !ok {
		return "", errors.New("no icon")
	}
	return icon, nil
}

type fakeNavigator struct {
	usageOpened int
	appsOpened  []string
}

func (f *fakeNavigator) OpenUsageAccessSettings(ctx context.Context) error {
	f.usageOpened++
	return nil
}

func (f *fakeNavigator) OpenAppSettings(ctx context.Context, packageName string) error {
	f.appsOpened = append(f.appsOpened, packageName)
	return nil
}

// fixedClock returns a clock pinned at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
