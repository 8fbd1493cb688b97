package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blackwell-systems/permaudit/internal/device"
	"github.com/blackwell-systems/permaudit/internal/store"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	return s
}

type stubSource struct {
	apps    []device.Application
	perms   map[string][]string
	missing map[string]bool
	usage   []device.UsageRecord
	listErr error
}

func (s *stubSource) ListApplications(ctx context.Context) ([]device.Application, error) {
	return s.apps, s.listErr
}

func (s *stubSource) ApplicationDetails(ctx context.Context, packageID string) (*device.Details, error) {
	if s.missing[packageID] {
		return nil, device.ErrPackageNotFound
	}
	return &device.Details{DisplayName: packageID, Permissions: s.perms[packageID]}, nil
}

func (s *stubSource) QueryUsage(ctx context.Context, start, end time.Time) ([]device.UsageRecord, error) {
	return s.usage, nil
}

func TestNew(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	scanner := New(s, nil)
	if scanner == nil {
		t.Fatal("expected non-nil scanner")
	}
	if scanner.store != s {
		t.Fatal("scanner store does not match provided store")
	}
}

func TestCapture(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	src := &stubSource{
		apps: []device.Application{
			{PackageID: "com.example.mail"},
			{PackageID: "com.example.gone"},
			{PackageID: ""},
		},
		perms:   map[string][]string{"com.example.mail": {"android.permission.INTERNET"}},
		missing: map[string]bool{"com.example.gone": true},
		usage:   []device.UsageRecord{{PackageID: "com.example.mail", LastUsedAt: 1000}},
	}

	end := time.UnixMilli(5000)
	capture, err := New(s, nil).Capture(context.Background(), "adb", src, src, time.UnixMilli(0), end)
	if err != nil {
		t.Fatalf("Capture() failed: %v", err)
	}

	if len(capture.Applications) != 3 {
		t.Fatalf("expected 3 applications, got %d", len(capture.Applications))
	}
	if capture.Applications[0].Details == nil {
		t.Error("com.example.mail should have details")
	}
	if capture.Applications[1].Details != nil {
		t.Error("com.example.gone should be captured without details")
	}
	if capture.Applications[2].Details != nil {
		t.Error("application without package id should be captured without details")
	}
	if !capture.CapturedAt.Equal(end) {
		t.Errorf("CapturedAt = %v, want %v", capture.CapturedAt, end)
	}
	if len(capture.Usage) != 1 {
		t.Errorf("expected 1 usage record, got %d", len(capture.Usage))
	}
}

func TestCapture_ListError(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	src := &stubSource{listErr: errors.New("device offline")}
	if _, err := New(s, nil).Capture(context.Background(), "adb", src, src, time.Time{}, time.Now()); err == nil {
		t.Fatal("expected error when listing fails")
	}
}

func TestImport(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()
	ctx := context.Background()

	src := &stubSource{
		apps:    []device.Application{{PackageID: "com.example.mail"}, {PackageID: "com.example.gone"}},
		perms:   map[string][]string{"com.example.mail": {"android.permission.CAMERA"}},
		missing: map[string]bool{"com.example.gone": true},
		usage:   []device.UsageRecord{{PackageID: "com.example.mail", LastUsedAt: 4000}},
	}

	info, err := New(s, nil).Import(ctx, "export", src, src, time.UnixMilli(0), time.UnixMilli(5000))
	if err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	if info.Source != "export" || info.ApplicationCount != 2 || info.UsageCount != 1 {
		t.Errorf("unexpected import info: %+v", info)
	}

	apps, err := s.ListApplications(ctx)
	if err != nil {
		t.Fatalf("ListApplications() failed: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("expected 2 mirrored applications, got %d", len(apps))
	}

	details, err := s.ApplicationDetails(ctx, "com.example.mail")
	if err != nil {
		t.Fatalf("ApplicationDetails() failed: %v", err)
	}
	if len(details.Permissions) != 1 || details.Permissions[0] != "android.permission.CAMERA" {
		t.Errorf("Permissions = %v, want [android.permission.CAMERA]", details.Permissions)
	}

	if _, err := s.ApplicationDetails(ctx, "com.example.gone"); !errors.Is(err, device.ErrPackageNotFound) {
		t.Errorf("unresolved application error = %v, want ErrPackageNotFound", err)
	}
}

func TestCapture_Progress(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	src := &stubSource{apps: []device.Application{{PackageID: "a.b"}, {PackageID: "c.d"}}}
	scanner := New(s, nil)

	var calls [][2]int
	scanner.OnProgress = func(done, total int) { calls = append(calls, [2]int{done, total}) }

	if _, err := scanner.Capture(context.Background(), "adb", src, src, time.Time{}, time.Now()); err != nil {
		t.Fatalf("Capture() failed: %v", err)
	}
	if len(calls) != 2 || calls[1] != [2]int{2, 2} {
		t.Errorf("progress calls = %v, want [[1 2] [2 2]]", calls)
	}
}
