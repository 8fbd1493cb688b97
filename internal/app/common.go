package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/blackwell-systems/permaudit/internal/analyzer"
	"github.com/blackwell-systems/permaudit/internal/config"
	"github.com/blackwell-systems/permaudit/internal/device"
	"github.com/blackwell-systems/permaudit/internal/export"
	"github.com/blackwell-systems/permaudit/internal/store"
)

// sources bundles the collaborators of the configured backend.
type sources struct {
	installed analyzer.InstalledSource
	usage     analyzer.UsageSource
	icons     analyzer.IconResolver
	nav       analyzer.Navigator
	now       func() time.Time
	close     func() error
}

func (s *sources) Close() error {
	if s.close != nil {
		return s.close()
	}
	return nil
}

// unavailable classifies a failure to open a backend.
func unavailable(msg string, err error) error {
	return &analyzer.Error{Kind: analyzer.KindSourceUnavailable, Message: msg, Err: err}
}

// openSources opens the backend selected by the configuration.
func openSources(ctx context.Context) (*sources, error) {
	switch cfg.Source {
	case config.SourceADB:
		client, err := newDeviceClient()
		if err != nil {
			return nil, err
		}
		return &sources{installed: client, usage: client, icons: client, nav: client}, nil

	case config.SourceExport:
		src, err := loadExport(cfg.Export.Path)
		if err != nil {
			return nil, err
		}
		s := &sources{installed: src, usage: src}
		if at := src.CapturedAt(); !at.IsZero() {
			s.now = func() time.Time { return at }
		}
		return s, nil

	case config.SourceDB:
		st, err := openStore(false)
		if err != nil {
			return nil, err
		}
		info, err := st.LastImport(ctx)
		if err != nil {
			st.Close()
			return nil, unavailable("failed to read mirror", err)
		}
		s := &sources{installed: st, usage: st, close: st.Close}
		if info != nil && !info.CapturedAt.IsZero() {
			at := info.CapturedAt
			s.now = func() time.Time { return at }
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown source %q", cfg.Source)
}

func newDeviceClient() (*device.Client, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var labels map[string]string
	if dir, err := config.Dir(); err == nil {
		labels, err = config.LoadLabels(dir)
		if err != nil {
			log.WithError(err).Warn("failed to read labels file")
		}
	}

	runner := &device.ExecRunner{Path: cfg.ADB.Path, Serial: cfg.ADB.Serial, Log: log}
	return device.NewClient(runner, device.ClientOptions{
		Labels:   labels,
		Location: loc,
		Logger:   log,
	}), nil
}

func loadExport(path string) (*export.Source, error) {
	if path == "" {
		return nil, unavailable("no export file configured", errors.New("set --export or export.path"))
	}
	src, err := export.Load(path)
	if err != nil {
		return nil, unavailable("failed to load export", err)
	}
	return src, nil
}

// openStore opens the mirror. With create unset, a missing database file is
// reported as not initialized instead of being created empty.
func openStore(create bool) (*store.Store, error) {
	path := cfg.DB.Path
	if path == "" {
		path = config.DefaultDBPath()
	}

	if create {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, unavailable("failed to open mirror", store.ErrNotInitialized)
	}

	st, err := store.New(path)
	if err != nil {
		return nil, unavailable("failed to open mirror", err)
	}
	return st, nil
}

// newAnalyzer builds an Analyzer over s using the resolved configuration.
func newAnalyzer(s *sources) *analyzer.Analyzer {
	return analyzer.New(s.installed, s.usage, analyzer.Options{
		IncludeSystem: cfg.IncludeSystem,
		ResolveIcons:  cfg.Icons,
		ProbeWindow:   cfg.ProbeWindow,
		Icons:         s.icons,
		Navigator:     s.nav,
		Logger:        log,
		Now:           s.now,
	})
}

// permauditDir returns ~/.permaudit, creating it if needed.
func permauditDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(home, ".permaudit")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create permaudit directory: %w", err)
	}
	return dir, nil
}
