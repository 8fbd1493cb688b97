// Package watcher re-runs an audit whenever an export file changes.
//
// The on-device exporter usually replaces the file with a rename, so the
// Watcher observes the containing directory through fsnotify and filters
// events by file name. Bursts of events are collapsed with a debounce timer
// before the change callback runs.
//
// Example usage:
//
//	w, err := watcher.New("/sdcard-sync/permaudit.json", time.Second, func(ctx context.Context) error {
//		return runScan(ctx)
//	}, log)
//	if err != nil {
//		return err
//	}
//	if err := w.Start(context.Background()); err != nil {
//		return err
//	}
//	defer w.Stop()
//
// In daemon mode the watch command forks itself with StartDaemon and the
// child calls RunDaemon, which blocks until SIGTERM or SIGINT.
package watcher
