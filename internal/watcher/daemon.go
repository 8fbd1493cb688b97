package watcher

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
)

// StartDaemon re-executes the current binary with args in a new session,
// records its PID in pidFile and sends its output to logFile.
func StartDaemon(pidFile, logFile string, args []string) (int, error) {
	running, err := IsDaemonRunning(pidFile)
	if err != nil {
		return 0, fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		return 0, fmt.Errorf("daemon already running (PID file: %s)", pidFile)
	}

	logF, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer logF.Close()

	executable, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to get executable path: %w", err)
	}

	cmd := exec.Command(executable, args...)
	cmd.Stdout = logF
	cmd.Stderr = logF
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start daemon process: %w", err)
	}

	pid := cmd.Process.Pid
	if err := os.WriteFile(pidFile, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		cmd.Process.Kill()
		return 0, fmt.Errorf("failed to write PID file: %w", err)
	}

	if err := cmd.Process.Release(); err != nil {
		return 0, fmt.Errorf("failed to release process: %w", err)
	}
	return pid, nil
}

// RunDaemon starts w and blocks until SIGTERM, SIGINT or ctx cancellation,
// then stops it and removes pidFile.
func RunDaemon(ctx context.Context, w *Watcher, pidFile string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	<-ctx.Done()
	w.log.Info("shutting down")

	if err := w.Stop(); err != nil {
		return fmt.Errorf("failed to stop watcher: %w", err)
	}

	if pidFile != "" {
		if err := os.Remove(pidFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove PID file: %w", err)
		}
	}
	return nil
}

// readPID parses the PID stored in pidFile.
func readPID(pidFile string) (int, error) {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}
	return pid, nil
}

// StopDaemon sends SIGTERM to the daemon recorded in pidFile.
func StopDaemon(pidFile string) error {
	pid, err := readPID(pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("daemon not running (PID file not found)")
		}
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM to process %d: %w", pid, err)
	}
	return nil
}

// IsDaemonRunning reports whether the process recorded in pidFile is alive.
// A stale PID file is removed.
func IsDaemonRunning(pidFile string) (bool, error) {
	pid, err := readPID(pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		if _, statErr := os.Stat(pidFile); statErr == nil {
			// Unparseable PID file.
			return false, nil
		}
		return false, fmt.Errorf("failed to read PID file: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, nil
	}
	if err := process.Signal(syscall.Signal(0)); err != nil {
		os.Remove(pidFile)
		return false, nil
	}
	return true, nil
}
