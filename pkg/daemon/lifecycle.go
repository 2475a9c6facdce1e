package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrDaemonAlreadyRunning is returned when a live bulkfsd owns the PID file.
var ErrDaemonAlreadyRunning = errors.New("daemon already running")

// WritePIDFile writes the current process ID to path, creating its directory.
func WritePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating pid directory: %w", err)
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// ReadPIDFile reads a PID from path.
func ReadPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// RemovePIDFile removes the PID file.
func RemovePIDFile(path string) error {
	return os.Remove(path)
}

// IsProcessRunning reports whether a process with pid exists.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// IsDaemonRunning reports whether the PID file names a live process.
func IsDaemonRunning(pidPath string) bool {
	pid, err := ReadPIDFile(pidPath)
	if err != nil {
		return false
	}
	return IsProcessRunning(pid)
}

// RecoverFromStaleDaemon removes the PID file and socket left behind by a
// daemon that died without cleaning up. It returns ErrDaemonAlreadyRunning
// when the recorded process is still alive.
func RecoverFromStaleDaemon(pidPath, socketPath string) error {
	pid, err := ReadPIDFile(pidPath)
	if err != nil {
		// Missing or unreadable PID file: nothing to recover.
		return nil //nolint:nilerr // absence is not an error here
	}

	if IsProcessRunning(pid) {
		return ErrDaemonAlreadyRunning
	}

	logger.Warn("cleaning up stale daemon files", "stale_pid", pid)
	_ = os.Remove(pidPath)
	_ = os.Remove(socketPath)
	_ = RemoveStatus(StatusPath(socketPath))
	return nil
}
