package daemon_test

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/jamesainslie/bulkfs/pkg/daemon"
)

func TestWriteAndReadPID(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "nested", "bulkfsd.pid")

	if err := daemon.WritePIDFile(pidPath); err != nil {
		t.Fatalf("WritePIDFile failed: %v", err)
	}

	pid, err := daemon.ReadPIDFile(pidPath)
	if err != nil {
		t.Fatalf("ReadPIDFile failed: %v", err)
	}
	if pid != os.Getpid() {
		t.Errorf("Expected PID %d, got %d", os.Getpid(), pid)
	}
}

func TestReadPIDFile_Garbage(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "bulkfsd.pid")
	if err := os.WriteFile(pidPath, []byte("not-a-pid"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := daemon.ReadPIDFile(pidPath); err == nil {
		t.Error("Expected error for non-numeric PID file")
	}
}

func TestIsDaemonRunning(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "bulkfsd.pid")

	if daemon.IsDaemonRunning(pidPath) {
		t.Error("Expected false when PID file doesn't exist")
	}

	if err := daemon.WritePIDFile(pidPath); err != nil {
		t.Fatal(err)
	}
	if !daemon.IsDaemonRunning(pidPath) {
		t.Error("Expected true when PID file has current process")
	}

	if err := os.WriteFile(pidPath, []byte("999999999"), 0o644); err != nil {
		t.Fatal(err)
	}
	if daemon.IsDaemonRunning(pidPath) {
		t.Error("Expected false when PID is not a live process")
	}
}

func TestRemovePIDFile(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "bulkfsd.pid")
	if err := daemon.WritePIDFile(pidPath); err != nil {
		t.Fatal(err)
	}
	if err := daemon.RemovePIDFile(pidPath); err != nil {
		t.Fatalf("RemovePIDFile failed: %v", err)
	}
	if _, err := os.Stat(pidPath); !os.IsNotExist(err) {
		t.Error("PID file should have been removed")
	}
}

func TestRecoverFromStaleDaemon_NoPIDFile(t *testing.T) {
	dir := t.TempDir()
	err := daemon.RecoverFromStaleDaemon(filepath.Join(dir, "bulkfsd.pid"), filepath.Join(dir, "bulkfs.sock"))
	if err != nil {
		t.Errorf("Expected nil when no PID file exists, got %v", err)
	}
}

func TestRecoverFromStaleDaemon_ProcessRunning(t *testing.T) {
	dir := t.TempDir()
	pidPath := filepath.Join(dir, "bulkfsd.pid")
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		t.Fatal(err)
	}

	err := daemon.RecoverFromStaleDaemon(pidPath, filepath.Join(dir, "bulkfs.sock"))
	if !errors.Is(err, daemon.ErrDaemonAlreadyRunning) {
		t.Errorf("Expected ErrDaemonAlreadyRunning, got %v", err)
	}
	if _, err := os.Stat(pidPath); err != nil {
		t.Error("PID file of a live daemon must be kept")
	}
}

func TestRecoverFromStaleDaemon_StaleProcess(t *testing.T) {
	dir := t.TempDir()
	pidPath := filepath.Join(dir, "bulkfsd.pid")
	socketPath := filepath.Join(dir, "bulkfs.sock")
	statusPath := daemon.StatusPath(socketPath)

	for path, content := range map[string]string{
		pidPath:    "999999999",
		socketPath: "stale",
		statusPath: `{"status":"ready"}`,
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := daemon.RecoverFromStaleDaemon(pidPath, socketPath); err != nil {
		t.Fatalf("Expected nil for stale daemon, got %v", err)
	}

	for _, path := range []string{pidPath, socketPath, statusPath} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s should have been removed", filepath.Base(path))
		}
	}
}
