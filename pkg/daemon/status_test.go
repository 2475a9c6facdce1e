package daemon_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/bulkfs/pkg/daemon"
)

func TestStatusPath(t *testing.T) {
	if got := daemon.StatusPath("/run/bulkfs/bulkfs.sock"); got != "/run/bulkfs/bulkfs.status" {
		t.Errorf("StatusPath() = %q", got)
	}
}

func TestWriteStatusReady(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bulkfs.status")

	if err := daemon.WriteStatusReady(path); err != nil {
		t.Fatalf("WriteStatusReady failed: %v", err)
	}

	status, err := daemon.ReadStatus(path)
	if err != nil {
		t.Fatalf("ReadStatus failed: %v", err)
	}
	if status.Status != daemon.StatusReady {
		t.Errorf("Expected status %q, got %q", daemon.StatusReady, status.Status)
	}
	if status.PID != os.Getpid() {
		t.Errorf("Expected PID %d, got %d", os.Getpid(), status.PID)
	}
	if status.Error != "" {
		t.Errorf("Expected no error, got %q", status.Error)
	}
}

func TestWriteStatusError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bulkfs.status")

	if err := daemon.WriteStatusError(path, errors.New("socket in use")); err != nil {
		t.Fatalf("WriteStatusError failed: %v", err)
	}

	status, err := daemon.ReadStatus(path)
	if err != nil {
		t.Fatalf("ReadStatus failed: %v", err)
	}
	if status.Status != daemon.StatusError || status.Error != "socket in use" {
		t.Errorf("Unexpected status %+v", status)
	}
	if status.PID != 0 {
		t.Errorf("Error status should not carry a PID, got %d", status.PID)
	}
}

func TestReadStatus_Invalid(t *testing.T) {
	dir := t.TempDir()

	if _, err := daemon.ReadStatus(filepath.Join(dir, "missing.status")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.status")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := daemon.ReadStatus(bad); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestRemoveStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bulkfs.status")
	if err := daemon.WriteStatusReady(path); err != nil {
		t.Fatal(err)
	}
	if err := daemon.RemoveStatus(path); err != nil {
		t.Fatalf("RemoveStatus failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("status file should be gone")
	}
}
