package daemon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadPIDRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dpms.pid")

	if err := writePID(path, 12345); err != nil {
		t.Fatalf("writePID: %v", err)
	}
	got, err := readPID(path)
	if err != nil {
		t.Fatalf("readPID: %v", err)
	}
	if got != 12345 {
		t.Errorf("got %d, want 12345", got)
	}
}

func TestWritePIDIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dpms.pid")

	if err := writePID(path, 1); err != nil {
		t.Fatalf("writePID: %v", err)
	}

	// No temp sibling should survive a successful write.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "dpms.pid" {
		t.Errorf("unexpected directory contents: %v", entries)
	}
}

func TestReadPIDMalformedContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dpms.pid")
	if err := os.WriteFile(path, []byte("not-a-pid\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := readPID(path); err == nil {
		t.Fatal("expected error for malformed pid file")
	}
}

func TestIsAliveCurrentProcess(t *testing.T) {
	if !isAlive(os.Getpid()) {
		t.Fatal("current process should report alive")
	}
}

func TestIsAliveInvalidPID(t *testing.T) {
	if isAlive(0) || isAlive(-1) {
		t.Fatal("pid <= 0 should never be alive")
	}
}

func TestResolveLiveMissingFileIsNotLive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dpms.pid")

	pid, live, err := resolveLive(path, "dpms")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if live || pid != 0 {
		t.Errorf("got pid=%d live=%v, want 0/false", pid, live)
	}
}

func TestResolveLiveStaleFileIsRemoved(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dpms.pid")

	// PID 999999 is extremely unlikely to be a live process in any test
	// environment; treat it as the stale case.
	if err := writePID(path, 999999); err != nil {
		t.Fatalf("writePID: %v", err)
	}

	pid, live, err := resolveLive(path, "dpms")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if live || pid != 0 {
		t.Errorf("got pid=%d live=%v, want 0/false", pid, live)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("stale pid file should have been removed")
	}
}

func TestResolveLiveCurrentProcessMismatchedCommIsStale(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dpms.pid")

	// The test binary's own /proc/<pid>/comm is never "dpms", so this
	// exercises the comm-mismatch branch of stale-file detection even
	// though the process is genuinely alive.
	if err := writePID(path, os.Getpid()); err != nil {
		t.Fatalf("writePID: %v", err)
	}

	_, live, err := resolveLive(path, "dpms")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if live {
		t.Error("expected comm mismatch to be treated as stale")
	}
}
