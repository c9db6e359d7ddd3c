package ttybackend

import (
	"os"
	"path/filepath"
	"testing"

	"dpms/internal/dpms"
)

// TestSetPowerOnWithNoDaemonIsIdempotent exercises the "on
// with no daemon is a no-op" rule without touching the seat/DRM layers:
// SetPower(On) must short-circuit before ever calling enumerate() when
// daemon.Status() reports no live daemon.
func TestSetPowerOnWithNoDaemonIsIdempotent(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	b := New()
	if err := b.SetPower(dpms.All(), dpms.On); err != nil {
		t.Fatalf("SetPower(On) with no daemon should be a no-op, got: %v", err)
	}
}

// TestGetPowerDefaultReportsSyntheticDisplay covers the status path
// after a daemon dies uncleanly: the PID file names a dead process, so
// it is unlinked as stale and the single synthetic entry reports On —
// all without touching the seat or DRM layers.
func TestGetPowerDefaultReportsSyntheticDisplay(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)

	pidPath := filepath.Join(dir, "dpms.pid")
	if err := os.WriteFile(pidPath, []byte("999999\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	b := New()
	infos, err := b.GetPower(dpms.Default())
	if err != nil {
		t.Fatalf("GetPower(Default): %v", err)
	}
	if len(infos) != 1 || infos[0].Name != "Display" || infos[0].Power != dpms.On {
		t.Fatalf("got %+v, want [{Display On}]", infos)
	}
	if _, err := os.Stat(pidPath); !os.IsNotExist(err) {
		t.Error("stale pid file should have been unlinked")
	}
}
