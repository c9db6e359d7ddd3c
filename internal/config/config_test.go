package config

import (
	"testing"
	"time"
)

func TestRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")

	dir, ok := RuntimeDir()
	if !ok {
		t.Fatal("RuntimeDir() ok = false, want true")
	}
	if dir != "/run/user/1000" {
		t.Errorf("RuntimeDir() = %q, want %q", dir, "/run/user/1000")
	}
}

func TestRuntimeDirUnset(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	_, ok := RuntimeDir()
	if ok {
		t.Error("RuntimeDir() ok = true, want false when unset")
	}
}

func TestPIDFilePath(t *testing.T) {
	got := PIDFilePath("/run/user/1000")
	want := "/run/user/1000/dpms.pid"
	if got != want {
		t.Errorf("PIDFilePath() = %q, want %q", got, want)
	}
}

func TestWaylandDisplay(t *testing.T) {
	t.Setenv("WAYLAND_DISPLAY", "wayland-1")

	v, ok := WaylandDisplay()
	if !ok || v != "wayland-1" {
		t.Errorf("WaylandDisplay() = (%q, %v), want (%q, true)", v, ok, "wayland-1")
	}
}

func TestDaemonStopTimeoutOverride(t *testing.T) {
	t.Setenv("DPMS_STOP_TIMEOUT_MS", "250")

	if got := DaemonStopTimeout(); got != 250*time.Millisecond {
		t.Errorf("DaemonStopTimeout() = %v, want 250ms", got)
	}
}

func TestDaemonStopTimeoutDefault(t *testing.T) {
	t.Setenv("DPMS_STOP_TIMEOUT_MS", "")

	if got := DaemonStopTimeout(); got != DefaultDaemonStopTimeout {
		t.Errorf("DaemonStopTimeout() = %v, want %v", got, DefaultDaemonStopTimeout)
	}
}

func TestDaemonStopTimeoutInvalidFallsBackToDefault(t *testing.T) {
	t.Setenv("DPMS_STOP_TIMEOUT_MS", "not-a-number")

	if got := DaemonStopTimeout(); got != DefaultDaemonStopTimeout {
		t.Errorf("DaemonStopTimeout() = %v, want %v", got, DefaultDaemonStopTimeout)
	}
}
