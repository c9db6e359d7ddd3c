// Package config resolves the small set of environment-driven
// defaults the backends need. There is no config file: the only
// persisted state is the daemon PID file, so this package resolves
// everything from "env var overrides default" rather than a YAML
// layer.
package config

import (
	"os"
	"strconv"
	"time"
)

const (
	// DefaultDaemonStopTimeout is how long the TTY backend waits for a
	// signalled daemon to exit before reporting DaemonStopTimeout.
	DefaultDaemonStopTimeout = 5 * time.Second

	// DefaultDaemonStartTimeout is how long the TTY backend waits for
	// a spawned daemon's PID file to appear before reporting
	// DaemonStartFailed.
	DefaultDaemonStartTimeout = time.Second

	// DaemonPollInterval is the granularity of the backend's liveness
	// polling while it waits for a daemon to start or stop.
	DaemonPollInterval = 100 * time.Millisecond

	pidFileName = "dpms.pid"
)

// RuntimeDir returns $XDG_RUNTIME_DIR and false if it is unset or
// empty — required for both the PID file location and Wayland socket
// discovery.
func RuntimeDir() (string, bool) {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	return dir, dir != ""
}

// PIDFilePath returns ${XDG_RUNTIME_DIR}/dpms.pid.
func PIDFilePath(runtimeDir string) string {
	return runtimeDir + "/" + pidFileName
}

// WaylandDisplay returns the raw $WAYLAND_DISPLAY value and whether it
// was set at all (distinguishing "unset" from "set to empty").
func WaylandDisplay() (string, bool) {
	v, ok := os.LookupEnv("WAYLAND_DISPLAY")
	return v, ok
}

// DaemonStopTimeout resolves the "on" path's daemon-shutdown timeout,
// honoring DPMS_STOP_TIMEOUT_MS for tests that can't afford to wait 5s.
func DaemonStopTimeout() time.Duration {
	if v := os.Getenv("DPMS_STOP_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return DefaultDaemonStopTimeout
}

// DaemonStartTimeout resolves the daemon-spawn PID-file poll timeout.
func DaemonStartTimeout() time.Duration {
	if v := os.Getenv("DPMS_START_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return DefaultDaemonStartTimeout
}
