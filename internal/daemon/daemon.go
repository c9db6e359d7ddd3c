// Package daemon implements the TTY-backend daemon lifecycle: a
// self-re-exec fork protocol modeled on a hidden-subcommand
// background-process pattern, a PID file with atomic writes and
// stale-file recovery, and a coarse signal-driven idle wait.
package daemon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"dpms/internal/config"
	"dpms/internal/dpmserr"
	"dpms/internal/drm"
	"dpms/internal/logger"
	"dpms/internal/seat"
)

// daemonSubcommand is the hidden cobra command this package's child
// process re-execs into; it must match cmd's registration exactly.
const daemonSubcommand = "__dpms-daemon"

// expectedComm is compared against /proc/<pid>/comm during stale-file
// detection.
const expectedComm = "dpms"

// Payload is what the parent process sends the re-exec'd child over
// stdin: which DRM device to open and which connectors to drive off.
// An empty Names means "every connector" (the All target).
type Payload struct {
	DevicePath string   `json:"device_path"`
	Names      []string `json:"names"`
}

// Status reports whether a live, confirmed daemon is currently
// advertised, performing stale-file recovery as a side effect if the
// PID file is present but stale.
func Status() (pid int, live bool, err error) {
	runtimeDir, ok := config.RuntimeDir()
	if !ok {
		return 0, false, dpmserr.NewUnsupportedEnvironment("XDG_RUNTIME_DIR not set")
	}
	return resolveLive(config.PIDFilePath(runtimeDir), expectedComm)
}

// Start spawns the daemon via self-re-exec and blocks until the PID
// file appears (confirming the child finished acquisition and turned
// the display off) or DaemonStartTimeout elapses.
func Start(devicePath string, names []string) error {
	runtimeDir, ok := config.RuntimeDir()
	if !ok {
		return dpmserr.NewUnsupportedEnvironment("XDG_RUNTIME_DIR not set")
	}
	pidPath := config.PIDFilePath(runtimeDir)

	payload, err := json.Marshal(Payload{DevicePath: devicePath, Names: names})
	if err != nil {
		return dpmserr.NewDaemonStartFailed("encode payload", err)
	}

	self, err := os.Executable()
	if err != nil {
		self = os.Args[0]
	}

	cmd := exec.Command(self, daemonSubcommand)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return dpmserr.NewDaemonStartFailed("fork/exec", err)
	}

	deadline := time.Now().Add(config.DaemonStartTimeout())
	for time.Now().Before(deadline) {
		if pid, live, _ := resolveLive(pidPath, expectedComm); live {
			logger.Debug().Int("pid", pid).Msg("daemon advertised")
			return nil
		}
		time.Sleep(config.DaemonPollInterval)
	}
	return dpmserr.NewDaemonStartFailed(fmt.Sprintf("pid file did not appear within %s", config.DaemonStartTimeout()), nil)
}

// Stop signals a live daemon and blocks until the process is gone
// (checked with signal 0), then removes the PID file; if the process
// is still alive when DaemonStopTimeout elapses it fails with
// DaemonStopTimeout.
func Stop(pid int) error {
	runtimeDir, ok := config.RuntimeDir()
	if !ok {
		return dpmserr.NewUnsupportedEnvironment("XDG_RUNTIME_DIR not set")
	}
	pidPath := config.PIDFilePath(runtimeDir)

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil && err != syscall.ESRCH {
		return dpmserr.NewDaemonStopTimeout(pid)
	}

	deadline := time.Now().Add(config.DaemonStopTimeout())
	for time.Now().Before(deadline) {
		if !isAlive(pid) {
			_ = removePID(pidPath)
			return nil
		}
		time.Sleep(config.DaemonPollInterval)
	}
	return dpmserr.NewDaemonStopTimeout(pid)
}

// RunForeground is the body of the hidden __dpms-daemon subcommand: it
// reads its Payload from stdin, acquires the seat and DRM device, sets
// every selected connector's CRTC inactive, advertises itself via the
// PID file, then blocks until SIGTERM/SIGINT before restoring and
// exiting. It is meant to run as the re-exec'd, already-setsid child
// Start spawned — it never forks itself.
func RunForeground(stdin []byte) error {
	var payload Payload
	if err := json.Unmarshal(stdin, &payload); err != nil {
		return dpmserr.NewDaemonStartFailed("decode payload", err)
	}

	runtimeDir, ok := config.RuntimeDir()
	if !ok {
		return dpmserr.NewUnsupportedEnvironment("XDG_RUNTIME_DIR not set")
	}
	pidPath := config.PIDFilePath(runtimeDir)

	sess, fd, err := seat.Acquire(payload.DevicePath)
	if err != nil {
		return err
	}
	defer sess.Release()

	dev := drm.WrapFD(fd)
	defer dev.Close()

	outputs, err := dev.Connectors()
	if err != nil {
		return err
	}
	selected := selectOutputs(outputs, payload.Names)
	if len(selected) == 0 {
		return dpmserr.NewNoDisplayFound()
	}

	for _, out := range selected {
		if err := dev.SetCRTCActive(out, false); err != nil {
			return err
		}
	}

	if err := writePID(pidPath, os.Getpid()); err != nil {
		return err
	}

	waitForTerminationSignal()

	var restoreErr error
	for _, out := range selected {
		if err := dev.SetCRTCActive(out, true); err != nil && restoreErr == nil {
			restoreErr = err
		}
	}

	_ = removePID(pidPath)
	return restoreErr
}

// selectOutputs returns every output in outputs whose Name is in names,
// or every output if names is empty (All target).
func selectOutputs(outputs []drm.Output, names []string) []drm.Output {
	if len(names) == 0 {
		return outputs
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []drm.Output
	for _, o := range outputs {
		if want[o.Name] {
			out = append(out, o)
		}
	}
	return out
}

// waitForTerminationSignal blocks until SIGTERM or SIGINT arrives, then
// returns.
func waitForTerminationSignal() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sig)
	<-sig
}
