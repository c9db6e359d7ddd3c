package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"dpms/internal/dpmserr"
)

// readPID parses the PID stored at path. A malformed file is reported
// through err so callers can treat it as stale.
func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("malformed pid file: %w", err)
	}
	return pid, nil
}

// writePID stores pid at path atomically: write a temp sibling, then
// rename into place, so a reader never observes a partial write.
func writePID(path string, pid int) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".dpms.pid.*")
	if err != nil {
		return dpmserr.NewIoError(path, err)
	}
	tmpPath := tmp.Name()

	if _, err := fmt.Fprintf(tmp, "%d\n", pid); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return dpmserr.NewIoError(path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return dpmserr.NewIoError(path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return dpmserr.NewIoError(path, err)
	}
	return nil
}

func removePID(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return dpmserr.NewIoError(path, err)
	}
	return nil
}

// isAlive reports whether pid names a live process: signal 0 fails
// with ESRCH exactly when the target is gone.
func isAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	if err == nil {
		return true
	}
	return err != syscall.ESRCH
}

// isOurDaemon optionally confirms pid is this program's daemon by
// inspecting /proc/<pid>/comm. comm is truncated
// to 15 bytes by the kernel, so this compares prefixes.
func isOurDaemon(pid int, expectedComm string) bool {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		// Can't confirm; don't treat absence of /proc as disqualifying.
		return true
	}
	comm := strings.TrimSpace(string(data))
	if len(expectedComm) > 15 {
		expectedComm = expectedComm[:15]
	}
	return comm == expectedComm
}

// resolveLive reads the PID file at path and returns (pid, true) if it
// names a live, confirmed daemon process. Any other outcome — missing
// file, malformed contents, dead process, or a mismatched /proc/comm —
// is treated as stale and the file is removed (the full
// stale-file recovery procedure).
func resolveLive(path, expectedComm string) (pid int, live bool, err error) {
	pid, parseErr := readPID(path)
	if parseErr != nil {
		if os.IsNotExist(parseErr) {
			return 0, false, nil
		}
		_ = removePID(path)
		return 0, false, nil
	}

	if !isAlive(pid) || !isOurDaemon(pid, expectedComm) {
		if err := removePID(path); err != nil {
			return 0, false, err
		}
		return 0, false, nil
	}

	return pid, true, nil
}
