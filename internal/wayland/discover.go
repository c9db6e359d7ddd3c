package wayland

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"dpms/internal/dpmserr"
)

var waylandSocketRE = regexp.MustCompile(`^wayland-[0-9]+$`)

// DiscoverSocket resolves the Wayland socket path in the preference
// order:
//
//  1. $WAYLAND_DISPLAY as an absolute path, used verbatim.
//  2. $WAYLAND_DISPLAY joined to $XDG_RUNTIME_DIR.
//  3. If $WAYLAND_DISPLAY is unset (typically an SSH session),
//     scan $XDG_RUNTIME_DIR and its user-scoped sibling directories
//     for "wayland-[0-9]*" names and pick the lexicographically
//     smallest reachable one.
func DiscoverSocket() (string, error) {
	display, hasDisplay := os.LookupEnv("WAYLAND_DISPLAY")
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")

	if hasDisplay && display != "" {
		if filepath.IsAbs(display) {
			if reachable(display) {
				return display, nil
			}
			return "", dpmserr.NewUnsupportedEnvironment("WAYLAND_DISPLAY socket not reachable: " + display)
		}
		if runtimeDir == "" {
			return "", dpmserr.NewUnsupportedEnvironment("XDG_RUNTIME_DIR not set")
		}
		path := filepath.Join(runtimeDir, display)
		if reachable(path) {
			return path, nil
		}
		return "", dpmserr.NewUnsupportedEnvironment("WAYLAND_DISPLAY socket not reachable: " + path)
	}

	if runtimeDir == "" {
		return "", dpmserr.NewUnsupportedEnvironment("XDG_RUNTIME_DIR not set")
	}

	candidates := scanCandidates(runtimeDir)
	for _, dir := range sshSiblingDirs(runtimeDir) {
		candidates = append(candidates, scanCandidates(dir)...)
	}
	sort.Strings(candidates)

	for _, path := range candidates {
		if reachable(path) {
			return path, nil
		}
	}

	return "", dpmserr.NewUnsupportedEnvironment("no reachable Wayland socket found (checked " + runtimeDir + " and user-scoped siblings)")
}

// scanCandidates lists wayland-[0-9]* entries directly under dir.
func scanCandidates(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if waylandSocketRE.MatchString(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out
}

// sshSiblingDirs enumerates other users' runtime directories
// (/run/user/<uid>) alongside XDG_RUNTIME_DIR, covering the case where
// an SSH session's runtime dir differs from the graphical session's.
func sshSiblingDirs(runtimeDir string) []string {
	parent := filepath.Dir(runtimeDir)
	entries, err := os.ReadDir(parent)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := strconv.Atoi(e.Name()); err != nil {
			continue // only numeric (uid-named) siblings are candidates
		}
		full := filepath.Join(parent, e.Name())
		if full != runtimeDir {
			out = append(out, full)
		}
	}
	return out
}

func reachable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSocket != 0
}
