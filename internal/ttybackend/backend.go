// Package ttybackend implements dpms.Backend for bare TTY/DRM seats
// coordinating the daemon lifecycle in internal/daemon
// and the connector enumeration in internal/drm. Unlike the Wayland
// backend, a displayed-power state here is inferred from whether the
// off-daemon is running, not queried fresh from the kernel: KMS
// ACTIVE reflects the daemon's own action, not independent ground
// truth.
package ttybackend

import (
	"fmt"
	"os"

	"dpms/internal/daemon"
	"dpms/internal/dpms"
	"dpms/internal/dpmserr"
	"dpms/internal/drm"
	"dpms/internal/seat"
)

// DefaultDevicePath is used when no device override is configured.
// Multi-GPU setups are out of scope.
const DefaultDevicePath = "/dev/dri/card0"

// Backend implements dpms.Backend against the local seat's primary DRM
// device.
type Backend struct {
	devicePath string
}

// New returns a TTY backend bound to DefaultDevicePath.
func New() *Backend {
	return &Backend{devicePath: DefaultDevicePath}
}

func (b *Backend) Close() error { return nil }

// SetPower drives target Off by forking the daemon, or
// On by signalling a live daemon and waiting for it to exit.
// Both directions are idempotent: Off with a live daemon, or On
// with no daemon, is a no-op that still succeeds.
func (b *Backend) SetPower(target dpms.DisplayTarget, state dpms.PowerState) error {
	pid, live, err := daemon.Status()
	if err != nil {
		return err
	}

	if state == dpms.Off {
		if live {
			fmt.Fprintln(os.Stderr, "display already off")
			return nil // already off; idempotent
		}
		names, err := b.targetNames(target)
		if err != nil {
			return err
		}
		return daemon.Start(b.devicePath, names)
	}

	// state == On
	if !live {
		fmt.Fprintln(os.Stderr, "display already on")
		return nil // nothing to restore; idempotent
	}
	return daemon.Stop(pid)
}

// GetPower reports every selected connector as Off iff a live daemon is
// advertised, On otherwise (a single daemon-presence
// signal — the daemon does not yet publish which subset of connectors
// it disabled, so this treats the whole device as one unit).
//
// For the default/all target no DRM enumeration happens at all: the
// answer is fully determined by daemon presence, and while the daemon
// is live it holds session control, so a second TakeControl from this
// process would fail anyway. Such status queries report one synthetic
// "Display" entry. Only a Named target forces enumeration, since it
// has to be resolved against real connector names.
func (b *Backend) GetPower(target dpms.DisplayTarget) ([]dpms.DisplayInfo, error) {
	_, live, err := daemon.Status()
	if err != nil {
		return nil, err
	}
	power := dpms.On
	if live {
		power = dpms.Off
	}

	if target.Kind != dpms.TargetNamed {
		return []dpms.DisplayInfo{{Name: syntheticName, Power: power}}, nil
	}

	outputs, err := b.enumerate()
	if err != nil {
		return nil, err
	}
	available := make([]dpms.DisplayInfo, 0, len(outputs))
	for _, o := range outputs {
		available = append(available, dpms.DisplayInfo{Name: o.Name, Power: power})
	}
	selected, err := dpms.Resolve(target, available)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, dpmserr.NewNoDisplayFound()
	}
	return selected, nil
}

// syntheticName labels the single daemon-presence-derived entry the
// default/all status path reports without enumerating connectors.
const syntheticName = "Display"

// ListDisplays enumerates DRM connectors without mutating any CRTC
// state, deriving each one's reported power from daemon presence
// rather than from KMS. When the daemon is live the seat cannot be
// acquired a second time, so enumeration failure in that state
// degrades to the same synthetic single entry GetPower reports.
func (b *Backend) ListDisplays() ([]dpms.DisplayInfo, error) {
	_, live, err := daemon.Status()
	if err != nil {
		return nil, err
	}
	power := dpms.On
	if live {
		power = dpms.Off
	}

	outputs, err := b.enumerate()
	if err != nil {
		if live {
			return []dpms.DisplayInfo{{Name: syntheticName, Power: power}}, nil
		}
		return nil, err
	}

	infos := make([]dpms.DisplayInfo, 0, len(outputs))
	for _, o := range outputs {
		infos = append(infos, dpms.DisplayInfo{Name: o.Name, Power: power})
	}
	return infos, nil
}

// targetNames resolves target against the live connector enumeration,
// returning the connector names the daemon should drive off. An empty
// slice tells the daemon "drive every connector" (dpms.All).
func (b *Backend) targetNames(target dpms.DisplayTarget) ([]string, error) {
	if target.Kind == dpms.TargetAll || target.Kind == dpms.TargetDefault {
		return nil, nil
	}
	outputs, err := b.enumerate()
	if err != nil {
		return nil, err
	}
	infos := make([]dpms.DisplayInfo, 0, len(outputs))
	for _, o := range outputs {
		infos = append(infos, dpms.DisplayInfo{Name: o.Name})
	}
	selected, err := dpms.Resolve(target, infos)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(selected))
	for _, d := range selected {
		names = append(names, d.Name)
	}
	return names, nil
}

// enumerate briefly acquires the seat and DRM device to list connected
// connectors, then releases both. This is the read-only path ListDisplays
// and targetNames share; it never calls SetCRTCActive.
func (b *Backend) enumerate() ([]drm.Output, error) {
	sess, fd, err := seat.Acquire(b.devicePath)
	if err != nil {
		return nil, err
	}
	defer sess.Release()

	dev := drm.WrapFD(fd)
	defer dev.Close()

	return dev.Connectors()
}
