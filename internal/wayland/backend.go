package wayland

import (
	"dpms/internal/dpms"
	"dpms/internal/dpmserr"
)

// Backend implements dpms.Backend by speaking the compositor wire
// protocol directly. A Backend lives for the duration of
// one CLI invocation: connect, discover, act, disconnect.
type Backend struct {
	cl *client
}

// New connects to the Wayland compositor, discovering its outputs and
// binding wlr-output-power-management if advertised.
func New() (*Backend, error) {
	sock, err := DiscoverSocket()
	if err != nil {
		return nil, err
	}
	cl, err := connect(sock)
	if err != nil {
		return nil, err
	}
	return &Backend{cl: cl}, nil
}

func (b *Backend) Close() error {
	return b.cl.close()
}

func toMode(state dpms.PowerState) int32 {
	if state == dpms.On {
		return powerModeOn
	}
	return powerModeOff
}

func fromMode(mode int32) dpms.PowerState {
	if mode == powerModeOn {
		return dpms.On
	}
	return dpms.Off
}

// SetPower resolves target, then drives each selected output in
// discovery order. The first failure aborts the remaining outputs in
// this call and is returned without rolling back already-applied
// changes, a documented limitation of this approach.
func (b *Backend) SetPower(target dpms.DisplayTarget, state dpms.PowerState) error {
	selected, err := dpms.Resolve(target, b.cl.listOutputs())
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		return dpmserr.NewNoDisplayFound()
	}

	mode := toMode(state)
	for _, d := range selected {
		tracker := b.cl.trackerByName(d.Name)
		if tracker == nil {
			continue
		}
		if err := b.cl.setOutputPower(tracker.objectID, mode); err != nil {
			return err
		}
	}
	return nil
}

// GetPower resolves target and reports each selected output's
// current power mode, queried fresh from the compositor.
func (b *Backend) GetPower(target dpms.DisplayTarget) ([]dpms.DisplayInfo, error) {
	available := b.cl.listOutputs()
	selected, err := dpms.Resolve(target, available)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, dpmserr.NewNoDisplayFound()
	}

	out := make([]dpms.DisplayInfo, 0, len(selected))
	for _, d := range selected {
		tracker := b.cl.trackerByName(d.Name)
		if tracker == nil {
			out = append(out, d)
			continue
		}
		mode, err := b.cl.getOutputPower(tracker.objectID)
		if err != nil {
			return nil, err
		}
		d.Power = fromMode(mode)
		out = append(out, d)
	}
	return out, nil
}

// ListDisplays is equivalent to GetPower(All) with full metadata.
func (b *Backend) ListDisplays() ([]dpms.DisplayInfo, error) {
	return b.GetPower(dpms.All())
}

func (cl *client) trackerByName(name string) *outputTracker {
	for _, t := range cl.outputsByRegistryName {
		if displayName(t) == name {
			return t
		}
	}
	return nil
}
