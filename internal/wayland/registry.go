package wayland

import (
	"fmt"
	"syscall"

	"dpms/internal/dpms"
	"dpms/internal/dpmserr"
)

const (
	idDisplay  uint32 = 1
	idRegistry uint32 = 2
	firstFree  uint32 = 3
)

// wl_display opcodes.
const (
	displayReqSync        uint16 = 0
	displayReqGetRegistry uint16 = 1
	displayEvError        uint16 = 0
	displayEvDeleteID     uint16 = 1
)

// wl_callback opcode.
const callbackEvDone uint16 = 0

// wl_registry opcodes.
const (
	registryReqBind        uint16 = 0
	registryEvGlobal       uint16 = 0
	registryEvGlobalRemove uint16 = 1
)

// wl_output opcodes (requests + events, interface version 4).
const (
	outputReqRelease    uint16 = 0
	outputEvGeometry    uint16 = 0
	outputEvMode        uint16 = 1
	outputEvDone        uint16 = 2
	outputEvScale       uint16 = 3
	outputEvName        uint16 = 4
	outputEvDescription uint16 = 5
)

// zwlr_output_power_manager_v1 opcodes.
const (
	powerManagerReqGetOutputPower uint16 = 0
	powerManagerReqDestroy        uint16 = 1
)

// zwlr_output_power_v1 opcodes.
const (
	powerReqSetMode uint16 = 0
	powerReqDestroy uint16 = 1
	powerEvMode     uint16 = 0
	powerEvFailed   uint16 = 1
)

const (
	powerModeOff int32 = 0
	powerModeOn  int32 = 1
)

const wlOutputMaxBindVersion uint32 = 4

type outputTracker struct {
	registryName uint32 // wl_registry global name
	objectID     uint32 // bound wl_output proxy id
	name         string
	description  string
	make         string
	model        string
}

// client is the live, connected, discovered state one CLI invocation
// needs: bound wl_output proxies and, if advertised, the
// zwlr_output_power_manager_v1 singleton.
type client struct {
	c      *conn
	nextID uint32

	outputsByRegistryName map[uint32]*outputTracker
	outputsByObjectID     map[uint32]*outputTracker

	powerManagerName     uint32
	powerManagerFound    bool
	powerManagerObjectID uint32
}

// connect dials sockPath, performs the discovery roundtrips (registry
// globals, then per-output metadata), and binds
// zwlr_output_power_manager_v1 if the compositor advertises it.
func connect(sockPath string) (*client, error) {
	c, err := dial(sockPath)
	if err != nil {
		return nil, dpmserr.NewWaylandError("connect "+sockPath, err)
	}

	cl := &client{
		c:                     c,
		nextID:                firstFree,
		outputsByRegistryName: make(map[uint32]*outputTracker),
		outputsByObjectID:     make(map[uint32]*outputTracker),
	}

	if err := cl.discover(); err != nil {
		c.close()
		return nil, err
	}
	return cl, nil
}

func (cl *client) allocID() uint32 {
	id := cl.nextID
	cl.nextID++
	return id
}

func (cl *client) close() error {
	cl.c.close()
	return nil
}

// discover performs the two roundtrips required to enumerate outputs: the
// first collects registry globals (and binds every wl_output plus the
// power manager, if present), the second flushes the wl_output.done
// events that finalize each output's metadata.
func (cl *client) discover() error {
	if err := cl.c.send(idDisplay, displayReqGetRegistry, encodeUint32(idRegistry)); err != nil {
		return dpmserr.NewWaylandError("get_registry", err)
	}

	type pendingOutput struct {
		name    uint32
		version uint32
	}
	var pendingOutputs []pendingOutput // registry names awaiting bind
	if err := cl.roundtrip(func(m message) (bool, error) {
		if m.ObjectID != idRegistry || m.Opcode != registryEvGlobal {
			return false, nil
		}
		name, rest, err := decodeUint32(m.Payload)
		if err != nil {
			return true, dpmserr.NewWaylandError("registry.global", err)
		}
		iface, rest, err := decodeString(rest)
		if err != nil {
			return true, dpmserr.NewWaylandError("registry.global", err)
		}
		version, _, err := decodeUint32(rest)
		if err != nil {
			return true, dpmserr.NewWaylandError("registry.global", err)
		}

		switch iface {
		case "wl_output":
			// Binding above the advertised version is a protocol
			// error, so take whichever of 4 and the compositor's
			// version is lower. Below 4 there is no name/description
			// event and the geometry make/model is all we get.
			v := version
			if v > wlOutputMaxBindVersion {
				v = wlOutputMaxBindVersion
			}
			pendingOutputs = append(pendingOutputs, pendingOutput{name: name, version: v})
			cl.outputsByRegistryName[name] = &outputTracker{registryName: name}
		case "zwlr_output_power_manager_v1":
			cl.powerManagerName = name
			cl.powerManagerFound = true
		}
		return true, nil
	}); err != nil {
		return err
	}

	for _, p := range pendingOutputs {
		objID := cl.allocID()
		if err := cl.bindGlobal(p.name, "wl_output", p.version, objID); err != nil {
			return err
		}
		tracker := cl.outputsByRegistryName[p.name]
		tracker.objectID = objID
		cl.outputsByObjectID[objID] = tracker
	}

	if cl.powerManagerFound {
		cl.powerManagerObjectID = cl.allocID()
		if err := cl.bindGlobal(cl.powerManagerName, "zwlr_output_power_manager_v1", 1, cl.powerManagerObjectID); err != nil {
			return err
		}
	}

	// Second roundtrip: flush geometry/name/description/done for every
	// newly bound output.
	return cl.roundtrip(cl.handleOutputEvent)
}

func (cl *client) bindGlobal(name uint32, iface string, version uint32, newID uint32) error {
	return cl.c.send(idRegistry, registryReqBind, concat(
		encodeUint32(name),
		encodeString(iface),
		encodeUint32(version),
		encodeUint32(newID),
	))
}

func (cl *client) handleOutputEvent(m message) (bool, error) {
	tracker, ok := cl.outputsByObjectID[m.ObjectID]
	if !ok {
		return false, nil
	}
	switch m.Opcode {
	case outputEvGeometry:
		_, rest, err := decodeInt32(m.Payload) // x
		if err != nil {
			return true, nil
		}
		_, rest, err = decodeInt32(rest) // y
		if err != nil {
			return true, nil
		}
		_, rest, err = decodeInt32(rest) // physical_width
		if err != nil {
			return true, nil
		}
		_, rest, err = decodeInt32(rest) // physical_height
		if err != nil {
			return true, nil
		}
		_, rest, err = decodeInt32(rest) // subpixel
		if err != nil {
			return true, nil
		}
		make_, rest, err := decodeString(rest)
		if err != nil {
			return true, nil
		}
		model, _, err := decodeString(rest)
		if err != nil {
			return true, nil
		}
		tracker.make = make_
		tracker.model = model
		return true, nil
	case outputEvName:
		name, _, err := decodeString(m.Payload)
		if err == nil {
			tracker.name = name
		}
		return true, nil
	case outputEvDescription:
		desc, _, err := decodeString(m.Payload)
		if err == nil {
			tracker.description = desc
		}
		return true, nil
	case outputEvDone, outputEvMode, outputEvScale:
		return true, nil
	}
	return false, nil
}

// roundtrip issues a wl_display.sync and dispatches every event until
// the matching wl_callback.done fires, routing anything extra to
// handle. This is the canonical Wayland "ensure all prior requests
// have been observed" pattern.
func (cl *client) roundtrip(handle func(message) (bool, error)) error {
	callbackID := cl.allocID()
	if err := cl.c.send(idDisplay, displayReqSync, encodeUint32(callbackID)); err != nil {
		return dpmserr.NewWaylandError("sync", err)
	}

	for {
		m, err := cl.c.recv()
		if err != nil {
			return dpmserr.NewWaylandError("read event", err)
		}
		if m.FD >= 0 {
			// This client never expects an fd-bearing event on any of
			// the interfaces it binds; close defensively so nothing
			// leaks.
			closeFD(m.FD)
		}

		if m.ObjectID == idDisplay && m.Opcode == displayEvError {
			return dpmserr.NewWaylandError(decodeDisplayError(m.Payload), nil)
		}
		if m.ObjectID == idDisplay && m.Opcode == displayEvDeleteID {
			continue
		}
		if m.ObjectID == callbackID && m.Opcode == callbackEvDone {
			return nil
		}

		if handle != nil {
			if _, err := handle(m); err != nil {
				return err
			}
		}
	}
}

// listOutputs projects every tracked output into a DisplayInfo with
// power always set to On (unknown-but-visible) — callers that need a
// real power reading call getOutputPower per-output.
func (cl *client) listOutputs() []dpms.DisplayInfo {
	out := make([]dpms.DisplayInfo, 0, len(cl.outputsByRegistryName))
	for _, name := range cl.orderedRegistryNames() {
		t := cl.outputsByRegistryName[name]
		out = append(out, dpms.DisplayInfo{
			Name:        displayName(t),
			Power:       dpms.On,
			Description: t.description,
			Make:        t.make,
			Model:       t.model,
		})
	}
	return out
}

// orderedRegistryNames returns registry names in ascending order,
// which is discovery order since the compositor assigns them
// monotonically as it advertises globals.
func (cl *client) orderedRegistryNames() []uint32 {
	out := make([]uint32, 0, len(cl.outputsByRegistryName))
	for name := range cl.outputsByRegistryName {
		out = append(out, name)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// decodeDisplayError renders a wl_display.error event's payload
// (offending object id, error code, message) as a one-line context
// string for the WaylandError it becomes.
func decodeDisplayError(payload []byte) string {
	objID, rest, err := decodeUint32(payload)
	if err != nil {
		return "protocol error event"
	}
	code, rest, err := decodeUint32(rest)
	if err != nil {
		return "protocol error event"
	}
	msg, _, err := decodeString(rest)
	if err != nil {
		return "protocol error event"
	}
	return fmt.Sprintf("protocol error on object %d (code %d): %s", objID, code, msg)
}

func displayName(t *outputTracker) string {
	if t.name != "" {
		return t.name
	}
	return t.description
}

func closeFD(fd int) {
	syscall.Close(fd) //nolint:errcheck
}
