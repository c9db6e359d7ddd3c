package drm

import (
	"fmt"
	"os"

	"dpms/internal/dpmserr"
)

// Output describes one DRM connector resolved to a drivable CRTC and
// its ACTIVE property id, the unit set_crtc_active operates on. Name
// mirrors the kernel's own connector naming scheme ("HDMI-A-1",
// "eDP-1", ...) so it can be matched against the same display-name
// selector the Wayland backend uses.
type Output struct {
	ConnectorID  uint32
	CrtcID       uint32
	ActivePropID uint32
	Name         string
}

// Device wraps an already-open DRM device file descriptor. The fd is
// expected to come from the seat layer (logind's TakeDevice), which is
// why Device never opens a path itself.
type Device struct {
	f *os.File
}

// WrapFD adopts an open DRM device fd. The Device takes ownership and
// closes it on Close.
func WrapFD(fd uintptr) *Device {
	return &Device{f: os.NewFile(fd, "drm-device")}
}

func (d *Device) Close() error {
	return d.f.Close()
}

// Connectors enumerates every connected connector, resolving each to a
// driveable CRTC and that CRTC's ACTIVE property id. Disconnected
// connectors are skipped.
func (d *Device) Connectors() ([]Output, error) {
	crtcIDs, connectorIDs, err := getResources(d.f)
	if err != nil {
		return nil, err
	}

	var outputs []Output
	for _, connID := range connectorIDs {
		info, err := getConnector(d.f, connID)
		if err != nil {
			return nil, err
		}
		if info.Connection != connectorStatusConnected {
			continue
		}

		crtcID, err := d.resolveCRTC(info, crtcIDs)
		if err != nil {
			return nil, err
		}

		activePropID, err := d.resolveActiveProperty(crtcID)
		if err != nil {
			return nil, err
		}

		outputs = append(outputs, Output{
			ConnectorID:  connID,
			CrtcID:       crtcID,
			ActivePropID: activePropID,
			Name:         connectorName(info),
		})
	}
	return outputs, nil
}

// FirstConnected returns the first connected connector in enumeration
// order, for callers that only need one display.
func (d *Device) FirstConnected() (Output, error) {
	outputs, err := d.Connectors()
	if err != nil {
		return Output{}, err
	}
	if len(outputs) == 0 {
		return Output{}, dpmserr.NewDrmError("connector enumeration", errNoConnectedConnector)
	}
	return outputs[0], nil
}

// connectorTypeNames mirrors the kernel's drm_connector_enum_list,
// which libdrm's drmModeGetConnectorTypeName exposes and every
// "HDMI-A-1"-style sysfs/connector name is built from.
var connectorTypeNames = map[uint32]string{
	0:  "Unknown",
	1:  "VGA",
	2:  "DVI-I",
	3:  "DVI-D",
	4:  "DVI-A",
	5:  "Composite",
	6:  "SVIDEO",
	7:  "LVDS",
	8:  "Component",
	9:  "DIN",
	10: "DP",
	11: "HDMI-A",
	12: "HDMI-B",
	13: "TV",
	14: "eDP",
	15: "Virtual",
	16: "DSI",
	17: "DPI",
	18: "Writeback",
	19: "SPI",
	20: "USB",
}

// connectorName synthesizes a connector's kernel-style display name
// ("HDMI-A-1", "eDP-1") from its connector type and the kernel-assigned
// per-type instance id.
func connectorName(info drmModeGetConnector) string {
	typeName, ok := connectorTypeNames[info.ConnectorType]
	if !ok {
		typeName = "Unknown"
	}
	return fmt.Sprintf("%s-%d", typeName, info.ConnectorTypeID)
}

var errNoConnectedConnector = drmErrString("no connected connector found")

type drmErrString string

func (e drmErrString) Error() string { return string(e) }

// resolveCRTC returns the CRTC bound to the connector's current
// encoder, or, if that encoder has no CRTC bound, the first CRTC the
// encoder could possibly drive. A connector with no current encoder
// is not resolved: it yields a DrmError, which makes Connectors fail.
func (d *Device) resolveCRTC(info drmModeGetConnector, crtcIDs []uint32) (uint32, error) {
	if info.EncoderID == 0 {
		return 0, dpmserr.NewDrmError("resolve CRTC", drmErrString("connector has no encoder"))
	}
	enc, err := getEncoder(d.f, info.EncoderID)
	if err != nil {
		return 0, err
	}
	return selectCRTC(enc.CrtcID, enc.PossibleCrtcs, crtcIDs)
}

// selectCRTC is the pure selection rule behind resolveCRTC: prefer the
// encoder's currently-bound CRTC, otherwise the first CRTC (in
// enumeration order) the encoder's possible_crtcs bitmask allows.
func selectCRTC(boundCrtcID uint32, possibleCrtcs uint32, crtcIDs []uint32) (uint32, error) {
	if boundCrtcID != 0 {
		return boundCrtcID, nil
	}
	for i, crtcID := range crtcIDs {
		if possibleCrtcs&(1<<uint(i)) != 0 {
			return crtcID, nil
		}
	}
	return 0, dpmserr.NewDrmError("resolve CRTC", drmErrString("no CRTC possible for encoder"))
}

// resolveActiveProperty enumerates a CRTC's object properties and
// returns the numeric id of the one named "ACTIVE".
func (d *Device) resolveActiveProperty(crtcID uint32) (uint32, error) {
	propIDs, _, err := getObjectProperties(d.f, crtcID, modeObjectCrtc)
	if err != nil {
		return 0, err
	}
	names := make(map[uint32]string, len(propIDs))
	for _, propID := range propIDs {
		name, err := getPropertyName(d.f, propID)
		if err != nil {
			return 0, err
		}
		names[propID] = name
	}
	return selectActiveProperty(propIDs, names)
}

// selectActiveProperty is the pure selection rule behind
// resolveActiveProperty: the property id, in propIDs order, whose name
// is "ACTIVE".
func selectActiveProperty(propIDs []uint32, names map[uint32]string) (uint32, error) {
	for _, propID := range propIDs {
		if names[propID] == "ACTIVE" {
			return propID, nil
		}
	}
	return 0, dpmserr.NewDrmError("resolve ACTIVE property", drmErrString("CRTC has no ACTIVE property"))
}

// SetCRTCActive builds and submits the single-property atomic commit
// set_crtc_active: one ACTIVE assignment, submitted
// synchronously with ALLOW_MODESET set.
func (d *Device) SetCRTCActive(out Output, active bool) error {
	var value uint64
	if active {
		value = 1
	}
	return atomicSetProperty(d.f, out.CrtcID, out.ActivePropID, value)
}
