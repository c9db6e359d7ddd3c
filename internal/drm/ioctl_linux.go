// Package drm implements the raw DRM/KMS operations a TTY-seat backend
// needs: connector/CRTC enumeration and an atomic-commit primitive
// that flips a CRTC's ACTIVE property. The ioctl numbers and struct
// layouts here extend a legacy-SETCRTC-only reference with the
// object-property and atomic-commit ioctls that reference didn't need.
package drm

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"dpms/internal/dpmserr"
)

// DRM ioctl numbers, standard Linux encoding:
//
//	_IOWR(type, nr, size) = 0xC0000000 | (size << 16) | (type << 8) | nr
//	_IOW(type, nr, size)  = 0x40000000 | (size << 16) | (type << 8) | nr
//	_IO(type, nr)         = (type << 8) | nr
const (
	ioctlModeGetResources      = 0xc04064a0
	ioctlModeGetConnector      = 0xc05064a7
	ioctlModeGetEncoder        = 0xc01464a6
	ioctlModeObjGetProperties  = 0xc01c64b9
	ioctlModeObjSetProperty    = 0xc01464ba
	ioctlModeGetProperty       = 0xc04064aa
	ioctlModeAtomic            = 0xc03864bc
)

const (
	connectorStatusConnected = 1

	modeObjectCrtc = 0xcccccccc

	atomicAllowModeset = 0x0400

	propNameLen = 32
)

// drmModeCardRes corresponds to struct drm_mode_card_res.
type drmModeCardRes struct {
	FbIDPtr         uint64
	CrtcIDPtr       uint64
	ConnectorIDPtr  uint64
	EncoderIDPtr    uint64
	CountFbs        uint32
	CountCrtcs      uint32
	CountConnectors uint32
	CountEncoders   uint32
	MinWidth        uint32
	MaxWidth        uint32
	MinHeight       uint32
	MaxHeight       uint32
}

// drmModeGetConnector corresponds to struct drm_mode_get_connector.
type drmModeGetConnector struct {
	EncodersPtr     uint64
	ModesPtr        uint64
	PropsPtr        uint64
	PropValuesPtr   uint64
	CountModes      uint32
	CountProps      uint32
	CountEncoders   uint32
	EncoderID       uint32
	ConnectorID     uint32
	ConnectorType   uint32
	ConnectorTypeID uint32
	Connection      uint32
	MmWidth         uint32
	MmHeight        uint32
	Subpixel        uint32
	Pad             uint32
}

// drmModeGetEncoder corresponds to struct drm_mode_get_encoder.
type drmModeGetEncoder struct {
	EncoderID      uint32
	EncoderType    uint32
	CrtcID         uint32
	PossibleCrtcs  uint32
	PossibleClones uint32
}

// drmModeObjGetProperties corresponds to struct drm_mode_obj_get_properties.
type drmModeObjGetProperties struct {
	PropsPtr      uint64
	PropValuesPtr uint64
	CountProps    uint32
	ObjID         uint32
	ObjType       uint32
}

// drmModeObjSetProperty corresponds to struct drm_mode_obj_set_property.
type drmModeObjSetProperty struct {
	Value   uint64
	PropID  uint32
	ObjID   uint32
	ObjType uint32
}

// drmModeGetProperty corresponds to struct drm_mode_get_property.
type drmModeGetProperty struct {
	ValuesPtr     uint64
	EnumBlobPtr   uint64
	PropID        uint32
	Flags         uint32
	Name          [propNameLen]byte
	CountValues   uint32
	CountEnumBlob uint32
}

// drmModeAtomic corresponds to struct drm_mode_atomic.
type drmModeAtomic struct {
	Flags          uint32
	CountObjs      uint32
	ObjsPtr        uint64
	CountPropsPtr  uint64
	PropsPtr       uint64
	PropValuesPtr  uint64
	Reserved       uint64
	UserData       uint64
}

func ioctl(fd uintptr, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// getResources returns every CRTC and connector object id on the device.
func getResources(f *os.File) (crtcIDs, connectorIDs []uint32, err error) {
	var res drmModeCardRes
	if err := ioctl(f.Fd(), ioctlModeGetResources, unsafe.Pointer(&res)); err != nil {
		return nil, nil, dpmserr.NewDrmError("MODE_GETRESOURCES(count)", err)
	}
	if res.CountCrtcs == 0 || res.CountConnectors == 0 {
		return nil, nil, dpmserr.NewDrmError("MODE_GETRESOURCES", fmt.Errorf("no CRTCs or connectors (crtcs=%d connectors=%d)", res.CountCrtcs, res.CountConnectors))
	}

	crtcIDs = make([]uint32, res.CountCrtcs)
	connectorIDs = make([]uint32, res.CountConnectors)

	res2 := drmModeCardRes{
		CrtcIDPtr:       uint64(uintptr(unsafe.Pointer(&crtcIDs[0]))),
		ConnectorIDPtr:  uint64(uintptr(unsafe.Pointer(&connectorIDs[0]))),
		CountCrtcs:      res.CountCrtcs,
		CountConnectors: res.CountConnectors,
	}
	if err := ioctl(f.Fd(), ioctlModeGetResources, unsafe.Pointer(&res2)); err != nil {
		return nil, nil, dpmserr.NewDrmError("MODE_GETRESOURCES(fill)", err)
	}
	return crtcIDs, connectorIDs, nil
}

// getConnector fetches one connector's connection status and currently
// bound encoder id.
func getConnector(f *os.File, connectorID uint32) (drmModeGetConnector, error) {
	c := drmModeGetConnector{ConnectorID: connectorID}
	if err := ioctl(f.Fd(), ioctlModeGetConnector, unsafe.Pointer(&c)); err != nil {
		return drmModeGetConnector{}, dpmserr.NewDrmError(fmt.Sprintf("MODE_GETCONNECTOR(%d)", connectorID), err)
	}
	return c, nil
}

// getEncoder fetches one encoder's currently-bound CRTC and the bitmask
// of CRTCs it could possibly drive.
func getEncoder(f *os.File, encoderID uint32) (drmModeGetEncoder, error) {
	e := drmModeGetEncoder{EncoderID: encoderID}
	if err := ioctl(f.Fd(), ioctlModeGetEncoder, unsafe.Pointer(&e)); err != nil {
		return drmModeGetEncoder{}, dpmserr.NewDrmError(fmt.Sprintf("MODE_GETENCODER(%d)", encoderID), err)
	}
	return e, nil
}

// getObjectProperties returns the property id / value pairs attached to
// one KMS object (here always a CRTC).
func getObjectProperties(f *os.File, objID, objType uint32) (propIDs []uint32, propValues []uint64, err error) {
	var req drmModeObjGetProperties
	req.ObjID = objID
	req.ObjType = objType
	if err := ioctl(f.Fd(), ioctlModeObjGetProperties, unsafe.Pointer(&req)); err != nil {
		return nil, nil, dpmserr.NewDrmError("MODE_OBJ_GETPROPERTIES(count)", err)
	}
	if req.CountProps == 0 {
		return nil, nil, nil
	}

	propIDs = make([]uint32, req.CountProps)
	propValues = make([]uint64, req.CountProps)
	req2 := drmModeObjGetProperties{
		PropsPtr:      uint64(uintptr(unsafe.Pointer(&propIDs[0]))),
		PropValuesPtr: uint64(uintptr(unsafe.Pointer(&propValues[0]))),
		CountProps:    req.CountProps,
		ObjID:         objID,
		ObjType:       objType,
	}
	if err := ioctl(f.Fd(), ioctlModeObjGetProperties, unsafe.Pointer(&req2)); err != nil {
		return nil, nil, dpmserr.NewDrmError("MODE_OBJ_GETPROPERTIES(fill)", err)
	}
	return propIDs, propValues, nil
}

// getPropertyName resolves a property id to its kernel-assigned name
// (e.g. "ACTIVE").
func getPropertyName(f *os.File, propID uint32) (string, error) {
	p := drmModeGetProperty{PropID: propID}
	if err := ioctl(f.Fd(), ioctlModeGetProperty, unsafe.Pointer(&p)); err != nil {
		return "", dpmserr.NewDrmError(fmt.Sprintf("MODE_GETPROPERTY(%d)", propID), err)
	}
	n := 0
	for n < len(p.Name) && p.Name[n] != 0 {
		n++
	}
	return string(p.Name[:n]), nil
}

// atomicSetProperty submits a one-object, one-property atomic commit
// with ALLOW_MODESET set, backing the set_crtc_active primitive.
func atomicSetProperty(f *os.File, objID, propID uint32, value uint64) error {
	objs := []uint32{objID}
	countProps := []uint32{1}
	propIDs := []uint32{propID}
	propValues := []uint64{value}

	req := drmModeAtomic{
		Flags:         atomicAllowModeset,
		CountObjs:     1,
		ObjsPtr:       uint64(uintptr(unsafe.Pointer(&objs[0]))),
		CountPropsPtr: uint64(uintptr(unsafe.Pointer(&countProps[0]))),
		PropsPtr:      uint64(uintptr(unsafe.Pointer(&propIDs[0]))),
		PropValuesPtr: uint64(uintptr(unsafe.Pointer(&propValues[0]))),
	}
	if err := ioctl(f.Fd(), ioctlModeAtomic, unsafe.Pointer(&req)); err != nil {
		return dpmserr.NewDrmError(fmt.Sprintf("MODE_ATOMIC(obj=%d prop=%d value=%d)", objID, propID, value), err)
	}
	return nil
}
