// Package seat acquires a DRM device fd through systemd-logind, the
// same org.freedesktop.login1 interface the TTY daemon requires to
// use before it can touch /dev/dri directly. The call sequence here is
// the client side of that interface contract: GetSessionByPID,
// TakeControl, TakeDevice, and their release counterparts.
package seat

import (
	"os"

	"github.com/godbus/dbus/v5"

	"dpms/internal/dpmserr"
)

const (
	loginBusName    = "org.freedesktop.login1"
	loginManagerObj = "/org/freedesktop/login1"

	managerIface = "org.freedesktop.login1.Manager"
	sessionIface = "org.freedesktop.login1.Session"
)

// Session holds the logind session this process's control and device
// grants are scoped to, plus the DRM device fd it obtained.
type Session struct {
	conn        *dbus.Conn
	sessionPath dbus.ObjectPath

	haveControl bool
	drmMajor    uint32
	drmMinor    uint32
	haveDevice  bool
}

// Acquire connects to the system bus, resolves the logind session
// owning this process, takes control of it, and takes the DRM device
// at devPath (typically /dev/dri/card0), returning the granted fd.
func Acquire(devPath string) (*Session, uintptr, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, 0, dpmserr.NewUnsupportedEnvironment("cannot connect to logind system bus: " + err.Error())
	}

	manager := conn.Object(loginBusName, dbus.ObjectPath(loginManagerObj))

	var sessionPath dbus.ObjectPath
	if err := manager.Call(managerIface+".GetSessionByPID", 0, uint32(os.Getpid())).Store(&sessionPath); err != nil {
		conn.Close()
		return nil, 0, dpmserr.NewUnsupportedEnvironment("logind has no session for this process: " + err.Error())
	}

	sess := &Session{conn: conn, sessionPath: sessionPath}

	sessionObj := conn.Object(loginBusName, sessionPath)
	if call := sessionObj.Call(sessionIface+".TakeControl", 0, false); call.Err != nil {
		conn.Close()
		return nil, 0, dpmserr.NewUnsupportedEnvironment("TakeControl failed: " + call.Err.Error())
	}
	sess.haveControl = true

	major, minor, err := statRdev(devPath)
	if err != nil {
		sess.Release()
		return nil, 0, dpmserr.NewIoError(devPath, err)
	}

	var fd dbus.UnixFD
	var inactive bool
	call := sessionObj.Call(sessionIface+".TakeDevice", 0, major, minor)
	if call.Err != nil {
		sess.Release()
		return nil, 0, dpmserr.NewUnsupportedEnvironment("TakeDevice failed: " + call.Err.Error())
	}
	if err := call.Store(&fd, &inactive); err != nil {
		sess.Release()
		return nil, 0, dpmserr.NewUnsupportedEnvironment("TakeDevice reply: " + err.Error())
	}

	sess.drmMajor = major
	sess.drmMinor = minor
	sess.haveDevice = true

	return sess, uintptr(fd), nil
}

// Release gives back the DRM device and session control, in reverse
// acquisition order, and closes the bus connection. Safe to call more
// than once and on a partially-acquired Session.
func (s *Session) Release() error {
	sessionObj := s.conn.Object(loginBusName, s.sessionPath)

	var firstErr error
	if s.haveDevice {
		if call := sessionObj.Call(sessionIface+".ReleaseDevice", 0, s.drmMajor, s.drmMinor); call.Err != nil {
			firstErr = call.Err
		}
		s.haveDevice = false
	}
	if s.haveControl {
		if call := sessionObj.Call(sessionIface+".ReleaseControl", 0); call.Err != nil && firstErr == nil {
			firstErr = call.Err
		}
		s.haveControl = false
	}

	if err := s.conn.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if firstErr != nil {
		return dpmserr.NewUnsupportedEnvironment("releasing logind session: " + firstErr.Error())
	}
	return nil
}

// statRdev resolves the major/minor device numbers logind's
// TakeDevice call addresses a device by.
func statRdev(path string) (major, minor uint32, err error) {
	return rdev(path)
}
