package seat

import (
	"golang.org/x/sys/unix"
)

// rdev resolves the major/minor device numbers of path's underlying
// character device, the identifier logind's TakeDevice/ReleaseDevice
// methods address devices by.
func rdev(path string) (major, minor uint32, err error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, 0, err
	}
	dev := uint64(st.Rdev)
	return uint32(unix.Major(dev)), uint32(unix.Minor(dev)), nil
}
