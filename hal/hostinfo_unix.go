//go:build linux || darwin || freebsd

package hal

import "golang.org/x/sys/unix"

// HostInfo returns the kernel machine and release strings, or empty strings
// when uname fails.
func HostInfo() (machine, release string) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "", ""
	}
	return unix.ByteSliceToString(u.Machine[:]), unix.ByteSliceToString(u.Release[:])
}
