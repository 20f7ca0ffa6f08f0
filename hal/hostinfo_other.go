//go:build !(linux || darwin || freebsd)

package hal

import "runtime"

// HostInfo returns the architecture; the release is unknown here.
func HostInfo() (machine, release string) {
	return runtime.GOARCH, ""
}
