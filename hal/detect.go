package hal

import (
	"bytes"
	"io/fs"
)

// Platform identifies a supported board family.
type Platform int

const (
	// PlatformAuto asks Open to run Detect.
	PlatformAuto Platform = iota
	PlatformRPi
	PlatformJetson
	PlatformX3
)

func (p Platform) String() string {
	switch p {
	case PlatformRPi:
		return "rpi"
	case PlatformJetson:
		return "jetson"
	case PlatformX3:
		return "x3"
	default:
		return "auto"
	}
}

// ParsePlatform maps a name from String back to a Platform.
func ParsePlatform(s string) (Platform, bool) {
	for _, p := range []Platform{PlatformAuto, PlatformRPi, PlatformJetson, PlatformX3} {
		if p.String() == s {
			return p, true
		}
	}
	return PlatformAuto, false
}

// Detect inspects the host file system rooted at fsys (normally "/") and
// returns the board family. Raspberry Pi is recognized from the CPU
// information or the device tree model, Sunrise X3 from its GPIO platform
// driver. Anything else is assumed to be a Jetson.
func Detect(fsys fs.FS) Platform {
	for _, f := range []string{"proc/cpuinfo", "proc/device-tree/model"} {
		if b, err := fs.ReadFile(fsys, f); err == nil && bytes.Contains(b, []byte("Raspberry")) {
			return PlatformRPi
		}
	}
	if _, err := fs.Stat(fsys, "sys/bus/platform/drivers/gpio-x3"); err == nil {
		return PlatformX3
	}
	return PlatformJetson
}
