//go:build linux && (amd64 || arm64)

package hal

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// loadSoftSPI opens the shared object at path and binds its transfer
// functions.
func loadSoftSPI(path string) (*softSPI, error) {
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %v", ErrBackendUnavailable, path, err)
	}

	s := &softSPI{
		path:  path,
		close: func() error { return purego.Dlclose(h) },
	}
	symbols := []struct {
		name string
		fptr any
	}{
		{"SYSFS_software_spi_begin", &s.begin},
		{"SYSFS_software_spi_end", &s.end},
		{"SYSFS_software_spi_transfer", &s.transfer},
	}
	for _, sym := range symbols {
		// RegisterLibFunc panics on a missing symbol.
		if _, err := purego.Dlsym(h, sym.name); err != nil {
			_ = purego.Dlclose(h)
			return nil, fmt.Errorf("%w: %s: missing symbol %s", ErrBackendUnavailable, path, sym.name)
		}
		purego.RegisterLibFunc(sym.fptr, h, sym.name)
	}
	return s, nil
}
