package hal

import (
	"fmt"
	"os"
	"path/filepath"
)

// softSPILibrary is the bit-banged SPI shared object shipped for Jetson
// boards.
const softSPILibrary = "sysfs_software_spi.so"

// softSPI is the typed function table of the soft SPI shared object. It is
// populated once at startup; a missing symbol fails construction.
type softSPI struct {
	path     string
	begin    func()
	end      func()
	transfer func(data byte) byte
	close    func() error
}

// libraryDirs returns the shared object search order: the directory of the
// running executable, then /usr/local/lib, then /usr/lib.
func libraryDirs() []string {
	dirs := make([]string, 0, 3)
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		dirs = append(dirs, filepath.Dir(exe))
	}
	return append(dirs, "/usr/local/lib", "/usr/lib")
}

// findLibrary returns the first dirs entry containing name.
func findLibrary(name string, dirs []string, exists func(string) bool) (string, error) {
	for _, d := range dirs {
		p := filepath.Join(d, name)
		if exists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: cannot find %s in %v", ErrBackendUnavailable, name, dirs)
}

func fileExists(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}
