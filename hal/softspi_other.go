//go:build !(linux && (amd64 || arm64))

package hal

import "fmt"

func loadSoftSPI(path string) (*softSPI, error) {
	return nil, fmt.Errorf("%w: cannot load %s on this platform", ErrBackendUnavailable, path)
}
