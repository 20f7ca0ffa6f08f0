package hal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// State is the lifecycle state of a Session.
type State int

const (
	// StateUninit means the backend has not been powered up.
	StateUninit State = iota
	// StateReady means ModuleInit succeeded and the bus can be used.
	StateReady
	// StateClosed means ModuleExit or Close ran.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "uninit"
	}
}

// Opts is the configuration for Open. The zero value detects the platform
// and uses DefaultPins.
type Opts struct {
	// Platform forces a backend; PlatformAuto runs Detect.
	Platform Platform
	// Pins overrides the BCM pin assignment.
	Pins Pins
	// PinNames maps BCM numbers to host pin names for the periph based
	// backends. Defaults to JetsonPinNames on Jetson and "GPIO<n>" elsewhere.
	PinNames map[int]string
	// SPIDevice is the spidev node used by the X3 backend.
	SPIDevice string
	// LibraryDirs overrides the shared object search path of the Jetson
	// backend.
	LibraryDirs []string
	// Root is the file system Detect inspects. Defaults to os.DirFS("/").
	Root fs.FS
	// Logger receives lifecycle messages. Defaults to logrus.StandardLogger.
	Logger logrus.FieldLogger
}

// Session owns the Bus selected for the process. It is created once by Open
// and passed explicitly to the panel driver; there is no package-level
// instance. ModuleInit and ModuleExit track the session state on top of the
// backend's own idempotency.
type Session struct {
	Bus
	platform Platform
	log      logrus.FieldLogger
	state    State
	released bool
}

// NewSession wraps an already constructed Bus.
func NewSession(b Bus, log logrus.FieldLogger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{Bus: b, log: log}
}

// Open selects the backend for this host, constructs it and returns the
// session in StateUninit. Selection happens exactly once per call; callers
// are expected to call Open once per process.
func Open(opts *Opts) (*Session, error) {
	if opts == nil {
		opts = &Opts{}
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	platform := opts.Platform
	if platform == PlatformAuto {
		root := opts.Root
		if root == nil {
			root = os.DirFS("/")
		}
		platform = Detect(root)
	}
	machine, release := HostInfo()
	log = log.WithFields(logrus.Fields{"platform": platform.String(), "machine": machine})
	log.WithField("kernel", release).Debug("selected backend")

	b, err := newBackend(platform, opts, log)
	if err != nil {
		return nil, err
	}
	s := NewSession(b, log)
	s.platform = platform
	return s, nil
}

func newBackend(platform Platform, opts *Opts, log logrus.FieldLogger) (Bus, error) {
	pins := opts.Pins.orDefault()
	switch platform {
	case PlatformRPi:
		return newRPiBus(rpioChip{}, pins, log)
	case PlatformJetson:
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("%w: periph host: %v", ErrBackendUnavailable, err)
		}
		names := opts.PinNames
		if names == nil {
			names = JetsonPinNames
		}
		lines, err := resolveLines(pins, names, true, byName)
		if err != nil {
			return nil, err
		}
		dirs := opts.LibraryDirs
		if len(dirs) == 0 {
			dirs = libraryDirs()
		}
		path, err := findLibrary(softSPILibrary, dirs, fileExists)
		if err != nil {
			return nil, err
		}
		sspi, err := loadSoftSPI(path)
		if err != nil {
			return nil, err
		}
		return newJetsonBus(lines, sspi, log), nil
	case PlatformX3:
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("%w: periph host: %v", ErrBackendUnavailable, err)
		}
		lines, err := resolveLines(pins, opts.PinNames, false, byName)
		if err != nil {
			return nil, err
		}
		dev := opts.SPIDevice
		if dev == "" {
			dev = X3SPIDevice
		}
		if _, err := os.Stat(dev); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return newX3Bus(lines, func() (spi.PortCloser, error) { return spireg.Open(dev) }, log), nil
	default:
		return nil, fmt.Errorf("%w: unknown platform %d", ErrBackendUnavailable, int(platform))
	}
}

func byName(name string) gpio.PinIO {
	return gpioreg.ByName(name)
}

// Platform returns the platform the session was opened for, PlatformAuto for
// sessions built with NewSession.
func (s *Session) Platform() Platform { return s.platform }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// ModuleInit powers the panel up. It is a no-op while the session is ready.
func (s *Session) ModuleInit() error {
	if s.released {
		return fmt.Errorf("%w: session released", ErrBackendUnavailable)
	}
	if s.state == StateReady {
		return nil
	}
	if err := s.Bus.ModuleInit(); err != nil {
		return err
	}
	s.state = StateReady
	s.log.Debug("module ready")
	return nil
}

// ModuleExit puts the panel into its zero-power state. It always reaches the
// backend so the control lines are driven low on every call.
func (s *Session) ModuleExit() error {
	err := s.Bus.ModuleExit()
	s.state = StateClosed
	return err
}

// Close runs ModuleExit and releases process-level backend resources. The
// session cannot be initialized again afterwards.
func (s *Session) Close() error {
	if s.released {
		return nil
	}
	err := s.ModuleExit()
	if r, ok := s.Bus.(releaser); ok {
		err = errors.Join(err, r.release())
	}
	s.released = true
	return err
}
