package hal

import (
	"errors"
	"fmt"
	"strings"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"
)

// journal is an ordered log of hardware events shared by the fakes.
type journal struct {
	events []string
}

func (j *journal) add(format string, args ...any) {
	j.events = append(j.events, fmt.Sprintf(format, args...))
}

func (j *journal) index(event string) int {
	for i, e := range j.events {
		if e == event {
			return i
		}
	}
	return -1
}

func (j *journal) String() string {
	return strings.Join(j.events, "\n")
}

// recPin is a gpiotest.Pin that journals direction and level changes.
type recPin struct {
	*gpiotest.Pin
	j      *journal
	outErr error
}

func (p *recPin) Out(l gpio.Level) error {
	if p.outErr != nil {
		return p.outErr
	}
	p.j.add("%s=%s", p.Pin.N, l)
	return p.Pin.Out(l)
}

func (p *recPin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.j.add("%s in %s", p.Pin.N, pull)
	return p.Pin.In(pull, edge)
}

// pinBank resolves host pin names to journaling fake pins.
type pinBank struct {
	j    *journal
	pins map[string]*recPin
}

func newPinBank(j *journal) *pinBank {
	return &pinBank{j: j, pins: map[string]*recPin{}}
}

func (b *pinBank) byName(name string) gpio.PinIO {
	if p, ok := b.pins[name]; ok {
		return p
	}
	p := &recPin{Pin: &gpiotest.Pin{N: name}, j: b.j}
	b.pins[name] = p
	return p
}

func (b *pinBank) level(name string) gpio.Level {
	return b.pins[name].Read()
}

// recPort records SPI traffic and journals open/close.
type recPort struct {
	*spitest.Record
	j        *journal
	closeErr error
}

func (p *recPort) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	p.j.add("spi connect")
	return p.Record.Connect(f, mode, bits)
}

func (p *recPort) Close() error {
	p.j.add("spi close")
	if p.closeErr != nil {
		return p.closeErr
	}
	return p.Record.Close()
}

var errInjected = errors.New("injected failure")
