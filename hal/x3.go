package hal

import (
	"errors"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// X3SPIDevice is the spidev node wired to the 40-pin header on Sunrise X3
// boards.
const X3SPIDevice = "/dev/spidev2.0"

// x3Bus drives the panel from a Sunrise X3 board: GPIO through periph.io and
// SPI through the kernel spidev driver, which asserts chip-select itself.
type x3Bus struct {
	lines   *lineSet
	openSPI func() (spi.PortCloser, error)
	log     logrus.FieldLogger

	port spi.PortCloser
	conn spi.Conn

	gpioReady bool
}

func newX3Bus(lines *lineSet, openSPI func() (spi.PortCloser, error), log logrus.FieldLogger) *x3Bus {
	return &x3Bus{lines: lines, openSPI: openSPI, log: log}
}

func (b *x3Bus) String() string { return "x3" }

func (b *x3Bus) Pins() Pins { return b.lines.pins }

func (b *x3Bus) ChipSelect() ChipSelectMode { return ChipSelectHardware }

func (b *x3Bus) DigitalWrite(pin int, l gpio.Level) error {
	return b.lines.write(pin, l)
}

func (b *x3Bus) DigitalRead(pin int) (gpio.Level, error) {
	return b.lines.read(pin)
}

func (b *x3Bus) DelayMs(ms int) { delayMs(ms) }

func (b *x3Bus) SPIWrite(data []byte) error {
	if b.conn == nil {
		return fault("spi write", -1, errors.New("spi not open"))
	}
	return fault("spi write", -1, b.conn.Tx(data, nil))
}

func (b *x3Bus) ModuleInit() error {
	if b.gpioReady && b.conn != nil {
		return nil
	}
	if !b.gpioReady {
		if err := b.lines.configure(); err != nil {
			return err
		}
		b.gpioReady = true
	}
	if b.conn == nil {
		port, err := b.openSPI()
		if err != nil {
			return fault("spi open", -1, err)
		}
		c, err := port.Connect(SPIClock, SPIMode, 8)
		if err != nil {
			_ = port.Close()
			return fault("spi open", -1, err)
		}
		b.port, b.conn = port, c
	}
	return b.lines.write(b.lines.pins.PWR, gpio.High)
}

func (b *x3Bus) ModuleExit() error {
	b.log.Debug("spi end")
	var spiErr error
	if b.port != nil {
		spiErr = fault("spi close", -1, b.port.Close())
		b.port, b.conn = nil, nil
	}
	lineErr := b.lines.powerDown()
	b.log.Debug("close 5V, module enters 0 power consumption")
	b.gpioReady = false
	return errors.Join(spiErr, lineErr)
}
