package hal

import (
	"errors"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
)

// JetsonPinNames maps the BCM numbers of DefaultPins to the sysfs GPIO lines
// behind the same header positions on a Jetson Nano.
var JetsonPinNames = map[int]string{
	17: "GPIO50", // header 11
	25: "GPIO13", // header 22
	8:  "GPIO19", // header 24
	24: "GPIO15", // header 18
	18: "GPIO79", // header 12
}

// jetsonBus drives the panel from a Jetson board. GPIO goes through the
// periph.io sysfs driver; SPI is bit-banged by a shared object, one byte per
// transfer call, with chip-select emulated on a GPIO line.
type jetsonBus struct {
	lines *lineSet
	spi   *softSPI
	log   logrus.FieldLogger

	gpioReady bool
	spiReady  bool
}

func newJetsonBus(lines *lineSet, spi *softSPI, log logrus.FieldLogger) *jetsonBus {
	return &jetsonBus{lines: lines, spi: spi, log: log}
}

func (b *jetsonBus) String() string { return "jetson(" + b.spi.path + ")" }

func (b *jetsonBus) Pins() Pins { return b.lines.pins }

func (b *jetsonBus) ChipSelect() ChipSelectMode { return ChipSelectGPIO }

func (b *jetsonBus) DigitalWrite(pin int, l gpio.Level) error {
	return b.lines.write(pin, l)
}

func (b *jetsonBus) DigitalRead(pin int) (gpio.Level, error) {
	return b.lines.read(pin)
}

func (b *jetsonBus) DelayMs(ms int) { delayMs(ms) }

func (b *jetsonBus) SPIWrite(data []byte) error {
	if !b.spiReady {
		return fault("spi write", -1, errors.New("soft spi not started"))
	}
	return b.lines.framed(func() error {
		for _, c := range data {
			b.spi.transfer(c)
		}
		return nil
	})
}

func (b *jetsonBus) ModuleInit() error {
	if b.gpioReady && b.spiReady {
		return nil
	}
	if !b.gpioReady {
		if err := b.lines.configure(); err != nil {
			return err
		}
		b.gpioReady = true
	}
	if !b.spiReady {
		b.spi.begin()
		b.spiReady = true
	}
	return b.lines.write(b.lines.pins.PWR, gpio.High)
}

func (b *jetsonBus) ModuleExit() error {
	b.log.Debug("spi end")
	if b.spiReady {
		b.spi.end()
		b.spiReady = false
	}
	err := b.lines.powerDown()
	b.log.Debug("close 5V, module enters 0 power consumption")
	b.gpioReady = false
	return err
}

func (b *jetsonBus) release() error {
	if b.spi.close == nil {
		return nil
	}
	err := b.spi.close()
	b.spi.close = nil
	return err
}
