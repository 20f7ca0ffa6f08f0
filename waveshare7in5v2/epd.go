// Package waveshare7in5v2 controls the Waveshare 7.5" V2 monochrome e-paper
// panel (UC8179 controller, 800x480) through a hal.Bus.
//
// Only the surface needed for partial refresh is implemented: init, fast
// init, clear, full display, one windowed partial update and deep sleep.
// The driver implements epdpartial.Panel, epdpartial.FastIniter,
// epdpartial.Clearer and epdpartial.PartialPanel, as well as the
// display.Drawer interface from periph.io.
package waveshare7in5v2

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/flavioheleno/epdpartial"
	"github.com/flavioheleno/epdpartial/hal"
	"github.com/flavioheleno/epdpartial/image1bpp"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Panel size in pixels.
const (
	Width  = 800
	Height = 480
)

// maxChunk bounds a single SPI transfer; spidev rejects larger buffers.
const maxChunk = 4096

// Opts is the configuration for the panel.
type Opts struct {
	// BusyTimeout bounds every wait on the BUSY line (default: 30s).
	BusyTimeout time.Duration
	// BusyPoll is the BUSY polling interval (default: 20ms).
	BusyPoll time.Duration
	// Logger receives driver messages (default: logrus.StandardLogger()).
	Logger logrus.FieldLogger
}

type mode int

const (
	modeOff mode = iota
	modeFull
	modePartial
)

// Dev is the device handle for the panel.
type Dev struct {
	bus  hal.Bus
	pins hal.Pins
	opts Opts
	log  logrus.FieldLogger

	geom epdpartial.PanelGeometry
	next *image1bpp.HorizontalMSB // Drawing buffer for Draw, allocated lazily

	mode   mode
	halted bool
}

// New returns a panel driver on bus. Nothing is sent until Init or InitFast.
//
// opts can be nil to use defaults.
func New(bus hal.Bus, opts *Opts) (*Dev, error) {
	if bus == nil {
		return nil, errors.New("waveshare7in5v2: nil bus")
	}
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.BusyTimeout <= 0 {
		o.BusyTimeout = 30 * time.Second
	}
	if o.BusyPoll <= 0 {
		o.BusyPoll = 20 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return &Dev{
		bus:  bus,
		pins: bus.Pins(),
		opts: o,
		log:  o.Logger.WithField("panel", "7in5v2"),
		geom: epdpartial.PanelGeometry{W: Width, H: Height},
	}, nil
}

// Init powers the module up and loads the full refresh configuration.
func (d *Dev) Init() error {
	if err := d.powerOn(); err != nil {
		return err
	}
	if err := d.sendCommands(
		cmd(0x06, 0x17, 0x17, 0x28, 0x17), // Booster soft start
		cmd(0x01, 0x07, 0x07, 0x28, 0x17), // Power setting: VGH=20V, VGL=-20V, VDH=15V, VDL=-15V
		cmd(0x04),                         // Power on
	); err != nil {
		return err
	}
	d.bus.DelayMs(100)
	if err := d.waitIdle(); err != nil {
		return err
	}
	if err := d.sendCommands(
		cmd(0x00, 0x1F),                   // Panel setting: KW mode, LUT from OTP
		cmd(0x61, 0x03, 0x20, 0x01, 0xE0), // Resolution 800x480
		cmd(0x15, 0x00),                   // Dual SPI off
		cmd(0x50, 0x10, 0x07),             // VCOM and data interval
		cmd(0x60, 0x22),                   // TCON
	); err != nil {
		return err
	}
	d.mode = modeFull
	d.halted = false
	return nil
}

// InitFast powers the module up with the shortened full refresh waveform.
func (d *Dev) InitFast() error {
	if err := d.powerOn(); err != nil {
		return err
	}
	if err := d.sendCommands(
		cmd(0x00, 0x1F),
		cmd(0x50, 0x10, 0x07),
		cmd(0x04),
	); err != nil {
		return err
	}
	d.bus.DelayMs(100)
	if err := d.waitIdle(); err != nil {
		return err
	}
	if err := d.sendCommands(
		cmd(0x06, 0x27, 0x27, 0x18, 0x17), // Enhanced drive strength
		cmd(0xE0, 0x02),                   // Cascade setting
		cmd(0xE5, 0x5A),                   // Force temperature
	); err != nil {
		return err
	}
	d.mode = modeFull
	d.halted = false
	return nil
}

// initPartial loads the partial refresh configuration.
func (d *Dev) initPartial() error {
	if err := d.powerOn(); err != nil {
		return err
	}
	if err := d.sendCommands(cmd(0x00, 0x1F), cmd(0x04)); err != nil {
		return err
	}
	d.bus.DelayMs(100)
	if err := d.waitIdle(); err != nil {
		return err
	}
	if err := d.sendCommands(cmd(0xE0, 0x02), cmd(0xE5, 0x6E)); err != nil {
		return err
	}
	d.mode = modePartial
	return nil
}

func (d *Dev) powerOn() error {
	if err := d.bus.ModuleInit(); err != nil {
		return fmt.Errorf("waveshare7in5v2: module init: %w", err)
	}
	return d.reset()
}

// reset pulses the RST line.
func (d *Dev) reset() error {
	for _, step := range []struct {
		l  gpio.Level
		ms int
	}{{gpio.High, 20}, {gpio.Low, 2}, {gpio.High, 20}} {
		if err := d.bus.DigitalWrite(d.pins.RST, step.l); err != nil {
			return err
		}
		d.bus.DelayMs(step.ms)
	}
	return nil
}

// Geometry returns the panel size.
func (d *Dev) Geometry() epdpartial.PanelGeometry {
	return d.geom
}

// Display performs a full refresh with frame. It blocks until the panel
// reports idle.
func (d *Dev) Display(frame epdpartial.PackedFrame) error {
	if err := d.ready(); err != nil {
		return err
	}
	if len(frame) != d.geom.FrameLen() {
		return errors.New("waveshare7in5v2: invalid buffer size")
	}
	if d.mode == modePartial {
		if err := d.Init(); err != nil {
			return err
		}
	}
	if err := d.sendCommand(0x10); err != nil { // Old data
		return err
	}
	if err := d.sendData(frame); err != nil {
		return err
	}
	if err := d.sendCommand(0x13); err != nil { // New data
		return err
	}
	if err := d.sendData(inverted(frame)); err != nil {
		return err
	}
	return d.refresh()
}

// Clear fills the panel with white.
func (d *Dev) Clear() error {
	if err := d.ready(); err != nil {
		return err
	}
	n := d.geom.FrameLen()
	if err := d.sendCommand(0x10); err != nil {
		return err
	}
	if err := d.sendData(fill(n, 0xFF)); err != nil {
		return err
	}
	if err := d.sendCommand(0x13); err != nil {
		return err
	}
	if err := d.sendData(fill(n, 0x00)); err != nil {
		return err
	}
	return d.refresh()
}

// PartialEntry returns the windowed partial update call. It accepts exactly
// ([]byte region, x0, y0, x1, y1 int) and rejects any other argument layout
// with epdpartial.ErrCallShapeMismatch. A window that is misaligned or
// outside the panel fails with epdpartial.ErrMisalignedRegion or
// epdpartial.ErrOutOfBounds, and a region of the wrong size with a plain
// error. Nothing is sent in either case.
func (d *Dev) PartialEntry() (epdpartial.PartialFunc, bool) {
	return d.displayPartial, true
}

func (d *Dev) displayPartial(args ...any) error {
	if len(args) != 5 {
		return epdpartial.MismatchError(args...)
	}
	data, ok := args[0].([]byte)
	if !ok {
		return epdpartial.MismatchError(args...)
	}
	var c [4]int
	for i := range c {
		if c[i], ok = args[i+1].(int); !ok {
			return epdpartial.MismatchError(args...)
		}
	}
	r := epdpartial.Rect{X0: c[0], Y0: c[1], X1: c[2], Y1: c[3]}
	if err := r.Validate(d.geom); err != nil {
		return fmt.Errorf("waveshare7in5v2: partial window: %w", err)
	}
	if len(data) != r.RegionLen() {
		return fmt.Errorf("waveshare7in5v2: partial window %v needs %d bytes, got %d", r, r.RegionLen(), len(data))
	}
	return d.writeWindow(data, r)
}

// writeWindow sends data for the aligned window r and runs a partial refresh.
func (d *Dev) writeWindow(data []byte, r epdpartial.Rect) error {
	if err := d.ready(); err != nil {
		return err
	}
	if d.mode != modePartial {
		if err := d.initPartial(); err != nil {
			return err
		}
	}
	xe, ye := r.X1-1, r.Y1-1
	if err := d.sendCommands(
		cmd(0x50, 0xA9, 0x07), // VCOM and data interval for partial mode
		cmd(0x91),             // Enter partial mode
		cmd(0x90, // Partial window
			byte(r.X0>>8), byte(r.X0),
			byte(xe>>8), byte(xe),
			byte(r.Y0>>8), byte(r.Y0),
			byte(ye>>8), byte(ye),
			0x01),
		cmd(0x13),
	); err != nil {
		return err
	}
	if err := d.sendData(inverted(data)); err != nil {
		return err
	}
	return d.refresh()
}

// Sleep powers the panel off, puts the controller into deep sleep and shuts
// the module down. The module is shut down even if a command fails.
func (d *Dev) Sleep() error {
	var err error
	if d.mode != modeOff {
		err = d.deepSleep()
	}
	d.mode = modeOff
	d.halted = true
	return errors.Join(err, d.bus.ModuleExit())
}

func (d *Dev) deepSleep() error {
	if err := d.sendCommands(cmd(0x50, 0xF7), cmd(0x02)); err != nil { // Power off
		return err
	}
	if err := d.waitIdle(); err != nil {
		return err
	}
	if err := d.sendCommands(cmd(0x07, 0xA5)); err != nil { // Deep sleep
		return err
	}
	d.bus.DelayMs(2000)
	return nil
}

// refresh triggers the display refresh and waits for it to complete.
func (d *Dev) refresh() error {
	if err := d.sendCommand(0x12); err != nil {
		return err
	}
	d.bus.DelayMs(100)
	return d.waitIdle()
}

// waitIdle asks the controller for its status and waits for BUSY to be
// released. BUSY is low while the panel is busy.
func (d *Dev) waitIdle() error {
	ctx, cancel := context.WithTimeout(context.Background(), d.opts.BusyTimeout)
	defer cancel()
	d.log.Debug("waiting for busy release")
	if err := d.sendCommand(0x71); err != nil { // Get status
		return err
	}
	if err := hal.WaitIdle(ctx, d.bus, d.pins.BUSY, hal.BusyActiveLow, d.opts.BusyPoll); err != nil {
		return fmt.Errorf("waveshare7in5v2: %w", err)
	}
	d.bus.DelayMs(20)
	d.log.Debug("busy released")
	return nil
}

func (d *Dev) ready() error {
	if d.halted {
		return errors.New("waveshare7in5v2: halted")
	}
	if d.mode == modeOff {
		return errors.New("waveshare7in5v2: not initialized")
	}
	return nil
}

type command struct {
	op   byte
	data []byte
}

func cmd(op byte, data ...byte) command {
	return command{op: op, data: data}
}

// sendCommands sends each command followed by its data bytes.
func (d *Dev) sendCommands(cmds ...command) error {
	for _, c := range cmds {
		if err := d.sendCommand(c.op); err != nil {
			return err
		}
		if len(c.data) > 0 {
			if err := d.sendData(c.data); err != nil {
				return err
			}
		}
	}
	return nil
}

// sendCommand sends a single command byte.
func (d *Dev) sendCommand(op byte) error {
	if err := d.bus.DigitalWrite(d.pins.DC, gpio.Low); err != nil {
		return err
	}
	return d.bus.SPIWrite([]byte{op})
}

// sendData sends data bytes in chunks of at most maxChunk.
func (d *Dev) sendData(data []byte) error {
	if err := d.bus.DigitalWrite(d.pins.DC, gpio.High); err != nil {
		return err
	}
	for len(data) > 0 {
		n := min(len(data), maxChunk)
		if err := d.bus.SPIWrite(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

func inverted(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[i] = ^v
	}
	return out
}

func fill(n int, v byte) []byte {
	out := make([]byte, n)
	if v != 0 {
		for i := range out {
			out[i] = v
		}
	}
	return out
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.geom.Bounds()
}

// Write displays raw pixel data in the packed frame layout. The data must be
// exactly Width*Height/8 bytes.
func (d *Dev) Write(pixels []byte) (int, error) {
	if err := d.Display(pixels); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Draw draws src onto the display and runs a full refresh.
// The src image is positioned at src point sp within dst.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if err := d.ready(); err != nil {
		return err
	}

	// Clip to display bounds
	dst = dst.Intersect(d.Bounds())
	if dst.Empty() {
		return nil
	}

	// Fast path: the source is already a full packed frame
	if srcImg, ok := src.(*image1bpp.HorizontalMSB); ok {
		if dst == d.Bounds() && sp == (image.Point{}) && srcImg.Rect == d.Bounds() {
			return d.Display(srcImg.Pix)
		}
	}

	if d.next == nil {
		d.next = image1bpp.NewHorizontalMSB(d.Bounds())
	}
	draw.Draw(d.next, dst, src, sp, draw.Src)
	return d.Display(d.next.Pix)
}

// Halt puts the panel to sleep. Init must be called before further use.
func (d *Dev) Halt() error {
	return d.Sleep()
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("waveshare7in5v2.Dev{%dx%d, %s}", Width, Height, d.bus)
}

var (
	_ display.Drawer          = &Dev{}
	_ epdpartial.Panel        = &Dev{}
	_ epdpartial.FastIniter   = &Dev{}
	_ epdpartial.Clearer      = &Dev{}
	_ epdpartial.PartialPanel = &Dev{}
)
