package hal

import (
	"context"
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
)

func TestBusyPolarity(t *testing.T) {
	tests := []struct {
		polarity BusyPolarity
		level    gpio.Level
		busy     bool
	}{
		{BusyActiveLow, gpio.Low, true},
		{BusyActiveLow, gpio.High, false},
		{BusyActiveHigh, gpio.High, true},
		{BusyActiveHigh, gpio.Low, false},
	}
	for _, tt := range tests {
		if got := tt.polarity.Busy(tt.level); got != tt.busy {
			t.Errorf("%s.Busy(%s) = %v, want %v", tt.polarity, tt.level, got, tt.busy)
		}
	}
}

func TestWaitIdle(t *testing.T) {
	tests := []struct {
		name     string
		polarity BusyPolarity
		reads    []gpio.Level
	}{
		{"active-low already idle", BusyActiveLow, []gpio.Level{gpio.High}},
		{"active-low releases", BusyActiveLow, []gpio.Level{gpio.Low, gpio.Low, gpio.High}},
		{"active-high releases", BusyActiveHigh, []gpio.Level{gpio.High, gpio.Low}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &countingBus{reads: tt.reads}
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			if err := WaitIdle(ctx, b, DefaultPins.BUSY, tt.polarity, time.Millisecond); err != nil {
				t.Fatalf("WaitIdle() = %v", err)
			}
			if len(b.reads) != 1 {
				t.Errorf("%d scripted reads left unconsumed", len(b.reads)-1)
			}
		})
	}
}

func TestWaitIdleTimeout(t *testing.T) {
	for _, polarity := range []BusyPolarity{BusyActiveLow, BusyActiveHigh} {
		stuck := gpio.Low
		if polarity == BusyActiveHigh {
			stuck = gpio.High
		}
		b := &countingBus{reads: []gpio.Level{stuck}}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)

		err := WaitIdle(ctx, b, DefaultPins.BUSY, polarity, 5*time.Millisecond)
		cancel()
		if !errors.Is(err, ErrBusyTimeout) {
			t.Errorf("%s: WaitIdle() = %v, want ErrBusyTimeout", polarity, err)
		}
	}
}

func TestWaitIdleReadFault(t *testing.T) {
	fault := &HardwareFault{Op: "gpio read", Pin: 24, Err: errInjected}
	b := &countingBus{readErr: fault}

	err := WaitIdle(context.Background(), b, DefaultPins.BUSY, BusyActiveLow, 0)
	if !IsHardwareFault(err) || !errors.Is(err, errInjected) {
		t.Errorf("WaitIdle() = %v, want hardware fault", err)
	}
}
