package hal

import (
	"testing"
	"testing/fstest"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		fs   fstest.MapFS
		want Platform
	}{
		{
			name: "cpuinfo",
			fs: fstest.MapFS{
				"proc/cpuinfo": {Data: []byte("Hardware\t: BCM2835\nModel\t\t: Raspberry Pi 4 Model B Rev 1.4\n")},
			},
			want: PlatformRPi,
		},
		{
			name: "device tree model",
			fs: fstest.MapFS{
				"proc/cpuinfo":           {Data: []byte("processor\t: 0\n")},
				"proc/device-tree/model": {Data: []byte("Raspberry Pi Zero 2 W Rev 1.0\x00")},
			},
			want: PlatformRPi,
		},
		{
			name: "x3 gpio driver",
			fs: fstest.MapFS{
				"proc/cpuinfo": {Data: []byte("processor\t: 0\n")},
				"sys/bus/platform/drivers/gpio-x3/a6003000.gpio": {Data: nil},
			},
			want: PlatformX3,
		},
		{
			name: "fallback",
			fs: fstest.MapFS{
				"proc/cpuinfo": {Data: []byte("processor\t: 0\nmodel name\t: ARMv8 Processor rev 1 (v8l)\n")},
			},
			want: PlatformJetson,
		},
		{
			name: "empty root",
			fs:   fstest.MapFS{},
			want: PlatformJetson,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.fs); got != tt.want {
				t.Errorf("Detect() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParsePlatform(t *testing.T) {
	for _, p := range []Platform{PlatformAuto, PlatformRPi, PlatformJetson, PlatformX3} {
		got, ok := ParsePlatform(p.String())
		if !ok || got != p {
			t.Errorf("ParsePlatform(%q) = %s, %v", p.String(), got, ok)
		}
	}
	if _, ok := ParsePlatform("beaglebone"); ok {
		t.Error("ParsePlatform accepted an unknown board")
	}
}
