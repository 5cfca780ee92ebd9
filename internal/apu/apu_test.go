package apu

import (
	"testing"

	"github.com/dmgcore/gbcore/internal/bus"
)

func TestRegisterReadsBackLastWrite(t *testing.T) {
	b := bus.New()
	New(b)
	b.WriteByte(0xFF26, 0xF1)
	if got := b.ReadByte(0xFF26); got != 0xF1 {
		t.Fatalf("NR52 = %#02x, want 0xF1", got)
	}
}

func TestWaveRAMIsIndependentlyAddressable(t *testing.T) {
	b := bus.New()
	New(b)
	b.WriteByte(0xFF30, 0xAB)
	b.WriteByte(0xFF3F, 0xCD)
	if got := b.ReadByte(0xFF30); got != 0xAB {
		t.Fatalf("wave[0] = %#02x, want 0xAB", got)
	}
	if got := b.ReadByte(0xFF3F); got != 0xCD {
		t.Fatalf("wave[15] = %#02x, want 0xCD", got)
	}
}
