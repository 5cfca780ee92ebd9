package timer

import (
	"testing"

	"github.com/dmgcore/gbcore/internal/bus"
)

func TestDIVUpperByteAndReset(t *testing.T) {
	b := bus.New()
	tm := New(b)
	tm.Step(b, 256*3)
	if got := b.ReadByte(regDIV); got != 3 {
		t.Fatalf("DIV = %d, want 3", got)
	}
	b.WriteByte(regDIV, 0xFF) // any write clears it
	if got := b.ReadByte(regDIV); got != 0 {
		t.Fatalf("DIV after write = %d, want 0", got)
	}
}

func TestTIMAOverflowTriggersExactlyOneInterrupt(t *testing.T) {
	b := bus.New()
	tm := New(b)
	const tma = 0x10
	b.WriteByte(regTAC, 0b101) // enable, divisor 16
	b.WriteByte(regTMA, tma)

	cycles := (0xFF - tma + 1) * 16
	tm.Step(b, cycles)

	if got := b.GetIF(); got&0x04 == 0 {
		t.Fatalf("IF = %#02x, timer bit not set", got)
	}
	if got := b.ReadByte(regTIMA); got != tma {
		t.Fatalf("TIMA after overflow = %#02x, want reload value %#02x", got, tma)
	}

	b.SetIF(b.GetIF() &^ 0x04)
	tm.Step(b, 16)
	if got := b.GetIF(); got&0x04 != 0 {
		t.Fatalf("unexpected second interrupt after a single further tick")
	}
}

func TestTimerDisabledDoesNotAdvanceTIMA(t *testing.T) {
	b := bus.New()
	tm := New(b)
	b.WriteByte(regTAC, 0b000) // disabled
	tm.Step(b, 100000)
	if got := b.ReadByte(regTIMA); got != 0 {
		t.Fatalf("TIMA = %d, want 0 while disabled", got)
	}
}
