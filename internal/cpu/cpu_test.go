package cpu

import (
	"testing"

	"github.com/dmgcore/gbcore/internal/bus"
	"github.com/dmgcore/gbcore/internal/decode"
)

func load(b *bus.Bus, addr uint16, bytes ...byte) {
	for i, v := range bytes {
		b.WriteByte(addr+uint16(i), v)
	}
}

func TestNOPAdvancesPCAndCharges4Clocks(t *testing.T) {
	b := bus.New()
	c := New(b)
	c.ResetPostBoot()
	load(b, 0x0100, 0x00)

	before := *c
	cycles := c.Step()

	if cycles != 4 {
		t.Fatalf("cycles = %d, want 4", cycles)
	}
	if c.PC != 0x0101 {
		t.Fatalf("PC = %#04x, want 0x0101", c.PC)
	}
	before.PC = c.PC
	if *c != before {
		t.Fatalf("state changed beyond PC: got %+v, want %+v", *c, before)
	}
}

func TestLDThenXORZeroesAAndSetsZeroFlag(t *testing.T) {
	b := bus.New()
	c := New(b)
	c.ResetPostBoot()
	load(b, 0x0100, 0x3E, 0x42, 0xAF)

	c.Step() // LD A,0x42
	c.Step() // XOR A,A

	if c.A != 0 {
		t.Fatalf("A = %#02x, want 0", c.A)
	}
	if c.F != 0x80 {
		t.Fatalf("F = %#02x, want 0x80 (Z only)", c.F)
	}
	if c.PC != 0x0103 {
		t.Fatalf("PC = %#04x, want 0x0103", c.PC)
	}
}

func Test16BitLoadThenIncrement(t *testing.T) {
	b := bus.New()
	c := New(b)
	c.ResetPostBoot()
	load(b, 0x0100, 0x01, 0x34, 0x12, 0x03)

	c.Step() // LD BC,0x1234
	fBefore := c.F
	c.Step() // INC BC

	if c.getBC() != 0x1235 {
		t.Fatalf("BC = %#04x, want 0x1235", c.getBC())
	}
	if c.F != fBefore {
		t.Fatalf("F changed by INC BC: got %#02x, want %#02x", c.F, fBefore)
	}
}

func TestADDWithHalfCarry(t *testing.T) {
	b := bus.New()
	c := New(b)
	c.ResetPostBoot()
	c.A = 0x0F
	load(b, 0x0100, 0xC6, 0x01)

	c.Step()

	if c.A != 0x10 {
		t.Fatalf("A = %#02x, want 0x10", c.A)
	}
	if c.flag(flagZ) || c.flag(flagN) || !c.flag(flagH) || c.flag(flagC) {
		t.Fatalf("F = %#08b, want only H set", c.F)
	}
}

func TestDAAAfterBCDAdd(t *testing.T) {
	b := bus.New()
	c := New(b)
	c.ResetPostBoot()
	c.A = 0x45
	load(b, 0x0100, 0xC6, 0x38, 0x27)

	c.Step() // ADD A,0x38
	c.Step() // DAA

	if c.A != 0x83 {
		t.Fatalf("A = %#02x, want 0x83", c.A)
	}
	if c.flag(flagZ) || c.flag(flagN) || c.flag(flagH) || c.flag(flagC) {
		t.Fatalf("F = %#08b, want all clear", c.F)
	}
}

func TestCallThenRetRoundTrip(t *testing.T) {
	b := bus.New()
	c := New(b)
	c.ResetPostBoot()
	c.SP = 0xFFFE
	c.PC = 0x0100
	load(b, 0x0100, 0xCD, 0x05, 0x01)
	load(b, 0x0105, 0xC9)

	c.Step() // CALL 0x0105
	if c.PC != 0x0105 {
		t.Fatalf("PC after CALL = %#04x, want 0x0105", c.PC)
	}
	if got := b.ReadByte(0xFFFC); got != 0x03 {
		t.Fatalf("[0xFFFC] = %#02x, want 0x03", got)
	}
	if got := b.ReadByte(0xFFFD); got != 0x01 {
		t.Fatalf("[0xFFFD] = %#02x, want 0x01", got)
	}
	if c.SP != 0xFFFC {
		t.Fatalf("SP after CALL = %#04x, want 0xFFFC", c.SP)
	}

	c.Step() // RET
	if c.PC != 0x0103 {
		t.Fatalf("PC after RET = %#04x, want 0x0103", c.PC)
	}
	if c.SP != 0xFFFE {
		t.Fatalf("SP after RET = %#04x, want 0xFFFE", c.SP)
	}
}

func TestInterruptDispatch(t *testing.T) {
	b := bus.New()
	c := New(b)
	c.ResetPostBoot()
	c.IME = true
	b.WriteByte(0xFFFF, 0x01)
	b.WriteByte(0xFF0F, 0x01)
	c.PC = 0x1234
	c.SP = 0xFFFE

	cycles := c.Step()

	if cycles != 20 {
		t.Fatalf("cycles = %d, want 20", cycles)
	}
	if c.PC != 0x0040 {
		t.Fatalf("PC = %#04x, want 0x0040", c.PC)
	}
	if got := b.ReadByte(0xFFFC); got != 0x34 {
		t.Fatalf("[0xFFFC] = %#02x, want 0x34", got)
	}
	if got := b.ReadByte(0xFFFD); got != 0x12 {
		t.Fatalf("[0xFFFD] = %#02x, want 0x12", got)
	}
	if c.SP != 0xFFFC {
		t.Fatalf("SP = %#04x, want 0xFFFC", c.SP)
	}
	if b.GetIF()&0x01 != 0 {
		t.Fatalf("IF bit 0 still set after dispatch")
	}
	if c.IME {
		t.Fatalf("IME still set after dispatch")
	}
}

func TestSetAFMasksLowNibble(t *testing.T) {
	b := bus.New()
	c := New(b)
	for v := 0; v <= 0xFFFF; v += 4099 {
		c.setAF(uint16(v))
		if got, want := c.getAF(), uint16(v)&0xFFF0; got != want {
			t.Fatalf("setAF(%#04x); getAF() = %#04x, want %#04x", v, got, want)
		}
	}
}

func TestPushPopRoundTripsEveryPair(t *testing.T) {
	b := bus.New()
	c := New(b)
	c.SP = 0xFFFE
	pairs := []struct {
		get func() uint16
		set func(uint16)
	}{
		{c.getAF, c.setAF},
		{c.getBC, c.setBC},
		{c.getDE, c.setDE},
		{c.getHL, c.setHL},
	}
	for _, p := range pairs {
		p.set(0xBEEF)
		want := p.get()
		c.push16(want)
		p.set(0)
		got := c.pop16()
		if got != want {
			t.Fatalf("push/pop round trip: got %#04x, want %#04x", got, want)
		}
	}
}

func TestHaltWakesOnPendingInterruptWithoutServicingWhenIMEClear(t *testing.T) {
	b := bus.New()
	c := New(b)
	c.ResetPostBoot()
	c.halted = true
	c.IME = false
	b.WriteByte(0xFFFF, 0x01)
	b.WriteByte(0xFF0F, 0x01)

	cycles := c.Step()
	if cycles != 4 {
		t.Fatalf("cycles = %d, want 4", cycles)
	}
	if c.halted {
		t.Fatalf("CPU still halted after (IF & IE) != 0")
	}
}

func TestArithmeticFlagsMatchTableExhaustively(t *testing.T) {
	b := bus.New()
	c := New(b)
	for a := 0; a < 256; a++ {
		for x := 0; x < 256; x++ {
			res, z, n, h, cy := c.add8(byte(a), byte(x))
			sum := a + x
			if res != byte(sum) || z != (byte(sum) == 0) || n ||
				h != ((a&0xF)+(x&0xF) > 0xF) || cy != (sum > 0xFF) {
				t.Fatalf("ADD %#02x+%#02x: res=%#02x z=%t h=%t c=%t", a, x, res, z, h, cy)
			}

			res, z, n, h, cy = c.sub8(byte(a), byte(x))
			diff := byte(a - x)
			if res != diff || z != (diff == 0) || !n ||
				h != ((x & 0xF) > (a & 0xF)) || cy != (x > a) {
				t.Fatalf("SUB %#02x-%#02x: res=%#02x z=%t h=%t c=%t", a, x, res, z, h, cy)
			}

			for ci := 0; ci < 2; ci++ {
				res, z, n, h, cy = c.adc8(byte(a), byte(x), ci == 1)
				s := a + x + ci
				if res != byte(s) || z != (byte(s) == 0) || n ||
					h != ((a&0xF)+(x&0xF)+ci > 0xF) || cy != (s > 0xFF) {
					t.Fatalf("ADC %#02x+%#02x+%d: res=%#02x z=%t h=%t c=%t", a, x, ci, res, z, h, cy)
				}

				res, z, n, h, cy = c.sbc8(byte(a), byte(x), ci == 1)
				d := byte(a - x - ci)
				if res != d || z != (d == 0) || !n ||
					h != ((a & 0xF) < (x&0xF)+ci) || cy != (a < x+ci) {
					t.Fatalf("SBC %#02x-%#02x-%d: res=%#02x z=%t h=%t c=%t", a, x, ci, res, z, h, cy)
				}
			}
		}
	}
}

func TestCBRotatesRoundTripToInitialByte(t *testing.T) {
	// RLC/RRC are 8-bit rotations; RL/RR rotate through carry, forming a
	// 9-bit ring that closes after 9 applications. SWAP is its own inverse.
	cases := []struct {
		name string
		cb   byte
		n    int
	}{
		{"RLC B x8", 0x00, 8},
		{"RRC B x8", 0x08, 8},
		{"RL B x9", 0x10, 9},
		{"RR B x9", 0x18, 9},
		{"SWAP B x2", 0x30, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := bus.New()
			c := New(b)
			c.B = 0x5B
			c.F = 0
			for i := 0; i < tc.n; i++ {
				c.execute(decode.DecodeCB(tc.cb))
			}
			if c.B != 0x5B {
				t.Fatalf("B after %d applications = %#02x, want 0x5B", tc.n, c.B)
			}
		})
	}
}

func TestCCFComplementsCarry(t *testing.T) {
	b := bus.New()
	c := New(b)
	c.ResetPostBoot()
	c.F = flagZ | flagC
	load(b, 0x0100, 0x3F, 0x3F) // CCF; CCF

	c.Step()
	if c.F != flagZ {
		t.Fatalf("F after first CCF = %#02x, want Z only", c.F)
	}
	c.Step()
	if c.F != flagZ|flagC {
		t.Fatalf("F after second CCF = %#02x, want Z and C", c.F)
	}
}

func TestSRLDrainsToZeroWithCarryTrackingLowBit(t *testing.T) {
	b := bus.New()
	c := New(b)
	c.B = 0x81
	for i := 0; i < 8; i++ {
		wantCarry := c.B&0x01 != 0
		c.execute(decode.DecodeCB(0x38)) // SRL B
		if c.flag(flagC) != wantCarry {
			t.Fatalf("SRL iteration %d: carry = %t, want %t", i, c.flag(flagC), wantCarry)
		}
	}
	if c.B != 0 {
		t.Fatalf("B after 8 SRL = %#02x, want 0", c.B)
	}
	if !c.flag(flagZ) {
		t.Fatalf("Z clear after SRL drained B to zero")
	}
}

func TestRotateLeftCircularAIsIdempotentAfterEightApplications(t *testing.T) {
	b := bus.New()
	c := New(b)
	c.ResetPostBoot()
	c.A = 0x85
	start := c.A
	for i := 0; i < 8; i++ {
		c.PC = 0x0100
		load(b, 0x0100, 0x07) // RLCA
		c.Step()
	}
	if c.A != start {
		t.Fatalf("A after 8 RLCA = %#02x, want %#02x", c.A, start)
	}
}
