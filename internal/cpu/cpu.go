// Package cpu implements the Sharp LR35902 instruction interpreter:
// interrupt service, HALT, and decode-then-execute, driven by the
// tables in package decode.
package cpu

import (
	"fmt"

	"github.com/dmgcore/gbcore/internal/bus"
	"github.com/dmgcore/gbcore/internal/decode"
)

// CPU holds the eight 8-bit registers (viewed as AF/BC/DE/HL pairs),
// SP, PC, and the interrupt-enable flag, plus the bus it executes against.
type CPU struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte

	SP uint16
	PC uint16

	IME       bool
	halted    bool
	eiPending bool

	bus *bus.Bus
}

// New creates a CPU wired to b, starting from an all-zero register file.
// Call ResetPostBoot to reach the documented post-boot-ROM state.
func New(b *bus.Bus) *CPU {
	return &CPU{bus: b}
}

func (c *CPU) SetPC(pc uint16) { c.PC = pc }
func (c *CPU) Bus() *bus.Bus   { return c.bus }

// ResetPostBoot sets registers to the documented DMG post-boot state.
func (c *CPU) ResetPostBoot() {
	c.A, c.F = 0x01, 0xB0
	c.B, c.C = 0x00, 0x13
	c.D, c.E = 0x00, 0xD8
	c.H, c.L = 0x01, 0x4D
	c.PC = 0x0100
	c.SP = 0xFFFE
	c.IME = false
	c.halted = false
	c.eiPending = false
}

const (
	flagZ byte = 0x80
	flagN byte = 0x40
	flagH byte = 0x20
	flagC byte = 0x10
)

func (c *CPU) flag(mask byte) bool { return c.F&mask != 0 }

func (c *CPU) setZNHC(z, n, h, cy bool) {
	var f byte
	if z {
		f |= flagZ
	}
	if n {
		f |= flagN
	}
	if h {
		f |= flagH
	}
	if cy {
		f |= flagC
	}
	c.F = f
}

func (c *CPU) add8(a, b byte) (res byte, z, n, h, cy bool) {
	r := uint16(a) + uint16(b)
	res = byte(r)
	return res, res == 0, false, (a&0x0F)+(b&0x0F) > 0x0F, r > 0xFF
}

func (c *CPU) adc8(a, b byte, cin bool) (res byte, z, n, h, cy bool) {
	ci := byte(0)
	if cin {
		ci = 1
	}
	r := uint16(a) + uint16(b) + uint16(ci)
	res = byte(r)
	return res, res == 0, false, (a&0x0F)+(b&0x0F)+ci > 0x0F, r > 0xFF
}

func (c *CPU) sub8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a - b
	return res, res == 0, true, (b & 0x0F) > (a & 0x0F), b > a
}

func (c *CPU) sbc8(a, b byte, cin bool) (res byte, z, n, h, cy bool) {
	ci := byte(0)
	if cin {
		ci = 1
	}
	res = a - b - ci
	return res, res == 0, true, (a & 0x0F) < (b&0x0F)+ci, uint16(a) < uint16(b)+uint16(ci)
}

func (c *CPU) and8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a & b
	return res, res == 0, false, true, false
}

func (c *CPU) or8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a | b
	return res, res == 0, false, false, false
}

func (c *CPU) xor8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a ^ b
	return res, res == 0, false, false, false
}

func (c *CPU) read8(addr uint16) byte     { return c.bus.ReadByte(addr) }
func (c *CPU) write8(addr uint16, v byte) { c.bus.WriteByte(addr, v) }

func (c *CPU) fetch8() byte {
	v := c.read8(c.PC)
	c.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return lo | hi<<8
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := uint16(c.read8(addr))
	hi := uint16(c.read8(addr + 1))
	return lo | hi<<8
}

func (c *CPU) write16(addr uint16, v uint16) {
	c.write8(addr, byte(v))
	c.write8(addr+1, byte(v>>8))
}

func (c *CPU) getAF() uint16  { return uint16(c.A)<<8 | uint16(c.F) }
func (c *CPU) setAF(v uint16) { c.A = byte(v >> 8); c.F = byte(v) & 0xF0 }
func (c *CPU) getBC() uint16  { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) setBC(v uint16) { c.B = byte(v >> 8); c.C = byte(v) }
func (c *CPU) getDE() uint16  { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) setDE(v uint16) { c.D = byte(v >> 8); c.E = byte(v) }
func (c *CPU) getHL() uint16  { return uint16(c.H)<<8 | uint16(c.L) }
func (c *CPU) setHL(v uint16) { c.H = byte(v >> 8); c.L = byte(v) }

func (c *CPU) push16(v uint16) {
	c.SP -= 2
	c.write16(c.SP, v)
}

func (c *CPU) pop16() uint16 {
	v := c.read16(c.SP)
	c.SP += 2
	return v
}

// getReg8/setReg8 resolve a decode.Reg8 operand, reading/writing (HL)
// through the bus for the indirect form.
func (c *CPU) getReg8(r decode.Reg8) byte {
	switch r {
	case decode.RegB:
		return c.B
	case decode.RegC:
		return c.C
	case decode.RegD:
		return c.D
	case decode.RegE:
		return c.E
	case decode.RegH:
		return c.H
	case decode.RegL:
		return c.L
	case decode.RegHLInd:
		return c.read8(c.getHL())
	default:
		return c.A
	}
}

func (c *CPU) setReg8(r decode.Reg8, v byte) {
	switch r {
	case decode.RegB:
		c.B = v
	case decode.RegC:
		c.C = v
	case decode.RegD:
		c.D = v
	case decode.RegE:
		c.E = v
	case decode.RegH:
		c.H = v
	case decode.RegL:
		c.L = v
	case decode.RegHLInd:
		c.write8(c.getHL(), v)
	default:
		c.A = v
	}
}

func (c *CPU) getReg16(r decode.Reg16) uint16 {
	switch r {
	case decode.RegBC:
		return c.getBC()
	case decode.RegDE:
		return c.getDE()
	case decode.RegHL, decode.RegHLIncr, decode.RegHLDecr:
		return c.getHL()
	case decode.RegSP:
		return c.SP
	default:
		return c.getAF()
	}
}

func (c *CPU) setReg16(r decode.Reg16, v uint16) {
	switch r {
	case decode.RegBC:
		c.setBC(v)
	case decode.RegDE:
		c.setDE(v)
	case decode.RegHL, decode.RegHLIncr, decode.RegHLDecr:
		c.setHL(v)
	case decode.RegSP:
		c.SP = v
	default:
		c.setAF(v)
	}
}

// operand8 reads the byte value of any decode.Operand, fetching
// immediates and applying HL+/HL- post-update for the indirect pair forms.
func (c *CPU) operand8(op decode.Operand) byte {
	switch op.Kind {
	case decode.OperandImm8:
		return c.fetch8()
	case decode.OperandReg8:
		return c.getReg8(op.R8)
	case decode.OperandReg16:
		v := c.read8(c.getReg16(op.R16))
		c.applyHLStep(op.R16)
		return v
	case decode.OperandImm16:
		return c.read8(c.fetch16())
	default:
		panic("operand8: unhandled operand kind")
	}
}

func (c *CPU) applyHLStep(r decode.Reg16) {
	switch r {
	case decode.RegHLIncr:
		c.setHL(c.getHL() + 1)
	case decode.RegHLDecr:
		c.setHL(c.getHL() - 1)
	}
}

func (c *CPU) checkCond(cond decode.Condition) bool {
	switch cond {
	case decode.CondNZ:
		return !c.flag(flagZ)
	case decode.CondZ:
		return c.flag(flagZ)
	case decode.CondNC:
		return !c.flag(flagC)
	case decode.CondC:
		return c.flag(flagC)
	default:
		return true
	}
}

// interruptVector returns 0x40+8*bit for the lowest-numbered set bit of
// (IF & IE), and ok=false if none pending.
func interruptVector(ifIe byte) (bit uint, ok bool) {
	for b := uint(0); b < 5; b++ {
		if ifIe&(1<<b) != 0 {
			return b, true
		}
	}
	return 0, false
}

// Step executes exactly one interrupt-service, halt-tick, or decoded
// instruction, and returns the clock cycles charged.
func (c *CPU) Step() int {
	if c.eiPending {
		c.eiPending = false
		c.IME = true
	}

	pending := c.bus.GetIF() & c.bus.GetIE() & 0x1F
	if c.IME && pending != 0 {
		bit, ok := interruptVector(pending)
		if !ok {
			panic("cpu: pending interrupt mask nonzero but no bit found")
		}
		c.IME = false
		c.halted = false
		c.bus.SetIF(c.bus.GetIF() &^ (1 << bit))
		c.push16(c.PC)
		c.PC = 0x40 + 8*uint16(bit)
		return 20
	}

	if c.halted {
		if pending != 0 {
			c.halted = false
		}
		return 4
	}

	op := c.fetch8()
	var inst decode.Instruction
	if op == 0xCB {
		inst = decode.DecodeCB(c.fetch8())
	} else {
		var ok bool
		inst, ok = decode.Decode(op)
		if !ok {
			panic(fmt.Sprintf("cpu: undefined opcode %#02x at PC %#04x", op, c.PC-1))
		}
	}
	return c.execute(inst)
}
