// Package cart implements the MBC1 cartridge: fixed bank 0, a switchable
// ROM bank selected by a 5-bit register, and a 2-bit-banked external RAM.
package cart

import "github.com/dmgcore/gbcore/internal/bus"

// MBC1 is a bus.Handler for 0x0000-0x7FFF (ROM + banking registers) and
// 0xA000-0xBFFF (external RAM). R0/R3 are stored but have no read-side
// effect in this core, per the simplified banking model.
type MBC1 struct {
	rom []byte
	ram []byte

	ramEnable bool // R0, semantic only
	romBank   byte // R1 low 5 bits, 0 remapped to 1
	ramBank   byte // R2 low 2 bits
	mode      byte // R3, stored and unused
}

// NewMBC1 constructs an MBC1 cartridge and registers it on b. ram may be
// nil or empty for cartridges with no external RAM.
func NewMBC1(b *bus.Bus, rom, ram []byte) *MBC1 {
	m := &MBC1{rom: rom, ram: ram, romBank: 1}
	b.AddHandler(0x0000, 0x7FFF, m)
	b.AddHandler(0xA000, 0xBFFF, m)
	return m
}

func (m *MBC1) romBankBase() int {
	bank := m.romBank
	if bank == 0 {
		bank = 1
	}
	return int(bank) << 14
}

func (m *MBC1) Read(b *bus.Bus, addr uint16) bus.MemoryRead {
	switch {
	case addr < 0x4000:
		if int(addr) >= len(m.rom) {
			return bus.Value(0xFF)
		}
		return bus.Value(m.rom[addr])
	case addr < 0x8000:
		off := int(addr&0x3FFF) + m.romBankBase()
		if off >= len(m.rom) {
			return bus.Value(0xFF)
		}
		return bus.Value(m.rom[off])
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.ramBank > 3 || len(m.ram) == 0 {
			return bus.Value(0xFF)
		}
		off := int(addr&0x1FFF) + int(m.ramBank)<<13
		if off >= len(m.ram) {
			return bus.Value(0xFF)
		}
		return bus.Value(m.ram[off])
	default:
		return bus.PassThrough()
	}
}

func (m *MBC1) Write(b *bus.Bus, addr uint16, value byte) bus.MemoryWrite {
	switch {
	case addr < 0x2000:
		m.ramEnable = value&0x0F == 0x0A
		return bus.WriteBlocked()
	case addr < 0x4000:
		m.romBank = value & 0x1F
		return bus.WriteBlocked()
	case addr < 0x6000:
		m.ramBank = value & 0x03
		return bus.WriteBlocked()
	case addr < 0x8000:
		m.mode = value & 0x01
		return bus.WriteBlocked()
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.ramBank <= 3 && len(m.ram) > 0 {
			off := int(addr&0x1FFF) + int(m.ramBank)<<13
			if off < len(m.ram) {
				m.ram[off] = value
			}
		}
		return bus.WriteBlocked()
	default:
		return bus.WritePass()
	}
}
