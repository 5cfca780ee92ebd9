// Package joypad implements the 8-button JOYP latch at 0xFF00: two
// 4-bit nibbles (direction, action) selected by bits 4-5 and read back
// active-low, refreshed once in a while from the Hardware port.
package joypad

import "github.com/dmgcore/gbcore/internal/bus"

const reg = 0xFF00

// Direction and action button bitmasks, matching spec.md 4.8.
const (
	Right = 1 << 0
	Left  = 1 << 1
	Up    = 1 << 2
	Down  = 1 << 3

	A      = 1 << 0
	B      = 1 << 1
	Select = 1 << 2
	Start  = 1 << 3
)

// Joypad owns the current select state and the two 4-bit key latches.
type Joypad struct {
	selectDir bool // P14 == 0
	selectAct bool // P15 == 0
	dirLatch  byte
	actLatch  byte
}

// New constructs a Joypad and registers it on the bus.
func New(b *bus.Bus) *Joypad {
	j := &Joypad{}
	b.AddHandler(reg, reg, j)
	return j
}

// Poll refreshes both latches from the Hardware port's current key
// state. hw is any value exposing GetKeys() (dir, act byte) -- callers
// pass the hardware.Hardware implementation directly; a narrow
// interface here avoids an import cycle with package hardware.
func (j *Joypad) Poll(hw interface{ GetKeys() (byte, byte) }) {
	dir, act := hw.GetKeys()
	j.dirLatch = dir
	j.actLatch = act
}

func (j *Joypad) Read(b *bus.Bus, addr uint16) bus.MemoryRead {
	switch {
	case j.selectDir:
		return bus.Value(^(0x10 | j.dirLatch))
	case j.selectAct:
		return bus.Value(^(0x20 | j.actLatch))
	default:
		return bus.Value(0xFF)
	}
}

func (j *Joypad) Write(b *bus.Bus, addr uint16, value byte) bus.MemoryWrite {
	j.selectDir = value&0x10 == 0
	if !j.selectDir {
		j.selectAct = value&0x20 == 0
	} else {
		j.selectAct = false
	}
	return bus.WriteResolved(value)
}
