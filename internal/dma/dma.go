// Package dma implements OAM DMA: a write to 0xFF46 latches a source
// page and schedules a 160-byte block copy into OAM on the following
// Step, exactly as original_source/src/dma.rs models it.
package dma

import "github.com/dmgcore/gbcore/internal/bus"

const reg = 0xFF46

// DMA owns the latched source register and pending-transfer flag.
type DMA struct {
	src    byte
	active bool
}

// New constructs a DMA controller and registers it on the bus.
func New(b *bus.Bus) *DMA {
	d := &DMA{}
	b.AddHandler(reg, reg, d)
	return d
}

// Step performs the pending 160-byte transfer, if any, and clears it.
func (d *DMA) Step(b *bus.Bus) {
	if !d.active {
		return
	}
	d.active = false
	src := uint16(d.src) << 8
	for i := uint16(0); i < 160; i++ {
		v := b.ReadByte(src + i)
		b.WriteByte(0xFE00+i, v)
	}
}

func (d *DMA) Read(b *bus.Bus, addr uint16) bus.MemoryRead {
	if addr == reg {
		return bus.Value(d.src)
	}
	return bus.PassThrough()
}

// Write blocks the underlying RAM write (the source byte is kept purely
// in the handler, per spec) and schedules the transfer.
func (d *DMA) Write(b *bus.Bus, addr uint16, value byte) bus.MemoryWrite {
	if addr != reg {
		return bus.WritePass()
	}
	d.src = value
	d.active = true
	return bus.WriteBlocked()
}
