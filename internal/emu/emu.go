// Package emu wires the bus, cartridge, CPU, timer, PPU, DMA, and
// joypad into the single cooperative outer loop: CPU -> Timer -> PPU ->
// DMA -> Joypad, once per instruction.
package emu

import (
	"github.com/dmgcore/gbcore/internal/apu"
	"github.com/dmgcore/gbcore/internal/bus"
	"github.com/dmgcore/gbcore/internal/cart"
	"github.com/dmgcore/gbcore/internal/cpu"
	"github.com/dmgcore/gbcore/internal/dma"
	"github.com/dmgcore/gbcore/internal/hardware"
	"github.com/dmgcore/gbcore/internal/joypad"
	"github.com/dmgcore/gbcore/internal/ppu"
	"github.com/dmgcore/gbcore/internal/timer"
)

// joypadPollInterval is how many CPU steps elapse between polls of the
// Hardware port for the current key state.
const joypadPollInterval = 256

// CyclesPerFrame is the number of T-cycles the DMG clock advances in
// one 59.7Hz video frame (4194304 / 59.7), used by hosts that drive
// the machine frame-by-frame instead of via Run.
const CyclesPerFrame = 70224

// Machine owns every core component and drives them in lockstep.
type Machine struct {
	Bus    *bus.Bus
	CPU    *cpu.CPU
	Timer  *timer.Timer
	DMA    *dma.DMA
	PPU    *ppu.PPU
	Joypad *joypad.Joypad
	Cart   *cart.MBC1
	APU    *apu.APU

	stepCount int
}

// New constructs a Machine from a raw ROM image, wiring every
// component onto one shared bus and resetting the CPU to its
// documented post-boot state.
func New(rom []byte, hw hardware.Hardware) *Machine {
	b := bus.New()
	c := cart.NewCartridge(b, rom)
	cp := cpu.New(b)
	cp.ResetPostBoot()
	t := timer.New(b)
	d := dma.New(b)
	jp := joypad.New(b)
	au := apu.New(b)
	var onFrame ppu.OnFrame
	if hw != nil {
		onFrame = hw.DrawFramebuffer
	}
	p := ppu.New(b, onFrame)

	return &Machine{
		Bus: b, CPU: cp, Timer: t, DMA: d, PPU: p, Joypad: jp, Cart: c, APU: au,
	}
}

// Step executes one instruction and advances every other device by the
// cycles it consumed, in the invariant order CPU -> Timer -> PPU -> DMA
// -> Joypad. It returns the number of clock cycles the instruction took.
func (m *Machine) Step(hw hardware.Hardware) int {
	cycles := m.CPU.Step()
	m.Timer.Step(m.Bus, cycles)
	m.PPU.Step(cycles, m.Bus)
	m.DMA.Step(m.Bus)

	m.stepCount++
	if hw != nil && m.stepCount%joypadPollInterval == 0 {
		m.Joypad.Poll(hw)
	}
	return cycles
}

// Run steps the machine until hw reports it is no longer active,
// ticking hw once per iteration for host housekeeping.
func (m *Machine) Run(hw hardware.Hardware) {
	for hw.IsActive() {
		m.Step(hw)
		hw.Update()
	}
}
