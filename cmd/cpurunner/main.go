// Command cpurunner drives the CPU alone against a ROM for a fixed
// step budget, optionally tracing every instruction. It's a low-level
// complement to gbemu for bisecting CPU-only test ROMs.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dmgcore/gbcore/internal/bus"
	"github.com/dmgcore/gbcore/internal/cpu"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM (.gb)")
	steps := flag.Int("steps", 5_000_000, "max CPU steps to run")
	startPC := flag.Int("pc", 0x0100, "initial PC value")
	trace := flag.Bool("trace", false, "print PC/registers for every step")
	traceEvery := flag.Int("traceEvery", 1, "only print every Nth traced step")
	timeout := flag.Duration("timeout", 0, "optional wall-clock timeout (e.g. 30s); 0 disables")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("-rom is required")
	}
	rom, err := os.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("read rom: %v", err)
	}

	b := bus.New()
	for i, v := range rom {
		if i >= 0x8000 {
			break
		}
		b.WriteByte(uint16(i), v)
	}

	c := cpu.New(b)
	c.ResetPostBoot()
	c.SetPC(uint16(*startPC))

	start := time.Now()
	var deadline time.Time
	if *timeout > 0 {
		deadline = start.Add(*timeout)
	}

	var cycles int
	for i := 0; i < *steps; i++ {
		if *trace && i%*traceEvery == 0 {
			pc := c.PC
			op := b.ReadByte(pc)
			fmt.Printf("PC=%04X OP=%02X A=%02X F=%02X B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X SP=%04X IME=%t\n",
				pc, op, c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L, c.SP, c.IME)
		}
		cycles += c.Step()

		if !deadline.IsZero() && time.Now().After(deadline) {
			fmt.Printf("timeout after %s\n", time.Since(start).Truncate(time.Millisecond))
			break
		}
	}
	dur := time.Since(start)
	fmt.Printf("done: steps=%d cycles=%d elapsed=%s PC=%04X SP=%04X\n",
		*steps, cycles, dur.Truncate(time.Millisecond), c.PC, c.SP)
}
