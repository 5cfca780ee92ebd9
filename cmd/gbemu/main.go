// Command gbemu runs a ROM either in a window or headless for a fixed
// number of frames, useful for scripted test ROM checks.
package main

import (
	"flag"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dmgcore/gbcore/internal/cart"
	"github.com/dmgcore/gbcore/internal/emu"
	"github.com/dmgcore/gbcore/internal/ppu"
	"github.com/dmgcore/gbcore/internal/ui"
)

type cliFlags struct {
	ROMPath string
	Scale   int
	Title   string

	Headless bool
	Frames   int
	PNGOut   string
	Expect   string // expected framebuffer CRC32 hex
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to ROM (.gb)")
	flag.IntVar(&f.Scale, "scale", 3, "window scale")
	flag.StringVar(&f.Title, "title", "gbemu", "window title")
	flag.BoolVar(&f.Headless, "headless", false, "run without a window")
	flag.IntVar(&f.Frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.PNGOut, "outpng", "", "write the last framebuffer to PNG at path")
	flag.StringVar(&f.Expect, "expect", "", "assert the final framebuffer CRC32 (hex)")
	flag.Parse()
	return f
}

// headlessHardware is always active and captures whatever frame the PPU
// last completed, for headless ROM checks that have no window.
type headlessHardware struct {
	fb *ppu.FrameBuffer
}

func (h *headlessHardware) IsActive() bool                      { return true }
func (h *headlessHardware) DrawFramebuffer(fb *ppu.FrameBuffer) { h.fb = fb }
func (h *headlessHardware) GetKeys() (byte, byte)               { return 0, 0 }
func (h *headlessHardware) Update()                             {}

func runHeadless(m *emu.Machine, frames int, pngPath, expectCRC string) error {
	if frames <= 0 {
		frames = 1
	}
	hw := &headlessHardware{}

	start := time.Now()
	for i := 0; i < frames; i++ {
		cycles := 0
		for cycles < emu.CyclesPerFrame {
			cycles += m.Step(hw)
		}
	}
	dur := time.Since(start)

	if hw.fb == nil {
		return fmt.Errorf("no frame was completed in %d frame budgets", frames)
	}
	rgba := toRGBA(hw.fb)
	crc := crc32.ChecksumIEEE(rgba)
	fps := float64(frames) / dur.Seconds()
	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x",
		frames, dur.Truncate(time.Millisecond), fps, crc)

	if pngPath != "" {
		if err := savePNG(rgba, ppu.FrameWidth, ppu.FrameHeight, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Printf("wrote %s", pngPath)
	}
	if expectCRC != "" {
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func toRGBA(fb *ppu.FrameBuffer) []byte {
	out := make([]byte, len(fb.Pixels)*4)
	shades := [4][3]byte{
		{0x9B, 0xBC, 0x0F}, {0x8B, 0xAC, 0x0F}, {0x30, 0x62, 0x30}, {0x0F, 0x38, 0x0F},
	}
	for i, s := range fb.Pixels {
		c := shades[s&0x03]
		out[i*4+0], out[i*4+1], out[i*4+2], out[i*4+3] = c[0], c[1], c[2], 0xFF
	}
	return out
}

func savePNG(pix []byte, w, h int, path string) error {
	img := &image.RGBA{Pix: pix, Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func main() {
	f := parseFlags()
	if f.ROMPath == "" {
		log.Fatal("-rom is required")
	}
	rom, err := os.ReadFile(f.ROMPath)
	if err != nil {
		log.Fatalf("read rom: %v", err)
	}
	if h, err := cart.ParseHeader(rom); err == nil {
		log.Printf("ROM: %q banks=%d ram=%dB", h.Title, h.ROMBanks, h.RAMSizeBytes)
	}

	if f.Headless {
		m := emu.New(rom, nil)
		if err := runHeadless(m, f.Frames, f.PNGOut, f.Expect); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg := ui.Config{Title: f.Title, Scale: f.Scale}
	app := ui.NewApp(cfg)
	m := emu.New(rom, app)
	game := &ui.Game{Machine: m, App: app}
	if err := game.Run(); err != nil {
		log.Fatal(err)
	}
}
