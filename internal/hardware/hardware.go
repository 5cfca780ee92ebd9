// Package hardware defines the boundary between the emulator core and
// its host: the four operations the outer loop needs from whatever
// draws the screen and reads input.
package hardware

import "github.com/dmgcore/gbcore/internal/ppu"

// Hardware is implemented by the host environment (a desktop window, a
// headless test harness, ...). The core calls it from its single
// outer loop; no method is expected to be called concurrently.
type Hardware interface {
	// IsActive reports whether the outer loop should keep iterating.
	IsActive() bool
	// DrawFramebuffer is called once per completed video frame.
	DrawFramebuffer(fb *ppu.FrameBuffer)
	// GetKeys returns the current direction and action button bitmasks,
	// laid out as in the joypad package.
	GetKeys() (dirBits, actBits byte)
	// Update is an advisory per-iteration tick for host housekeeping.
	Update()
}
