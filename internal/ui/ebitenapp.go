package ui

import (
	"github.com/dmgcore/gbcore/internal/emu"
	"github.com/dmgcore/gbcore/internal/ppu"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// dmgPalette maps the four 2-bit shades produced by the PPU to the
// classic green-tinted DMG screen colors.
var dmgPalette = [4][3]byte{
	{0x9B, 0xBC, 0x0F},
	{0x8B, 0xAC, 0x0F},
	{0x30, 0x62, 0x30},
	{0x0F, 0x38, 0x0F},
}

// App is the desktop host: it blits completed frames and reports
// keyboard state. It implements hardware.Hardware.
type App struct {
	cfg     Config
	tex     *ebiten.Image
	pixels  []byte
	dirBits byte
	actBits byte
	active  bool
}

// NewApp creates a window-backed host following cfg's title and scale.
func NewApp(cfg Config) *App {
	cfg.Defaults()
	ebiten.SetWindowSize(ppu.FrameWidth*cfg.Scale, ppu.FrameHeight*cfg.Scale)
	ebiten.SetWindowTitle(cfg.Title)
	return &App{
		cfg:    cfg,
		tex:    ebiten.NewImage(ppu.FrameWidth, ppu.FrameHeight),
		pixels: make([]byte, ppu.FrameWidth*ppu.FrameHeight*4),
		active: true,
	}
}

// IsActive reports whether the window is still open.
func (a *App) IsActive() bool { return a.active }

// DrawFramebuffer stages a completed PPU frame for the next Draw call.
func (a *App) DrawFramebuffer(fb *ppu.FrameBuffer) {
	for i, shade := range fb.Pixels {
		c := dmgPalette[shade&0x03]
		a.pixels[i*4+0] = c[0]
		a.pixels[i*4+1] = c[1]
		a.pixels[i*4+2] = c[2]
		a.pixels[i*4+3] = 0xFF
	}
	a.tex.WritePixels(a.pixels)
}

// GetKeys reports the currently pressed direction and action buttons,
// packed the way joypad.Poll expects.
func (a *App) GetKeys() (dirBits, actBits byte) { return a.dirBits, a.actBits }

// Update polls the keyboard and window state. It satisfies
// hardware.Hardware's advisory per-iteration tick.
func (a *App) Update() {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.active = false
		return
	}
	keys := a.cfg.Keys

	var dir, act byte
	if isKeyDown(keys["Right"]) {
		dir |= 1 << 0
	}
	if isKeyDown(keys["Left"]) {
		dir |= 1 << 1
	}
	if isKeyDown(keys["Up"]) {
		dir |= 1 << 2
	}
	if isKeyDown(keys["Down"]) {
		dir |= 1 << 3
	}
	if isKeyDown(keys["A"]) {
		act |= 1 << 0
	}
	if isKeyDown(keys["B"]) {
		act |= 1 << 1
	}
	if isKeyDown(keys["Select"]) {
		act |= 1 << 2
	}
	if isKeyDown(keys["Start"]) {
		act |= 1 << 3
	}
	a.dirBits, a.actBits = dir, act
}

func (a *App) Draw(screen *ebiten.Image) {
	screen.DrawImage(a.tex, nil)
}

func (a *App) Layout(outW, outH int) (int, int) {
	return ppu.FrameWidth, ppu.FrameHeight
}

// Game adapts a Machine/App pair to ebiten's Game interface, stepping
// one video frame's worth of cycles per tick.
type Game struct {
	Machine *emu.Machine
	App     *App
}

func (g *Game) Update() error {
	g.App.Update()
	cycles := 0
	for cycles < emu.CyclesPerFrame {
		cycles += g.Machine.Step(g.App)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) { g.App.Draw(screen) }

func (g *Game) Layout(outW, outH int) (int, int) { return g.App.Layout(outW, outH) }

// Run opens the window and blocks until it's closed.
func (g *Game) Run() error { return ebiten.RunGame(g) }

var keyByName = map[string]ebiten.Key{
	"ArrowUp": ebiten.KeyArrowUp, "ArrowDown": ebiten.KeyArrowDown,
	"ArrowLeft": ebiten.KeyArrowLeft, "ArrowRight": ebiten.KeyArrowRight,
	"KeyZ": ebiten.KeyZ, "KeyX": ebiten.KeyX,
	"Enter": ebiten.KeyEnter, "ShiftRight": ebiten.KeyShiftRight,
}

func isKeyDown(name string) bool {
	k, ok := keyByName[name]
	return ok && ebiten.IsKeyPressed(k)
}
