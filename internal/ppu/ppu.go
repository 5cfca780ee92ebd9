// Package ppu implements the scanline background/window/sprite
// compositor: a bus.Handler for VRAM, OAM, and the LCD control
// registers, plus a Step that renders one full scanline at dot 456.
package ppu

import "github.com/dmgcore/gbcore/internal/bus"

const (
	FrameWidth  = 160
	FrameHeight = 144
)

// FrameBuffer is a completed video frame: one indexed color id (0..3)
// per pixel, row-major, top-left first.
type FrameBuffer struct {
	Pixels [FrameHeight * FrameWidth]byte
}

// Sprite is one 4-byte OAM entry.
type Sprite struct {
	Y, X, Tile, Attr byte
}

const (
	attrPriority = 0x80
	attrYFlip    = 0x40
	attrXFlip    = 0x20
	attrOBPSel   = 0x10
)

// tile is 16 bytes: two bit-planes (low, high) per 8-pixel row.
type tile [16]byte

func (t tile) color(bitCol, row byte) byte {
	low := (t[row*2] >> bitCol) & 1
	high := (t[row*2+1] >> bitCol) & 1
	return high*2 + low
}

// OnFrame is invoked once per completed frame with the finished buffer.
type OnFrame func(*FrameBuffer)

// PPU owns VRAM/OAM storage, the LCD control registers, and the dot
// counter, and renders directly into an owned FrameBuffer.
type PPU struct {
	tiles   [384]tile
	tileMap [2048]byte
	oam     [40]Sprite

	lcdc, stat      byte
	ly, lyc         byte
	wy, wx          byte
	scy, scx        byte
	bgp, obp0, obp1 byte

	dot int

	fb      FrameBuffer
	onFrame OnFrame
}

// New constructs a PPU, registers it against b, and arranges for
// onFrame to be called once per completed video frame.
func New(b *bus.Bus, onFrame OnFrame) *PPU {
	p := &PPU{onFrame: onFrame}
	b.AddHandler(0x8000, 0x9FFF, p)
	b.AddHandler(0xFE00, 0xFE9F, p)
	b.AddHandler(0xFF40, 0xFF4B, p)
	return p
}

func (p *PPU) Read(b *bus.Bus, addr uint16) bus.MemoryRead {
	switch {
	case addr >= 0x8000 && addr <= 0x97FF:
		off := addr - 0x8000
		return bus.Value(p.tiles[off/16][off%16])
	case addr >= 0x9800 && addr <= 0x9FFF:
		return bus.Value(p.tileMap[addr-0x9800])
	case addr >= 0xFE00 && addr <= 0xFE9F:
		s := p.oam[(addr-0xFE00)/4]
		switch (addr - 0xFE00) % 4 {
		case 0:
			return bus.Value(s.Y)
		case 1:
			return bus.Value(s.X)
		case 2:
			return bus.Value(s.Tile)
		default:
			return bus.Value(s.Attr)
		}
	case addr == 0xFF40:
		return bus.Value(p.lcdc)
	case addr == 0xFF41:
		return bus.Value(p.stat)
	case addr == 0xFF42:
		return bus.Value(p.scy)
	case addr == 0xFF43:
		return bus.Value(p.scx)
	case addr == 0xFF44:
		return bus.Value(p.ly)
	case addr == 0xFF45:
		return bus.Value(p.lyc)
	case addr == 0xFF47:
		return bus.Value(p.bgp)
	case addr == 0xFF48:
		return bus.Value(p.obp0)
	case addr == 0xFF49:
		return bus.Value(p.obp1)
	case addr == 0xFF4A:
		return bus.Value(p.wy)
	case addr == 0xFF4B:
		return bus.Value(p.wx)
	default:
		return bus.PassThrough()
	}
}

func (p *PPU) Write(b *bus.Bus, addr uint16, value byte) bus.MemoryWrite {
	switch {
	case addr >= 0x8000 && addr <= 0x97FF:
		off := addr - 0x8000
		p.tiles[off/16][off%16] = value
	case addr >= 0x9800 && addr <= 0x9FFF:
		p.tileMap[addr-0x9800] = value
	case addr >= 0xFE00 && addr <= 0xFE9F:
		i := (addr - 0xFE00) / 4
		switch (addr - 0xFE00) % 4 {
		case 0:
			p.oam[i].Y = value
		case 1:
			p.oam[i].X = value
		case 2:
			p.oam[i].Tile = value
		default:
			p.oam[i].Attr = value
		}
	case addr == 0xFF40:
		p.lcdc = value
	case addr == 0xFF41:
		p.stat = value
	case addr == 0xFF42:
		p.scy = value
	case addr == 0xFF43:
		p.scx = value
	case addr == 0xFF44:
		p.ly = value
	case addr == 0xFF45:
		p.lyc = value
	case addr == 0xFF47:
		p.bgp = value
	case addr == 0xFF48:
		p.obp0 = value
	case addr == 0xFF49:
		p.obp1 = value
	case addr == 0xFF4A:
		p.wy = value
	case addr == 0xFF4B:
		p.wx = value
	default:
		return bus.WritePass()
	}
	return bus.WriteResolved(value)
}

// LY exposes the current scanline for tests and headless tooling.
func (p *PPU) LY() byte { return p.ly }

// Step advances the dot counter by elapsed clock cycles, rendering one
// scanline every time the counter reaches 456 and notifying onFrame at
// the end of LY 143.
func (p *PPU) Step(elapsed int, b *bus.Bus) {
	for i := 0; i < elapsed; i++ {
		if p.lcdc&0x80 == 0 {
			p.ly = 0
			p.dot = 0
			continue
		}
		p.dot++
		if p.dot == 456 {
			if p.ly < 144 {
				p.renderScanline()
			}
			if p.ly == 143 {
				b.SetIF(b.GetIF() | 0x01)
				if p.onFrame != nil {
					p.onFrame(&p.fb)
				}
			}
			p.ly = (p.ly + 1) % 154
			p.dot = 0
		}
	}
}

func (p *PPU) tileID(raw byte) int {
	if p.lcdc&0x10 != 0 {
		return int(raw)
	}
	return 256 + int(int8(raw))
}

func (p *PPU) renderScanline() {
	for x := 0; x < FrameWidth; x++ {
		bx := byte(x)
		isWindow := p.lcdc&0x20 != 0 && p.ly >= p.wy && x >= int(p.wx)-7

		var u, v byte
		if isWindow {
			u = byte(x + 7 - int(p.wx))
			v = p.ly - p.wy
		} else {
			u = bx + p.scx
			v = p.ly + p.scy
		}

		mapBit := byte(0x08)
		if isWindow {
			mapBit = 0x40
		}
		mapOffset := 0
		if p.lcdc&mapBit != 0 {
			mapOffset = 0x400
		}
		raw := p.tileMap[mapOffset+int(v/8)*32+int(u/8)]
		tileIdx := p.tileID(raw)
		color := p.tiles[tileIdx].color(7-(u&0x07), v&0x07)

		palette := p.bgp

		if p.lcdc&0x01 != 0 {
			for _, s := range p.oam {
				sx := bx - s.X + 8
				sy := p.ly - s.Y + 16
				if sx >= 8 || sy >= 8 {
					continue
				}
				bitCol := sx
				if s.Attr&attrXFlip == 0 {
					bitCol = sx ^ 7
				}
				row := sy
				if s.Attr&attrYFlip != 0 {
					row = sy ^ 7
				}
				spriteColor := p.tiles[s.Tile].color(bitCol, row)
				if spriteColor == 0 {
					continue
				}
				if s.Attr&attrPriority != 0 && color != 0 {
					continue
				}
				color = spriteColor
				if s.Attr&attrOBPSel != 0 {
					palette = p.obp1
				} else {
					palette = p.obp0
				}
				break
			}
		}

		shade := (palette >> (2 * color)) & 0x03
		p.fb.Pixels[int(p.ly)*FrameWidth+x] = shade
	}
}
