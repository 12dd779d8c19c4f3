package ppu

// vramByte reads a VRAM byte by absolute CPU address (0x8000-based).
func (p *PPU) vramByte(addr uint16) byte { return p.vram[addr-0x8000] }

// tileDataAddr resolves LCDC bit 4's addressing mode for a tile id.
func tileDataAddr(lcdc, id byte) uint16 {
	if lcdc&0x10 != 0 {
		return 0x8000 + uint16(id)*16
	}
	return uint16(int32(0x9000) + int32(int8(id))*16)
}

// renderScanline renders the background, window, and sprite passes for the
// current LY into the framebuffer, following §4.4's per-pixel algorithm.
func (p *PPU) renderScanline() {
	p.renderBackgroundWindow()
	p.renderSprites()
}

func (p *PPU) renderBackgroundWindow() {
	ly := p.ly
	if p.lcdc&0x01 == 0 {
		for x := 0; x < 160; x++ {
			p.bgRaw[x] = 0
			p.frame[ly][x] = p.paletteLookup(p.bgp, 0)
		}
		return
	}

	winEnabled := p.lcdc&0x20 != 0
	windowUsed := false

	for x := 0; x < 160; x++ {
		useWindow := winEnabled && int(ly) >= int(p.wy) && x >= int(p.wx)-7

		var mapBase uint16
		var tileX, tileY, fineX, fineY byte

		if useWindow {
			windowUsed = true
			if p.lcdc&0x40 != 0 {
				mapBase = 0x9C00
			} else {
				mapBase = 0x9800
			}
			px := byte(x - (int(p.wx) - 7))
			py := p.windowLine
			tileX, tileY = px>>3, py>>3
			fineX, fineY = px&7, py&7
		} else {
			if p.lcdc&0x08 != 0 {
				mapBase = 0x9C00
			} else {
				mapBase = 0x9800
			}
			bgX := byte(x) + p.latchedSCX
			bgY := ly + p.latchedSCY
			tileX, tileY = bgX>>3, bgY>>3
			fineX, fineY = bgX&7, bgY&7
		}

		tileIdx := p.vramByte(mapBase + uint16(tileY)*32 + uint16(tileX))
		addr := tileDataAddr(p.lcdc, tileIdx) + uint16(fineY)*2
		lo := p.vramByte(addr)
		hi := p.vramByte(addr + 1)
		bit := 7 - fineX
		raw := ((hi>>bit)&1)<<1 | ((lo >> bit) & 1)

		p.bgRaw[x] = raw
		p.frame[ly][x] = p.paletteLookup(p.bgp, raw)
	}

	if windowUsed {
		p.windowLine++
	}
}

type spriteEntry struct {
	idx          int
	x, y         byte
	tile         byte
	attr         byte
}

func (p *PPU) oamByte(i int) byte { return p.oam[i] }

// collectSprites gathers up to 10 sprites intersecting the current line,
// in hardware OAM-index order.
func (p *PPU) collectSprites() []spriteEntry {
	height := 8
	if p.lcdc&0x04 != 0 {
		height = 16
	}
	var hits []spriteEntry
	for i := 0; i < 40 && len(hits) < 10; i++ {
		base := i * 4
		y := p.oamByte(base)
		x := p.oamByte(base + 1)
		tile := p.oamByte(base + 2)
		attr := p.oamByte(base + 3)
		top := int(y) - 16
		if int(p.ly) >= top && int(p.ly) < top+height {
			hits = append(hits, spriteEntry{idx: i, x: x, y: y, tile: tile, attr: attr})
		}
	}
	return hits
}

func (p *PPU) renderSprites() {
	if p.lcdc&0x02 == 0 {
		return
	}
	height := byte(8)
	if p.lcdc&0x04 != 0 {
		height = 16
	}

	sprites := p.collectSprites()
	// Priority order: ascending X, ties broken by ascending OAM index. Lower
	// X draws on top, so paint in reverse (lowest priority first).
	for i := 0; i < len(sprites); i++ {
		for j := i + 1; j < len(sprites); j++ {
			less := sprites[j].x < sprites[i].x ||
				(sprites[j].x == sprites[i].x && sprites[j].idx < sprites[i].idx)
			if less {
				sprites[i], sprites[j] = sprites[j], sprites[i]
			}
		}
	}

	for s := len(sprites) - 1; s >= 0; s-- {
		sp := sprites[s]
		flipX := sp.attr&0x20 != 0
		flipY := sp.attr&0x40 != 0
		palette1 := sp.attr&0x10 != 0
		behindBG := sp.attr&0x80 != 0

		row := int(p.ly) - (int(sp.y) - 16)
		if flipY {
			row = int(height) - 1 - row
		}
		tile := sp.tile
		if height == 16 {
			tile &^= 0x01
		}
		addr := 0x8000 + uint16(tile)*16 + uint16(row)*2
		lo := p.vramByte(addr)
		hi := p.vramByte(addr + 1)

		for col := 0; col < 8; col++ {
			screenX := int(sp.x) - 8 + col
			if screenX < 0 || screenX >= 160 {
				continue
			}
			bit := col
			if !flipX {
				bit = 7 - col
			}
			raw := ((hi>>uint(bit))&1)<<1 | ((lo >> uint(bit)) & 1)
			if raw == 0 {
				continue
			}
			if behindBG && p.bgRaw[screenX] != 0 {
				continue
			}
			pal := p.obp0
			if palette1 {
				pal = p.obp1
			}
			p.frame[p.ly][screenX] = p.paletteLookup(pal, raw)
		}
	}
}

func (p *PPU) paletteLookup(palette, raw byte) byte {
	return (palette >> (raw * 2)) & 3
}
