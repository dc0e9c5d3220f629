package vdp

// renderLine implements §4.7 for one active-display scanline: clear,
// Scroll B, Scroll A/Window, sprites, then expand to the framebuffer.
// It also performs the §4.7-precondition sprite line cache update for
// the line that follows.
func (v *VDP) renderLine(line int) {
	v.clearLineBuffer()

	h40 := v.regs.h40
	hCell := 32
	if h40 {
		hCell = 40
	}
	shadowHighlight := v.regs.shadowHighlight
	im2 := v.regs.interlaceMode == 2

	effLine := v.effectiveRenderLine(line, im2)

	v.drawScrollB(effLine, hCell, h40, shadowHighlight, im2)
	v.drawScrollAWindow(effLine, hCell, h40, shadowHighlight, im2)
	v.drawSprites(effLine, shadowHighlight, im2)

	if v.pal.dirtyActive || !v.quirks.PaletteUpdateVBlankOnly {
		v.pal.update(&v.mem.cram, v.regs.bgColorIndex, shadowHighlight)
	}

	v.expandToFramebuffer(line, h40)

	overflow := v.spr.update(v.mem.sat[:v.regs.satSizeBytes()], effLine, h40, im2, v.quirks.LiftSpriteLimit)
	if overflow {
		v.status |= statusSOVR
	}
}

// effectiveRenderLine adjusts the raw scanline number for interlaced
// rendering per T_GetLineNumber: doubled, then offset by the active
// interlace-render policy (flicker alternates by frame parity).
func (v *VDP) effectiveRenderLine(line int, im2 bool) int {
	if !im2 {
		return line
	}
	doubled := line * 2
	if v.oddFrame {
		doubled++
	}
	return doubled
}

func (v *VDP) clearLineBuffer() {
	var flags uint8
	if v.regs.shadowHighlight {
		flags = linebufShadow
	}
	for i := range v.lineBuf {
		v.lineBuf[i] = linePixel{color: 0, flags: flags}
	}
}

// hScrollOffsets reads the two words of the H-scroll table entry for
// the given display line, matching T_Get_X_Offset.
func (v *VDP) hScrollOffsets(line int) (aOffset, bOffset uint16) {
	entry := uint32(line) & uint32(v.regs.hScrollMask)
	base := (v.regs.hScrollTable + entry*4) & v.mem.vramMask()
	a := v.mem.readVRAMWord(base) & 0x3FF
	b := v.mem.readVRAMWord((base+2)&v.mem.vramMask()) & 0x3FF
	return a, b
}

// vScrollOffset reads the Y scroll value for the given VSRAM cell
// index, applying the documented left-column VSCROLL bug when the
// cell falls outside [0,40).
func (v *VDP) vScrollOffset(cellCur int, plane bool, line int) uint32 {
	idx := cellCur
	if idx < 0 || idx >= 40 {
		if v.quirks.LeftColumnVScrollBug {
			var both uint16
			if v.regs.h40 {
				both = v.mem.vsram[38] & v.mem.vsram[39]
			}
			return uint32(both) + uint32(line)
		}
		idx = 0
	}
	idx &^= 1
	if !plane {
		idx++
	}
	if idx >= vsramEntries {
		idx = vsramEntries - 1
	}
	return uint32(v.mem.vsram[idx]) + uint32(line)
}

// tileAndPattern fetches the nametable word at (xCell, yCell) and
// decodes its palette, flip and priority bits and the tile's pattern
// address; patternRow then reads the row for a fine-Y offset.
func (v *VDP) tileAndPattern(tableAddr uint32, xCell, yCell uint32, cmul uint8, im2 bool) (nt uint16, palette uint8, hFlip, vFlip, highPrio bool, tileIdx uint32) {
	offset := ((yCell << cmul) + xCell) * 2
	addr := (tableAddr + offset) & v.mem.vramMask()
	nt = v.mem.readVRAMWord(addr)
	palette = uint8((nt >> 9) & 0x30)
	hFlip = nt&0x0800 != 0
	vFlip = nt&0x1000 != 0
	highPrio = nt&0x8000 != 0
	if im2 {
		tileIdx = uint32(nt&0x3FF) << 6
	} else {
		tileIdx = uint32(nt&0x7FF) << 5
	}
	return
}

func (v *VDP) patternRow(tileIdx uint32, yFine uint32, vFlip bool, im2 bool) uint32 {
	if vFlip {
		if im2 {
			yFine ^= 15
		} else {
			yFine ^= 7
		}
	}
	addr := (tileIdx + yFine*4) & v.mem.vramMask()
	return uint32(v.mem.vram[addr])<<24 | uint32(v.mem.vram[(addr+1)&v.mem.vramMask()])<<16 |
		uint32(v.mem.vram[(addr+2)&v.mem.vramMask()])<<8 | uint32(v.mem.vram[(addr+3)&v.mem.vramMask()])
}

// putTileLine writes one tile's 8 pixels into the 336-wide line
// buffer starting at dispPixNum, honoring priority/shadow-highlight
// and horizontal flip, matching T_PutLine_P0/P1.
func (v *VDP) putTileLine(dispPixNum int, pattern uint32, palette uint8, highPrio, hFlip, shadowHighlight bool) {
	for i := 0; i < 8; i++ {
		x := dispPixNum + i
		if x < 0 || x >= len(v.lineBuf) {
			continue
		}
		shift := i
		if hFlip {
			shift = 7 - i
		}
		nibble := uint8((pattern >> uint(shift*4)) & 0xF)
		if nibble == 0 {
			continue
		}

		cur := v.lineBuf[x]
		if highPrio {
			cur.color = palette | nibble
			cur.flags = (cur.flags &^ (linebufShadow | linebufHighlight)) | linebufPriority
		} else {
			if cur.flags&linebufPriority != 0 {
				continue
			}
			cur.color = palette | nibble
			if shadowHighlight {
				cur.flags |= linebufShadow
			}
		}
		v.lineBuf[x] = cur
	}
}

func (v *VDP) drawScrollB(line int, hCell int, h40 bool, shadowHighlight, im2 bool) {
	_, bOffset := v.hScrollOffsets(line)
	xCellOffset := uint32(bOffset)
	dispPixNum := int(xCellOffset & 7)
	xCellOffset = ((xCellOffset ^ 0x3FF) >> 3) & uint32(v.regs.hScrollCMask)

	vscroll2Cell := v.regs.vScrollMask != 0
	vsramCell := int((xCellOffset & 1)) - 2

	var yCellOffset, yFineOffset uint32
	if !vscroll2Cell {
		yOff := v.vScrollOffset(0, false, line)
		yCellOffset, yFineOffset = v.splitYOffset(yOff, im2, true)
	}

	for x := hCell + 1; x >= 0; x, vsramCell = x-1, vsramCell+1 {
		if vscroll2Cell {
			yOff := v.vScrollOffset(vsramCell, false, line)
			yCellOffset, yFineOffset = v.splitYOffset(yOff, im2, true)
		}

		nt, palette, hFlip, vFlip, highPrio, tileIdx := v.tileAndPattern(v.regs.scrBTableAddr, xCellOffset, yCellOffset, v.regs.hScrollCMul, im2)
		_ = nt
		pattern := v.patternRow(tileIdx, yFineOffset, vFlip, im2)
		v.putTileLine(dispPixNum, pattern, palette, highPrio, hFlip, shadowHighlight)

		xCellOffset = (xCellOffset + 1) & uint32(v.regs.hScrollCMask)
		dispPixNum += 8
	}
}

func (v *VDP) splitYOffset(yOffset uint32, im2 bool, applyMask bool) (cellOffset, fineOffset uint32) {
	if im2 {
		cellOffset = yOffset >> 4
		fineOffset = yOffset & 15
	} else {
		cellOffset = yOffset >> 3
		fineOffset = yOffset & 7
	}
	if applyMask {
		cellOffset &= uint32(v.regs.vScrollCMask)
	}
	return
}

func (v *VDP) drawScrollAWindow(line int, hCell int, h40 bool, shadowHighlight, im2 bool) {
	vdpCells := line >> 3

	var scrAStart, scrALength, winStart, winLength int

	if v.regs.winDown {
		if vdpCells >= int(v.regs.winYPos) {
			scrAStart, scrALength, winStart, winLength = 0, 0, 0, hCell
		}
	} else if vdpCells < int(v.regs.winYPos) {
		scrAStart, scrALength, winStart, winLength = 0, 0, 0, hCell
	}

	if winLength == 0 {
		winX := int(v.regs.winXPos)
		if v.regs.winRight {
			scrAStart, scrALength = 0, winX
			winStart, winLength = winX, hCell-winX
		} else {
			winStart, winLength = 0, winX
			scrAStart, scrALength = winX, hCell-winX
		}
	}

	if winLength > 0 {
		winPixStart := winStart*8 + 8
		dispPixNum := winPixStart
		yCellOffset, yFineOffset := v.splitYOffset(v.lineWindowYOffset(line, im2), im2, false)
		for x := 0; x < winLength; x++ {
			xCell := uint32(winStart + x)
			_, palette, hFlip, vFlip, highPrio, tileIdx := v.tileAndPattern(v.regs.winTableAddr, xCell, yCellOffset, v.regs.hScrollCMul, im2)
			pattern := v.patternRow(tileIdx, yFineOffset, vFlip, im2)
			v.putTileLine(dispPixNum, pattern, palette, highPrio, hFlip, shadowHighlight)
			dispPixNum += 8
		}
		for x := winPixStart; x < winPixStart+winLength*8; x++ {
			if x >= 0 && x < len(v.lineBuf) {
				v.lineBuf[x].flags |= linebufWindow
			}
		}
	}

	if scrALength > 0 {
		v.drawScrollAPlane(line, scrAStart, scrALength, shadowHighlight, im2)
	}
}

// lineWindowYOffset mirrors T_GetLineNumber's use for the window,
// which is not scrolled (no VSRAM/H-scroll involvement).
func (v *VDP) lineWindowYOffset(line int, im2 bool) uint32 {
	return uint32(line)
}

func (v *VDP) drawScrollAPlane(line int, cellStart, cellLength int, shadowHighlight, im2 bool) {
	aOffset, _ := v.hScrollOffsets(line)
	xCellOffset := uint32(aOffset)
	dispPixNum := int(xCellOffset & 7)

	leftWindowBugCnt := 0
	if cellStart != 0 && v.quirks.LeftColumnWindowBug {
		if xCellOffset&8 != 0 {
			leftWindowBugCnt = 2
		} else {
			leftWindowBugCnt = 1
		}
	}

	cellStartPx := cellStart << 3
	xCellOffset -= uint32(cellStartPx)
	dispPixNum += cellStartPx

	xCellOffset = ((xCellOffset ^ 0x3FF) >> 3) & uint32(v.regs.hScrollCMask)
	vsramCell := int(xCellOffset&1) - 2

	vscroll2Cell := v.regs.vScrollMask != 0
	var yCellOffset, yFineOffset uint32
	if !vscroll2Cell {
		yOff := v.vScrollOffset(0, true, line)
		yCellOffset, yFineOffset = v.splitYOffset(yOff, im2, true)
	}

	for x := cellLength; x >= 0; x, vsramCell = x-1, vsramCell+1 {
		if vscroll2Cell {
			yOff := v.vScrollOffset(vsramCell, true, line)
			yCellOffset, yFineOffset = v.splitYOffset(yOff, im2, true)
		}

		fetchCell := xCellOffset
		if leftWindowBugCnt > 0 {
			leftWindowBugCnt--
			fetchCell = (xCellOffset + 2) & uint32(v.regs.hScrollCMask)
		}

		_, palette, hFlip, vFlip, highPrio, tileIdx := v.tileAndPattern(v.regs.scrATableAddr, fetchCell, yCellOffset, v.regs.hScrollCMul, im2)
		pattern := v.patternRow(tileIdx, yFineOffset, vFlip, im2)
		v.putTileLine(dispPixNum, pattern, palette, highPrio, hFlip, shadowHighlight)

		xCellOffset = (xCellOffset + 1) & uint32(v.regs.hScrollCMask)
		dispPixNum += 8
	}
}

// drawSprites composites the cached sprites for this line, including
// masking and the shadow/highlight operator palette (palette 3,
// colors 14/15).
func (v *VDP) drawSprites(line int, shadowHighlight, im2 bool) {
	cache, cacheID := v.spr.forLine(line, im2)
	_ = cacheID

	pixelCountMax := 65536
	if !v.quirks.LiftSpriteLimit {
		pixelCountMax = 320
	}
	pixelCount := 0

	foundValidX := v.spr.dotOverflow
	spritesMasked := false
	collided := false

	for _, s := range cache {
		if s.posX > -128 {
			foundValidX = true
		} else if foundValidX {
			spritesMasked = true
		}

		hPosMin := s.posX
		hPosMax := hPosMin + s.sizeX*8 - 1

		pixelCount += s.sizeX * 8
		if pixelCount > pixelCountMax {
			hPosMax -= pixelCount - pixelCountMax
			if hPosMax < hPosMin {
				break
			}
		}

		if spritesMasked {
			continue
		}

		cellOffset := line - s.posY
		var lineOffset int
		var ySize int
		var tileNum uint32
		attr := s.numTile

		if im2 {
			lineOffset = cellOffset & 15
			cellOffset &= 0x1F0
			tileNum = uint32(attr&0x3FF) << 6
			ySize = (s.sizeY << 6)
			cellOffset *= 4
		} else {
			lineOffset = cellOffset & 7
			cellOffset &= 0xF8
			tileNum = uint32(attr&0x7FF) << 5
			ySize = (s.sizeY << 5)
			cellOffset *= 4
		}

		vFlip := attr&0x1000 != 0
		if vFlip {
			tileNum += uint32(ySize - cellOffset)
			if im2 {
				lineOffset ^= 15
				ySize += 64
			} else {
				lineOffset ^= 7
				ySize += 32
			}
			tileNum += uint32(lineOffset * 4)
		} else {
			tileNum += uint32(cellOffset)
			if im2 {
				ySize += 64
			} else {
				ySize += 32
			}
			tileNum += uint32(lineOffset * 4)
		}

		hFlip := attr&0x0800 != 0
		highPrio := attr&0x8000 != 0
		palette := uint8((attr >> 9) & 0x30)

		if hFlip {
			if hPosMin < -7 {
				hPosMin = -7
			}
			hPosMax -= 7
			for hPosMax >= 320 {
				hPosMax -= 8
				tileNum += uint32(ySize)
			}
			for x := hPosMax; x >= hPosMin; x -= 8 {
				pattern := v.spritePatternRow(tileNum)
				v.putSpritePixels(x, pattern, palette, highPrio, true, shadowHighlight, &collided)
				tileNum += uint32(ySize)
			}
		} else {
			if hPosMax >= 320 {
				hPosMax = 320
			}
			for hPosMin < -7 {
				hPosMin += 8
				tileNum += uint32(ySize)
			}
			for x := hPosMin; x < hPosMax; x += 8 {
				pattern := v.spritePatternRow(tileNum)
				v.putSpritePixels(x, pattern, palette, highPrio, false, shadowHighlight, &collided)
				tileNum += uint32(ySize)
			}
		}
	}

	v.spr.dotOverflow = pixelCount > pixelCountMax
	if collided {
		v.status |= statusCollision
	}
}

func (v *VDP) spritePatternRow(tileNum uint32) uint32 {
	addr := tileNum & v.mem.vramMask()
	m := v.mem.vramMask()
	return uint32(v.mem.vram[addr])<<24 | uint32(v.mem.vram[(addr+1)&m])<<16 |
		uint32(v.mem.vram[(addr+2)&m])<<8 | uint32(v.mem.vram[(addr+3)&m])
}

// putSpritePixels draws one tile-row of sprite pixels starting at
// screen column dispPixNum+8 (the 8-pixel left fringe the 336-wide
// buffer reserves), applying the shadow/highlight operator rules.
func (v *VDP) putSpritePixels(dispPixNum int, pattern uint32, palette uint8, highPrio, hFlip, shadowHighlight bool, collided *bool) {
	base := dispPixNum + 8
	for i := 0; i < 8; i++ {
		x := base + i
		if x < 0 || x >= len(v.lineBuf) {
			continue
		}
		shift := i
		if hFlip {
			shift = 7 - i
		}
		nibble := uint8((pattern >> uint(shift*4)) & 0xF)
		if nibble == 0 {
			continue
		}

		cur := v.lineBuf[x]
		if cur.flags&linebufSprite != 0 {
			*collided = true
			continue
		}
		if cur.flags&linebufSprShOp != 0 {
			continue
		}
		if !highPrio && cur.flags&linebufPriority != 0 {
			v.lineBuf[x].flags |= linebufSprite
			continue
		}

		if shadowHighlight && palette == 0x30 && (nibble == 14 || nibble == 15) {
			if nibble == 15 {
				cur.flags |= linebufShadow | linebufSprShOp
			} else {
				cur.flags |= linebufHighlight
				cur.flags &^= linebufShadow
				cur.flags |= linebufSprShOp
			}
			v.lineBuf[x] = cur
			continue
		}

		cur.color = palette | nibble
		cur.flags |= linebufSprite
		if highPrio {
			cur.flags |= linebufPriority
		}
		if !highPrio && nibble == 0x0E {
			cur.flags &^= linebufShadow
		}
		v.lineBuf[x] = cur
	}
}

// expandToFramebuffer resolves each line-buffer slot's {color,flags}
// against the active palette and writes the visible columns (320 in
// H40, 256 in H32, centered) into the framebuffer row for line,
// applying border and SMS left-column blanking.
func (v *VDP) expandToFramebuffer(line int, h40 bool) {
	if line < 0 || line >= v.fbHeight {
		return
	}
	outLine := line
	if v.region == RegionNTSC && v.regs.v30 {
		outLine = (line + v.rollingFrame) % v.linesVisible
	}
	hPix := 256
	if h40 {
		hPix = 320
	}
	rowStart := outLine * v.fbWidth
	begin := (v.fbWidth - hPix) / 2

	bg := v.pal.resolve(v.regs.bgColorIndex, palBandNormal)
	if !v.quirks.BorderColorEmulation {
		bg = v.pal.full[0]
	}
	for x := 0; x < v.fbWidth; x++ {
		v.framebuffer[rowStart+x] = bg
	}

	for i := 0; i < hPix; i++ {
		px := v.lineBuf[i+8]
		band := palBandNormal
		switch {
		case px.flags&linebufHighlight != 0:
			band = palBandHighlight
		case px.flags&linebufShadow != 0:
			band = palBandShadow
		}
		v.framebuffer[rowStart+begin+i] = v.pal.resolve(px.color, band)
	}

	if v.regs.leftColBlank {
		for i := 0; i < 8 && begin+i < v.fbWidth; i++ {
			v.framebuffer[rowStart+begin+i] = bg
		}
	}
}
