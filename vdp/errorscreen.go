package vdp

// errorScreenState caches the last rendered mode/resolution so the
// diagnostic renderer only redraws when something actually changed,
// matching VdpRend_Err's caching strategy but driven by our own
// register snapshot instead of its bespoke mode struct.
type errorScreenState struct {
	valid     bool
	lastMode5 bool
	lastH40   bool
	lastBG    uint8
}

// smpteBarColors is the classic 7-bar SMPTE pattern, used verbatim
// since Mode 0-4 isn't a real rendering target, just a diagnostic.
var smpteBarColors = [7]uint32{
	0xC0C0C0, 0xC0C000, 0x00C0C0, 0x00C000,
	0xC000C0, 0xC00000, 0x0000C0,
}

// renderErrorLine fills the framebuffer row for line with color bars
// once per mode change; a VDP mode outside Mode 5 isn't otherwise
// emulated (§4.8's Non-goal), so this exists purely so a debugger
// front-end has something legible to show.
func (v *VDP) renderErrorLine(line int) {
	if line < 0 || line >= v.fbHeight {
		return
	}

	if v.errFB.valid && v.errFB.lastMode5 == v.regs.mode5 &&
		v.errFB.lastH40 == v.regs.h40 && v.errFB.lastBG == v.regs.bgColorIndex {
		return
	}
	if line == v.fbHeight-1 {
		v.errFB.valid = true
		v.errFB.lastMode5 = v.regs.mode5
		v.errFB.lastH40 = v.regs.h40
		v.errFB.lastBG = v.regs.bgColorIndex
	}

	rowStart := line * v.fbWidth
	barWidth := v.fbWidth / len(smpteBarColors)
	for x := 0; x < v.fbWidth; x++ {
		bar := x / barWidth
		if bar >= len(smpteBarColors) {
			bar = len(smpteBarColors) - 1
		}
		v.framebuffer[rowStart+x] = smpteBarColors[bar]
	}
}
