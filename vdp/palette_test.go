package vdp

import "testing"

// TestPaletteRegenerationAfterBGColorChange reproduces the documented
// scenario: CRAM[2] = 0x0EEE (white), reg7 selects palette/index 2
// (palette 0, index 2), then palette/index 4 (palette 0, index 4);
// both must resolve through the background override at table index 0.
func TestPaletteRegenerationAfterBGColorChange(t *testing.T) {
	p := newPaletteEngine()
	var cram [cramEntries]uint16
	cram[2] = 0x0EEE

	p.update(&cram, 2, false)
	if p.table[0] != p.full[0x0EEE] {
		t.Fatalf("table[0] = %#x, want full[0x0EEE] = %#x", p.table[0], p.full[0x0EEE])
	}
	if p.dirtyActive {
		t.Fatalf("update should clear dirtyActive")
	}

	p.update(&cram, 4, false)
	if p.table[0] != p.full[cram[4]&mdColorMaskFull] {
		t.Fatalf("table[0] after bgColorIdx=4 = %#x, want full[%#x]", p.table[0], cram[4])
	}
}

func TestPaletteShadowHighlightBands(t *testing.T) {
	p := newPaletteEngine()
	var cram [cramEntries]uint16
	cram[5] = 0x0EEE

	p.update(&cram, 0, true)

	half := uint16(0x0EEE) >> 1
	wantShadow := p.full[half&0xEEE]
	if p.table[5+64] != wantShadow {
		t.Fatalf("shadow band = %#x, want %#x", p.table[5+64], wantShadow)
	}

	hi := (0x888 | half) - 0x111
	wantHighlight := p.full[hi&0xEEE]
	if p.table[5+128] != wantHighlight {
		t.Fatalf("highlight band = %#x, want %#x", p.table[5+128], wantHighlight)
	}
}

func TestPaletteResolveMasksColorIndex(t *testing.T) {
	p := newPaletteEngine()
	var cram [cramEntries]uint16
	cram[3] = 0x0E00
	p.update(&cram, 0, false)

	got := p.resolve(0x43, palBandNormal) // high bits should be masked off
	if got != p.table[3] {
		t.Fatalf("resolve(0x43) = %#x, want table[3] = %#x", got, p.table[3])
	}
}
