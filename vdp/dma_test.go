package vdp

import "testing"

// TestDMAFillWritesRepeatedByte reproduces the documented scenario: a
// FILL of 0x42 over 0x10 bytes starting at VRAM $100.
func TestDMAFillWritesRepeatedByte(t *testing.T) {
	v := New(nil, RegionNTSC, DefaultQuirks())
	v.regs.write(regAutoInc, 1, false)
	v.regs.setDMALength(0x10)
	v.regs.write(regDMASrcH, 0x80, false) // top 2 bits = dmaModeFill

	v.latch.code = destVRAM | 0x20 // armed, VRAM destination
	v.latch.address = 0x100

	v.dmaFillTrigger(0x4242)

	for i := uint32(0); i < 0x10; i++ {
		got := v.mem.vram[0x100+i]
		if got != 0x42 {
			t.Fatalf("vram[%#x] = %#x, want 0x42", 0x100+i, got)
		}
	}
	if v.dma.length != 0x10 {
		t.Fatalf("dma.length after fill = %d, want 16 (left for tickDMA to amortize)", v.dma.length)
	}
	if v.regs.dmaLength() != 0 {
		t.Fatalf("reg DMA length should read back 0 after a completed transfer")
	}
}

func TestDMAFillZeroLengthQuirk(t *testing.T) {
	v := New(nil, RegionNTSC, DefaultQuirks())
	v.quirks.ZeroLengthDMA = true
	v.regs.setDMALength(0)
	v.latch.code = destVRAM | 0x20

	v.dmaFillTrigger(0x0099)

	if v.dma.busy {
		t.Fatalf("zero-length FILL should not leave the engine busy")
	}
}

func TestDMACopyTransfersWithinVRAM(t *testing.T) {
	v := New(nil, RegionNTSC, DefaultQuirks())
	v.mem.vram[0x200] = 0xAB
	v.mem.vram[0x201] = 0xCD

	v.regs.write(regAutoInc, 1, false)
	v.regs.setDMALength(2)
	v.regs.setDMASourceWord(0x200)
	v.regs.write(regDMASrcH, 0xC0, false) // dmaModeCopy
	v.latch.address = 0x300

	v.dmaCopy()

	if v.mem.vram[0x300] != 0xAB || v.mem.vram[0x301] != 0xCD {
		t.Fatalf("copy did not reproduce source bytes: got %#x %#x", v.mem.vram[0x300], v.mem.vram[0x301])
	}
}

func TestDMADestinationCodeDispatch(t *testing.T) {
	v := New(nil, RegionNTSC, DefaultQuirks())
	v.dataWriteByCode(destCRAM, 0x04, 0x0EEE)
	if v.mem.cram[2] != 0x0EEE {
		t.Fatalf("CRAM write via destCRAM code did not land, got %#x", v.mem.cram[2])
	}
	if !v.pal.dirtyActive {
		t.Fatalf("a CRAM write must mark the palette dirty")
	}

	got := v.dataReadByCode(0x08, 0x04)
	if got != 0x0EEE {
		t.Fatalf("CRAM read via code 0x08 = %#x, want 0x0EEE", got)
	}
}
