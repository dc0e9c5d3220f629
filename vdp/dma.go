package vdp

// DMA transfer kinds, matching VdpDma.cpp's DMAT_Type ordering; bit 1
// set means "internal" (FILL/COPY) and never steals CPU cycles.
const (
	dmaKindMemToVRAM      = 0
	dmaKindMemToCRAMVSRAM = 1
	dmaKindFill           = 2
	dmaKindCopy           = 3
)

// dmaTimingTable is DMA_Timing_Table from VdpDma.cpp: words/bytes of
// transfer budget per scanline, indexed [kind][h40*2 + blanking].
var dmaTimingTable = [4][4]uint16{
	{8, 83, 9, 102},
	{16, 167, 18, 205},
	{15, 166, 17, 204},
	{8, 83, 9, 102},
}

// destCode values, the low nibble of the latch's access code that
// selects a data-port destination/source.
const (
	destVRAM  = 0x01
	destCRAM  = 0x03
	destVSRAM = 0x05
)

// dmaState is the engine's line-by-line progress counter. The actual
// transfer happens synchronously when armed; dmaState only tracks how
// many cycles of "the host CPU was busy" remain to be billed.
type dmaState struct {
	busy   bool
	kind   uint8
	length int // DMAT_Length
}

// dataWriteByCode performs the §4.2 write access for the given
// 4-bit destination code, ignoring CD5/CD4.
func (v *VDP) dataWriteByCode(code uint8, address uint32, value uint16) {
	switch code & 0x0F {
	case destVRAM:
		v.mem.writeVRAMWord(address, value, v.regs.satTableAddr, v.regs.satSizeBytes())
	case destCRAM:
		v.mem.writeCRAM(address, value)
		v.pal.dirtyActive = true
	case destVSRAM:
		v.mem.writeVSRAM(address, value)
	}
}

// dataReadByCode performs the §4.2 read access for the given 4-bit
// source code.
func (v *VDP) dataReadByCode(code uint8, address uint32) uint16 {
	switch code & 0x0F {
	case 0x00:
		return v.mem.readVRAMWord(address)
	case 0x08:
		return v.mem.readCRAM(address)
	case 0x04:
		return v.mem.readVSRAM(address)
	default:
		return 0
	}
}

// onDMAArmed runs right after a control-word pair sets CD5 for the
// first time. FILL is deferred until the next data-port write; COPY
// and external transfers run synchronously here, matching
// processDmaCtrlWrite.
func (v *VDP) onDMAArmed() {
	switch v.regs.dmaMode {
	case dmaModeFill:
		return
	case dmaModeCopy:
		v.dmaCopy()
	default:
		v.dmaExternal()
	}
}

func (v *VDP) dmaClearArmed() {
	v.latch.code &^= 0x20
}

func (v *VDP) dmaEffectiveLength() (length int, skip bool) {
	l := int(v.regs.dmaLength())
	if l == 0 {
		if v.quirks.ZeroLengthDMA {
			return 0, true
		}
		return 0x10000, false
	}
	return l, false
}

// dmaFillTrigger implements DMA_Fill: a data-port write while CD5 is
// set and the armed DMA mode is FILL.
func (v *VDP) dmaFillTrigger(data uint16) {
	length, skip := v.dmaEffectiveLength()
	v.dmaClearArmed()
	if skip {
		v.dma.busy = false
		return
	}

	v.dma.busy = true
	v.dma.kind = dmaKindFill
	v.dma.length = length
	v.regs.setDMALength(0)

	address := v.latch.address
	fillHi := uint8(data >> 8)
	destCode := v.latch.code & 0x07

	remaining := length
	for {
		switch destCode {
		case destVRAM:
			v.mem.writeVRAMByteFill(address, fillHi, v.regs.satTableAddr, v.regs.satSizeBytes())
		case destCRAM:
			v.mem.writeCRAM(address, data)
			v.pal.dirtyActive = true
		case destVSRAM:
			v.mem.writeVSRAM(address, data)
		default:
			v.dma.busy = false
			v.dma.length = 0
			v.latch.address = address & v.mem.vramMask()
			return
		}
		address = (address + uint32(v.regs.autoIncr)) & v.mem.vramMask()
		remaining--
		if remaining == 0 {
			break
		}
	}
	v.latch.address = address

	// DMA FILL advances the source address register too, even though
	// FILL never reads from it (hardware artifact).
	v.regs.setDMASourceWord(v.regs.dmaSourceWord() + uint32(length))
}

// dmaCopy implements the VRAM-to-VRAM COPY transfer.
func (v *VDP) dmaCopy() {
	length, skip := v.dmaEffectiveLength()
	if skip {
		v.dmaClearArmed()
		return
	}

	src := v.regs.dmaSourceWord() & v.mem.vramMask()
	dst := v.latch.address & v.mem.vramMask()

	v.dma.busy = true
	v.dma.kind = dmaKindCopy
	v.dma.length = length
	v.regs.setDMALength(0)

	mask := v.mem.vramMask()
	satBase, satSize := v.regs.satTableAddr, v.regs.satSizeBytes()
	remaining := length
	for {
		b := v.mem.vram[src]
		v.mem.vram[dst] = b
		v.mem.syncSAT(dst, satBase, satSize)
		src = (src + 1) & mask
		dst = (dst + uint32(v.regs.autoIncr)) & mask
		remaining--
		if remaining == 0 {
			break
		}
	}

	v.regs.setDMASourceWord((v.regs.dmaSourceWord() + uint32(length)) & 0x3FFFFF)
	v.latch.address = dst
}

// dmaExternal implements the mem(68000)->VRAM/CRAM/VSRAM transfer,
// including the 128 KiB source wrap bug.
func (v *VDP) dmaExternal() {
	length, skip := v.dmaEffectiveLength()
	if skip {
		v.dmaClearArmed()
		return
	}

	srcWord := v.regs.dmaSourceWord()
	srcByteAddr := srcWord << 1

	v.dma.busy = true
	if v.latch.code&0x07 == destVRAM {
		v.dma.kind = dmaKindMemToVRAM
	} else {
		v.dma.kind = dmaKindMemToCRAMVSRAM
	}
	v.dma.length = length
	v.regs.setDMALength(0)

	srcWordAddr := uint32(uint16(srcByteAddr >> 1))
	srcBase := (srcByteAddr & 0xFE0000) >> 1

	destCode := v.latch.code & 0x07
	address := v.latch.address

	remaining := length
	for {
		reqAddr := (srcWordAddr | srcBase) << 1
		w := v.host.ReadWord(reqAddr)
		srcWordAddr = (srcWordAddr + 1) & 0xFFFF

		switch destCode {
		case destVRAM:
			v.mem.writeVRAMWord(address, w, v.regs.satTableAddr, v.regs.satSizeBytes())
		case destCRAM:
			v.mem.writeCRAM(address, w)
			v.pal.dirtyActive = true
		case destVSRAM:
			v.mem.writeVSRAM(address, w)
		}
		address = (address + uint32(v.regs.autoIncr)) & v.mem.vramMask()

		remaining--
		if remaining == 0 {
			break
		}
	}
	v.latch.address = address
	v.dmaClearArmed()
}

// tickDMA is called once per scanline; it amortizes the armed DMA's
// remaining length against the per-line rate table and reports the
// number of 68000 cycles the host must wait (0 for internal DMA or
// once nothing is in flight).
func (v *VDP) tickDMA(cpuCyclesPerLine int, activeDisplay bool) int {
	if !v.dma.busy {
		return 0
	}

	offset := 0
	if v.regs.h40 {
		offset = 2
	}
	if !activeDisplay || !v.regs.displayEnable {
		offset |= 1
	}

	timing := int(dmaTimingTable[v.dma.kind&3][offset])
	cycles := cpuCyclesPerLine

	if v.dma.length > timing {
		v.dma.length -= timing
		if v.dma.kind&2 != 0 {
			return 0
		}
		return cycles
	}

	lenTmp := v.dma.length
	v.dma.length = 0
	v.dma.busy = false

	cycles = int((int64(cycles) << 16) / int64(timing) * int64(lenTmp) >> 16)
	if v.dma.kind&2 != 0 {
		return 0
	}
	return cycles
}
