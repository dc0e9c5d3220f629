package vdp

const (
	vramSize64K  = 0x10000
	vramSize128K = 0x20000

	cramEntries  = 64
	vsramEntries = 40

	// satShadowSize mirrors the widest SAT window (80 sprites * 8 bytes,
	// rounded up to the 128-entry shadow spec.md's data model calls for).
	satShadowSize = 128 * 8

	// cramColorMask keeps only the BGR 3-bits-per-channel nibbles real
	// CRAM hardware implements; see VdpPalette_update.cpp's mdColorMask.
	cramColorMask = 0x0EEE
)

// memory holds the three VDP-private address spaces plus the SAT
// shadow cache. It has no register knowledge of its own; vdp.go
// supplies the SAT window on every VRAM write.
type memory struct {
	vram  []uint8 // sized vramSize64K or vramSize128K depending on mode
	cram  [cramEntries]uint16
	vsram [vsramEntries]uint16
	sat   [satShadowSize]uint8
}

func newMemory(wide128K bool) *memory {
	size := vramSize64K
	if wide128K {
		size = vramSize128K
	}
	return &memory{vram: make([]uint8, size)}
}

func (m *memory) resize(wide128K bool) {
	size := vramSize64K
	if wide128K {
		size = vramSize128K
	}
	if len(m.vram) == size {
		return
	}
	nv := make([]uint8, size)
	copy(nv, m.vram)
	m.vram = nv
}

func (m *memory) vramMask() uint32 {
	return uint32(len(m.vram) - 1)
}

func (m *memory) reset() {
	for i := range m.vram {
		m.vram[i] = 0
	}
	m.cram = [cramEntries]uint16{}
	m.vsram = [vsramEntries]uint16{}
	m.sat = [satShadowSize]uint8{}
}

// readVRAMWord returns the big-endian word at the even address.
func (m *memory) readVRAMWord(address uint32) uint16 {
	a := address & m.vramMask() &^ 1
	return uint16(m.vram[a])<<8 | uint16(m.vram[(a+1)&m.vramMask()])
}

// readVRAMByte implements the "read VRAM 8-bit" access code: the low
// byte comes from VRAM at the XOR'd odd address, the high byte is
// modeled as zero (no FIFO residue is implemented).
func (m *memory) readVRAMByte(address uint32) uint16 {
	a := (address ^ 1) & m.vramMask()
	return uint16(m.vram[a])
}

// writeVRAMWord stores value at address, swapping bytes when address
// is odd (the word is always written at the even address), then syncs
// the SAT shadow if the write lands inside [satBase, satBase+satSize).
func (m *memory) writeVRAMWord(address uint32, value uint16, satBase, satSize uint32) {
	mask := m.vramMask()
	a := address & mask
	hi := uint8(value >> 8)
	lo := uint8(value)
	even := a &^ 1
	if a&1 != 0 {
		hi, lo = lo, hi
	}
	m.vram[even] = hi
	m.vram[(even+1)&mask] = lo
	m.syncSAT(even, satBase, satSize)
	m.syncSAT((even+1)&mask, satBase, satSize)
}

// writeVRAMByteFill reproduces DMA_Fill's single-byte write per
// iteration: only the high byte of the data word is stored, and it
// lands at address^1 rather than at address itself.
func (m *memory) writeVRAMByteFill(address uint32, fillByte uint8, satBase, satSize uint32) {
	mask := m.vramMask()
	a := (address ^ 1) & mask
	m.vram[a] = fillByte
	m.syncSAT(a, satBase, satSize)
}

func (m *memory) syncSAT(vramAddr, satBase, satSize uint32) {
	if satSize == 0 {
		return
	}
	rel := (vramAddr - satBase) & m.vramMask()
	if rel >= satSize {
		return
	}
	if int(rel) < len(m.sat) {
		m.sat[rel] = m.vram[vramAddr]
	}
}

// reloadSAT repopulates the entire SAT shadow from VRAM. Nothing in
// the package calls it: a SAT base register write does not reload the
// shadow, and savestate restore copies the saved shadow bytes.
func (m *memory) reloadSAT(satBase, satSize uint32) {
	mask := m.vramMask()
	n := satSize
	if int(n) > len(m.sat) {
		n = uint32(len(m.sat))
	}
	for i := uint32(0); i < n; i++ {
		m.sat[i] = m.vram[(satBase+i)&mask]
	}
}

// readCRAM returns the masked color word at the given control-port
// address (address&0x7E selects one of 64 word entries).
func (m *memory) readCRAM(address uint32) uint16 {
	idx := (address & 0x7E) >> 1
	return m.cram[idx] & cramColorMask
}

// writeCRAM reproduces the documented bug where writes at or above
// byte address 0x80 are silently dropped instead of wrapping.
func (m *memory) writeCRAM(address uint32, value uint16) {
	if address >= 0x80 {
		return
	}
	idx := (address & 0x7E) >> 1
	m.cram[idx] = value & cramColorMask
}

func (m *memory) readVSRAM(address uint32) uint16 {
	idx := (address & 0x7E) >> 1
	if int(idx) >= vsramEntries {
		return 0
	}
	return m.vsram[idx] & 0x3FF
}

func (m *memory) writeVSRAM(address uint32, value uint16) {
	idx := (address & 0x7E) >> 1
	if int(idx) >= vsramEntries {
		return
	}
	m.vsram[idx] = value & 0x3FF
}
