package vdp

// hCounterTable is Vdp::VdpPrivate's H_Counter_Table: a 512-entry
// table indexed by sub-line CPU-cycle phase, columns [H32, H40].
// Built once at construction from the exact ratios hardware measures.
type hCounterTable [512][2]uint8

func newHCounterTable() *hCounterTable {
	var t hCounterTable
	for hc := 0; hc < 512; hc++ {
		t[hc][0] = uint8((hc*170)/488 - 0x18)
		t[hc][1] = uint8((hc*205)/488 - 0x1C)
	}
	return &t
}

// hvCounter derives the H and V counter bytes the $C00008 family of
// ports report, following Vdp::readHCounter/readVCounter exactly:
// sub-line phase comes from how many cycles the host CPU odometer has
// advanced within the current line.
type hvCounter struct {
	table *hCounterTable
}

func newHVCounter() *hvCounter {
	return &hvCounter{table: newHCounterTable()}
}

// subLinePhase recovers the 9-bit phase value from the host's
// odometer: odometer minus (cyclesPerLine - remainingBudget), masked
// to 512. The host supplies both via Odometer()/CyclesPerLine(); the
// "remaining budget" half is folded into the line's starting odometer
// snapshot the caller passes in.
func subLinePhase(odometer int, cyclesIntoLine int) uint32 {
	return uint32(odometer-cyclesIntoLine) & 0x1FF
}

func (h *hvCounter) hCounter(phase uint32, h40 bool) uint8 {
	if h40 {
		return h.table[phase][1]
	}
	return h.table[phase][0]
}

// vCounter implements the documented "early latch" quirk: near the
// end of a line (H_Counter in a narrow window) the V counter reads one
// ahead of currentLine, and the NTSC/PAL overflow tables wrap the
// displayed range back into the visible band.
func (h *hvCounter) vCounter(currentLine int, phase uint32, h40, pal, im2 bool) uint8 {
	hc := h.hCounter(phase, h40)

	thresh := uint8(0x84)
	if h40 {
		thresh = 0xA4
	}
	bh := hc <= 0xE0
	bl := hc >= thresh
	vBump := bh && bl

	v := currentLine
	if vBump {
		v++
	}

	if pal {
		if v >= 0x103 {
			v -= 56
		}
	} else {
		if v >= 0xEB {
			v -= 6
		}
	}

	if im2 {
		vc := uint8(v)
		return (vc << 1) | (vc >> 7)
	}
	return uint8(v)
}

// readHVPort packs the two counters as the $C00008-family word.
func (h *hvCounter) readHVPort(currentLine int, phase uint32, h40, pal, im2 bool) uint16 {
	vc := h.vCounter(currentLine, phase, h40, pal, im2)
	hc := h.hCounter(phase, h40)
	return uint16(vc)<<8 | uint16(hc)
}
