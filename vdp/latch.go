package vdp

// latchPhase is the explicit state of the two-word control-port
// protocol, kept as an enum rather than a bare bool per the
// re-architecture guidance: the phase, not just "has a word arrived",
// is what the second write depends on.
type latchPhase int

const (
	latchAwaitingFirst latchPhase = iota
	latchAwaitingSecond
)

// controlLatch is the {address, code, addr-hi latch, phase} tuple
// spec.md's data model calls the "command latch". DMA-mode itself
// lives in the DMA-source-high register, not here.
type controlLatch struct {
	phase       latchPhase
	address     uint32 // 17-bit effective VRAM/CRAM/VSRAM address
	code        uint8  // 6-bit access code (CD5..CD0)
	addrHiLatch uint32
}

func (c *controlLatch) reset() {
	*c = controlLatch{}
}

// ctrlWriteOutcome reports the side effects vdp.go must apply after a
// control-port write: either a register-write shortcut, or an updated
// latch state that may have just armed DMA.
type ctrlWriteOutcome struct {
	registerWrite bool
	regNum        uint8
	regValue      uint8
	dmaJustArmed  bool
}

// writeCtrl implements §4.1's two-word protocol. dmaEnabled reflects
// the M1 DMA-enable register bit; wide128K reflects VRAM size mode;
// maxReg is 23 in Mode 5 and 10 otherwise (legacy register shortcut).
func (c *controlLatch) writeCtrl(word uint16, dmaEnabled, wide128K bool, maxReg uint8) ctrlWriteOutcome {
	if c.phase == latchAwaitingFirst {
		c.address = (c.address &^ 0x3FFF) | uint32(word&0x3FFF) | c.addrHiLatch
		c.code = (c.code &^ 0x03) | uint8(word>>14)&0x03

		if word&0xC000 == 0x8000 {
			regNum := uint8(word>>8) & 0x1F
			if regNum > maxReg {
				return ctrlWriteOutcome{}
			}
			return ctrlWriteOutcome{
				registerWrite: true,
				regNum:        regNum,
				regValue:      uint8(word),
			}
		}

		c.phase = latchAwaitingSecond
		return ctrlWriteOutcome{}
	}

	c.phase = latchAwaitingFirst

	var hiMask uint16 = 0x0003
	if wide128K {
		hiMask = 0x0007
	}
	c.addrHiLatch = uint32(word&hiMask) << 14
	c.address = (c.address & 0x3FFF) | c.addrHiLatch
	c.code = (c.code &^ 0x1C) | uint8(word>>2)&0x1C

	wasDMA := c.code&0x20 != 0
	if dmaEnabled {
		c.code = (c.code &^ 0x20) | uint8(word>>2)&0x20
	}
	nowDMA := c.code&0x20 != 0

	return ctrlWriteOutcome{dmaJustArmed: nowDMA && !wasDMA}
}
