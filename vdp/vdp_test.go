package vdp

import "testing"

// TestBasicRegisterWrite reproduces scenario 1: writing 0x8174 to the
// control port sets register 1 (Mode5 + display + VINT enable) and
// leaves the control latch in its initial phase.
func TestBasicRegisterWrite(t *testing.T) {
	v := New(nil, RegionNTSC, DefaultQuirks())
	v.WritePort16(0x04, 0x8174)

	if !v.regs.mode5 || !v.regs.displayEnable || !v.regs.vintEnable {
		t.Fatalf("register 1 write did not enable Mode5/display/VINT")
	}
	if v.latch.phase != latchAwaitingFirst {
		t.Fatalf("control latch should remain in its initial phase after a register-write shortcut")
	}
}

// TestVRAMWordWrite reproduces scenario 2: two control-port words set
// up a VRAM write at address 0, then a data-port write of 0x1234
// lands as VRAM[0]=0x12, VRAM[1]=0x34, and the address autoincrements
// to 2 (the power-on default autoIncr).
func TestVRAMWordWrite(t *testing.T) {
	v := New(nil, RegionNTSC, DefaultQuirks())
	v.WritePort16(0x04, 0x4000)
	v.WritePort16(0x04, 0x0000)
	v.WritePort16(0x00, 0x1234)

	if v.mem.vram[0] != 0x12 || v.mem.vram[1] != 0x34 {
		t.Fatalf("VRAM[0:2] = %#x %#x, want 0x12 0x34", v.mem.vram[0], v.mem.vram[1])
	}
	if v.latch.address != 2 {
		t.Fatalf("latch address = %#x, want 2", v.latch.address)
	}
}

// TestInterlaceIM2FrameParity reproduces scenario 5: with reg 12's LSM
// bits set to IM2 (0b11), successive startFrame calls toggle the ODD
// status bit.
func TestInterlaceIM2FrameParity(t *testing.T) {
	v := New(nil, RegionNTSC, DefaultQuirks())
	v.regs.write(regModeSet4, 0x06, false) // LSM=11 -> IM2, RS0/RS1 clear (H32, doesn't matter here)

	v.startFrame()
	firstOdd := v.oddFrame
	v.startFrame()
	secondOdd := v.oddFrame

	if firstOdd == secondOdd {
		t.Fatalf("ODD bit did not toggle across frames under IM2")
	}
}

func TestDMAArmedStatusBitClearsAfterAmortization(t *testing.T) {
	v := New(nil, RegionNTSC, DefaultQuirks())
	v.regs.write(regModeSet2, 0x10, false) // DMA enable bit
	v.regs.write(regAutoInc, 2, false)
	v.regs.setDMALength(1)
	v.regs.write(regDMASrcH, 0xC0, false) // dmaModeCopy

	v.WritePort16(0x04, 0x4000)
	v.WritePort16(0x04, 0x0080) // CD5 set, VRAM destination

	if v.status&statusDMABusy == 0 {
		t.Fatalf("arming a DMA should set the busy status bit")
	}
	if !v.dma.busy {
		t.Fatalf("dma engine should be busy right after arming")
	}

	v.AdvanceLine()

	if v.status&statusDMABusy != 0 {
		t.Fatalf("a 1-word COPY should finish amortizing within a single scanline")
	}
}

func TestReadHVCounterDoesNotPanicWithNullHost(t *testing.T) {
	v := New(nil, RegionNTSC, DefaultQuirks())
	_, err := v.ReadPort16(0x08)
	if err != nil {
		t.Fatalf("unexpected error reading HV counter: %v", err)
	}
}

func TestSavestateRoundTrip(t *testing.T) {
	v := New(nil, RegionNTSC, DefaultQuirks())
	v.WritePort16(0x04, 0x8174)
	v.WritePort16(0x04, 0x4000)
	v.WritePort16(0x04, 0x0000)
	v.WritePort16(0x00, 0x1234)

	data, err := v.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	v2 := New(nil, RegionNTSC, DefaultQuirks())
	if err := v2.Deserialize(data); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	if v2.mem.vram[0] != 0x12 || v2.mem.vram[1] != 0x34 {
		t.Fatalf("restored VRAM mismatch: %#x %#x", v2.mem.vram[0], v2.mem.vram[1])
	}
	if !v2.regs.mode5 || !v2.regs.displayEnable {
		t.Fatalf("restored registers did not rebuild Mode Set 2 derived fields")
	}
}

func TestVerifyStateRejectsCorruptData(t *testing.T) {
	v := New(nil, RegionNTSC, DefaultQuirks())
	data, _ := v.Serialize()
	data[len(data)-1] ^= 0xFF

	if err := v.VerifyState(data); err != errStateCorrupt {
		t.Fatalf("VerifyState on corrupted data = %v, want errStateCorrupt", err)
	}
}
