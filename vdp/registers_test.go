package vdp

import "testing"

func TestRegisterWriteMode5AndVIntEnable(t *testing.T) {
	r := newRegisters()
	r.write(regModeSet2, 0x74, false) // Mode5 | display | VINT enable, per the 0x8174 scenario
	if !r.mode5 {
		t.Fatalf("mode5 not set")
	}
	if !r.displayEnable {
		t.Fatalf("displayEnable not set")
	}
	if !r.vintEnable {
		t.Fatalf("vintEnable not set")
	}
}

func TestRegisterResetDefaultsToH40(t *testing.T) {
	r := newRegisters()
	if !r.h40 {
		t.Fatalf("power-on default should be H40")
	}
	if r.autoIncr != 2 {
		t.Fatalf("autoIncr = %d, want 2", r.autoIncr)
	}
	if r.displayEnable {
		t.Fatalf("display should start disabled")
	}
}

func TestScrollSizeTableSelection(t *testing.T) {
	r := newRegisters()
	r.write(regScrSize, 0x11, false) // 64x64 both planes
	if r.hScrollCMul != 0x06 || r.hScrollCMask != 0x3F {
		t.Fatalf("hScrollCMul/Mask = %#x/%#x, want 0x06/0x3F", r.hScrollCMul, r.hScrollCMask)
	}
	if r.vScrollCMask != 0x3F {
		t.Fatalf("vScrollCMask = %#x, want 0x3F", r.vScrollCMask)
	}
}

func TestSATAddressMaskH40VsH32(t *testing.T) {
	r := newRegisters()
	r.write(regModeSet4, 0x81, false) // H40
	r.write(regSATAddr, 0xFF, false)
	h40Addr := r.satTableAddr

	r.write(regModeSet4, 0x80, false) // H32
	r.write(regSATAddr, 0xFF, false)
	h32Addr := r.satTableAddr

	if h40Addr == h32Addr {
		t.Fatalf("SAT address mask should differ between H40 and H32")
	}
}

func TestRegistersRestoreRebuildsDerivedFields(t *testing.T) {
	r := newRegisters()
	r.write(regModeSet2, 0x74, false)
	r.write(regScrAAddr, 0x10, false)

	var raw [24]uint8
	copy(raw[:], r.reg[:])

	r2 := newRegisters()
	r2.restore(raw, false)

	if r2.mode5 != r.mode5 || r2.displayEnable != r.displayEnable {
		t.Fatalf("restore did not rebuild Mode Set 2 derived fields")
	}
	if r2.scrATableAddr != r.scrATableAddr {
		t.Fatalf("restore did not rebuild Scroll A table address")
	}
}

func TestDMALengthPacking(t *testing.T) {
	r := newRegisters()
	r.setDMALength(0x1234)
	if r.dmaLength() != 0x1234 {
		t.Fatalf("dmaLength() = %#x, want 0x1234", r.dmaLength())
	}
}
