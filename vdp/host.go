package vdp

// HostBus is the set of callbacks the VDP needs from the system it is
// plugged into: the 68000 address space for external DMA, the CPU's
// cycle budget for DMA cycle stealing, and the interrupt line.
//
// Modeled as an interface rather than a set of function pointers so
// tests can inject a fake bus without wiring up a CPU core.
type HostBus interface {
	// ReadWord reads a big-endian word from the 68000 address space at
	// the given byte address, for external-to-internal DMA.
	ReadWord(address uint32) uint16

	// CyclesPerLine returns the number of 68000 cycles the host CPU
	// runs per scanline at the current H-mode (H32/H40).
	CyclesPerLine() int

	// ReleaseCycles is called once per line with the number of cycles
	// DMA stole from the CPU's budget for that line.
	ReleaseCycles(n int)

	// Odometer returns the number of 68000 cycles elapsed since the
	// start of the current scanline, used to locate the sub-line
	// phase for HV counter reads.
	Odometer() int

	// Interrupt asserts level on the 68000's interrupt lines, or
	// clears the VDP's request if level is -1.
	Interrupt(level int)
}

// NullHostBus is a HostBus that answers every external dependency with
// the hardware-neutral zero value. Useful for unit tests that only
// exercise register/port behavior and never arm DMA.
type NullHostBus struct {
	CyclesPerLineValue int
}

func (NullHostBus) ReadWord(address uint32) uint16 { return 0 }

func (h NullHostBus) CyclesPerLine() int {
	if h.CyclesPerLineValue == 0 {
		return 488 // H40 default CPL at 7.67 MHz / NTSC line rate
	}
	return h.CyclesPerLineValue
}

func (NullHostBus) ReleaseCycles(n int) {}
func (NullHostBus) Odometer() int       { return 0 }
func (NullHostBus) Interrupt(level int) {}
