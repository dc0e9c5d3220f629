// Command mdvdp is a minimal host harness: it wires a vdp.VDP to an
// in-memory 68000 address space standing in for cartridge ROM, drives
// it for one frame, and reports the resulting framebuffer dimensions.
// It exists to exercise the package end-to-end without pulling in a
// windowing toolkit or a real 68000 core, both explicit non-goals.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/segavdp/mdvdp/vdp"
)

// flatBus answers external-DMA reads from a flat byte slice, standing
// in for the 68000's address space the way a real host's memory map
// would.
type flatBus struct {
	mem           []byte
	cyclesPerLine int
	lastReleased  int
}

func newFlatBus(size int) *flatBus {
	return &flatBus{mem: make([]byte, size), cyclesPerLine: 488}
}

func (b *flatBus) ReadWord(address uint32) uint16 {
	a := int(address) % len(b.mem)
	if a+1 >= len(b.mem) {
		return 0
	}
	return uint16(b.mem[a])<<8 | uint16(b.mem[a+1])
}

func (b *flatBus) CyclesPerLine() int  { return b.cyclesPerLine }
func (b *flatBus) ReleaseCycles(n int) { b.lastReleased = n }
func (b *flatBus) Odometer() int       { return 0 }
func (b *flatBus) Interrupt(level int) {}

func main() {
	region := flag.String("region", "ntsc", "ntsc or pal")
	trace := flag.Bool("trace", false, "enable vdp trace logging")
	flag.Parse()

	r := vdp.RegionNTSC
	if *region == "pal" {
		r = vdp.RegionPAL
	}

	bus := newFlatBus(1 << 20)
	v := vdp.New(bus, r, vdp.DefaultQuirks())
	v.Trace = *trace
	v.Logger = log.Default()

	v.WritePort16(0x04, 0x8174) // Mode5 + display + VINT enable

	total := 262
	if r == vdp.RegionPAL {
		total = 312
	}
	for i := 0; i < total; i++ {
		v.AdvanceLine()
	}

	w, h := v.FramebufferSize()
	fmt.Printf("rendered one %s frame: framebuffer %dx%d, %d pixels\n", *region, w, h, len(v.Framebuffer()))
}
