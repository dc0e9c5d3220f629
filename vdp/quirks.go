package vdp

// Quirks bundles the documented hardware bugs this core reproduces.
// Each defaults to the real-hardware-accurate behavior; a test suite
// or debugger front-end may disable individual ones.
type Quirks struct {
	// LeftColumnVScrollBug reproduces the documented edge case where
	// 2-cell VSCROLL reads for column indices outside [0,40) fall back
	// to a masked read of VSRAM 38/39 (H40) or zero (H32) instead of
	// wrapping normally.
	LeftColumnVScrollBug bool

	// LeftColumnWindowBug reproduces the 1-2 column Scroll A fetch
	// from the wrong nametable cell when Window is left-aligned and a
	// fine horizontal scroll is active.
	LeftColumnWindowBug bool

	// ZeroLengthDMA, when true, makes a DMA length register value of
	// 0 transfer nothing instead of wrapping to 65536 words.
	ZeroLengthDMA bool

	// LiftSpriteLimit disables the 20 (H40) / 16 (H32) per-line sprite
	// cache limit, useful for homebrew/debug tooling.
	LiftSpriteLimit bool

	// PaletteUpdateVBlankOnly, when true, regenerates the active
	// palette only on rendered lines where it is marked dirty; when
	// false it is regenerated on every rendered line. In both cases the
	// update happens on the next active-display line; it is not
	// deferred to border-region lines.
	PaletteUpdateVBlankOnly bool

	// BorderColorEmulation fills border columns with the active
	// background color instead of black.
	BorderColorEmulation bool
}

// DefaultQuirks returns the quirk set matching real Genesis/Mega Drive
// hardware behavior.
func DefaultQuirks() Quirks {
	return Quirks{
		LeftColumnVScrollBug:    true,
		LeftColumnWindowBug:     true,
		ZeroLengthDMA:           false,
		LiftSpriteLimit:         false,
		PaletteUpdateVBlankOnly: false,
		BorderColorEmulation:    true,
	}
}
