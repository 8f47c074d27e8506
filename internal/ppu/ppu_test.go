package ppu

import "testing"

// fakeMemory is a flat 16KiB PPU address space good enough to drive the
// background/sprite fetch pipeline without a real mapper.
type fakeMemory struct {
	mem [0x4000]uint8
}

func (f *fakeMemory) Read(addr uint16) uint8  { return f.mem[addr&0x3FFF] }
func (f *fakeMemory) Write(addr uint16, v uint8) { f.mem[addr&0x3FFF] = v }

func stepN(p *PPU, n int) {
	for i := 0; i < n; i++ {
		p.Step()
	}
}

// runToDot advances the PPU until it is about to process (scanline,
// cycle), then executes exactly that dot and returns. Step() checks the
// current (scanline, cycle) at entry, so the final call is the one that
// fires any event gated on that dot.
func runToDot(p *PPU, scanline, cycle int) {
	for i := 0; i < 400000; i++ {
		if p.scanline == scanline && p.cycle == cycle {
			p.Step()
			return
		}
		p.Step()
	}
	panic("runToDot: target dot never reached")
}

func TestVBlank_SetsAtScanline241Dot1AndFiresNMI(t *testing.T) {
	p := New()
	mem := &fakeMemory{}
	p.SetMemory(mem)
	var nmiFired bool
	p.SetNMICallback(func() { nmiFired = true })
	p.WriteRegister(0x2000, 0x80) // enable NMI generation

	runToDot(p, 241, 1)

	if !p.IsVBlank() {
		t.Fatal("expected VBlank flag set at scanline 241 dot 1")
	}
	if !nmiFired {
		t.Fatal("expected NMI callback to fire when GENERATE_NMI is enabled")
	}
}

func TestPPUStatusRead_ClearsVBlankAndWriteToggle(t *testing.T) {
	p := New()
	p.SetMemory(&fakeMemory{})
	runToDot(p, 241, 1)

	p.WriteRegister(0x2005, 0x10) // first scroll write sets w=true
	status := p.ReadRegister(0x2002)
	if status&0x80 == 0 {
		t.Fatal("status read should report VBlank was set")
	}
	if p.IsVBlank() {
		t.Fatal("reading $2002 should clear VBlank")
	}
	// w should be reset; a subsequent PPUSCROLL write should be treated
	// as the first of a pair again.
	p.WriteRegister(0x2005, 0x08)
	p.WriteRegister(0x2005, 0x00)
	// Two writes after reset means the second one completed a pair and
	// reset w back to false.
	if p.w {
		t.Fatal("write toggle should settle false after a completed scroll pair")
	}
}

func TestPreRenderDot1_ClearsSprite0HitAndOverflow(t *testing.T) {
	p := New()
	p.SetMemory(&fakeMemory{})
	p.sprite0Hit = true
	p.spriteOverflow = true
	p.ppuStatus |= 0x40 | 0x20

	runToDot(p, -1, 1)

	if p.sprite0Hit {
		t.Fatal("sprite 0 hit should clear at pre-render dot 1")
	}
	if p.spriteOverflow {
		t.Fatal("sprite overflow should clear at pre-render dot 1")
	}
}

func TestPPUAddrWrite_TwoBytesLoadV(t *testing.T) {
	p := New()
	p.SetMemory(&fakeMemory{})
	p.WriteRegister(0x2006, 0x21)
	p.WriteRegister(0x2006, 0x08)
	if p.v != 0x2108 {
		t.Fatalf("v = %#x, want 0x2108", p.v)
	}
}

func TestPPUDataReadWrite_PaletteIsUnbuffered(t *testing.T) {
	p := New()
	mem := &fakeMemory{}
	mem.mem[0x3F05] = 0x16
	p.SetMemory(mem)
	p.WriteRegister(0x2006, 0x3F)
	p.WriteRegister(0x2006, 0x05)
	if got := p.ReadRegister(0x2007); got != 0x16 {
		t.Fatalf("palette read = %#x, want 0x16 (unbuffered)", got)
	}
}

func TestPPUDataReadWrite_NonPaletteIsBuffered(t *testing.T) {
	p := New()
	mem := &fakeMemory{}
	mem.mem[0x2000] = 0xAB
	mem.mem[0x2001] = 0xCD
	p.SetMemory(mem)
	p.WriteRegister(0x2006, 0x20)
	p.WriteRegister(0x2006, 0x00)
	first := p.ReadRegister(0x2007)
	second := p.ReadRegister(0x2007)
	if first != 0 {
		t.Fatalf("first buffered read = %#x, want 0 (stale buffer)", first)
	}
	if second != 0xAB {
		t.Fatalf("second buffered read = %#x, want 0xAB", second)
	}
}

func TestMapperScanlineHook_FiresAtDot260WhenRenderingEnabled(t *testing.T) {
	p := New()
	p.SetMemory(&fakeMemory{})
	p.WriteRegister(0x2001, 0x18) // enable background + sprites
	var fired int
	p.SetMapperScanlineHook(func() { fired++ })

	runToDot(p, 0, 260)

	if fired != 1 {
		t.Fatalf("mapper hook fired %d times, want 1", fired)
	}
}

func TestFrameCount_IncrementsOncePerFrame(t *testing.T) {
	p := New()
	p.SetMemory(&fakeMemory{})
	dotsPerFrame := (p.tv.preRenderLine() + 1) * 341
	stepN(p, dotsPerFrame)
	if p.GetFrameCount() != 1 {
		t.Fatalf("frame count = %d, want 1 after one full frame of dots", p.GetFrameCount())
	}
}

func TestColorToRGB_AllThreePalettesAreDistinctTables(t *testing.T) {
	if colorToRGB(1, PaletteDefault) == colorToRGB(1, PaletteSonyCXA) &&
		colorToRGB(1, PaletteSonyCXA) == colorToRGB(1, PaletteFCEUX) {
		t.Fatal("expected the three palette tables to differ at index 1")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	p := New()
	p.SetMemory(&fakeMemory{})
	p.WriteRegister(0x2000, 0x80)
	p.WriteRegister(0x2006, 0x21)
	p.WriteRegister(0x2006, 0x08)
	snap := p.Snapshot()

	p2 := New()
	p2.Restore(snap)
	if p2.v != p.v || p2.ppuCtrl != p.ppuCtrl {
		t.Fatal("restored PPU state does not match snapshot")
	}
}

func TestSnapshotMarshalBinary_RoundTrips(t *testing.T) {
	p := New()
	p.SetMemory(&fakeMemory{})
	p.SetPalette(PaletteFCEUX)
	p.WriteRegister(0x2000, 0x80)
	snap := p.Snapshot()

	data, err := snap.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(data) != BinarySize {
		t.Fatalf("encoded size = %d, want %d", len(data), BinarySize)
	}
	var got Snapshot
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if got.Palette != PaletteFCEUX || got.PPUCtrl != snap.PPUCtrl {
		t.Fatal("restored snapshot does not match the encoded one")
	}
}
