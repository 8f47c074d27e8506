// Package mapper implements cartridge bus arbitration: PRG/CHR bank
// switching, nametable mirroring, and per-scanline IRQ generation.
package mapper

// Mirror represents nametable mirroring mode.
type Mirror uint8

const (
	MirrorHorizontal Mirror = iota
	MirrorVertical
	MirrorSingleScreen0
	MirrorSingleScreen1
	MirrorFourScreen
)

// nameTableMap resolves the four logical nametable slots to physical
// byte offsets within the PPU's 4KiB VRAM, per the given mirroring mode.
func nameTableMap(m Mirror) [4]uint16 {
	switch m {
	case MirrorVertical:
		return [4]uint16{0x000, 0x400, 0x000, 0x400}
	case MirrorSingleScreen0:
		return [4]uint16{0x000, 0x000, 0x000, 0x000}
	case MirrorSingleScreen1:
		return [4]uint16{0x400, 0x400, 0x400, 0x400}
	case MirrorFourScreen:
		return [4]uint16{0x000, 0x400, 0x800, 0xC00}
	default: // MirrorHorizontal
		return [4]uint16{0x000, 0x000, 0x400, 0x400}
	}
}

// IRQLine is the callback a mapper uses to assert the CPU's IRQ line. It
// models the mapper's back-reference to the emulator as a function plus
// opaque context rather than a pointer to the owner.
type IRQLine func(assert bool)

// Mapper is the polymorphic cartridge bus contract every cartridge variant
// implements. PRG/CHR bank state is expressed as byte offsets into the
// owned ROM/RAM slices (arena + index) rather than raw pointers, so the
// whole mapper is serialisable and alias-free.
type Mapper interface {
	// ReadPRG services CPU reads in $4020-$FFFF.
	ReadPRG(addr uint16) uint8
	// WritePRG services CPU writes in $6000-$FFFF (and $4020-$5FFF for
	// mappers with expansion registers there).
	WritePRG(addr uint16, val uint8)
	// ReadCHR/WriteCHR service PPU pattern-table accesses in $0000-$1FFF.
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, val uint8)
	// Mirror returns the current nametable mirroring mode.
	Mirror() Mirror
	// NameTableMap resolves logical nametable index (0-3) to the physical
	// byte offset within the PPU's 4KiB VRAM.
	NameTableMap() [4]uint16
	// OnScanline is invoked once per visible scanline at dot 260 when
	// rendering is enabled; MMC3-class mappers decrement (or reload) an
	// IRQ counter here and assert IRQ when it reaches zero.
	OnScanline()
	// Reset restores the power-on bank configuration.
	Reset()

	// Snapshot and Restore serialise mapper-private state for save-states.
	// PRGOffset/CHROffset are byte offsets into PRG/CHR ROM for the
	// "current bank" pointer; Extension is the opaque, bounded per-variant
	// register block.
	Snapshot() Snapshot
	Restore(s Snapshot)

	// PRGRAM exposes the battery/work RAM arena, or nil on boards with
	// none, for the save-state codec's dedicated PRG-RAM section (kept
	// separate from Extension since it would overflow that block's
	// 2048-byte bound).
	PRGRAM() []byte
	RestorePRGRAM(data []byte)
}

// maxExtension bounds the per-variant opaque register block, per spec.
const maxExtension = 2048

// Snapshot is the position-independent, pointer-free save-state record for
// a mapper: offsets instead of base pointers, a fixed-size zero-padded
// extension block instead of mapper-private pointers.
type Snapshot struct {
	PRGOffset    uint32
	CHROffset    uint32
	Mirror       Mirror
	HasExtension bool
	Extension    [maxExtension]byte
	RAMSize      uint32
}

// New builds the mapper for the given iNES mapper number. CHR may be a
// ROM (read-only) or a RAM (writable) slice; PRGRAM is nil when the
// cartridge carries no battery-backed/work RAM.
func New(id uint8, prgROM, chr []byte, chrIsRAM bool, prgRAM []byte, mirror Mirror, irq IRQLine) Mapper {
	switch id {
	case 1:
		return newMMC1(prgROM, chr, chrIsRAM, prgRAM, mirror)
	case 2:
		return newUxROM(prgROM, chr, chrIsRAM, mirror)
	case 3:
		return newCNROM(prgROM, chr, chrIsRAM, mirror)
	case 4:
		return newMMC3(prgROM, chr, chrIsRAM, prgRAM, mirror, irq)
	default:
		return newNROM(prgROM, chr, chrIsRAM, prgRAM, mirror)
	}
}

func clampExtension(dst *[maxExtension]byte, src []byte) {
	for i := range dst {
		dst[i] = 0
	}
	copy(dst[:], src)
}
