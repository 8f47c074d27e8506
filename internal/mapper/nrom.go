package mapper

// nrom implements iNES mapper 0: a fixed 16KiB or 32KiB PRG window,
// mirrored when the cartridge only supplies 16KiB, plus a fixed 8KiB CHR
// window and an 8KiB PRG-RAM window at $6000-$7FFF.
type nrom struct {
	prg     []byte
	chr     []byte
	chrRAM  bool
	prgRAM  [0x2000]byte
	mirror  Mirror
	prgMask uint32
}

func newNROM(prg, chr []byte, chrIsRAM bool, prgRAM []byte, mirror Mirror) *nrom {
	m := &nrom{prg: prg, chr: chr, chrRAM: chrIsRAM, mirror: mirror}
	if len(prg) > 0x4000 {
		m.prgMask = 0x7FFF
	} else {
		m.prgMask = 0x3FFF
	}
	if chr == nil {
		m.chr = make([]byte, 0x2000)
		m.chrRAM = true
	}
	copy(m.prgRAM[:], prgRAM)
	return m
}

func (m *nrom) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.prgRAM[addr-0x6000]
	case addr >= 0x8000:
		return m.prg[uint32(addr-0x8000)&m.prgMask]
	default:
		return 0
	}
}

func (m *nrom) WritePRG(addr uint16, val uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.prgRAM[addr-0x6000] = val
	}
}

func (m *nrom) ReadCHR(addr uint16) uint8 {
	return m.chr[addr&0x1FFF]
}

func (m *nrom) WriteCHR(addr uint16, val uint8) {
	if m.chrRAM {
		m.chr[addr&0x1FFF] = val
	}
}

func (m *nrom) Mirror() Mirror            { return m.mirror }
func (m *nrom) NameTableMap() [4]uint16   { return nameTableMap(m.mirror) }
func (m *nrom) OnScanline()               {}
func (m *nrom) Reset()                    {}

func (m *nrom) Snapshot() Snapshot {
	return Snapshot{Mirror: m.mirror, RAMSize: uint32(len(m.prgRAM))}
}

func (m *nrom) Restore(s Snapshot) {
	m.mirror = s.Mirror
}

// PRGRAM exposes the battery/work RAM arena for the save-state codec's
// dedicated PRG-RAM block; NROM has no bank-select registers worth
// carrying in Extension, so Snapshot/Restore leave it alone.
func (m *nrom) PRGRAM() []byte { return m.prgRAM[:] }

func (m *nrom) RestorePRGRAM(data []byte) { copy(m.prgRAM[:], data) }
