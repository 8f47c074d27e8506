package mapper

// uxrom implements iNES mapper 2: a switchable 16KiB PRG bank at
// $8000-$BFFF and a fixed last 16KiB bank at $C000-$FFFF. CHR is always
// RAM (8KiB) on real UxROM boards; some hacks ship CHR-ROM, supported here
// too.
type uxrom struct {
	prg       []byte
	chr       []byte
	chrRAM    bool
	mirror    Mirror
	bankCount uint32
	prgBank   uint32
}

func newUxROM(prg, chr []byte, chrIsRAM bool, mirror Mirror) *uxrom {
	m := &uxrom{prg: prg, chr: chr, chrRAM: chrIsRAM, mirror: mirror}
	m.bankCount = uint32(len(prg) / 0x4000)
	if chr == nil {
		m.chr = make([]byte, 0x2000)
		m.chrRAM = true
	}
	return m
}

func (m *uxrom) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x8000 && addr < 0xC000:
		off := m.prgBank*0x4000 + uint32(addr-0x8000)
		return m.prg[off]
	case addr >= 0xC000:
		last := (m.bankCount - 1) * 0x4000
		return m.prg[last+uint32(addr-0xC000)]
	default:
		return 0
	}
}

func (m *uxrom) WritePRG(addr uint16, val uint8) {
	if addr >= 0x8000 {
		m.prgBank = uint32(val) % m.bankCount
	}
}

func (m *uxrom) ReadCHR(addr uint16) uint8 { return m.chr[addr&0x1FFF] }

func (m *uxrom) WriteCHR(addr uint16, val uint8) {
	if m.chrRAM {
		m.chr[addr&0x1FFF] = val
	}
}

func (m *uxrom) Mirror() Mirror          { return m.mirror }
func (m *uxrom) NameTableMap() [4]uint16 { return nameTableMap(m.mirror) }
func (m *uxrom) OnScanline()             {}
func (m *uxrom) Reset()                  { m.prgBank = 0 }

func (m *uxrom) Snapshot() Snapshot {
	return Snapshot{PRGOffset: m.prgBank * 0x4000, Mirror: m.mirror}
}

func (m *uxrom) Restore(s Snapshot) {
	m.prgBank = s.PRGOffset / 0x4000
	m.mirror = s.Mirror
}

// PRGRAM is nil: UxROM boards carry no work RAM.
func (m *uxrom) PRGRAM() []byte { return nil }

func (m *uxrom) RestorePRGRAM(data []byte) {}
