package mapper

// mmc1 implements iNES mapper 1 (SxROM): a serial shift-register port
// written one bit per register write (a write with bit 7 set resets the
// shift register instead), feeding a control register (mirroring + PRG
// mode + CHR mode) and three bank registers.
type mmc1 struct {
	prg    []byte
	chr    []byte
	chrRAM bool
	prgRAM [0x2000]byte

	shift    uint8
	shiftCnt uint8

	control uint8 // bit0-1 mirroring, bit2-3 PRG mode, bit4 CHR mode
	chrBank0 uint8
	chrBank1 uint8
	prgBank  uint8

	prgBanks uint32
	chrBanks uint32

	lastWriteCycle uint64
}

func newMMC1(prg, chr []byte, chrIsRAM bool, prgRAM []byte, mirror Mirror) *mmc1 {
	m := &mmc1{prg: prg, chr: chr, chrRAM: chrIsRAM, control: 0x0C}
	m.prgBanks = uint32(len(prg) / 0x4000)
	if chr == nil {
		m.chr = make([]byte, 0x2000)
		m.chrRAM = true
		m.chrBanks = 1
	} else {
		m.chrBanks = uint32(len(chr) / 0x1000)
		if m.chrBanks == 0 {
			m.chrBanks = 1
		}
	}
	switch mirror {
	case MirrorHorizontal:
		m.control = (m.control &^ 0x03) | 0x03
	case MirrorVertical:
		m.control = (m.control &^ 0x03) | 0x02
	}
	copy(m.prgRAM[:], prgRAM)
	m.resetShift()
	return m
}

func (m *mmc1) resetShift() {
	m.shift = 0
	m.shiftCnt = 0
}

func (m *mmc1) mirror() Mirror {
	switch m.control & 0x03 {
	case 0:
		return MirrorSingleScreen0
	case 1:
		return MirrorSingleScreen1
	case 2:
		return MirrorVertical
	default:
		return MirrorHorizontal
	}
}

func (m *mmc1) Mirror() Mirror          { return m.mirror() }
func (m *mmc1) NameTableMap() [4]uint16 { return nameTableMap(m.mirror()) }
func (m *mmc1) OnScanline()             {}

func (m *mmc1) Reset() {
	m.control = 0x0C
	m.chrBank0, m.chrBank1, m.prgBank = 0, 0, 0
	m.resetShift()
}

func (m *mmc1) ReadPRG(addr uint16) uint8 {
	if addr >= 0x6000 && addr < 0x8000 {
		return m.prgRAM[addr-0x6000]
	}
	if addr < 0x8000 {
		return 0
	}
	bank := uint32(m.prgBank)
	mode := (m.control >> 2) & 0x03
	var off uint32
	switch mode {
	case 0, 1: // 32KiB mode, bank register's low bit ignored
		base := (bank &^ 1) * 0x4000
		off = base + uint32(addr-0x8000)
	case 2: // fix first bank at $8000, switch 16KiB at $C000
		if addr < 0xC000 {
			off = uint32(addr - 0x8000)
		} else {
			off = bank*0x4000 + uint32(addr-0xC000)
		}
	default: // 3: fix last bank at $C000, switch 16KiB at $8000
		if addr < 0xC000 {
			off = bank*0x4000 + uint32(addr-0x8000)
		} else {
			off = (m.prgBanks-1)*0x4000 + uint32(addr-0xC000)
		}
	}
	return m.prg[off%uint32(len(m.prg))]
}

func (m *mmc1) WritePRG(addr uint16, val uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.prgRAM[addr-0x6000] = val
		return
	}
	if addr < 0x8000 {
		return
	}
	if val&0x80 != 0 {
		m.resetShift()
		m.control |= 0x0C
		return
	}
	m.shift |= (val & 1) << m.shiftCnt
	m.shiftCnt++
	if m.shiftCnt == 5 {
		m.writeRegister(addr, m.shift)
		m.resetShift()
	}
}

func (m *mmc1) writeRegister(addr uint16, val uint8) {
	switch {
	case addr < 0xA000:
		m.control = val & 0x1F
	case addr < 0xC000:
		m.chrBank0 = val & 0x1F
	case addr < 0xE000:
		m.chrBank1 = val & 0x1F
	default:
		m.prgBank = val & 0x0F
	}
}

func (m *mmc1) ReadCHR(addr uint16) uint8 {
	off := m.chrOffset(addr)
	return m.chr[off%uint32(len(m.chr))]
}

func (m *mmc1) WriteCHR(addr uint16, val uint8) {
	if m.chrRAM {
		off := m.chrOffset(addr)
		m.chr[off%uint32(len(m.chr))] = val
	}
}

func (m *mmc1) chrOffset(addr uint16) uint32 {
	if m.control&0x10 == 0 { // 8KiB mode
		base := (uint32(m.chrBank0) &^ 1) * 0x1000
		return base + uint32(addr&0x1FFF)
	}
	if addr < 0x1000 {
		return uint32(m.chrBank0)*0x1000 + uint32(addr)
	}
	return uint32(m.chrBank1)*0x1000 + uint32(addr-0x1000)
}

func (m *mmc1) Snapshot() Snapshot {
	s := Snapshot{
		PRGOffset: uint32(m.prgBank), CHROffset: uint32(m.chrBank0)<<16 | uint32(m.chrBank1),
		Mirror: m.mirror(), RAMSize: uint32(len(m.prgRAM)),
	}
	ext := []byte{m.control, m.chrBank0, m.chrBank1, m.prgBank, m.shift, m.shiftCnt}
	clampExtension(&s.Extension, ext)
	s.HasExtension = true
	return s
}

func (m *mmc1) Restore(s Snapshot) {
	ext := s.Extension
	m.control = ext[0]
	m.chrBank0 = ext[1]
	m.chrBank1 = ext[2]
	m.prgBank = ext[3]
	m.shift = ext[4]
	m.shiftCnt = ext[5]
}

// PRGRAM exposes the battery-backed work RAM for the save-state codec's
// dedicated PRG-RAM block, kept out of Extension since it would overflow
// the 2048-byte bound.
func (m *mmc1) PRGRAM() []byte { return m.prgRAM[:] }

func (m *mmc1) RestorePRGRAM(data []byte) { copy(m.prgRAM[:], data) }
