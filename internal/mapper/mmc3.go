package mapper

// mmc3 implements iNES mapper 4 (TxROM): eight bank registers (R0-R7)
// selected through $8000's bank-select latch, 8KiB PRG windows with a
// swappable/fixed pair, 1KiB/2KiB CHR windows, and a scanline IRQ counter
// clocked through OnScanline, which the PPU drives once per visible
// scanline when rendering is enabled.
type mmc3 struct {
	prg    []byte
	chr    []byte
	chrRAM bool
	prgRAM [0x2000]byte

	bankSelect uint8 // bits 0-2 target register, bit 6 PRG mode, bit 7 CHR mode
	reg        [8]uint8
	mirror     Mirror
	prgBanks   uint32

	irqLatch   uint8
	irqCounter uint8
	irqReload  bool
	irqEnabled bool
	irq        IRQLine
}

func newMMC3(prg, chr []byte, chrIsRAM bool, prgRAM []byte, mirror Mirror, irq IRQLine) *mmc3 {
	m := &mmc3{prg: prg, chr: chr, chrRAM: chrIsRAM, mirror: mirror, irq: irq}
	m.prgBanks = uint32(len(prg) / 0x2000)
	if chr == nil {
		m.chr = make([]byte, 0x2000)
		m.chrRAM = true
	}
	copy(m.prgRAM[:], prgRAM)
	return m
}

func (m *mmc3) Mirror() Mirror          { return m.mirror }
func (m *mmc3) NameTableMap() [4]uint16 { return nameTableMap(m.mirror) }

func (m *mmc3) Reset() {
	m.bankSelect = 0
	m.reg = [8]uint8{}
	m.irqLatch, m.irqCounter = 0, 0
	m.irqReload, m.irqEnabled = false, false
}

// prgBankOffset resolves one of the four 8KiB CPU windows ($8000/$A000
// fixed-or-switchable, $C000 switchable-or-fixed, $E000 always fixed to
// the last bank) per the PRG-mode bit of bankSelect.
func (m *mmc3) prgBankOffset(window int) uint32 {
	last := m.prgBanks - 1
	secondLast := last
	if m.prgBanks > 1 {
		secondLast = last - 1
	}
	r6 := uint32(m.reg[6]) % m.prgBanks
	r7 := uint32(m.reg[7]) % m.prgBanks
	mode := m.bankSelect&0x40 != 0
	switch window {
	case 0: // $8000-$9FFF
		if mode {
			return secondLast
		}
		return r6
	case 1: // $A000-$BFFF
		return r7
	case 2: // $C000-$DFFF
		if mode {
			return r6
		}
		return secondLast
	default: // $E000-$FFFF
		return last
	}
}

func (m *mmc3) ReadPRG(addr uint16) uint8 {
	if addr >= 0x6000 && addr < 0x8000 {
		return m.prgRAM[addr-0x6000]
	}
	if addr < 0x8000 {
		return 0
	}
	window := int((addr - 0x8000) / 0x2000)
	bank := m.prgBankOffset(window)
	off := bank*0x2000 + uint32(addr&0x1FFF)
	return m.prg[off%uint32(len(m.prg))]
}

func (m *mmc3) WritePRG(addr uint16, val uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.prgRAM[addr-0x6000] = val
		return
	}
	if addr < 0x8000 {
		return
	}
	even := addr%2 == 0
	switch {
	case addr < 0xA000:
		if even {
			m.bankSelect = val
		} else {
			m.reg[m.bankSelect&0x07] = val
		}
	case addr < 0xC000:
		if even {
			if val&1 == 0 {
				m.mirror = MirrorVertical
			} else {
				m.mirror = MirrorHorizontal
			}
		}
		// odd: PRG-RAM protect, not modeled (RAM always enabled)
	case addr < 0xE000:
		if even {
			m.irqLatch = val
		} else {
			m.irqReload = true
		}
	default:
		if even {
			m.irqEnabled = false
		} else {
			m.irqEnabled = true
		}
	}
}

// chrOffset resolves the eight 1KiB PPU windows from the six CHR bank
// registers (R0/R1 cover two 2KiB windows, R2-R5 cover four 1KiB
// windows), swapped as a pair by the CHR-mode bit of bankSelect.
func (m *mmc3) chrOffset(addr uint16) uint32 {
	a := addr & 0x1FFF
	invert := m.bankSelect&0x80 != 0
	region := a / 0x0400
	if invert {
		region ^= 4
	}
	var bank uint32
	var base uint16
	switch region {
	case 0:
		bank = uint32(m.reg[0]&0xFE) * 0x0400
		base = 0x0000
	case 1:
		bank = (uint32(m.reg[0]&0xFE) + 1) * 0x0400
		base = 0x0400
	case 2:
		bank = uint32(m.reg[1]&0xFE) * 0x0400
		base = 0x0800
	case 3:
		bank = (uint32(m.reg[1]&0xFE) + 1) * 0x0400
		base = 0x0C00
	case 4:
		bank = uint32(m.reg[2]) * 0x0400
		base = 0x1000
	case 5:
		bank = uint32(m.reg[3]) * 0x0400
		base = 0x1400
	case 6:
		bank = uint32(m.reg[4]) * 0x0400
		base = 0x1800
	default:
		bank = uint32(m.reg[5]) * 0x0400
		base = 0x1C00
	}
	return bank + uint32(a-base)
}

func (m *mmc3) ReadCHR(addr uint16) uint8 {
	off := m.chrOffset(addr)
	return m.chr[off%uint32(len(m.chr))]
}

func (m *mmc3) WriteCHR(addr uint16, val uint8) {
	if m.chrRAM {
		off := m.chrOffset(addr)
		m.chr[off%uint32(len(m.chr))] = val
	}
}

// OnScanline clocks the IRQ counter, matching the revision-B MMC3
// behavior: reload (or continued count) happens every time this is
// called, and IRQ asserts only on the transition into zero.
func (m *mmc3) OnScanline() {
	if m.irqCounter == 0 || m.irqReload {
		m.irqCounter = m.irqLatch
		m.irqReload = false
	} else {
		m.irqCounter--
	}
	if m.irqCounter == 0 && m.irqEnabled && m.irq != nil {
		m.irq(true)
	}
}

func (m *mmc3) Snapshot() Snapshot {
	s := Snapshot{Mirror: m.mirror, RAMSize: uint32(len(m.prgRAM))}
	ext := []byte{m.bankSelect, m.irqLatch, m.irqCounter}
	if m.irqReload {
		ext = append(ext, 1)
	} else {
		ext = append(ext, 0)
	}
	if m.irqEnabled {
		ext = append(ext, 1)
	} else {
		ext = append(ext, 0)
	}
	ext = append(ext, m.reg[:]...)
	clampExtension(&s.Extension, ext)
	s.HasExtension = true
	return s
}

func (m *mmc3) Restore(s Snapshot) {
	ext := s.Extension
	m.mirror = s.Mirror
	m.bankSelect = ext[0]
	m.irqLatch = ext[1]
	m.irqCounter = ext[2]
	m.irqReload = ext[3] != 0
	m.irqEnabled = ext[4] != 0
	copy(m.reg[:], ext[5:13])
}

// PRGRAM exposes the battery-backed work RAM for the save-state codec's
// dedicated PRG-RAM block, kept out of Extension since it would overflow
// the 2048-byte bound.
func (m *mmc3) PRGRAM() []byte { return m.prgRAM[:] }

func (m *mmc3) RestorePRGRAM(data []byte) { copy(m.prgRAM[:], data) }
