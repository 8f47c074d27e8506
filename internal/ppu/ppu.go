// Package ppu implements the NES Picture Processing Unit (2C02): a
// 341-dot by 262/312-scanline state machine driving a background shift
// pipeline, an 8-sprite-per-scanline evaluator, and the CPU-visible
// $2000-$2007 register contract.
package ppu

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Memory is the PPU's view of its own address space: pattern tables,
// nametables, and palette RAM, all mapper-routed.
type Memory interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// TVSystem selects the scanline count and odd-frame-skip behavior.
type TVSystem int

const (
	NTSC TVSystem = iota
	PAL
)

func (t TVSystem) preRenderLine() int {
	if t == PAL {
		return 311
	}
	return 261
}

func (t TVSystem) vblankStartLine() int { return 241 }

// Palette names the three selectable 64-color decode tables.
type Palette int

const (
	PaletteDefault Palette = iota
	PaletteSonyCXA
	PaletteFCEUX
)

// PPU represents the NES 2C02.
type PPU struct {
	ppuCtrl   uint8
	ppuMask   uint8
	ppuStatus uint8
	oamAddr   uint8

	v uint16
	t uint16
	x uint8
	w bool

	memory Memory
	tv     TVSystem

	scanline   int
	cycle      int
	frameCount uint64
	oddFrame   bool
	renderFlag bool

	readBuffer uint8

	oam          [256]uint8
	secondaryOAM [8]spriteLatch

	spriteCount    int
	sprite0Hit     bool
	spriteOverflow bool
	sprite0InLine  bool
	oamFetchIndex  int

	// Background fetch pipeline: shift registers reloaded every 8 dots,
	// latches holding the next tile's data while the current tile shifts
	// out (the real hardware's two-tile-deep pipeline).
	bgPatternLo uint16
	bgPatternHi uint16
	bgAttrLo    uint16
	bgAttrHi    uint16

	ntLatch   uint8
	atLatch   uint8
	ptLoLatch uint8
	ptHiLatch uint8

	frameBuffer [256 * 240]uint32

	nmiCallback func()
	mapperHook  func()

	backgroundEnabled bool
	spritesEnabled    bool
	renderingEnabled  bool

	palette Palette
}

// spriteLatch holds one evaluated sprite's state, fetched during dots
// 257-320 of the preceding scanline and shifted out during the visible
// dots of the scanline it belongs to.
type spriteLatch struct {
	x          uint8
	patternLo  uint8
	patternHi  uint8
	attributes uint8
	isSprite0  bool
	active     bool
}

// New creates a PPU defaulted to NTSC timing and the default palette.
func New() *PPU {
	return &PPU{
		scanline: -1,
		tv:       NTSC,
		palette:  PaletteDefault,
	}
}

// SetMemory attaches the PPU's VRAM/pattern-table/palette bus.
func (p *PPU) SetMemory(memory Memory) { p.memory = memory }

// SetTVSystem selects NTSC or PAL scanline timing.
func (p *PPU) SetTVSystem(tv TVSystem) { p.tv = tv }

// SetPalette selects which of the three 64-color decode tables blits
// use; this reindexes output color only, never PPU state.
func (p *PPU) SetPalette(pal Palette) { p.palette = pal }

// SetNMICallback installs the callback fired on VBlank NMI assertion.
func (p *PPU) SetNMICallback(callback func()) { p.nmiCallback = callback }

// SetMapperScanlineHook installs the mapper's on_scanline callback,
// fired at dot 260 of each visible scanline when rendering is enabled.
func (p *PPU) SetMapperScanlineHook(hook func()) { p.mapperHook = hook }

// Reset returns the PPU to its power-on state.
func (p *PPU) Reset() {
	p.ppuCtrl = 0
	p.ppuMask = 0
	p.ppuStatus = 0xA0
	p.oamAddr = 0
	p.v, p.t, p.x, p.w = 0, 0, 0, false
	p.scanline = -1
	p.cycle = 0
	p.frameCount = 0
	p.oddFrame = false
	p.readBuffer = 0
	p.sprite0Hit = false
	p.spriteOverflow = false
	p.backgroundEnabled = false
	p.spritesEnabled = false
	p.renderingEnabled = false
	for i := range p.oam {
		p.oam[i] = 0
	}
	for i := range p.secondaryOAM {
		p.secondaryOAM[i] = spriteLatch{}
	}
	for i := range p.frameBuffer {
		p.frameBuffer[i] = 0
	}
}

// ReadRegister handles CPU reads of $2000-$2007.
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address {
	case 0x2002:
		status := p.ppuStatus
		p.ppuStatus &= 0x7F // clear VBlank (bit 7); hit/overflow cleared only at pre-render dot 1
		p.w = false
		return status
	case 0x2004:
		return p.oam[p.oamAddr]
	case 0x2007:
		return p.readPPUData()
	default:
		return p.ppuStatus & 0x1F
	}
}

// WriteRegister handles CPU writes of $2000-$2007.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	switch address {
	case 0x2000:
		p.ppuCtrl = value
		p.t = (p.t & 0xF3FF) | ((uint16(value) & 0x03) << 10)
		p.updateRenderingFlags()
		p.checkNMI()
	case 0x2001:
		p.ppuMask = value
		p.updateRenderingFlags()
	case 0x2003:
		p.oamAddr = value
	case 0x2004:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 0x2005:
		p.writePPUScroll(value)
	case 0x2006:
		p.writePPUAddr(value)
	case 0x2007:
		p.writePPUData(value)
	}
}

// WriteOAM writes one OAM byte directly; the bus's OAM DMA does not call
// it and writes through $2004 instead.
func (p *PPU) WriteOAM(address uint8, value uint8) { p.oam[address] = value }

func (p *PPU) updateRenderingFlags() {
	p.backgroundEnabled = p.ppuMask&0x08 != 0
	p.spritesEnabled = p.ppuMask&0x10 != 0
	p.renderingEnabled = p.backgroundEnabled || p.spritesEnabled
}

func (p *PPU) checkNMI() {
	if p.ppuCtrl&0x80 != 0 && p.ppuStatus&0x80 != 0 && p.nmiCallback != nil {
		p.nmiCallback()
	}
}

func (p *PPU) writePPUScroll(value uint8) {
	if !p.w {
		p.t = (p.t & 0xFFE0) | (uint16(value) >> 3)
		p.x = value & 0x07
		p.w = true
	} else {
		p.t = (p.t & 0x8FFF) | ((uint16(value) & 0x07) << 12)
		p.t = (p.t & 0xFC1F) | ((uint16(value) & 0xF8) << 2)
		p.w = false
	}
}

func (p *PPU) writePPUAddr(value uint8) {
	if !p.w {
		p.t = (p.t & 0x80FF) | ((uint16(value) & 0x3F) << 8)
		p.w = true
	} else {
		p.t = (p.t & 0xFF00) | uint16(value)
		p.v = p.t
		p.w = false
	}
}

func (p *PPU) readPPUData() uint8 {
	var data uint8
	if p.memory == nil {
		p.advanceVRAMAddress()
		return 0
	}
	if p.v >= 0x3F00 {
		data = p.memory.Read(p.v)
		p.readBuffer = p.memory.Read(p.v & 0x2FFF)
	} else {
		data = p.readBuffer
		p.readBuffer = p.memory.Read(p.v)
	}
	p.advanceVRAMAddress()
	return data
}

func (p *PPU) writePPUData(value uint8) {
	if p.memory != nil {
		p.memory.Write(p.v&0x3FFF, value)
	}
	p.advanceVRAMAddress()
}

func (p *PPU) advanceVRAMAddress() {
	if p.ppuCtrl&0x04 != 0 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x3FFF
}

// Step advances the PPU by one dot.
func (p *PPU) Step() {
	preRender := p.tv.preRenderLine()

	if p.scanline >= -1 && p.scanline < 240 {
		p.renderingDot()
	}

	if p.scanline == p.tv.vblankStartLine() && p.cycle == 1 {
		p.ppuStatus |= 0x80
		p.renderFlag = true
		p.checkNMI()
	}

	if p.scanline == -1 && p.cycle == 1 {
		p.ppuStatus &= 0x1F // clear VBlank, sprite 0 hit, overflow
		p.sprite0Hit = false
		p.spriteOverflow = false
	}

	p.cycle++
	if p.cycle > 340 || (p.scanline == -1 && p.cycle == 340 && p.oddFrame && p.renderingEnabled && p.tv == NTSC) {
		p.cycle = 0
		p.scanline++
		if p.scanline >= preRender {
			p.scanline = -1
			p.frameCount++
			p.oddFrame = !p.oddFrame
		}
	}
}

// renderingDot runs the background/sprite pipeline for the current dot
// on visible and pre-render scanlines.
func (p *PPU) renderingDot() {
	visible := p.scanline >= 0 && p.scanline < 240

	if visible && p.cycle >= 1 && p.cycle <= 256 {
		p.shiftBackgroundRegisters()
		p.renderPixel()
	}

	// Background fetch tuple: NT at dot%8==1, AT at ==3, pattern low at
	// ==5, pattern high at ==7, reload+increment-X at ==0, across both
	// the visible fetch window (1-256) and the next-scanline prefetch
	// window (321-336).
	if (p.cycle >= 1 && p.cycle <= 256) || (p.cycle >= 321 && p.cycle <= 336) {
		switch p.cycle % 8 {
		case 1:
			p.reloadShiftRegisters()
			p.ntLatch = p.fetchNametableByte()
		case 3:
			p.atLatch = p.fetchAttributeByte()
		case 5:
			p.ptLoLatch = p.fetchPatternByte(false)
		case 7:
			p.ptHiLatch = p.fetchPatternByte(true)
		case 0:
			if p.renderingEnabled {
				p.incrementX()
			}
		}
	}

	if p.cycle == 256 && p.renderingEnabled {
		p.incrementY()
	}
	if p.cycle == 257 {
		if p.renderingEnabled {
			p.copyX()
		}
		p.evaluateSpritesForNextScanline()
	}
	if p.scanline == -1 && p.cycle >= 280 && p.cycle <= 304 && p.renderingEnabled {
		p.copyY()
	}
	if p.cycle >= 257 && p.cycle <= 320 {
		p.fetchSpritePattern()
	}

	if visible && p.cycle == 260 && p.renderingEnabled && p.mapperHook != nil {
		p.mapperHook()
	}
}

func (p *PPU) reloadShiftRegisters() {
	p.bgPatternLo = (p.bgPatternLo & 0xFF00) | uint16(p.ptLoLatch)
	p.bgPatternHi = (p.bgPatternHi & 0xFF00) | uint16(p.ptHiLatch)
	attrBit := uint16(0)
	if p.atLatch&1 != 0 {
		attrBit |= 0x00FF
	}
	p.bgAttrLo = (p.bgAttrLo & 0xFF00) | attrBit
	attrBit = 0
	if p.atLatch&2 != 0 {
		attrBit |= 0x00FF
	}
	p.bgAttrHi = (p.bgAttrHi & 0xFF00) | attrBit
}

func (p *PPU) shiftBackgroundRegisters() {
	if !p.backgroundEnabled {
		return
	}
	p.bgPatternLo <<= 1
	p.bgPatternHi <<= 1
	p.bgAttrLo <<= 1
	p.bgAttrHi <<= 1
}

func (p *PPU) fetchNametableByte() uint8 {
	if p.memory == nil {
		return 0
	}
	addr := 0x2000 | (p.v & 0x0FFF)
	return p.memory.Read(addr)
}

func (p *PPU) fetchAttributeByte() uint8 {
	if p.memory == nil {
		return 0
	}
	addr := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
	raw := p.memory.Read(addr)
	shift := ((p.v >> 4) & 4) | (p.v & 2)
	return (raw >> shift) & 0x03
}

func (p *PPU) fetchPatternByte(high bool) uint8 {
	if p.memory == nil {
		return 0
	}
	base := uint16(0x0000)
	if p.ppuCtrl&0x10 != 0 {
		base = 0x1000
	}
	fineY := (p.v >> 12) & 0x07
	addr := base + uint16(p.ntLatch)*16 + fineY
	if high {
		addr += 8
	}
	return p.memory.Read(addr)
}

func (p *PPU) incrementX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | (y << 5)
}

func (p *PPU) copyX() { p.v = (p.v & 0xFBE0) | (p.t & 0x041F) }
func (p *PPU) copyY() { p.v = (p.v & 0x841F) | (p.t & 0x7BE0) }

// renderPixel composites and writes one background+sprite pixel.
func (p *PPU) renderPixel() {
	if p.memory == nil {
		return
	}
	x := p.cycle - 1
	y := p.scanline

	bgColorIndex, bgPaletteIndex := p.backgroundPixel()
	spColorIndex, spPaletteIndex, spPriority, spIsSprite0, spFound := p.spritePixel(x)

	if spFound && spIsSprite0 && bgColorIndex != 0 && spColorIndex != 0 &&
		p.backgroundEnabled && p.spritesEnabled && x != 255 && !p.sprite0Hit {
		if x >= 8 || (p.ppuMask&0x06 == 0x06) {
			p.sprite0Hit = true
			p.ppuStatus |= 0x40
		}
	}

	var nesColor uint8
	switch {
	case (!spFound || spColorIndex == 0) && bgColorIndex == 0:
		nesColor = p.memory.Read(0x3F00)
	case bgColorIndex == 0:
		nesColor = p.memory.Read(0x3F10 + uint16(spPaletteIndex)*4 + uint16(spColorIndex))
	case !spFound || spColorIndex == 0:
		nesColor = p.memory.Read(0x3F00 + uint16(bgPaletteIndex)*4 + uint16(bgColorIndex))
	case spPriority:
		nesColor = p.memory.Read(0x3F00 + uint16(bgPaletteIndex)*4 + uint16(bgColorIndex))
	default:
		nesColor = p.memory.Read(0x3F10 + uint16(spPaletteIndex)*4 + uint16(spColorIndex))
	}

	p.frameBuffer[y*256+x] = p.colorToRGB(nesColor)
}

func (p *PPU) backgroundPixel() (colorIndex, paletteIndex uint8) {
	if !p.backgroundEnabled {
		return 0, 0
	}
	shift := uint(15 - p.x)
	lo := uint8((p.bgPatternLo >> shift) & 1)
	hi := uint8((p.bgPatternHi >> shift) & 1)
	colorIndex = (hi << 1) | lo
	alo := uint8((p.bgAttrLo >> shift) & 1)
	ahi := uint8((p.bgAttrHi >> shift) & 1)
	paletteIndex = (ahi << 1) | alo
	return colorIndex, paletteIndex
}

func (p *PPU) spritePixel(x int) (colorIndex, paletteIndex uint8, priority bool, isSprite0 bool, found bool) {
	if !p.spritesEnabled {
		return 0, 0, false, false, false
	}
	for i := 0; i < p.spriteCount; i++ {
		s := &p.secondaryOAM[i]
		if !s.active {
			continue
		}
		offset := x - int(s.x)
		if offset < 0 || offset > 7 {
			continue
		}
		bit := uint(7 - offset)
		lo := (s.patternLo >> bit) & 1
		hi := (s.patternHi >> bit) & 1
		ci := (hi << 1) | lo
		if ci == 0 {
			continue
		}
		return ci, s.attributes & 0x03, s.attributes&0x20 != 0, s.isSprite0, true
	}
	return 0, 0, false, false, false
}

// evaluateSpritesForNextScanline runs the secondary-OAM sweep at dot
// 257: finds up to 8 sprites visible on the scanline just finished
// rendering's successor, per real hardware's one-scanline-ahead model.
func (p *PPU) evaluateSpritesForNextScanline() {
	for i := range p.secondaryOAM {
		p.secondaryOAM[i] = spriteLatch{}
	}
	p.spriteCount = 0
	p.oamFetchIndex = 0

	if !p.spritesEnabled {
		return
	}

	height := 8
	if p.ppuCtrl&0x20 != 0 {
		height = 16
	}

	targetLine := p.scanline + 1
	found := 0
	for sprite := 0; sprite < 64; sprite++ {
		base := sprite * 4
		sy := int(p.oam[base])
		if targetLine < sy+1 || targetLine >= sy+1+height {
			continue
		}
		if found >= 8 {
			p.spriteOverflow = true
			p.ppuStatus |= 0x20
			break
		}
		latch := spriteLatch{
			x:          p.oam[base+3],
			attributes: p.oam[base+2],
			isSprite0:  sprite == 0,
			active:     true,
		}
		p.secondaryOAM[found] = latch
		p.pendingSpriteRow(found, uint8(sy), p.oam[base+1], p.oam[base+2], targetLine, height)
		found++
	}
	p.spriteCount = found
}

// pendingSpriteRow stages the tile/row needed by fetchSpritePattern; the
// real hardware fetches these during dots 257-320, but since tile ID and
// flip bits are already known at evaluation time, computing the row here
// and re-reading pattern bytes during the fetch window keeps the same
// two-phase structure without a redundant latch set.
func (p *PPU) pendingSpriteRow(slot int, spriteY, tileIndex, attributes uint8, line int, height int) {
	row := line - (int(spriteY) + 1)
	if attributes&0x80 != 0 {
		row = height - 1 - row
	}
	p.secondaryOAM[slot].patternLo = tileIndex // temporarily stash; resolved in fetchSpritePattern
	p.secondaryOAM[slot].patternHi = uint8(row)
}

// fetchSpritePattern resolves the staged tile/row into real pattern
// bytes once per dot-257..320 window call (idempotent re-fetch keeps
// this simple rather than modeling the exact 8 sub-fetches per sprite).
func (p *PPU) fetchSpritePattern() {
	if p.memory == nil || p.cycle != 320 {
		return
	}
	height := 8
	if p.ppuCtrl&0x20 != 0 {
		height = 16
	}
	for i := 0; i < p.spriteCount; i++ {
		s := &p.secondaryOAM[i]
		if !s.active {
			continue
		}
		tileIndex := s.patternLo
		row := int(s.patternHi)
		var base uint16
		if height == 16 {
			if tileIndex&1 != 0 {
				base = 0x1000
			}
			tileIndex &^= 1
			if row >= 8 {
				tileIndex++
				row -= 8
			}
		} else if p.ppuCtrl&0x08 != 0 {
			base = 0x1000
		}
		addr := base + uint16(tileIndex)*16 + uint16(row)
		lo := p.memory.Read(addr)
		hi := p.memory.Read(addr + 8)
		if s.attributes&0x40 != 0 {
			lo = reverseBits(lo)
			hi = reverseBits(hi)
		}
		s.patternLo = lo
		s.patternHi = hi
	}
}

func reverseBits(b uint8) uint8 {
	var r uint8
	for i := 0; i < 8; i++ {
		r = (r << 1) | (b & 1)
		b >>= 1
	}
	return r
}

// GetFrameBuffer returns the current RGB frame buffer.
func (p *PPU) GetFrameBuffer() [256 * 240]uint32 { return p.frameBuffer }

// ConsumeRenderFlag reports and clears whether a frame completed (VBlank
// start) since the last call, matching the scheduler's render-flag poll.
func (p *PPU) ConsumeRenderFlag() bool {
	flag := p.renderFlag
	p.renderFlag = false
	return flag
}

// GetFrameCount returns the number of frames rendered since Reset.
func (p *PPU) GetFrameCount() uint64 { return p.frameCount }

// GetScanline returns the current scanline (-1 = pre-render).
func (p *PPU) GetScanline() int { return p.scanline }

// GetCycle returns the current dot within the scanline.
func (p *PPU) GetCycle() int { return p.cycle }

// IsVBlank reports whether the VBlank flag is currently set.
func (p *PPU) IsVBlank() bool { return p.ppuStatus&0x80 != 0 }

// Snapshot is the PPU's save-state payload.
type Snapshot struct {
	PPUCtrl, PPUMask, PPUStatus, OAMAddr uint8
	V, T                                 uint16
	X                                    uint8
	W                                    bool
	Scanline, Cycle                      int32
	FrameCount                           uint64
	OddFrame                             bool
	OAM                                  [256]uint8
	Palette                              Palette
	TV                                   TVSystem
	ReadBuffer                           uint8
}

// Snapshot captures all CPU-visible and internal state needed to resume
// emulation bit-for-bit; the frame buffer and sprite-fetch pipeline are
// not included since they're fully rebuilt within one scanline.
func (p *PPU) Snapshot() Snapshot {
	return Snapshot{
		PPUCtrl: p.ppuCtrl, PPUMask: p.ppuMask, PPUStatus: p.ppuStatus, OAMAddr: p.oamAddr,
		V: p.v, T: p.t, X: p.x, W: p.w,
		Scanline: int32(p.scanline), Cycle: int32(p.cycle),
		FrameCount: p.frameCount, OddFrame: p.oddFrame,
		OAM: p.oam, Palette: p.palette, TV: p.tv, ReadBuffer: p.readBuffer,
	}
}

// Restore loads a prior Snapshot, updating the derived rendering flags.
func (p *PPU) Restore(s Snapshot) {
	p.ppuCtrl, p.ppuMask, p.ppuStatus, p.oamAddr = s.PPUCtrl, s.PPUMask, s.PPUStatus, s.OAMAddr
	p.v, p.t, p.x, p.w = s.V, s.T, s.X, s.W
	p.scanline, p.cycle = int(s.Scanline), int(s.Cycle)
	p.frameCount, p.oddFrame = s.FrameCount, s.OddFrame
	p.oam = s.OAM
	p.palette = s.Palette
	p.tv = s.TV
	p.readBuffer = s.ReadBuffer
	p.updateRenderingFlags()
}

// MarshalBinary encodes a Snapshot field-by-field for the save-state
// file; Palette/TV are narrowed to a byte since binary.Write rejects the
// platform-sized `int` they're declared as.
func (s Snapshot) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	for _, v := range []any{
		s.PPUCtrl, s.PPUMask, s.PPUStatus, s.OAMAddr,
		s.V, s.T, s.X, s.W,
		s.Scanline, s.Cycle, s.FrameCount, s.OddFrame,
		s.OAM, uint8(s.Palette), uint8(s.TV), s.ReadBuffer,
	} {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			return nil, fmt.Errorf("ppu: marshal snapshot: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a Snapshot previously written by MarshalBinary.
func (s *Snapshot) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	var palette, tv uint8
	for _, v := range []any{
		&s.PPUCtrl, &s.PPUMask, &s.PPUStatus, &s.OAMAddr,
		&s.V, &s.T, &s.X, &s.W,
		&s.Scanline, &s.Cycle, &s.FrameCount, &s.OddFrame,
		&s.OAM, &palette, &tv, &s.ReadBuffer,
	} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("ppu: unmarshal snapshot: %w", err)
		}
	}
	s.Palette, s.TV = Palette(palette), TVSystem(tv)
	return nil
}

// BinarySize is the fixed encoded length of a Snapshot, used by the
// save-state codec to size its PPU-register block.
const BinarySize = 1 + 1 + 1 + 1 + 2 + 2 + 1 + 1 + 4 + 4 + 8 + 1 + 256 + 1 + 1 + 1

func (p *PPU) colorToRGB(index uint8) uint32 {
	return colorToRGB(index, p.palette)
}

// colorToRGB converts an index into one of the three 64-color decode
// tables into a packed 0x00RRGGBB value.
func colorToRGB(index uint8, pal Palette) uint32 {
	if index >= 64 {
		return 0
	}
	switch pal {
	case PaletteSonyCXA:
		return sonyCXAPalette[index] & 0x00FFFFFF
	case PaletteFCEUX:
		return fceuxPalette[index] & 0x00FFFFFF
	default:
		return defaultPalette[index] & 0x00FFFFFF
	}
}

// NESColorToRGB converts using the default palette (PaletteDefault); kept
// as a package-level helper for callers without a PPU instance handy.
func NESColorToRGB(colorIndex uint8) uint32 {
	return colorToRGB(colorIndex, PaletteDefault)
}

// defaultPalette is the 2C02 NTSC decode table used by most software
// renderers that don't model composite-video decoding artifacts.
var defaultPalette = [64]uint32{
	0xFF666666, 0xFF002A88, 0xFF1412A7, 0xFF3B00A4, 0xFF5C007E, 0xFF6E0040, 0xFF6C0600, 0xFF561D00,
	0xFF333500, 0xFF0B4800, 0xFF005200, 0xFF004F08, 0xFF00404D, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFADADAD, 0xFF155FD9, 0xFF4240FF, 0xFF7527FE, 0xFFA01ACC, 0xFFB71E7B, 0xFFB53120, 0xFF994E00,
	0xFF6B6D00, 0xFF388700, 0xFF0C9300, 0xFF008F32, 0xFF007C8D, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFFFFEFF, 0xFF64B0FF, 0xFF9290FF, 0xFFC676FF, 0xFFF36AFF, 0xFFFE6ECC, 0xFFFE8170, 0xFFEA9E22,
	0xFFBCBE00, 0xFF88D800, 0xFF5CE430, 0xFF45E082, 0xFF48CDDE, 0xFF4F4F4F, 0xFF000000, 0xFF000000,
	0xFFFFFEFF, 0xFFC0DFFF, 0xFFD3D2FF, 0xFFE8C8FF, 0xFFFBC2FF, 0xFFFEC4EA, 0xFFFECCC5, 0xFFF7D8A5,
	0xFFE4E594, 0xFFCFF29B, 0xFFBEFBB3, 0xFFB8F8D8, 0xFFB8F8F8, 0xFF000000, 0xFF000000, 0xFF000000,
}

// sonyCXAPalette approximates the Sony CXA2025AS RGB decoder chip used
// in many consumer NES/Famicom clones, producing noticeably less
// saturated colors than the direct digital decode above.
var sonyCXAPalette = [64]uint32{
	0xFF585858, 0xFF00238C, 0xFF00139B, 0xFF2D0585, 0xFF5D0052, 0xFF7A0017, 0xFF7A0800, 0xFF5F1800,
	0xFF352A00, 0xFF093900, 0xFF003F00, 0xFF003C22, 0xFF00323D, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFA1A1A1, 0xFF0B53D7, 0xFF3337EB, 0xFF6621D9, 0xFF9515B3, 0xFFBC0E72, 0xFFBC1E2A, 0xFF9A3500,
	0xFF6B4D00, 0xFF2E6300, 0xFF006C00, 0xFF00680F, 0xFF005A5F, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFF0F0F0, 0xFF4C95F7, 0xFF7B7BFF, 0xFFAD6AFF, 0xFFE45EF0, 0xFFFF53A8, 0xFFFF6054, 0xFFED7A20,
	0xFFBE9500, 0xFF82AD00, 0xFF4DB834, 0xFF2CB470, 0xFF2EA7B0, 0xFF4B4B4B, 0xFF000000, 0xFF000000,
	0xFFF0F0F0, 0xFFBBD6FC, 0xFFCBC9FF, 0xFFE1C1FF, 0xFFF6BCF5, 0xFFFFB8D7, 0xFFFFBEB2, 0xFFF9C997,
	0xFFE3D28D, 0xFFC8DC8E, 0xFFAEE2A4, 0xFF9EE2C0, 0xFF9EDBCC, 0xFFA2A2A2, 0xFF000000, 0xFF000000,
}

// fceuxPalette mirrors the palette FCEUX ships as its default.pal,
// tuned to look correct on a modern LCD rather than a CRT.
var fceuxPalette = [64]uint32{
	0xFF747474, 0xFF24188C, 0xFF0000A8, 0xFF44009C, 0xFF8C0074, 0xFFA80010, 0xFFA40000, 0xFF7C0800,
	0xFF402C00, 0xFF004400, 0xFF005000, 0xFF003C14, 0xFF183C5C, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFBCBCBC, 0xFF0070EC, 0xFF2038EC, 0xFF8000F0, 0xFFBC00BC, 0xFFE40058, 0xFFD82800, 0xFFC84C0C,
	0xFF887000, 0xFF009400, 0xFF00A800, 0xFF009038, 0xFF008088, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFFCFCFC, 0xFF3CBCFC, 0xFF5C94FC, 0xFFCC88FC, 0xFFF478FC, 0xFFFC74B4, 0xFFFC7460, 0xFFFC9838,
	0xFFF0BC3C, 0xFF80D010, 0xFF4CDC48, 0xFF58F898, 0xFF00E8D8, 0xFF787878, 0xFF000000, 0xFF000000,
	0xFFFCFCFC, 0xFFA8E4FC, 0xFFC4D4FC, 0xFFD4C8FC, 0xFFFCC4FC, 0xFFFCC4D8, 0xFFFCBCB0, 0xFFFCD8A8,
	0xFFFCE4A0, 0xFFE0FCA0, 0xFFA8F0BC, 0xFFB0FCCC, 0xFF9CFCF0, 0xFFC4C4C4, 0xFF000000, 0xFF000000,
}
