// Package memorybus implements the CPU and PPU address-decoding buses:
// RAM mirroring, PPU/APU register windows, controller ports, OAM DMA,
// and the PPU-side nametable/palette address space.
package memorybus

// PPURegisters is the subset of PPU behavior the CPU bus dispatches into.
type PPURegisters interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// APURegisters is the subset of APU behavior the CPU bus dispatches into.
type APURegisters interface {
	WriteRegister(address uint16, value uint8)
	ReadStatus() uint8
}

// InputPorts is the subset of controller behavior the CPU bus dispatches
// into ($4016/$4017).
type InputPorts interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Cartridge is the subset of mapper behavior both buses dispatch into.
type Cartridge interface {
	ReadPRG(address uint16) uint8
	WritePRG(address uint16, value uint8)
	ReadCHR(address uint16) uint8
	WriteCHR(address uint16, value uint8)
	NameTableMap() [4]uint16
}

// Bus is the CPU-visible 64KiB address space.
type Bus struct {
	ram [0x800]uint8

	ppu   PPURegisters
	apu   APURegisters
	input InputPorts
	cart  Cartridge

	openBus uint8

	// dmaActive/dmaPage/dmaIndex model the OAM DMA stall: the scheduler
	// calls StepDMA once per CPU cycle while DMA is active instead of
	// stepping the CPU, mirroring real hardware's bus takeover. Real
	// hardware spends one initial wait cycle (plus one more if DMA starts
	// on an odd CPU cycle), then a get cycle and a put cycle per byte;
	// dmaWaitDone/dmaAlignPad/dmaGetPending/dmaGetValue track progress
	// through that sequence so StepDMA costs exactly 513 or 514 calls
	// per transfer, not one call per byte.
	dmaActive     bool
	dmaPage       uint8
	dmaIndex      int
	dmaWaitDone   bool
	dmaAlignPad   bool
	dmaGetPending bool
	dmaGetValue   uint8
}

// New wires a CPU bus to its PPU/APU/input/cartridge collaborators.
func New(ppu PPURegisters, apu APURegisters, cart Cartridge) *Bus {
	return &Bus{ppu: ppu, apu: apu, cart: cart}
}

// SetInput attaches the controller ports; separated from New because
// input wiring happens after the bus exists, matching the teacher's
// SetInputSystem split.
func (b *Bus) SetInput(input InputPorts) { b.input = input }

func (b *Bus) Read(address uint16) uint8 {
	var value uint8
	switch {
	case address < 0x2000:
		value = b.ram[address&0x07FF]
	case address < 0x4000:
		value = b.ppu.ReadRegister(0x2000 + (address & 0x0007))
	case address < 0x4020:
		switch {
		case address == 0x4015:
			value = b.apu.ReadStatus()
		case address == 0x4016 || address == 0x4017:
			if b.input != nil {
				value = b.input.Read(address)
			}
		default:
			value = b.openBus
		}
	case address < 0x6000:
		value = b.openBus
	default:
		value = b.cart.ReadPRG(address)
	}
	b.openBus = value
	return value
}

func (b *Bus) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		b.ram[address&0x07FF] = value
	case address < 0x4000:
		b.ppu.WriteRegister(0x2000+(address&0x0007), value)
	case address < 0x4020:
		switch {
		case address == 0x4014:
			b.StartOAMDMA(value)
		case address == 0x4016:
			if b.input != nil {
				b.input.Write(address, value)
			}
		case address <= 0x4013, address == 0x4015, address == 0x4017:
			b.apu.WriteRegister(address, value)
		}
	case address < 0x6000:
		// cartridge expansion area, unmapped on all supported mappers
	default:
		b.cart.WritePRG(address, value)
	}
}

// StartOAMDMA begins a 513/514-cycle OAM DMA transfer from CPU page
// `page`; the scheduler drives it one byte-pair per two CPU cycles via
// StepDMA instead of stepping the CPU.
func (b *Bus) StartOAMDMA(page uint8) {
	b.dmaActive = true
	b.dmaPage = page
	b.dmaIndex = 0
	b.dmaWaitDone = false
	b.dmaAlignPad = false
	b.dmaGetPending = false
}

// DMAActive reports whether the bus is currently mid-transfer; the
// scheduler checks this before stepping the CPU.
func (b *Bus) DMAActive() bool { return b.dmaActive }

// SnapshotRAM returns a copy of the CPU's 2KiB internal RAM for the
// save-state's fixed RAM block.
func (b *Bus) SnapshotRAM() [0x800]uint8 { return b.ram }

// RestoreRAM loads a prior RAM snapshot.
func (b *Bus) RestoreRAM(ram [0x800]uint8) { b.ram = ram }

// StepDMA advances the in-flight OAM DMA by exactly one CPU cycle and
// reports whether the transfer has completed. A full transfer takes 513
// calls (514 if cpuCycleIsOdd on the first call): one unconditional wait
// cycle, one more if DMA started on an odd CPU cycle, then one get cycle
// (read from CPU memory) and one put cycle (write to $2004) per byte,
// matching real hardware's two-cycles-per-byte cost rather than treating
// a whole byte as a single stalled cycle.
func (b *Bus) StepDMA(cpuCycleIsOdd bool) (done bool) {
	if !b.dmaActive {
		return true
	}
	if !b.dmaWaitDone {
		b.dmaWaitDone = true
		b.dmaAlignPad = cpuCycleIsOdd
		return false
	}
	if b.dmaAlignPad {
		b.dmaAlignPad = false
		return false
	}
	if !b.dmaGetPending {
		addr := uint16(b.dmaPage)<<8 + uint16(b.dmaIndex)
		b.dmaGetValue = b.Read(addr)
		b.dmaGetPending = true
		return false
	}
	b.ppu.WriteRegister(0x2004, b.dmaGetValue)
	b.dmaGetPending = false
	b.dmaIndex++
	if b.dmaIndex >= 256 {
		b.dmaActive = false
		b.dmaWaitDone = false
		return true
	}
	return false
}

// PPUBus is the PPU-visible 16KiB address space: pattern tables through
// the cartridge, nametables with mapper-controlled mirroring, and
// palette RAM with the background-color mirror quirk.
type PPUBus struct {
	vram    [0x1000]uint8
	palette [32]uint8
	cart    Cartridge
}

// NewPPUBus wires the PPU bus to its cartridge; palette entry 0 of each
// quadrant defaults to black (0x0F), matching real hardware's power-on
// palette.
func NewPPUBus(cart Cartridge) *PPUBus {
	pb := &PPUBus{cart: cart}
	for i := 0; i < 32; i += 4 {
		pb.palette[i] = 0x0F
	}
	return pb
}

func (pb *PPUBus) Read(address uint16) uint8 {
	address &= 0x3FFF
	switch {
	case address < 0x2000:
		return pb.cart.ReadCHR(address)
	case address < 0x3F00:
		return pb.vram[pb.nametableIndex(address)]
	default:
		return pb.readPalette(address)
	}
}

func (pb *PPUBus) Write(address uint16, value uint8) {
	address &= 0x3FFF
	switch {
	case address < 0x2000:
		pb.cart.WriteCHR(address, value)
	case address < 0x3F00:
		pb.vram[pb.nametableIndex(address)] = value
	default:
		pb.writePalette(address, value)
	}
}

func (pb *PPUBus) nametableIndex(address uint16) uint16 {
	// $2000-$2FFF and its $3000-$3EFF mirror share the low 12 bits.
	a := address & 0x0FFF
	nametable := (a >> 10) & 3
	offset := a & 0x3FF
	base := pb.cart.NameTableMap()[nametable]
	return base + offset
}

func (pb *PPUBus) readPalette(address uint16) uint8 {
	return pb.palette[paletteIndex(address)]
}

func (pb *PPUBus) writePalette(address uint16, value uint8) {
	pb.palette[paletteIndex(address)] = value
}

// PPUBusSnapshot is the nametable/palette RAM the PPU's own Snapshot
// doesn't carry, since it's owned by the bus, not the PPU register file.
type PPUBusSnapshot struct {
	VRAM    [0x1000]uint8
	Palette [32]uint8
}

// Snapshot captures the PPU bus's nametable and palette RAM.
func (pb *PPUBus) Snapshot() PPUBusSnapshot {
	return PPUBusSnapshot{VRAM: pb.vram, Palette: pb.palette}
}

// Restore loads a prior PPUBusSnapshot.
func (pb *PPUBus) Restore(s PPUBusSnapshot) {
	pb.vram = s.VRAM
	pb.palette = s.Palette
}

func paletteIndex(address uint16) uint16 {
	idx := (address - 0x3F00) & 0x1F
	if idx == 0x10 || idx == 0x14 || idx == 0x18 || idx == 0x1C {
		idx &= 0x0F
	}
	return idx
}
