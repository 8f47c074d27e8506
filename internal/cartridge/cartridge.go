// Package cartridge loads iNES ROM images and hands bank-switching
// duties off to internal/mapper. NSF files are not parsed.
package cartridge

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"

	"gones/internal/mapper"
)

// LoadError reports a failure to parse a ROM image, naming the stage that
// rejected it.
type LoadError struct {
	Op  string
	Err error
}

func (e *LoadError) Error() string { return fmt.Sprintf("cartridge: %s: %v", e.Op, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// Cartridge owns the ROM/RAM arenas and mapper for a loaded game.
type Cartridge struct {
	prgROM []uint8
	chrROM []uint8

	mapperID uint8
	mapper   mapper.Mapper

	hasBattery bool
	hasCHRRAM  bool
	tvSystem   uint8
}

type iNESHeader struct {
	Magic      [4]uint8
	PRGROMSize uint8
	CHRROMSize uint8
	Flags6     uint8
	Flags7     uint8
	PRGRAMSize uint8
	TVSystem1  uint8
	TVSystem2  uint8
	Padding    [5]uint8
}

// IRQLine matches mapper.IRQLine; re-exported so callers need not import
// internal/mapper directly just to wire the IRQ callback.
type IRQLine = mapper.IRQLine

// LoadFromFile loads a cartridge from an iNES (.nes) file on disk.
func LoadFromFile(filename string, irq IRQLine) (*Cartridge, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &LoadError{Op: "open", Err: err}
	}
	defer file.Close()
	return LoadFromReader(file, irq)
}

// LoadFromReader loads and validates an iNES image, then constructs the
// mapper named by the header.
func LoadFromReader(r io.Reader, irq IRQLine) (*Cartridge, error) {
	var header iNESHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, &LoadError{Op: "read header", Err: err}
	}
	if string(header.Magic[:]) != "NES\x1A" {
		return nil, &LoadError{Op: "validate magic", Err: fmt.Errorf("not an iNES file")}
	}
	if header.PRGROMSize == 0 {
		return nil, &LoadError{Op: "validate PRG size", Err: fmt.Errorf("PRG ROM size is zero")}
	}

	cart := &Cartridge{
		mapperID:   (header.Flags6 >> 4) | (header.Flags7 & 0xF0),
		hasBattery: header.Flags6&0x02 != 0,
		tvSystem:   header.TVSystem1 & 0x01,
	}

	mirror := mapper.MirrorHorizontal
	switch {
	case header.Flags6&0x08 != 0:
		mirror = mapper.MirrorFourScreen
	case header.Flags6&0x01 != 0:
		mirror = mapper.MirrorVertical
	}

	if header.Flags6&0x04 != 0 {
		trainer := make([]byte, 512)
		if _, err := io.ReadFull(r, trainer); err != nil {
			return nil, &LoadError{Op: "read trainer", Err: err}
		}
	}

	cart.prgROM = make([]byte, int(header.PRGROMSize)*16384)
	if _, err := io.ReadFull(r, cart.prgROM); err != nil {
		return nil, &LoadError{Op: "read PRG ROM", Err: err}
	}

	chrSize := int(header.CHRROMSize) * 8192
	if chrSize > 0 {
		cart.chrROM = make([]byte, chrSize)
		if _, err := io.ReadFull(r, cart.chrROM); err != nil {
			return nil, &LoadError{Op: "read CHR ROM", Err: err}
		}
	} else {
		cart.hasCHRRAM = true
	}

	initialRAM := make([]byte, 0x2000)

	var chrArg []byte
	if !cart.hasCHRRAM {
		chrArg = cart.chrROM
	}
	cart.mapper = mapper.New(cart.mapperID, cart.prgROM, chrArg, cart.hasCHRRAM, initialRAM, mirror, irq)
	if cart.hasCHRRAM {
		cart.chrROM = nil // CHR RAM now lives inside the mapper
	}

	glog.Infof("cartridge: loaded mapper %d, %dKiB PRG, mirror=%v, battery=%v",
		cart.mapperID, len(cart.prgROM)/1024, mirror, cart.hasBattery)

	return cart, nil
}

func (c *Cartridge) ReadPRG(address uint16) uint8         { return c.mapper.ReadPRG(address) }
func (c *Cartridge) WritePRG(address uint16, value uint8)  { c.mapper.WritePRG(address, value) }
func (c *Cartridge) ReadCHR(address uint16) uint8          { return c.mapper.ReadCHR(address) }
func (c *Cartridge) WriteCHR(address uint16, value uint8)  { c.mapper.WriteCHR(address, value) }
func (c *Cartridge) Mirror() mapper.Mirror                 { return c.mapper.Mirror() }
func (c *Cartridge) NameTableMap() [4]uint16               { return c.mapper.NameTableMap() }
func (c *Cartridge) OnScanline()                           { c.mapper.OnScanline() }
func (c *Cartridge) Reset()                                { c.mapper.Reset() }
func (c *Cartridge) HasBattery() bool                      { return c.hasBattery }
func (c *Cartridge) Snapshot() mapper.Snapshot              { return c.mapper.Snapshot() }
func (c *Cartridge) Restore(s mapper.Snapshot)              { c.mapper.Restore(s) }
func (c *Cartridge) MapperID() uint8                        { return c.mapperID }

// TVSystem reports the TV system named by the iNES header's byte 9,
// bit 0 (0 = NTSC, 1 = PAL); most dumps leave it zero regardless of the
// game's actual region, so callers needing certainty should let the
// user override it.
func (c *Cartridge) TVSystem() uint8 { return c.tvSystem }

// PRGRAMSize reports the size of the mapper's work/battery RAM arena,
// or 0 on boards (UxROM, CNROM) that carry none.
func (c *Cartridge) PRGRAMSize() uint32 { return uint32(len(c.mapper.PRGRAM())) }

// PRGRAM returns the mapper's work/battery RAM arena for save-state
// serialization.
func (c *Cartridge) PRGRAM() []byte { return c.mapper.PRGRAM() }

// RestorePRGRAM loads a prior PRG-RAM snapshot.
func (c *Cartridge) RestorePRGRAM(data []byte) { c.mapper.RestorePRGRAM(data) }
