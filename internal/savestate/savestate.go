// Package savestate implements the binary save-state codec: a fixed
// header followed by the CPU, RAM, PPU, APU, and Mapper snapshots, an
// optional PRG-RAM block, and an optional TAS movie payload.
package savestate

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"gones/internal/apu"
	"gones/internal/cpu"
	"gones/internal/mapper"
	"gones/internal/memorybus"
	"gones/internal/ppu"
	"gones/internal/tasmovie"
)

// Magic and Version identify the save-state file format.
const (
	Magic   uint32 = 0x4E45535C
	Version uint32 = 5
)

// ErrBadMagic is returned when decoding data that isn't a save-state.
var ErrBadMagic = fmt.Errorf("savestate: bad magic")

// ErrBadVersion is returned when the file's version doesn't match what
// this codec knows how to decode.
var ErrBadVersion = fmt.Errorf("savestate: unsupported version")

// Snapshot is the full, subsystem-agnostic save-state payload. The
// emulator facade assembles one from its owned CPU/PPU/APU/bus/cartridge
// instances before calling Encode, and applies one returned by Decode
// back onto those same instances.
type Snapshot struct {
	MovieGUID        uint64
	FrameIndexAtSave uint32
	MovieLength      uint32

	CPU    cpu.Snapshot
	RAM    [0x800]uint8
	PPU    ppu.Snapshot
	PPUBus memorybus.PPUBusSnapshot
	APU    apu.Snapshot
	Mapper mapper.Snapshot

	// PRGRAM is present only when Mapper.RAMSize > 0.
	PRGRAM []byte
	// MovieFrames is present only when MovieGUID != 0, length MovieLength.
	MovieFrames []tasmovie.FrameInput
}

// Encode serializes a Snapshot to the save-state binary format. Pointers
// never appear in the encoding: the mapper's bank state is already
// offset-based (internal/mapper.Snapshot), and the CPU/PPU/APU blocks
// are serialized field-by-field rather than as raw struct dumps.
func Encode(s Snapshot) ([]byte, error) {
	buf := new(bytes.Buffer)

	for _, v := range []any{Magic, Version, s.MovieGUID, s.FrameIndexAtSave, s.MovieLength} {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			return nil, fmt.Errorf("savestate: encode header: %w", err)
		}
	}

	if err := binary.Write(buf, binary.LittleEndian, s.CPU); err != nil {
		return nil, fmt.Errorf("savestate: encode CPU: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, s.RAM); err != nil {
		return nil, fmt.Errorf("savestate: encode RAM: %w", err)
	}

	ppuData, err := s.PPU.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("savestate: encode PPU: %w", err)
	}
	buf.Write(ppuData)
	if err := binary.Write(buf, binary.LittleEndian, s.PPUBus); err != nil {
		return nil, fmt.Errorf("savestate: encode PPU bus: %w", err)
	}

	apuData, err := s.APU.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("savestate: encode APU: %w", err)
	}
	buf.Write(apuData)

	if err := binary.Write(buf, binary.LittleEndian, s.Mapper); err != nil {
		return nil, fmt.Errorf("savestate: encode mapper: %w", err)
	}

	if s.Mapper.RAMSize > 0 {
		if uint32(len(s.PRGRAM)) != s.Mapper.RAMSize {
			return nil, fmt.Errorf("savestate: PRG-RAM length %d does not match mapper.RAMSize %d", len(s.PRGRAM), s.Mapper.RAMSize)
		}
		buf.Write(s.PRGRAM)
	}

	if s.MovieGUID != 0 {
		if uint32(len(s.MovieFrames)) != s.MovieLength {
			return nil, fmt.Errorf("savestate: movie frame count %d does not match MovieLength %d", len(s.MovieFrames), s.MovieLength)
		}
		for _, f := range s.MovieFrames {
			if err := binary.Write(buf, binary.LittleEndian, f.Joy1); err != nil {
				return nil, fmt.Errorf("savestate: encode movie payload: %w", err)
			}
			if err := binary.Write(buf, binary.LittleEndian, f.Joy2); err != nil {
				return nil, fmt.Errorf("savestate: encode movie payload: %w", err)
			}
		}
	}

	return buf.Bytes(), nil
}

// Decode parses the save-state binary format back into a Snapshot.
func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	r := bytes.NewReader(data)

	var magic, version uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return s, ErrBadMagic
	}
	if magic != Magic {
		return s, ErrBadMagic
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return s, fmt.Errorf("savestate: read version: %w", err)
	}
	if version != Version {
		return s, ErrBadVersion
	}
	for _, v := range []any{&s.MovieGUID, &s.FrameIndexAtSave, &s.MovieLength} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return s, fmt.Errorf("savestate: decode header: %w", err)
		}
	}

	if err := binary.Read(r, binary.LittleEndian, &s.CPU); err != nil {
		return s, fmt.Errorf("savestate: decode CPU: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &s.RAM); err != nil {
		return s, fmt.Errorf("savestate: decode RAM: %w", err)
	}

	ppuBytes := make([]byte, ppu.BinarySize)
	if _, err := io.ReadFull(r, ppuBytes); err != nil {
		return s, fmt.Errorf("savestate: decode PPU: %w", err)
	}
	if err := s.PPU.UnmarshalBinary(ppuBytes); err != nil {
		return s, fmt.Errorf("savestate: decode PPU: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &s.PPUBus); err != nil {
		return s, fmt.Errorf("savestate: decode PPU bus: %w", err)
	}

	apuBytes := make([]byte, apuBinarySize)
	if _, err := io.ReadFull(r, apuBytes); err != nil {
		return s, fmt.Errorf("savestate: decode APU: %w", err)
	}
	if err := s.APU.UnmarshalBinary(apuBytes); err != nil {
		return s, fmt.Errorf("savestate: decode APU: %w", err)
	}

	if err := binary.Read(r, binary.LittleEndian, &s.Mapper); err != nil {
		return s, fmt.Errorf("savestate: decode mapper: %w", err)
	}

	if s.Mapper.RAMSize > 0 {
		s.PRGRAM = make([]byte, s.Mapper.RAMSize)
		if _, err := io.ReadFull(r, s.PRGRAM); err != nil {
			return s, fmt.Errorf("savestate: decode PRG-RAM: %w", err)
		}
	}

	if s.MovieGUID != 0 {
		s.MovieFrames = make([]tasmovie.FrameInput, s.MovieLength)
		for i := range s.MovieFrames {
			if err := binary.Read(r, binary.LittleEndian, &s.MovieFrames[i].Joy1); err != nil {
				return s, fmt.Errorf("savestate: decode movie payload: %w", err)
			}
			if err := binary.Read(r, binary.LittleEndian, &s.MovieFrames[i].Joy2); err != nil {
				return s, fmt.Errorf("savestate: decode movie payload: %w", err)
			}
		}
	}

	return s, nil
}

// apuBinarySize mirrors the fixed length apu.Snapshot.MarshalBinary
// always produces: two PulseChannel blocks (20 fields each), one
// TriangleChannel (9), one NoiseChannel (13), one DMCChannel (10), the
// frame-counter fields (5), channel-enable array, sample rate, master
// volume, and the cycle counter.
const apuBinarySize = 2*pulseSize + triangleSize + noiseSize + dmcSize + frameSize

const (
	pulseSize    = 1 + 1 + 1 + 1 + 1 + 1 + 1 + 1 + 1 + 1 + 2 + 2 + 1 + 1 + 1 + 1 + 1 + 1 + 1 + 1 // 20 fields, 22 bytes
	triangleSize = 1 + 1 + 2 + 2 + 1 + 1 + 1 + 1 + 1                                             // 9 fields, 11 bytes
	noiseSize    = 1 + 1 + 1 + 1 + 1 + 2 + 1 + 1 + 1 + 1 + 1 + 2 + 1                              // 13 fields, 15 bytes
	dmcSize      = 1 + 1 + 1 + 1 + 2 + 2 + 2 + 1 + 1 + 1                                          // 10 fields, 13 bytes
	frameSize    = 2 + 1 + 1 + 1 + 1 + 5 + 4 + 4 + 8                                              // frame counter + channelEnable[5] + sampleRate(int32) + masterVolume(float32) + cycles(uint64)
)
