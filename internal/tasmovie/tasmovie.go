// Package tasmovie implements the TAS (tool-assisted speedrun) movie
// engine: a small recording/playback state machine over a per-frame
// joypad timeline, plus the movie file's binary format.
package tasmovie

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// Mode is one state of the recording/playback state machine.
type Mode int

const (
	Inactive Mode = iota
	Recording
	Playback
	Finished
)

func (m Mode) String() string {
	switch m {
	case Recording:
		return "RECORDING"
	case Playback:
		return "PLAYBACK"
	case Finished:
		return "FINISHED"
	default:
		return "INACTIVE"
	}
}

// FrameInput is one frame's worth of both joypads' button state.
type FrameInput struct {
	Joy1 uint16
	Joy2 uint16
}

const movieMagic = 0x54415331

// ErrBadMagic is returned when decoding a file that isn't a movie.
var ErrBadMagic = fmt.Errorf("tasmovie: bad magic")

// Encode serializes frames[0:frameCount] to the movie file format.
func Encode(frames []FrameInput, frameCount uint32) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint32(movieMagic))
	binary.Write(buf, binary.LittleEndian, frameCount)
	for i := uint32(0); i < frameCount; i++ {
		binary.Write(buf, binary.LittleEndian, frames[i].Joy1)
		binary.Write(buf, binary.LittleEndian, frames[i].Joy2)
	}
	return buf.Bytes()
}

// Decode parses the movie file format back into a frame slice.
func Decode(data []byte) ([]FrameInput, error) {
	if len(data) < 8 {
		return nil, ErrBadMagic
	}
	r := bytes.NewReader(data)
	var magic, count uint32
	binary.Read(r, binary.LittleEndian, &magic)
	if magic != movieMagic {
		return nil, ErrBadMagic
	}
	binary.Read(r, binary.LittleEndian, &count)
	frames := make([]FrameInput, count)
	for i := uint32(0); i < count; i++ {
		if err := binary.Read(r, binary.LittleEndian, &frames[i].Joy1); err != nil {
			return nil, fmt.Errorf("tasmovie: truncated frame %d: %w", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &frames[i].Joy2); err != nil {
			return nil, fmt.Errorf("tasmovie: truncated frame %d: %w", i, err)
		}
	}
	return frames, nil
}

// Engine drives the INACTIVE/RECORDING/PLAYBACK/FINISHED state machine
// over one movie timeline.
type Engine struct {
	mode Mode

	guid       uint64
	frames     []FrameInput
	frameCount uint32 // committed length (frames[0:frameCount] is valid)
	readOnly   bool

	needsTruncation      bool
	truncateAtFrameIndex uint32
}

// NewEngine creates an engine with no movie loaded.
func NewEngine() *Engine { return &Engine{mode: Inactive} }

// Mode reports the current state.
func (e *Engine) Mode() Mode { return e.mode }

// GUID reports the active movie's identifier, or 0 if inactive.
func (e *Engine) GUID() uint64 { return e.guid }

// FrameCount reports the committed timeline length.
func (e *Engine) FrameCount() uint32 { return e.frameCount }

// NewGUID generates a fresh, non-zero 64-bit movie identifier; callers
// adopting a movie file for playback (which carries no GUID of its own,
// per the movie file format) use this to mint one for the session.
func NewGUID() uint64 { return newGUID() }

// newGUID generates a fresh, non-zero 64-bit movie identifier.
func newGUID() uint64 {
	var b [8]byte
	for {
		rand.Read(b[:])
		v := binary.LittleEndian.Uint64(b[:])
		if v != 0 {
			return v
		}
	}
}

// StartRecording begins a fresh recording: a new GUID and an empty
// timeline. Callers must reset the emulator afterward (spec requires
// recording to start from power-on).
func (e *Engine) StartRecording() {
	e.mode = Recording
	e.guid = newGUID()
	e.frames = nil
	e.frameCount = 0
	e.readOnly = false
	e.needsTruncation = false
}

// StartPlayback loads a decoded movie and enters PLAYBACK. With readOnly
// set, ReconcileLoad refuses a save-state whose timeline is longer than
// the loaded movie; the caller resets the emulator afterward.
func (e *Engine) StartPlayback(guid uint64, frames []FrameInput, readOnly bool) {
	e.mode = Playback
	e.guid = guid
	e.frames = frames
	e.frameCount = uint32(len(frames))
	e.readOnly = readOnly
	e.needsTruncation = false
}

// Stop returns to INACTIVE. The caller is responsible for persisting
// the timeline to disk first if it was RECORDING.
func (e *Engine) Stop() {
	e.mode = Inactive
	e.guid = 0
	e.frames = nil
	e.frameCount = 0
	e.needsTruncation = false
}

// CaptureOrInject implements scheduler step 5: RECORDING commits the
// live joypad state into the timeline; PLAYBACK overrides the live
// joypad state from the timeline, transitioning to FINISHED past the
// end. It returns the joypad values the CPU should observe this frame.
func (e *Engine) CaptureOrInject(frameIndex uint32, liveJoy1, liveJoy2 uint16) (joy1, joy2 uint16) {
	switch e.mode {
	case Recording:
		e.ensureCapacity(frameIndex + 1)
		e.frames[frameIndex] = FrameInput{Joy1: liveJoy1, Joy2: liveJoy2}
		if frameIndex+1 > e.frameCount {
			e.frameCount = frameIndex + 1
		}
		return liveJoy1, liveJoy2
	case Playback:
		if frameIndex >= e.frameCount {
			e.mode = Finished
			return liveJoy1, liveJoy2
		}
		f := e.frames[frameIndex]
		return f.Joy1, f.Joy2
	default:
		return liveJoy1, liveJoy2
	}
}

func (e *Engine) ensureCapacity(n uint32) {
	if uint32(len(e.frames)) >= n {
		return
	}
	grown := make([]FrameInput, n)
	copy(grown, e.frames)
	e.frames = grown
}

// ApplyPendingTruncation implements scheduler step 4: if a savestate
// load requested truncation, the committed timeline length is cut back
// to the frame index at which the branch occurred.
func (e *Engine) ApplyPendingTruncation() {
	if !e.needsTruncation {
		return
	}
	e.frameCount = e.truncateAtFrameIndex
	e.needsTruncation = false
}

// SnapshotPayload returns the GUID and committed timeline to embed in a
// save-state, or (0, nil) if no movie is active, per spec 4.8.
func (e *Engine) SnapshotPayload() (guid uint64, frames []FrameInput) {
	if e.mode == Inactive {
		return 0, nil
	}
	return e.guid, append([]FrameInput(nil), e.frames[:e.frameCount]...)
}

// ReconcileLoad implements the savestate/movie interaction rules of
// spec 4.8. currentFrameIndex is the engine's live position (the
// frame about to be captured/injected); savedFrameIndex is the frame
// index recorded inside the snapshot being loaded.
func (e *Engine) ReconcileLoad(savedGUID uint64, savedFrames []FrameInput, savedFrameIndex, currentFrameIndex uint32) error {
	if e.mode == Inactive {
		if savedGUID == 0 {
			return nil
		}
		e.StartPlayback(savedGUID, savedFrames, true)
		return nil
	}

	if savedGUID != e.guid {
		return fmt.Errorf("tasmovie: movie GUID mismatch (saved %#x, active %#x)", savedGUID, e.guid)
	}
	shared := min32(uint32(len(savedFrames)), e.frameCount)
	for i := uint32(0); i < shared; i++ {
		if savedFrames[i] != e.frames[i] {
			return fmt.Errorf("tasmovie: movie timeline diverges at frame %d", i)
		}
	}
	savedLen := uint32(len(savedFrames))
	if e.readOnly && savedLen > e.frameCount {
		return fmt.Errorf("tasmovie: read-only playback cannot load a save claiming unseen future frames (%d > %d)", savedLen, e.frameCount)
	}

	e.frames = append([]FrameInput(nil), savedFrames...)
	e.frameCount = savedLen
	if savedFrameIndex < savedLen {
		e.needsTruncation = true
		e.truncateAtFrameIndex = savedFrameIndex
	}
	_ = currentFrameIndex
	return nil
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
