// Package emu is the top-level emulator facade: it owns ROM loading,
// subsystem wiring, and the save-state/TAS run-control surface the host
// UI drives. The frame loop itself lives in internal/scheduler.
package emu

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/glog"

	"gones/internal/apu"
	"gones/internal/cartridge"
	"gones/internal/cpu"
	"gones/internal/gamegenie"
	"gones/internal/input"
	"gones/internal/memorybus"
	"gones/internal/ppu"
	"gones/internal/savestate"
	"gones/internal/scheduler"
	"gones/internal/tasmovie"
)

// maxSlots is the save-state slot count; change-slot wraps modulo this.
const maxSlots = 10

// saveLoadCooldown gates consecutive save/load invocations from the UI.
const saveLoadCooldown = 1 * time.Second

// Config bundles everything Init needs to bring up one emulated session.
type Config struct {
	ROMPath string

	// ForcePAL overrides the iNES header's TV-system bit when the host
	// knows better (the header's region bit is frequently left at its
	// zero/NTSC default regardless of the game's actual region).
	ForcePAL bool

	// GameGenieCodes are applied as PRG-read patches at Init.
	GameGenieCodes []string

	// SaveDirectory overrides where save-state and movie files live; an
	// empty value picks the host platform's preference directory.
	SaveDirectory string
}

// Emulator wires the CPU/PPU/APU/mapper/scheduler together and exposes
// the run-control interface of spec chapter 6.
type Emulator struct {
	Scheduler *scheduler.Scheduler

	cart     *cartridge.Cartridge
	ppuBus   *memorybus.PPUBus
	patches  []gamegenie.Patch
	romPath  string
	saveDir  string
	slot     int
	lastSave time.Time
}

// irqLine combines the mapper's and APU's independent IRQ assertions
// into the single level the CPU bus exposes, matching the real
// hardware's wire-OR: either source can hold the line low.
type irqLine struct {
	cpu            *cpu.CPU
	mapperAsserted bool
	apuAsserted    bool
}

func (l *irqLine) setMapper(assert bool) { l.mapperAsserted = assert; l.sync() }
func (l *irqLine) setAPU(assert bool)    { l.apuAsserted = assert; l.sync() }
func (l *irqLine) sync()                 { l.cpu.SetIRQ(l.mapperAsserted || l.apuAsserted) }

// apuBusRef indirects the APU's CPU-bus reference through a pointer that
// is filled in after memorybus.Bus is constructed, breaking the
// Bus-needs-APU / APU-needs-Bus construction cycle.
type apuBusRef struct{ bus *memorybus.Bus }

func (r *apuBusRef) Read(addr uint16) uint8 { return r.bus.Read(addr) }

// geniePatcher wraps a cartridge.Cartridge's PRG reads with Game Genie
// overrides; it implements the same narrow interface memorybus.Bus and
// scheduler use so it can stand in for the cartridge everywhere.
type geniePatcher struct {
	*cartridge.Cartridge
	patches []gamegenie.Patch
}

func (g *geniePatcher) ReadPRG(addr uint16) uint8 {
	v := g.Cartridge.ReadPRG(addr)
	for _, p := range g.patches {
		if p.Address != addr {
			continue
		}
		if p.HasCompare && p.Compare != v {
			continue
		}
		return p.Value
	}
	return v
}

// Init loads the ROM, wires every subsystem, and constructs the
// scheduler, per spec 4.9.
func Init(cfg Config) (*Emulator, error) {
	var c *cpu.CPU
	line := &irqLine{}

	cart, err := cartridge.LoadFromFile(cfg.ROMPath, func(assert bool) { line.setMapper(assert) })
	if err != nil {
		return nil, fmt.Errorf("emu: load ROM: %w", err)
	}

	patches, err := decodeGameGenieCodes(cfg.GameGenieCodes)
	if err != nil {
		return nil, fmt.Errorf("emu: game genie: %w", err)
	}
	patched := &geniePatcher{Cartridge: cart, patches: patches}

	tv := scheduler.NTSC
	if cfg.ForcePAL || cart.TVSystem() == 1 {
		tv = scheduler.PAL
	}

	p := ppu.New()
	p.SetTVSystem(tv)
	p.SetNMICallback(func() { c.SetNMI(true) })
	ppuBus := memorybus.NewPPUBus(patched)
	p.SetMemory(ppuBus)

	busRef := &apuBusRef{}
	a := apu.New(busRef, func(assert bool) { line.setAPU(assert) })
	a.SetCPUFrequency(cpuFrequency(tv))

	bus := memorybus.New(p, a, patched)
	busRef.bus = bus

	inputs := input.NewInputState()
	bus.SetInput(inputs)

	c = cpu.New(bus)
	line.cpu = c
	c.Reset()

	saveDir := cfg.SaveDirectory
	if saveDir == "" {
		saveDir = defaultSaveDirectory()
	}
	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		glog.Warningf("emu: could not create save directory %s: %v", saveDir, err)
	}

	sched := scheduler.New(scheduler.Config{
		CPU: c, PPU: p, APU: a, Bus: bus,
		Inputs: inputs, Movie: tasmovie.NewEngine(), Cart: cart, TV: tv,
	})

	glog.Infof("emu: initialized %s (tv=%v, mapper=%d, genie patches=%d)",
		cfg.ROMPath, tv, cart.MapperID(), len(patches))

	return &Emulator{
		Scheduler: sched,
		cart:      cart,
		ppuBus:    ppuBus,
		patches:   patches,
		romPath:   cfg.ROMPath,
		saveDir:   saveDir,
	}, nil
}

func decodeGameGenieCodes(codes []string) ([]gamegenie.Patch, error) {
	patches := make([]gamegenie.Patch, 0, len(codes))
	for _, code := range codes {
		p, err := gamegenie.Decode(strings.ToUpper(strings.TrimSpace(code)))
		if err != nil {
			return nil, err
		}
		patches = append(patches, p)
	}
	return patches, nil
}

func cpuFrequency(tv scheduler.TVSystem) float64 {
	if tv == scheduler.PAL {
		return 1_773_448.0
	}
	return 1_789_773.0
}

// defaultSaveDirectory picks the host platform's preference directory,
// falling back to the working directory if the platform reports none.
func defaultSaveDirectory() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "gones", "saves")
}

// Reset performs a soft reset: CPU, APU, PPU and the mapper re-init, per
// spec 4.9.
func (e *Emulator) Reset() { e.Scheduler.Reset() }

// Free releases resources Init allocated beyond GC's reach. The facade
// owns no file handles or native buffers past Init, so this only exists
// to give callers a single, symmetric teardown point.
func (e *Emulator) Free() {}

// TogglePause flips the paused run-control flag.
func (e *Emulator) TogglePause() { e.Scheduler.TogglePause() }

// Step requests a single stepped frame.
func (e *Emulator) Step() { e.Scheduler.Step() }

// ToggleSlowMotion cycles the slow-motion factor through 1x/2x/4x.
func (e *Emulator) ToggleSlowMotion() { e.Scheduler.ToggleSlowMotion() }

// RequestExit terminates the run loop at the next frame boundary.
func (e *Emulator) RequestExit() { e.Scheduler.RequestExit() }

// ExitRequested reports whether RequestExit has been called.
func (e *Emulator) ExitRequested() bool { return e.Scheduler.ExitRequested() }

// CurrentSlot reports the active save-state slot.
func (e *Emulator) CurrentSlot() int { return e.slot }

// ChangeSlot advances the active slot by delta, wrapping modulo the
// slot count, per spec chapter 6.
func (e *Emulator) ChangeSlot(delta int) {
	e.slot = ((e.slot+delta)%maxSlots + maxSlots) % maxSlots
}

// slotPath names a slot's file as <rom_base>_slot<N>.save, per the
// literal format spec chapter 6 gives for the save-state file.
func (e *Emulator) slotPath(slot int) string {
	base := filepath.Base(e.romPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(e.saveDir, fmt.Sprintf("%s_slot%d.save", base, slot))
}

// cooldownReady reports whether saveLoadCooldown has elapsed since the
// last save or load, and records this call's time if so.
func (e *Emulator) cooldownReady(now time.Time) bool {
	if now.Sub(e.lastSave) < saveLoadCooldown {
		return false
	}
	e.lastSave = now
	return true
}

// Save writes the current slot's save-state to disk, following the
// load procedure's mirror image from spec 4.5: CPU, RAM, PPU, APU,
// Mapper, optional PRG-RAM, optional movie payload.
func (e *Emulator) Save(now time.Time) error {
	if !e.cooldownReady(now) {
		return fmt.Errorf("emu: save/load cooldown active")
	}

	guid, frames := e.Scheduler.Movie.SnapshotPayload()
	mapperSnap := e.cart.Snapshot()

	snap := savestate.Snapshot{
		MovieGUID:        guid,
		FrameIndexAtSave: e.Scheduler.CurrentFrameIndex(),
		MovieLength:      uint32(len(frames)),
		CPU:              e.Scheduler.CPU.Snapshot(),
		RAM:              e.Scheduler.Bus.SnapshotRAM(),
		PPU:              e.Scheduler.PPU.Snapshot(),
		APU:              e.Scheduler.APU.Snapshot(),
		Mapper:           mapperSnap,
		MovieFrames:      frames,
	}
	if mapperSnap.RAMSize > 0 {
		snap.PRGRAM = e.cart.PRGRAM()
	}
	snap.PPUBus = e.ppuBus.Snapshot()

	data, err := savestate.Encode(snap)
	if err != nil {
		return fmt.Errorf("emu: encode save state: %w", err)
	}
	if err := os.WriteFile(e.slotPath(e.slot), data, 0o644); err != nil {
		return fmt.Errorf("emu: write save state: %w", err)
	}
	glog.Infof("emu: saved slot %d to %s", e.slot, e.slotPath(e.slot))
	return nil
}

// Load restores the current slot's save-state, reconciling it against
// any active TAS movie per spec 4.8 before applying subsystem state.
func (e *Emulator) Load(now time.Time) error {
	if !e.cooldownReady(now) {
		return fmt.Errorf("emu: save/load cooldown active")
	}

	data, err := os.ReadFile(e.slotPath(e.slot))
	if err != nil {
		return fmt.Errorf("emu: read save state: %w", err)
	}
	snap, err := savestate.Decode(data)
	if err != nil {
		return fmt.Errorf("emu: decode save state: %w", err)
	}

	if err := e.Scheduler.Movie.ReconcileLoad(
		snap.MovieGUID, snap.MovieFrames, snap.FrameIndexAtSave, e.Scheduler.CurrentFrameIndex(),
	); err != nil {
		return fmt.Errorf("emu: %w", err)
	}

	e.Scheduler.CPU.Restore(snap.CPU)
	e.Scheduler.Bus.RestoreRAM(snap.RAM)
	e.Scheduler.PPU.Restore(snap.PPU)
	e.Scheduler.APU.Restore(snap.APU)
	e.cart.Restore(snap.Mapper)
	if snap.Mapper.RAMSize > 0 {
		e.cart.RestorePRGRAM(snap.PRGRAM)
	}
	e.ppuBus.Restore(snap.PPUBus)
	e.Scheduler.SetCurrentFrameIndex(snap.FrameIndexAtSave)

	glog.Infof("emu: loaded slot %d from %s", e.slot, e.slotPath(e.slot))
	return nil
}

// StartRecording begins a fresh TAS recording from power-on, per spec
// 4.8.
func (e *Emulator) StartRecording() {
	e.Scheduler.Movie.StartRecording()
	e.Reset()
	e.Scheduler.SetCurrentFrameIndex(0)
}

// StartPlayback loads a movie file and begins PLAYBACK from power-on.
func (e *Emulator) StartPlayback(moviePath string, readOnly bool) error {
	data, err := os.ReadFile(moviePath)
	if err != nil {
		return fmt.Errorf("emu: read movie: %w", err)
	}
	frames, err := tasmovie.Decode(data)
	if err != nil {
		return fmt.Errorf("emu: decode movie: %w", err)
	}
	e.Scheduler.Movie.StartPlayback(tasmovie.NewGUID(), frames, readOnly)
	e.Reset()
	e.Scheduler.SetCurrentFrameIndex(0)
	return nil
}

// StopMovie persists a RECORDING timeline to moviePath (if recording)
// and returns to INACTIVE.
func (e *Emulator) StopMovie(moviePath string) error {
	if e.Scheduler.Movie.Mode() == tasmovie.Recording {
		_, frames := e.Scheduler.Movie.SnapshotPayload()
		data := tasmovie.Encode(frames, uint32(len(frames)))
		if err := os.WriteFile(moviePath, data, 0o644); err != nil {
			return fmt.Errorf("emu: write movie: %w", err)
		}
	}
	e.Scheduler.Movie.Stop()
	return nil
}
