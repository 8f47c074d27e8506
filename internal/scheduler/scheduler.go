// Package scheduler drives the single cooperative-thread frame loop: it
// orders input capture, TAS recording/playback, the PPU/CPU/APU tick
// ratio, frame presentation, and wall-clock pacing.
package scheduler

import (
	"time"

	"gones/internal/apu"
	"gones/internal/cpu"
	"gones/internal/input"
	"gones/internal/memorybus"
	"gones/internal/ppu"
	"gones/internal/tasmovie"
)

// TVSystem selects NTSC or PAL timing; re-exported from internal/ppu so
// callers need not import it directly just to configure a Scheduler.
type TVSystem = ppu.TVSystem

const (
	NTSC = ppu.NTSC
	PAL  = ppu.PAL
)

// Frame periods in nanoseconds, per spec: 16.67ms NTSC, 20ms PAL.
const (
	ntscPeriod = 16_666_667 * time.Nanosecond
	palPeriod  = 20_000_000 * time.Nanosecond
)

// PALExtraTickStride is the CPU-tick cadence at which PAL runs one
// additional PPU dot, yielding the 3.2 PPU-ticks-per-CPU-tick ratio.
const PALExtraTickStride = 5

// DefaultTurboSkip is the number of frames each turbo on/off half-cycle
// lasts when a ROM doesn't get a more specific value from the host UI.
const DefaultTurboSkip = 4

// pauseSleep is the wall-clock wait the scheduler takes each frame while
// paused, per spec 4.4 step 3.
const pauseSleep = 30 * time.Millisecond

// Cartridge is the subset of mapper/cartridge behavior the scheduler
// needs for a soft reset.
type Cartridge interface {
	Reset()
}

// Presenter hands a completed frame buffer off to the external video
// path; it is the same shape as graphics.Window.RenderFrame so an emu
// facade can pass either straight through.
type Presenter interface {
	RenderFrame(buf [256 * 240]uint32) error
}

// AudioSink receives queued APU samples at frame boundaries.
type AudioSink interface {
	QueueSamples(samples []float32)
}

// Scheduler owns the five emulated subsystems and the run-control flags
// that govern the frame loop; it never spawns goroutines, matching the
// single-cooperative-thread concurrency model.
type Scheduler struct {
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	Bus    *memorybus.Bus
	Inputs *input.InputState
	Movie  *tasmovie.Engine
	Cart   Cartridge

	tv     TVSystem
	period time.Duration

	currentFrameIndex uint32
	cpuCycleCounter   uint64

	paused      bool
	stepPending bool
	exit        bool
	slowMotion  int

	lastSoftResetCombo bool
}

// Config bundles everything Scheduler needs at construction.
type Config struct {
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	Bus    *memorybus.Bus
	Inputs *input.InputState
	Movie  *tasmovie.Engine
	Cart   Cartridge
	TV     TVSystem
}

// New builds a Scheduler over already-wired subsystems; the emu facade
// owns construction order (mapper -> bus -> CPU/PPU/APU -> scheduler).
func New(cfg Config) *Scheduler {
	s := &Scheduler{
		CPU:        cfg.CPU,
		PPU:        cfg.PPU,
		APU:        cfg.APU,
		Bus:        cfg.Bus,
		Inputs:     cfg.Inputs,
		Movie:      cfg.Movie,
		Cart:       cfg.Cart,
		tv:         cfg.TV,
		slowMotion: 1,
	}
	s.period = periodFor(cfg.TV)
	return s
}

func periodFor(tv TVSystem) time.Duration {
	if tv == PAL {
		return palPeriod
	}
	return ntscPeriod
}

// CurrentFrameIndex reports the frame counter the TAS engine and
// save-state header are keyed on.
func (s *Scheduler) CurrentFrameIndex() uint32 { return s.currentFrameIndex }

// SetCurrentFrameIndex is used by the emu facade's load path to restore
// the frame counter from a save-state header.
func (s *Scheduler) SetCurrentFrameIndex(f uint32) { s.currentFrameIndex = f }

// CPUCycleCount reports the running CPU-cycle counter that drives the
// PAL extra-PPU-tick cadence; restored on save-state load so the phase
// of that cadence survives a load.
func (s *Scheduler) CPUCycleCount() uint64 { return s.cpuCycleCounter }

// SetCPUCycleCount restores the running CPU-cycle counter.
func (s *Scheduler) SetCPUCycleCount(c uint64) { s.cpuCycleCounter = c }

// IsPaused reports the current pause state.
func (s *Scheduler) IsPaused() bool { return s.paused }

// SetPaused toggles pause directly (used by the run-control "pause"
// command, which spec 6 describes as a toggle).
func (s *Scheduler) SetPaused(paused bool) { s.paused = paused }

// TogglePause flips the pause flag.
func (s *Scheduler) TogglePause() { s.paused = !s.paused }

// Step requests exactly one frame of emulation the next time the
// scheduler is unpaused (or immediately if already running), then
// re-enters pause, per spec 4.4 step 10 / spec 5.
func (s *Scheduler) Step() {
	s.paused = false
	s.stepPending = true
}

// RequestExit sets the exit flag; the run loop checks it at the next
// frame boundary, never mid-frame.
func (s *Scheduler) RequestExit() { s.exit = true }

// ExitRequested reports whether RequestExit was called.
func (s *Scheduler) ExitRequested() bool { return s.exit }

// SlowMotionFactor reports the current slow-motion divisor (1, 2, or 4).
func (s *Scheduler) SlowMotionFactor() int { return s.slowMotion }

// SetSlowMotionFactor sets the slow-motion divisor; values outside
// {1,2,4} are clamped to the nearest defined setting, with 3 going to 2.
func (s *Scheduler) SetSlowMotionFactor(factor int) {
	switch {
	case factor <= 1:
		s.slowMotion = 1
	case factor <= 3:
		s.slowMotion = 2
	default:
		s.slowMotion = 4
	}
}

// ToggleSlowMotion cycles 1 -> 2 -> 4 -> 1, matching the run-control
// "toggle-slow-motion" command.
func (s *Scheduler) ToggleSlowMotion() {
	switch s.slowMotion {
	case 1:
		s.slowMotion = 2
	case 2:
		s.slowMotion = 4
	default:
		s.slowMotion = 1
	}
}

// Reset re-initializes CPU, APU, PPU and the mapper, per spec 4.9. It
// does not touch the TAS engine or frame index; callers that need a
// full power-cycle (e.g. recording start) handle those separately.
func (s *Scheduler) Reset() {
	s.CPU.Reset()
	s.APU.Reset()
	s.PPU.Reset()
	s.Cart.Reset()
	s.Inputs.Reset()
}

// Tick runs exactly one frame through the ten-step sequence of spec
// 4.4, presenting the completed buffer to presenter and queuing audio
// samples to sink (sink may be nil to discard audio). It sleeps to meet
// PERIOD (extended for slow motion) before returning, except while
// paused, where it sleeps the shorter pause interval instead.
func (s *Scheduler) Tick(presenter Presenter, sink AudioSink) error {
	frameStart := time.Now()

	// Step 2: turbo toggle, suppressed during PLAYBACK.
	if s.Movie.Mode() != tasmovie.Playback {
		s.Inputs.TickTurbo()
	}

	// Step 3: paused and not stepping.
	if s.paused && !s.stepPending {
		buf := s.PPU.GetFrameBuffer()
		if err := presenter.RenderFrame(buf); err != nil {
			return err
		}
		time.Sleep(pauseSleep)
		return nil
	}

	combo := s.Inputs.SoftResetRequested()
	if combo && !s.lastSoftResetCombo {
		s.Reset()
	}
	s.lastSoftResetCombo = combo

	// Step 4: apply any truncation a savestate load queued.
	s.Movie.ApplyPendingTruncation()

	// Step 5: capture or inject joypad state. During PLAYBACK the live
	// values are ignored in favor of the recorded ones, which is what
	// suppresses physical input from step 1.
	liveJoy1, liveJoy2 := s.Inputs.Status()
	joy1, joy2 := s.Movie.CaptureOrInject(s.currentFrameIndex, liveJoy1, liveJoy2)
	s.Inputs.ForceStatus(joy1, joy2)

	// Step 6: advance emulation until the PPU signals a completed frame.
	s.runUntilRender()

	// Step 7: advance the frame index unless the movie just finished.
	if s.Movie.Mode() != tasmovie.Finished {
		s.currentFrameIndex++
	}

	// Step 8: hand the buffer and audio samples to the host.
	if err := presenter.RenderFrame(s.PPU.GetFrameBuffer()); err != nil {
		return err
	}
	if sink != nil {
		sink.QueueSamples(s.APU.GetSamples())
	}

	// Step 9: sleep to meet PERIOD, extended for slow motion.
	elapsed := time.Since(frameStart)
	wait := s.period - elapsed
	if s.slowMotion > 1 {
		wait += s.period * time.Duration(s.slowMotion-1)
	}
	if wait > 0 {
		time.Sleep(wait)
	}

	// Step 10: step-mode re-enters pause.
	if s.stepPending {
		s.stepPending = false
		s.paused = true
	}
	return nil
}

// runUntilRender drives CPU/PPU/APU in lockstep, three PPU dots and one
// APU tick per CPU cycle (plus one extra PPU dot every fifth CPU cycle
// on PAL), until the PPU's render flag goes up. DMA in progress steps
// the bus instead of the CPU, one cycle at a time, mirroring real
// hardware's bus takeover during OAM DMA.
func (s *Scheduler) runUntilRender() {
	for {
		var cpuCycles uint64
		if s.Bus.DMAActive() {
			cpuCycleIsOdd := s.cpuCycleCounter%2 != 0
			s.Bus.StepDMA(cpuCycleIsOdd)
			cpuCycles = 1
		} else {
			cpuCycles = s.CPU.Step()
		}

		for i := uint64(0); i < cpuCycles; i++ {
			s.PPU.Step()
			s.PPU.Step()
			s.PPU.Step()
			s.cpuCycleCounter++
			if s.tv == PAL && s.cpuCycleCounter%PALExtraTickStride == 0 {
				s.PPU.Step()
			}
			s.APU.Step()
			if s.PPU.ConsumeRenderFlag() {
				return
			}
		}
	}
}
