// Package nsfclock derives NES CPU clock rates and play-routine timing
// from canonical clock constants instead of hand-tuned magic ratios.
// NSF file parsing and playback are out of scope (see spec Non-goals);
// this package only resolves the underlying clock arithmetic so an NSF
// player, if one were added later, would not need to reintroduce them.
package nsfclock

// Canonical CPU clock rates, in Hz, for each TV system.
const (
	NTSCHz = 1_789_773.0
	PALHz  = 1_773_448.0
)

// Default play-routine interval, in microseconds, an NSF header with a
// zero speed field implies: the standard 60Hz/50Hz frame rate.
const (
	defaultNTSCSpeedUS = 16_639
	defaultPALSpeedUS  = 19_997
)

// CPUFrequency returns the canonical CPU clock rate for the given TV
// system, for wiring into apu.APU.SetCPUFrequency.
func CPUFrequency(pal bool) float64 {
	if pal {
		return PALHz
	}
	return NTSCHz
}

// SpeedTicks converts an NSF header's play-routine interval (in
// microseconds, 0 meaning "use the TV system's standard frame rate")
// into the number of CPU cycles to run between play-routine calls,
// derived from the canonical clock rather than a hand-tuned PAL/NTSC
// ratio constant.
func SpeedTicks(pal bool, speedMicroseconds uint16) uint32 {
	if speedMicroseconds == 0 {
		if pal {
			speedMicroseconds = defaultPALSpeedUS
		} else {
			speedMicroseconds = defaultNTSCSpeedUS
		}
	}
	return uint32(CPUFrequency(pal) * float64(speedMicroseconds) / 1_000_000.0)
}
