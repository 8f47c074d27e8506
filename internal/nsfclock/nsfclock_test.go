package nsfclock

import "testing"

func TestCPUFrequency_SelectsBySystem(t *testing.T) {
	if CPUFrequency(false) != NTSCHz {
		t.Fatalf("CPUFrequency(false) = %v, want %v", CPUFrequency(false), NTSCHz)
	}
	if CPUFrequency(true) != PALHz {
		t.Fatalf("CPUFrequency(true) = %v, want %v", CPUFrequency(true), PALHz)
	}
}

func TestSpeedTicks_ZeroFallsBackToStandardFrameRate(t *testing.T) {
	ntsc := SpeedTicks(false, 0)
	pal := SpeedTicks(true, 0)
	// ~29780 CPU cycles/frame NTSC, ~35468 PAL, within rounding of the
	// standard 60Hz/50Hz NES frame rate.
	if ntsc < 29700 || ntsc > 29900 {
		t.Fatalf("SpeedTicks(NTSC, 0) = %d, want ~29780", ntsc)
	}
	if pal < 35300 || pal > 35600 {
		t.Fatalf("SpeedTicks(PAL, 0) = %d, want ~35468", pal)
	}
}

func TestSpeedTicks_HonorsExplicitSpeed(t *testing.T) {
	got := SpeedTicks(false, 1000)
	hz := NTSCHz
	want := uint32(hz * 1000 / 1_000_000.0)
	if got != want {
		t.Fatalf("SpeedTicks(NTSC, 1000us) = %d, want %d", got, want)
	}
}
