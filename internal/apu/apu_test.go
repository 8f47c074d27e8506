package apu

import "testing"

type fakeBus struct {
	mem [0x10000]byte
}

func (f *fakeBus) Read(addr uint16) uint8 { return f.mem[addr] }

func TestWriteChannelEnable_ClearsLengthCounters(t *testing.T) {
	a := New(nil, nil)
	a.WriteRegister(0x4003, 0xF8) // pulse1 length load
	if a.pulse1.lengthCounter == 0 {
		t.Fatal("expected pulse1 length counter to be loaded")
	}
	a.WriteRegister(0x4015, 0x00) // disable all channels
	if a.pulse1.lengthCounter != 0 {
		t.Fatal("disabling pulse1 should zero its length counter")
	}
}

func TestDMC_FetchesFromBus(t *testing.T) {
	bus := &fakeBus{}
	bus.mem[0xC000] = 0xAA
	var fired bool
	a := New(bus, func(assert bool) {
		if assert {
			fired = true
		}
	})
	a.WriteRegister(0x4012, 0x00) // sample address -> $C000
	a.WriteRegister(0x4013, 0x00) // sample length -> 1 byte
	a.WriteRegister(0x4010, 0x00) // no loop, no IRQ
	a.WriteRegister(0x4015, 0x10) // enable DMC, starts fetch

	// Force an empty output buffer so the next timer tick fetches a byte,
	// mirroring the real hardware's buffer-underrun refill path.
	a.dmc.sampleBufferEmpty = true
	a.dmc.timerCounter = 0
	a.stepDMCTimer(&a.dmc)

	if a.dmc.sampleBufferBits != 8 {
		t.Fatalf("expected the DMC to refill 8 bits from a fetched byte, got %d", a.dmc.sampleBufferBits)
	}
	if a.dmc.sampleBuffer != 0xAA {
		t.Fatalf("DMC sample buffer = %#x, want the fetched 0xAA", a.dmc.sampleBuffer)
	}
	_ = fired
}

func TestFrameCounter_4StepFiresIRQ(t *testing.T) {
	var asserted bool
	a := New(nil, func(assert bool) {
		if assert {
			asserted = true
		}
	})
	a.frameIRQEnable = true
	for i := 0; i < 29830; i++ {
		a.stepFrameCounter()
	}
	if !asserted {
		t.Fatal("expected frame IRQ to assert at the end of the 4-step sequence")
	}
}

func TestMixChannels_SilentWhenAllZero(t *testing.T) {
	a := New(nil, nil)
	if got := a.mixChannels(0, 0, 0, 0, 0); got != -1.0 {
		t.Fatalf("silent mix = %f, want -1.0 (full-scale negative DC offset)", got)
	}
}

func TestSnapshotRestore_RoundTripsChannelState(t *testing.T) {
	a := New(nil, nil)
	a.WriteRegister(0x4003, 0xF8) // pulse1 length load
	a.WriteRegister(0x4015, 0x01) // enable pulse1
	a.frameIRQFlag = true
	a.cycles = 12345

	snap := a.Snapshot()

	b := New(nil, nil)
	b.Restore(snap)
	if b.pulse1.lengthCounter != a.pulse1.lengthCounter {
		t.Fatalf("pulse1 length counter = %d, want %d", b.pulse1.lengthCounter, a.pulse1.lengthCounter)
	}
	if !b.frameIRQFlag {
		t.Fatal("expected frame IRQ flag to survive the round trip")
	}
	if b.cycles != 12345 {
		t.Fatalf("cycles = %d, want 12345", b.cycles)
	}
}

func TestSnapshotMarshalBinary_RoundTrips(t *testing.T) {
	a := New(nil, nil)
	a.WriteRegister(0x4003, 0xF8)
	a.WriteRegister(0x4015, 0x01)
	a.cycles = 999

	data, err := a.Snapshot().MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	var got Snapshot
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if got.Pulse1.lengthCounter != a.pulse1.lengthCounter {
		t.Fatalf("pulse1 length counter = %d, want %d", got.Pulse1.lengthCounter, a.pulse1.lengthCounter)
	}
	if got.Cycles != 999 {
		t.Fatalf("cycles = %d, want 999", got.Cycles)
	}
}

func TestSetVolume_ScalesOutput(t *testing.T) {
	a := New(nil, nil)
	a.SetVolume(0)
	a.WriteRegister(0x4003, 0xF8)
	a.channelEnable[0] = true
	a.pulse1.timer = 100
	a.pulse1.envelopeDisable = true
	a.pulse1.volume = 15
	a.pulse1.sequencerPos = 1
	a.pulse1.dutyCycle = 2
	a.cycleAccumulator = 0.999999
	a.generateSample()
	samples := a.GetSamples()
	if len(samples) == 0 {
		t.Fatal("expected generateSample to emit a sample once the accumulator crosses 1.0")
	}
	if samples[0] != -1.0 {
		t.Fatalf("zero-volume sample = %f, want -1.0 (fully silenced by SetVolume(0))", samples[0])
	}
}
