package tasmovie

import "testing"

func TestEncodeDecode_RoundTrip(t *testing.T) {
	frames := []FrameInput{{Joy1: 0x01, Joy2: 0}, {Joy1: 0x81, Joy2: 0x02}}
	data := Encode(frames, uint32(len(frames)))
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(got) != len(frames) || got[0] != frames[0] || got[1] != frames[1] {
		t.Fatalf("round trip = %+v, want %+v", got, frames)
	}
}

func TestDecode_RejectsBadMagic(t *testing.T) {
	if _, err := Decode([]byte{0, 0, 0, 0, 0, 0, 0, 0}); err != ErrBadMagic {
		t.Fatalf("err = %v, want ErrBadMagic", err)
	}
}

func TestStartRecording_AssignsFreshNonZeroGUID(t *testing.T) {
	e := NewEngine()
	e.StartRecording()
	if e.Mode() != Recording {
		t.Fatalf("mode = %v, want RECORDING", e.Mode())
	}
	if e.GUID() == 0 {
		t.Fatal("expected a non-zero GUID after StartRecording")
	}
}

func TestCaptureOrInject_RecordingCommitsFrames(t *testing.T) {
	e := NewEngine()
	e.StartRecording()
	e.CaptureOrInject(0, 0x01, 0)
	e.CaptureOrInject(1, 0x81, 0x02)
	if e.FrameCount() != 2 {
		t.Fatalf("frame count = %d, want 2", e.FrameCount())
	}
}

func TestCaptureOrInject_PlaybackInjectsScriptedInputs(t *testing.T) {
	e := NewEngine()
	e.StartPlayback(0x1234, []FrameInput{{Joy1: 0x01}, {Joy1: 0x04}}, true)
	j1, _ := e.CaptureOrInject(0, 0xFF, 0xFF)
	if j1 != 0x01 {
		t.Fatalf("frame 0 joy1 = %#x, want 0x01 (scripted, not live)", j1)
	}
	j1, _ = e.CaptureOrInject(1, 0xFF, 0xFF)
	if j1 != 0x04 {
		t.Fatalf("frame 1 joy1 = %#x, want 0x04", j1)
	}
}

func TestCaptureOrInject_PlaybackTransitionsToFinishedPastEnd(t *testing.T) {
	e := NewEngine()
	e.StartPlayback(0x1, []FrameInput{{Joy1: 0x01}}, true)
	e.CaptureOrInject(0, 0, 0)
	if e.Mode() != Playback {
		t.Fatalf("mode = %v, want PLAYBACK mid-tape", e.Mode())
	}
	e.CaptureOrInject(1, 0, 0)
	if e.Mode() != Finished {
		t.Fatalf("mode = %v, want FINISHED past end of tape", e.Mode())
	}
}

func TestReconcileLoad_RejectsGUIDMismatch(t *testing.T) {
	e := NewEngine()
	e.StartRecording()
	e.CaptureOrInject(0, 0x01, 0)
	if err := e.ReconcileLoad(0xDEAD, nil, 0, 0); err == nil {
		t.Fatal("expected GUID mismatch to be rejected")
	}
}

func TestReconcileLoad_RejectsSharedPrefixMismatch(t *testing.T) {
	e := NewEngine()
	e.StartRecording()
	guid := e.GUID()
	e.CaptureOrInject(0, 0x01, 0)
	e.CaptureOrInject(1, 0x02, 0)

	saved := []FrameInput{{Joy1: 0x01}, {Joy1: 0xFF}} // frame 1 diverges
	if err := e.ReconcileLoad(guid, saved, 2, 2); err == nil {
		t.Fatal("expected a diverging shared prefix to be rejected")
	}
}

func TestReconcileLoad_ReadOnlyRejectsUnseenFuture(t *testing.T) {
	e := NewEngine()
	e.StartPlayback(0x1, make([]FrameInput, 200), true)

	saved := make([]FrameInput, 300)
	if err := e.ReconcileLoad(0x1, saved, 150, 150); err == nil {
		t.Fatal("expected read-only playback to reject a save claiming more frames than it has")
	}
}

func TestReconcileLoad_BranchingSetsTruncation(t *testing.T) {
	e := NewEngine()
	e.StartRecording()
	guid := e.GUID()
	for i := uint32(0); i < 500; i++ {
		e.CaptureOrInject(i, uint16(i), 0)
	}
	// The save was taken after rewinding the cursor to frame 200, but the
	// tape itself still carries 300 committed frames at that point (the
	// tail only gets overwritten once new inputs are recorded past 200).
	saved := append([]FrameInput(nil), e.frames[:300]...)

	if err := e.ReconcileLoad(guid, saved, 200, 500); err != nil {
		t.Fatalf("expected branching reload to succeed, got %v", err)
	}
	e.ApplyPendingTruncation()
	if e.FrameCount() != 200 {
		t.Fatalf("frame count after truncation = %d, want 200", e.FrameCount())
	}
}
