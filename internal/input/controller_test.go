package input

import "testing"

func TestController_StrobeCapturesAndShifts(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.SetButton(ButtonStart, true)

	c.Write(0x01) // strobe on
	c.Write(0x00) // strobe off, load shift register

	want := []uint8{1, 0, 0, 1, 0, 0, 0, 0} // A, B, Select, Start, Up, Down, Left, Right
	for i, w := range want {
		if got := c.Read(); got != w {
			t.Fatalf("read %d = %d, want %d", i, got, w)
		}
	}
}

func TestController_StrobeHighAlwaysReadsButtonA(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.Write(0x01)
	if got := c.Read(); got != 1 {
		t.Fatalf("strobe-high read = %d, want 1", got)
	}
	if got := c.Read(); got != 1 {
		t.Fatalf("repeated strobe-high read = %d, want 1 (no advance)", got)
	}
}

func TestController_ExtendedReadsReturnZero(t *testing.T) {
	c := New()
	c.Write(0x01)
	c.Write(0x00)
	for i := 0; i < 8; i++ {
		c.Read()
	}
	if got := c.Read(); got != 0 {
		t.Fatalf("9th read = %d, want 0", got)
	}
}

func TestController_TurboOscillates(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.SetTurbo(uint8(ButtonA), 2)

	if c.IsPressed(ButtonA) {
		t.Fatal("turbo button should read released before the first tick toggles it on")
	}
	c.TickTurbo()
	c.TickTurbo()
	if !c.IsPressed(ButtonA) {
		t.Fatal("turbo button should read pressed after a full on/off period")
	}
}

func TestController_SoftResetCombo(t *testing.T) {
	c := New()
	if c.SoftReset() {
		t.Fatal("soft reset should not trigger with no buttons held")
	}
	c.SetButton(ButtonSelect, true)
	c.SetButton(ButtonStart, true)
	if !c.SoftReset() {
		t.Fatal("soft reset should trigger when Select+Start are both held")
	}
}

func TestInputState_Controller2HasOpenBusBit(t *testing.T) {
	is := NewInputState()
	if got := is.Read(0x4017); got&0x40 == 0 {
		t.Fatalf("$4017 read = %#x, want bit 6 set", got)
	}
	if got := is.Read(0x4016); got&0x40 != 0 {
		t.Fatalf("$4016 read = %#x, should not carry controller-2's open-bus bit", got)
	}
}

func TestInputState_StrobeWritesBothControllers(t *testing.T) {
	is := NewInputState()
	is.Controller1.SetButton(ButtonA, true)
	is.Controller2.SetButton(ButtonB, true)
	is.Write(0x4016, 0x01)
	is.Write(0x4016, 0x00)

	if got := is.Read(0x4016); got&1 != 1 {
		t.Fatalf("controller1 first bit = %d, want 1", got&1)
	}
	if got := is.Read(0x4017); got&1 != 0 {
		t.Fatalf("controller2 first bit = %d, want 0 (B is bit 1)", got&1)
	}
}
