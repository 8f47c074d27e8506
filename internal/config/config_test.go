package config

import (
	"path/filepath"
	"testing"
)

func TestNew_DefaultsAreValid(t *testing.T) {
	c := New()
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		t.Fatalf("default window size invalid: %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Input.TurboSkip <= 0 {
		t.Fatalf("default TurboSkip must be positive, got %d", c.Input.TurboSkip)
	}
	if c.Emulation.SlowMotionDefault != 1 {
		t.Fatalf("default SlowMotionDefault = %d, want 1", c.Emulation.SlowMotionDefault)
	}
}

func TestLoadFromFile_MissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gones.json")
	c := New()
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if c.IsLoaded() {
		t.Fatalf("a freshly written default config should not report IsLoaded")
	}

	reloaded := New()
	if err := reloaded.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile (reload): %v", err)
	}
	if !reloaded.IsLoaded() {
		t.Fatalf("reloading a file written by SaveToFile should report IsLoaded")
	}
	if reloaded.Window.Width != c.Window.Width {
		t.Fatalf("Window.Width round trip = %d, want %d", reloaded.Window.Width, c.Window.Width)
	}
}

func TestValidate_ClampsOutOfRangeValues(t *testing.T) {
	c := New()
	c.Window.Width = -10
	c.Audio.Volume = 5.0
	c.Emulation.SlowMotionDefault = 3
	c.Input.TurboSkip = 0
	c.validate()

	if c.Window.Width <= 0 {
		t.Fatalf("validate should have clamped Window.Width to a positive default")
	}
	if c.Audio.Volume > 1.0 {
		t.Fatalf("validate should have clamped Audio.Volume to <= 1.0")
	}
	if c.Emulation.SlowMotionDefault != 1 {
		t.Fatalf("validate should have clamped an invalid SlowMotionDefault to 1")
	}
	if c.Input.TurboSkip <= 0 {
		t.Fatalf("validate should have restored a positive TurboSkip")
	}
}

func TestClone_IsIndependentCopy(t *testing.T) {
	c := New()
	clone := c.Clone()
	clone.Window.Width = 999
	if c.Window.Width == 999 {
		t.Fatalf("Clone should not alias the original's fields")
	}
}

func TestGetWindowResolution_ScalesNESResolution(t *testing.T) {
	c := New()
	c.Window.Scale = 3
	w, h := c.GetWindowResolution()
	if w != 256*3 || h != 240*3 {
		t.Fatalf("GetWindowResolution = %dx%d, want %dx%d", w, h, 256*3, 240*3)
	}
}
