package main

import "testing"

func TestResolvePositionalArgs_RomOnly(t *testing.T) {
	rom, w, h, pal := resolvePositionalArgs("", []string{"game.nes"})
	if rom != "game.nes" || w != 0 || h != 0 || pal {
		t.Fatalf("got (%q, %d, %d, %v)", rom, w, h, pal)
	}
}

func TestResolvePositionalArgs_ScreenDimensionsAndTVFlag(t *testing.T) {
	rom, w, h, pal := resolvePositionalArgs("", []string{"game.nes", "512", "480", "1"})
	if rom != "game.nes" || w != 512 || h != 480 || !pal {
		t.Fatalf("got (%q, %d, %d, %v)", rom, w, h, pal)
	}
}

func TestResolvePositionalArgs_RomFlagWinsOverPositional(t *testing.T) {
	rom, _, _, _ := resolvePositionalArgs("explicit.nes", []string{"positional.nes"})
	if rom != "explicit.nes" {
		t.Fatalf("rom = %q, want explicit.nes", rom)
	}
}

func TestResolvePositionalArgs_NonNumericDimensionsAreIgnored(t *testing.T) {
	rom, w, h, _ := resolvePositionalArgs("", []string{"game.nes", "bogus", "bogus"})
	if rom != "game.nes" || w != 0 || h != 0 {
		t.Fatalf("got (%q, %d, %d)", rom, w, h)
	}
}
