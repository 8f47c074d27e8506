// Package main implements the gones NES emulator executable.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/golang/glog"

	"gones/internal/audiosink"
	"gones/internal/config"
	"gones/internal/emu"
	"gones/internal/graphics"
	"gones/internal/input"
	"gones/internal/scheduler"
	"gones/internal/version"
)

// audioSinkOrNil avoids the classic typed-nil-interface trap: passing a
// nil *audiosink.Sink straight into Tick's interface parameter would
// make scheduler's own nil check see a non-nil interface.
func audioSinkOrNil(sink *audiosink.Sink) scheduler.AudioSink {
	if sink == nil {
		return nil
	}
	return sink
}

// genieCodeList collects repeated -game-genie flags.
type genieCodeList []string

func (g *genieCodeList) String() string { return strings.Join(*g, ",") }
func (g *genieCodeList) Set(v string) error {
	*g = append(*g, v)
	return nil
}

func main() {
	var (
		romFlag    = flag.String("rom", "", "path to NES ROM file")
		configFile = flag.String("config", "", "path to configuration file")
		debug      = flag.Bool("debug", false, "enable debug logging")
		nogui      = flag.Bool("nogui", false, "run without a window (headless)")
		help       = flag.Bool("help", false, "show help message")
		showVer    = flag.Bool("version", false, "show version information")
		screenW    = flag.Int("w", 0, "screen width override (screen_w)")
		screenH    = flag.Int("h", 0, "screen height override (screen_h)")
		forcePAL   = flag.Bool("pal", false, "force PAL timing (is_tv)")
		moviePath  = flag.String("movie", "", "play back a recorded movie at boot")
		record     = flag.String("record", "", "start recording a new movie, saved to this path on exit")
		dumpAudio  = flag.String("dump-audio", "", "capture session audio to this WAV file")
	)
	var genieCodes genieCodeList
	flag.Var(&genieCodes, "game-genie", "apply a Game Genie code (repeatable)")
	flag.Parse()

	if *help {
		printUsage()
		return
	}
	if *showVer {
		version.PrintBuildInfo()
		return
	}

	romFile, screenArgW, screenArgH, tvArg := resolvePositionalArgs(*romFlag, flag.Args())
	if screenArgW > 0 && *screenW == 0 {
		*screenW = screenArgW
	}
	if screenArgH > 0 && *screenH == 0 {
		*screenH = screenArgH
	}
	if tvArg {
		*forcePAL = true
	}

	if romFile == "" {
		fmt.Fprintln(os.Stderr, "gones: a ROM file is required")
		printUsage()
		os.Exit(1)
	}

	cfg := config.New()
	configPath := *configFile
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	if err := cfg.LoadFromFile(configPath); err != nil {
		glog.Fatalf("gones: load config: %v", err)
	}
	if *debug {
		cfg.Debug.EnableLogging = true
		cfg.Debug.LogLevel = "DEBUG"
	}
	if *screenW > 0 {
		cfg.Window.Width = *screenW
	}
	if *screenH > 0 {
		cfg.Window.Height = *screenH
	}

	e, err := emu.Init(emu.Config{
		ROMPath:        romFile,
		ForcePAL:       *forcePAL || strings.EqualFold(cfg.Emulation.Region, "PAL"),
		GameGenieCodes: genieCodes,
		SaveDirectory:  cfg.Paths.SaveStates,
	})
	if err != nil {
		glog.Errorf("gones: %v", err)
		os.Exit(1)
	}
	defer e.Free()

	switch {
	case *record != "":
		e.StartRecording()
	case *moviePath != "":
		if err := e.StartPlayback(*moviePath, cfg.Emulation.MovieReadOnly); err != nil {
			glog.Fatalf("gones: %v", err)
		}
	}

	var sink *audiosink.Sink
	if cfg.Audio.Enabled {
		s, err := audiosink.New(cfg.Audio.SampleRate)
		if err != nil {
			glog.Warningf("gones: audio disabled: %v", err)
		} else {
			s.SetVolume(cfg.Audio.Volume)
			sink = s
		}
	}
	if sink != nil && *dumpAudio != "" {
		if err := sink.StartRecording(*dumpAudio); err != nil {
			glog.Warningf("gones: could not start audio capture to %s: %v", *dumpAudio, err)
		}
	}

	setupGracefulShutdown(e)

	backendType := graphics.BackendEbitengine
	if *nogui {
		backendType = graphics.BackendHeadless
	}
	backend, err := graphics.CreateBackend(backendType)
	if err != nil {
		glog.Fatalf("gones: create graphics backend: %v", err)
	}
	if err := backend.Initialize(graphics.Config{
		WindowTitle:  "gones",
		WindowWidth:  cfg.Window.Width,
		WindowHeight: cfg.Window.Height,
		Fullscreen:   cfg.Window.Fullscreen,
		VSync:        false, // internal/scheduler owns frame pacing
		Filter:       cfg.Video.Filter,
		Headless:     *nogui,
	}); err != nil {
		glog.Fatalf("gones: initialize graphics backend: %v", err)
	}
	defer backend.Cleanup()

	windowW, windowH := cfg.GetWindowResolution()
	window, err := backend.CreateWindow("gones", windowW, windowH)
	if err != nil {
		glog.Fatalf("gones: create window: %v", err)
	}
	defer window.Cleanup()

	run := func() error {
		defer stopAndCloseSession(e, sink, *record, *moviePath)
		return runLoop(e, window, sink)
	}

	if ew, ok := graphics.AsEbitengineWindow(window); ok {
		ew.SetEmulatorUpdateFunc(func() error {
			if e.ExitRequested() || window.ShouldClose() {
				stopAndCloseSession(e, sink, *record, *moviePath)
				os.Exit(0)
			}
			applyWindowEvents(e, window)
			return e.Scheduler.Tick(window, audioSinkOrNil(sink))
		})
		if err := ew.Run(); err != nil {
			glog.Fatalf("gones: %v", err)
		}
		return
	}

	if err := run(); err != nil {
		glog.Fatalf("gones: %v", err)
	}
}

// resolvePositionalArgs follows spec ch.6's CLI surface: `emulator <rom>
// [screen_w screen_h [is_tv]]`, used when the equivalent -rom/-w/-h/-pal
// flags aren't given explicitly.
func resolvePositionalArgs(romFlag string, args []string) (rom string, screenW, screenH int, isTV bool) {
	rom = romFlag
	if rom == "" && len(args) > 0 {
		rom = args[0]
	}
	if len(args) > 1 {
		if w, err := strconv.Atoi(args[1]); err == nil {
			screenW = w
		}
	}
	if len(args) > 2 {
		if h, err := strconv.Atoi(args[2]); err == nil {
			screenH = h
		}
	}
	if len(args) > 3 {
		isTV = args[3] == "1" || strings.EqualFold(args[3], "true")
	}
	return rom, screenW, screenH, isTV
}

// runLoop drives the frame loop directly for backends without their own
// event loop (headless, terminal): one Tick per iteration until exit is
// requested or the window reports it should close.
func runLoop(e *emu.Emulator, window graphics.Window, sink *audiosink.Sink) error {
	for !e.ExitRequested() && !window.ShouldClose() {
		applyWindowEvents(e, window)
		if err := e.Scheduler.Tick(window, audioSinkOrNil(sink)); err != nil {
			return err
		}
	}
	return nil
}

func stopAndCloseSession(e *emu.Emulator, sink *audiosink.Sink, record, moviePath string) {
	moviePathToWrite := record
	if moviePathToWrite == "" {
		moviePathToWrite = moviePath
	}
	if moviePathToWrite != "" {
		if err := e.StopMovie(moviePathToWrite); err != nil {
			glog.Warningf("gones: %v", err)
		}
	}
	if sink != nil {
		if err := sink.Close(); err != nil {
			glog.Warningf("gones: close audio sink: %v", err)
		}
	}
}

// applyWindowEvents drains pending input events and applies run-control
// (save, load, exit) and controller button presses. Pause, step, reset
// and slow-motion are not bound to any key here.
func applyWindowEvents(e *emu.Emulator, window graphics.Window) {
	for _, ev := range window.PollEvents() {
		switch ev.Type {
		case graphics.InputEventTypeQuit:
			e.RequestExit()
		case graphics.InputEventTypeButton:
			applyButtonEvent(e, ev)
		case graphics.InputEventTypeKey:
			applyKeyEvent(e, ev)
		}
	}
}

// controllerButtons maps graphics.Button (host-agnostic) to the NES
// controller port and button it drives.
var controllerButtons = map[graphics.Button]struct {
	port   int
	button input.Button
}{
	graphics.ButtonA:      {1, input.ButtonA},
	graphics.ButtonB:      {1, input.ButtonB},
	graphics.ButtonSelect: {1, input.ButtonSelect},
	graphics.ButtonStart:  {1, input.ButtonStart},
	graphics.ButtonUp:     {1, input.ButtonUp},
	graphics.ButtonDown:   {1, input.ButtonDown},
	graphics.ButtonLeft:   {1, input.ButtonLeft},
	graphics.ButtonRight:  {1, input.ButtonRight},

	graphics.Button2A:      {2, input.ButtonA},
	graphics.Button2B:      {2, input.ButtonB},
	graphics.Button2Select: {2, input.ButtonSelect},
	graphics.Button2Start:  {2, input.ButtonStart},
	graphics.Button2Up:     {2, input.ButtonUp},
	graphics.Button2Down:   {2, input.ButtonDown},
	graphics.Button2Left:   {2, input.ButtonLeft},
	graphics.Button2Right:  {2, input.ButtonRight},
}

func applyButtonEvent(e *emu.Emulator, ev graphics.InputEvent) {
	mapping, ok := controllerButtons[ev.Button]
	if !ok {
		return
	}
	controller := e.Scheduler.Inputs.Controller1
	if mapping.port == 2 {
		controller = e.Scheduler.Inputs.Controller2
	}
	controller.SetButton(mapping.button, ev.Pressed)
}

func applyKeyEvent(e *emu.Emulator, ev graphics.InputEvent) {
	if !ev.Pressed {
		return
	}
	now := time.Now()
	switch ev.Key {
	case graphics.KeyF1, graphics.KeyF2, graphics.KeyF3, graphics.KeyF4, graphics.KeyF5,
		graphics.KeyF6, graphics.KeyF7, graphics.KeyF8, graphics.KeyF9, graphics.KeyF10:
		if ev.Modifiers&graphics.ModifierShift != 0 {
			if err := e.Load(now); err != nil {
				glog.Warningf("gones: %v", err)
			}
		} else if err := e.Save(now); err != nil {
			glog.Warningf("gones: %v", err)
		}
	case graphics.KeyEscape:
		e.RequestExit()
	}
}

func setupGracefulShutdown(e *emu.Emulator) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		e.RequestExit()
	}()
}

func printUsage() {
	fmt.Println("gones - Go NES Emulator")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  gones <rom> [screen_w screen_h [is_tv]] [options]")
	fmt.Println("  gones -rom <rom> [options]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("CONTROLS (Default):")
	fmt.Println("  F1-F10       - Save state to slot")
	fmt.Println("  Shift+F1-F10 - Load state from slot")
	fmt.Println("  Escape       - Quit")
}
