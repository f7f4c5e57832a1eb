// Command chiper runs CHIP-8 programs: assemble or load a rom, then
// execute it against a chosen rendering backend, optionally under the
// single-step debugger.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"chiper/chip8"
	"chiper/emulator"
	"chiper/screen"
	"chiper/statsview"
)

func main() {
	var compile string
	var save string
	var configPath string
	var screenName string
	var delay int
	var scale int
	var debug bool
	var verbose bool
	var stats bool
	var keepIndex bool

	flag.StringVar(&compile, "c", "", "assembly file to compile")
	flag.StringVar(&save, "o", "", "save the compiled rom to a file, do not execute")
	flag.StringVar(&configPath, "config", "", "TOML configuration file")
	flag.StringVar(&screenName, "screen", "", "screen backend: window, terminal, or none")
	flag.IntVar(&delay, "delay", -1, "delay between instructions, in milliseconds")
	flag.IntVar(&scale, "scale", 0, "window pixel scale")
	flag.BoolVar(&debug, "d", false, "enter the single-step debugger")
	flag.BoolVar(&verbose, "v", false, "verbose mode")
	flag.BoolVar(&stats, "stats", false, "serve runtime statistics")
	flag.BoolVar(&keepIndex, "keepindex", false, "movm leaves the address register unmodified")

	flag.Parse()

	cfg := emulator.DefaultConfig()
	if len(configPath) != 0 {
		var err error
		cfg, err = emulator.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("%v: %v", configPath, err)
		}
	}

	// Flags override the configuration file.
	if len(screenName) != 0 {
		cfg.Screen = screenName
	}
	if delay >= 0 {
		cfg.DelayMs = delay
	}
	if scale > 0 {
		cfg.Scale = scale
	}
	if verbose {
		cfg.Verbose = true
	}
	if keepIndex {
		cfg.KeepIndex = true
	}

	// Compile a new rom.
	var prog *chip8.Program
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		asm := &chip8.Assembler{Verbose: cfg.Verbose}
		prog, err = asm.Parse(inf)
		inf.Close()
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	if len(save) != 0 {
		if prog == nil {
			log.Fatalf("%v: nothing compiled to save", os.Args[0])
		}
		err := os.WriteFile(save, prog.Binary(), 0o644)
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		return
	}

	if prog == nil && flag.NArg() != 1 {
		log.Fatalf("%v: expected a rom file or -c", os.Args[0])
	}
	if prog != nil && flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	var scr chip8.Screen
	var win *screen.Window
	switch cfg.Screen {
	case "window":
		win = screen.NewWindow("chiper", cfg.Scale)
		scr = win
	case "terminal":
		scr = screen.NewTerminal(os.Stdout)
	case "none":
		scr = &screen.Headless{}
	default:
		log.Fatalf("unknown screen backend '%v'", cfg.Screen)
	}

	emu := emulator.NewEmulator(scr)
	emu.Verbose = cfg.Verbose
	emu.StepDelay = time.Duration(cfg.DelayMs) * time.Millisecond
	emu.Chip8.KeepIndex = cfg.KeepIndex

	var err error
	if prog != nil {
		err = emu.LoadProgram(prog)
	} else {
		err = emu.LoadRomFile(flag.Arg(0))
	}
	if err != nil {
		log.Fatal(err)
	}

	if stats {
		statsview.Launch(os.Stdout)
	}

	run := func() (err error) {
		if debug {
			dbg := &emulator.Debugger{Emulator: emu, Input: os.Stdin, Output: os.Stdout}
			return dbg.Run()
		}
		return emu.Run()
	}

	if win != nil {
		// The window owns the main goroutine; the machine gets its own.
		go func() {
			if err := run(); err != nil {
				log.Print(err)
			}
			win.Close()
		}()
		if err := win.Run(); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := run(); err != nil {
		log.Fatal(err)
	}
}
