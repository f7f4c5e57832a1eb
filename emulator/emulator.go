// Package emulator drives the CHIP-8 machine: the fixed-cadence run
// loop, the single-step debugger, and front-end configuration.
package emulator

import (
	"errors"
	"os"
	"time"

	"chiper/chip8"
)

// DEFAULT_STEP_DELAY is the pacing delay between instructions. The
// machine has no clock of its own; the blocking sleep is the timing
// model.
const DEFAULT_STEP_DELAY = 30 * time.Millisecond

// Emulator state. Machine + pacing + optional source listing.
type Emulator struct {
	Verbose bool // If set, enables verbose logging.
	*chip8.Chip8
	Program *chip8.Program // Listing of the running program, when assembled here.

	StepDelay time.Duration // Blocking sleep between instructions.
}

// NewEmulator creates an emulator rendering through screen, with the
// machine's random generator seeded from the wall clock.
func NewEmulator(screen chip8.Screen) (emu *Emulator) {
	emu = &Emulator{
		Chip8:     chip8.NewChip8(screen, uint64(time.Now().UnixNano())),
		StepDelay: DEFAULT_STEP_DELAY,
	}

	return
}

// LoadRomFile loads a ROM image from a file into program space.
func (emu *Emulator) LoadRomFile(path string) (err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	return emu.Chip8.LoadRom(inf)
}

// LoadProgram loads an assembled program and keeps its listing for
// diagnostics.
func (emu *Emulator) LoadProgram(prog *chip8.Program) (err error) {
	err = emu.Chip8.LoadProgram(prog)
	if err != nil {
		return
	}

	emu.Program = prog

	return
}

// Tick executes a single instruction. The self-jump halt idiom is the
// drive loop's normal endpoint and is reported as done, not as an error.
func (emu *Emulator) Tick() (done bool, err error) {
	var lineno int
	if emu.Program != nil {
		lineno = emu.Program.LineAt(emu.Chip8.Pc)
	}
	defer func() {
		if err != nil && lineno != 0 {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	err = emu.Chip8.Tick()
	if errors.Is(err, chip8.ErrHalt) {
		err = nil
		done = true
	}

	return
}

// Run executes the loaded program to completion at the configured
// cadence: one instruction per tick, one unconditional blocking sleep
// between ticks.
func (emu *Emulator) Run() (err error) {
	emu.Chip8.Verbose = emu.Verbose

	for {
		var done bool
		done, err = emu.Tick()
		if done || err != nil {
			return
		}
		time.Sleep(emu.StepDelay)
	}
}
