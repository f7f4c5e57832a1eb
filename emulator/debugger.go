package emulator

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const debugPrompt = "(chiper - db) "

// Debugger is the single-step control surface: a line-based REPL that
// owns the machine exclusively while it runs. A blank line repeats the
// last valid command; unknown commands are reported and the loop
// continues.
type Debugger struct {
	Emulator *Emulator
	Input    io.Reader
	Output   io.Writer
}

// Run reads operator commands until quit, end of input, or a fatal
// machine error.
func (dbg *Debugger) Run() (err error) {
	emu := dbg.Emulator
	out := dbg.Output

	emu.Chip8.Verbose = emu.Verbose

	fmt.Fprintf(out, "Enter debug mode:\n")
	fmt.Fprintf(out, "\t'r' - to run program\n")
	fmt.Fprintf(out, "\t'n' - for next instruction\n")
	fmt.Fprintf(out, "\t'l' - to list the program\n")
	fmt.Fprintf(out, "\t'q' - to exit\n")

	scanner := bufio.NewScanner(dbg.Input)

	var last string
	for {
		fmt.Fprintf(out, "%s", debugPrompt)

		if !scanner.Scan() {
			return scanner.Err()
		}

		cmd := strings.TrimSpace(scanner.Text())
		if len(cmd) == 0 {
			cmd = last
		} else {
			last = cmd
		}

		switch cmd {
		case "n":
			var done bool
			done, err = emu.Tick()
			if err != nil {
				return
			}
			fmt.Fprintf(out, "%v", emu.Chip8)
			if done {
				fmt.Fprintf(out, "halted\n")
				return
			}
		case "r":
			for {
				var done bool
				done, err = emu.Tick()
				if err != nil {
					return
				}
				fmt.Fprintf(out, "%v", emu.Chip8)
				if done {
					fmt.Fprintf(out, "halted\n")
					return
				}
			}
		case "l":
			err = emu.Chip8.Disassemble(out)
			if err != nil {
				return
			}
		case "q":
			return
		case "":
			// nothing entered yet to repeat
		default:
			fmt.Fprintf(out, "Unknown debug command '%v'\n", cmd)
		}
	}
}
