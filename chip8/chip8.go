package chip8

import (
	"bytes"
	"fmt"
	"io"
	"log"
)

// Memory mapping, 4 KiB total:
//
//	---------------------------------------------------------------
//	| 0x000-0x200 | 0x200 - 0xEA0 | 0xEA0 - 0xF00 | 0xF00 - 0xFFF |
//	| interpreter | program space |  call stack   |  framebuffer  |
//	---------------------------------------------------------------
//
// The partitioning is a convention, not an enforcement. Every component
// reads and writes through the one address space, so a stray address
// aliases another region exactly as the original hardware would.
const (
	MEMORY_START = 0x200  // First byte of loaded-program space.
	MEMORY_SIZE  = 0x1000 // Total addressable memory.

	STACK_MEMORY_END    = 0xf00 // Call stack base; the stack grows down from here.
	SCREEN_MEMORY_START = 0xf00 // Framebuffer region, one bit per pixel.

	SCREEN_WIDTH  = 64 // Display width in pixels.
	SCREEN_HEIGHT = 32 // Display height in pixels.
)

// Chip8 is the complete machine state: register file, address register,
// stack pointer, program counter, and the unified memory block. It is
// mutated exclusively by Tick/Execute for the lifetime of the process.
type Chip8 struct {
	Verbose bool // Set to enable verbose opcode tracing.

	V  [16]uint8 // Data registers v0-vf; vf doubles as the flag output.
	I  uint16    // Address register; only the low 12 bits are meaningful.
	Sp uint16    // Stack pointer into the call-stack region.
	Pc uint16    // Program counter; addresses the next instruction.

	Memory     [MEMORY_SIZE]uint8 // Unified memory, framebuffer included.
	UsedMemory int                // Length of the loaded program in bytes.

	// KeepIndex, when set, leaves the address register unmodified after
	// the block store/load instructions. The machine this implementation
	// follows advances it by the transfer length; programs written
	// against the more common convention need this option.
	KeepIndex bool

	Screen Screen // Rendering capability; write-only projection.

	seed uint64 // PRNG state, advanced on every rnd instruction.
}

// NewChip8 creates a machine rendering through screen, with all
// registers zeroed, the program counter at the program start offset, the
// stack pointer at the call-stack base, and the random generator seeded
// with seed.
func NewChip8(screen Screen, seed uint64) (ch *Chip8) {
	ch = &Chip8{
		Sp:     STACK_MEMORY_END,
		Pc:     MEMORY_START,
		Screen: screen,
		seed:   seed,
	}

	return
}

// LoadRom copies a raw program byte stream verbatim into program space.
// The whole stream is read and validated before any machine state is
// touched; a failed load leaves the machine unloaded.
func (ch *Chip8) LoadRom(input io.Reader) (err error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return
	}
	if len(data) > MEMORY_SIZE-MEMORY_START {
		return ErrRomTooLarge
	}

	copy(ch.Memory[MEMORY_START:], data)
	ch.UsedMemory = len(data)

	return
}

// LoadProgram loads an assembled program's binary into program space.
func (ch *Chip8) LoadProgram(prog *Program) (err error) {
	return ch.LoadRom(bytes.NewReader(prog.Binary()))
}

// String returns the machine registers as a human-readable hex dump.
func (ch *Chip8) String() (text string) {
	text = "v  = ["
	for n, val := range ch.V {
		if n > 0 {
			text += " "
		}
		text += fmt.Sprintf("%01x:%02x", n, val)
	}
	text += "]\n"
	text += fmt.Sprintf("i  = 0x%04x\n", ch.I)
	text += fmt.Sprintf("sp = 0x%04x\n", ch.Sp)
	text += fmt.Sprintf("pc = 0x%04x\n", ch.Pc)

	return
}

// Disassemble writes a mnemonic listing of the loaded program range.
// Unrecognized instruction words degrade to an "unknown" label; the
// listing is advisory and never halts on bad bytes.
func (ch *Chip8) Disassemble(out io.Writer) (err error) {
	end := MEMORY_START + ch.UsedMemory
	if end%2 != 0 {
		end += 1
	}

	for pc := MEMORY_START; pc < end; pc += 2 {
		op := Opcode{Hi: ch.Memory[pc], Lo: ch.Memory[pc+1]}
		_, err = fmt.Fprintf(out, "%04x:\t%02x %02x\t%v\n", pc, op.Hi, op.Lo, op)
		if err != nil {
			return
		}
	}

	return
}

// pixelOffset maps a pixel coordinate to its framebuffer byte index and
// bit mask. Pixels are packed 8 per byte, row-major, low bit first.
func pixelOffset(x, y int) (index int, mask uint8) {
	index = SCREEN_MEMORY_START + y*SCREEN_WIDTH/8 + x/8
	mask = 1 << (x % 8)
	return
}

// Tick fetches and executes exactly one instruction.
func (ch *Chip8) Tick() (err error) {
	if int(ch.Pc)+1 >= MEMORY_SIZE {
		return ErrAddress{Pc: ch.Pc, Addr: ch.Pc}
	}

	op := Opcode{Hi: ch.Memory[ch.Pc], Lo: ch.Memory[ch.Pc+1]}
	if ch.Verbose {
		log.Printf("%03x: %02x%02x %v", ch.Pc, op.Hi, op.Lo, op)
	}

	return ch.Execute(op)
}

// Execute applies a single decoded instruction to the machine state.
//
// Jump, call, and return set the program counter themselves; every other
// instruction receives the generic advance of 2 afterwards. A jump whose
// target equals the current program counter is the conventional halt
// idiom and surfaces as ErrHalt, the terminal condition of the drive
// loop rather than a failure.
func (ch *Chip8) Execute(op Opcode) (err error) {
	jump := false

	switch highNib(op.Hi) {
	case 0x0:
		switch op.Lo {
		case 0xe0:
			// dclr
			clear(ch.Memory[SCREEN_MEMORY_START:])
			ch.Screen.Clear()
			ch.Screen.Present()
		case 0xee:
			// ret: pop the big-endian return address
			ch.Pc = uint16(ch.Memory[ch.Sp])<<8 | uint16(ch.Memory[ch.Sp+1])
			ch.Sp += 2
			jump = true
		default:
			return ErrOpcode{Pc: ch.Pc, Hi: op.Hi, Lo: op.Lo}
		}
	case 0x1:
		// jmp
		target := op.NNN()
		if target == ch.Pc {
			return ErrHalt
		}
		ch.Pc = target
		jump = true
	case 0x2:
		// call: push the address of the next instruction, big-endian
		ret := ch.Pc + 2
		ch.Sp -= 2
		ch.Memory[ch.Sp] = uint8(ret >> 8)
		ch.Memory[ch.Sp+1] = uint8(ret & 0xff)
		ch.Pc = op.NNN()
		jump = true
	case 0x3:
		// skipifeq vx, nn
		if ch.V[op.X()] == op.NN() {
			ch.Pc += 2
		}
	case 0x4:
		// skipifne vx, nn
		if ch.V[op.X()] != op.NN() {
			ch.Pc += 2
		}
	case 0x5:
		// skipifeq vx, vy
		if ch.V[op.X()] == ch.V[op.Y()] {
			ch.Pc += 2
		}
	case 0x6:
		// mov vx, nn
		ch.V[op.X()] = op.NN()
	case 0x7:
		// add vx, nn; no flag side effect
		ch.V[op.X()] += op.NN()
	case 0x8:
		err = ch.alu(op)
	case 0xa:
		// mov i, nnn
		ch.I = op.NNN()
	case 0xc:
		// rnd vx, nn
		ch.V[op.X()] = uint8(ch.rand()) & op.NN()
	case 0xd:
		// draw vx, vy, n
		err = ch.draw(int(ch.V[op.X()]), int(ch.V[op.Y()]), op.N())
	case 0xf:
		switch op.Lo {
		case 0x1e:
			// add i, vx; no flag side effect, 16-bit wraparound
			ch.I += uint16(ch.V[op.X()])
		case 0x55:
			// movm i, v0-vx
			x := op.X()
			for n := 0; n <= x; n++ {
				addr := ch.I + uint16(n)
				if int(addr) >= MEMORY_SIZE {
					return ErrAddress{Pc: ch.Pc, Addr: addr}
				}
				ch.Memory[addr] = ch.V[n]
			}
			if !ch.KeepIndex {
				ch.I += uint16(x) + 1
			}
		case 0x65:
			// movm v0-vx, i
			x := op.X()
			for n := 0; n <= x; n++ {
				addr := ch.I + uint16(n)
				if int(addr) >= MEMORY_SIZE {
					return ErrAddress{Pc: ch.Pc, Addr: addr}
				}
				ch.V[n] = ch.Memory[addr]
			}
			if !ch.KeepIndex {
				ch.I += uint16(x) + 1
			}
		default:
			return ErrOpcode{Pc: ch.Pc, Hi: op.Hi, Lo: op.Lo}
		}
	default:
		return ErrOpcode{Pc: ch.Pc, Hi: op.Hi, Lo: op.Lo}
	}

	if err == nil && !jump {
		ch.Pc += 2
	}

	return
}

// alu executes the register-register 0x8 instruction family. The write
// order of result and flag matches the original machine, which is
// observable when vf itself is an operand.
func (ch *Chip8) alu(op Opcode) (err error) {
	x := op.X()
	y := op.Y()

	switch AluOp(lowNib(op.Lo)) {
	case ALU_OP_SET:
		ch.V[x] = ch.V[y]
	case ALU_OP_OR:
		ch.V[x] |= ch.V[y]
	case ALU_OP_AND:
		ch.V[x] &= ch.V[y]
	case ALU_OP_XOR:
		ch.V[x] ^= ch.V[y]
	case ALU_OP_ADD:
		// vf = 1 on arithmetic overflow
		sum := uint16(ch.V[x]) + uint16(ch.V[y])
		ch.V[x] = uint8(sum)
		ch.V[0xf] = uint8(sum >> 8)
	case ALU_OP_SUB:
		// vf = 1 when no borrow occurred
		noBorrow := ch.V[x] >= ch.V[y]
		ch.V[x] -= ch.V[y]
		ch.V[0xf] = 0
		if noBorrow {
			ch.V[0xf] = 1
		}
	case ALU_OP_SHR:
		// vf receives the bit shifted out
		ch.V[0xf] = ch.V[x] & 0x1
		ch.V[x] >>= 1
	case ALU_OP_RSUB:
		// vx = vy - vx, same inverted-borrow convention
		noBorrow := ch.V[y] >= ch.V[x]
		ch.V[x] = ch.V[y] - ch.V[x]
		ch.V[0xf] = 0
		if noBorrow {
			ch.V[0xf] = 1
		}
	case ALU_OP_SHL:
		// vf receives the pre-shift most significant bit
		ch.V[0xf] = ch.V[x] >> 7
		ch.V[x] <<= 1
	default:
		err = ErrOpcode{Pc: ch.Pc, Hi: op.Hi, Lo: op.Lo}
	}

	return
}

// draw XOR-blits a sprite of height rows from memory at the address
// register onto the framebuffer at (x, y), most significant bit leftmost.
// vf is set to 1 when a set pixel is toggled off. Rows at or beyond the
// screen height end the draw; bits at or beyond the screen width end the
// row. One present is signalled after all rows.
func (ch *Chip8) draw(x, y int, height uint8) (err error) {
	for row := 0; row < int(height); row++ {
		cy := y + row
		if cy >= SCREEN_HEIGHT {
			break
		}

		addr := ch.I + uint16(row)
		if int(addr) >= MEMORY_SIZE {
			return ErrAddress{Pc: ch.Pc, Addr: addr}
		}
		line := ch.Memory[addr]

		for bit := 0; bit < 8; bit++ {
			if line&(0x80>>bit) == 0 {
				continue
			}

			cx := x + bit
			if cx >= SCREEN_WIDTH {
				break
			}

			index, mask := pixelOffset(cx, cy)
			if ch.Memory[index]&mask != 0 {
				// collision: a set pixel is about to toggle off
				ch.V[0xf] = 1
			}
			ch.Memory[index] ^= mask

			if ch.Memory[index]&mask != 0 {
				ch.Screen.DrawPx(cx, cy)
			} else {
				ch.Screen.ClearPx(cx, cy)
			}
		}
	}

	ch.Screen.Present()

	return
}
