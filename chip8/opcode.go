package chip8

import (
	"fmt"
)

// AluOp is a register-register ALU operation, selected by the low nibble
// of the second opcode byte in the 0x8 instruction family.
type AluOp int

const (
	ALU_OP_SET  = AluOp(0x0) // mov vx, vy
	ALU_OP_OR   = AluOp(0x1) // or vx, vy
	ALU_OP_AND  = AluOp(0x2) // and vx, vy
	ALU_OP_XOR  = AluOp(0x3) // xor vx, vy
	ALU_OP_ADD  = AluOp(0x4) // addwc vx, vy
	ALU_OP_SUB  = AluOp(0x5) // subwc vx, vy
	ALU_OP_SHR  = AluOp(0x6) // shr vx
	ALU_OP_RSUB = AluOp(0x7) // subwc vx, vy, vx
	ALU_OP_SHL  = AluOp(0xe) // shl vx
)

// Opcode is a single 2-byte instruction word as fetched from program
// memory. Any two bytes decode to well-formed fields; recognition of the
// combination is the execution engine's concern.
type Opcode struct {
	Hi uint8 // byte at the program counter
	Lo uint8 // byte at the program counter + 1
}

func highNib(b uint8) uint8 {
	return b >> 4
}

func lowNib(b uint8) uint8 {
	return b & 0x0f
}

// X is the first register index operand (low nibble of byte 0).
func (op Opcode) X() int {
	return int(lowNib(op.Hi))
}

// Y is the second register index operand (high nibble of byte 1).
func (op Opcode) Y() int {
	return int(highNib(op.Lo))
}

// N is the 4-bit immediate (low nibble of byte 1).
func (op Opcode) N() uint8 {
	return lowNib(op.Lo)
}

// NN is the 8-bit immediate (byte 1).
func (op Opcode) NN() uint8 {
	return op.Lo
}

// NNN is the 12-bit address immediate.
func (op Opcode) NNN() uint16 {
	return uint16(lowNib(op.Hi))<<8 | uint16(op.Lo)
}

// Word returns the instruction as a single big-endian 16-bit word.
func (op Opcode) Word() uint16 {
	return uint16(op.Hi)<<8 | uint16(op.Lo)
}

func makeOp(word uint16) Opcode {
	return Opcode{Hi: uint8(word >> 8), Lo: uint8(word)}
}

// MakeOpClear creates a clear-display instruction.
func MakeOpClear() Opcode {
	return makeOp(0x00e0)
}

// MakeOpReturn creates a subroutine return instruction.
func MakeOpReturn() Opcode {
	return makeOp(0x00ee)
}

// MakeOpJump creates a jump to a 12-bit address.
func MakeOpJump(nnn uint16) Opcode {
	return makeOp(0x1000 | nnn&0xfff)
}

// MakeOpCall creates a subroutine call to a 12-bit address.
func MakeOpCall(nnn uint16) Opcode {
	return makeOp(0x2000 | nnn&0xfff)
}

// MakeOpSkipEq creates a skip-if-equal against an 8-bit immediate.
func MakeOpSkipEq(x int, nn uint8) Opcode {
	return makeOp(0x3000 | uint16(x&0xf)<<8 | uint16(nn))
}

// MakeOpSkipNe creates a skip-if-not-equal against an 8-bit immediate.
func MakeOpSkipNe(x int, nn uint8) Opcode {
	return makeOp(0x4000 | uint16(x&0xf)<<8 | uint16(nn))
}

// MakeOpSkipEqReg creates a skip-if-equal between two registers.
func MakeOpSkipEqReg(x, y int) Opcode {
	return makeOp(0x5000 | uint16(x&0xf)<<8 | uint16(y&0xf)<<4)
}

// MakeOpMove creates a load of an 8-bit immediate into a register.
func MakeOpMove(x int, nn uint8) Opcode {
	return makeOp(0x6000 | uint16(x&0xf)<<8 | uint16(nn))
}

// MakeOpAdd creates an add of an 8-bit immediate into a register. The
// flag register is not affected.
func MakeOpAdd(x int, nn uint8) Opcode {
	return makeOp(0x7000 | uint16(x&0xf)<<8 | uint16(nn))
}

// MakeOpAlu creates a register-register ALU instruction.
func MakeOpAlu(alu AluOp, x, y int) Opcode {
	return makeOp(0x8000 | uint16(x&0xf)<<8 | uint16(y&0xf)<<4 | uint16(alu)&0xf)
}

// MakeOpIndex creates a load of a 12-bit address into the address register.
func MakeOpIndex(nnn uint16) Opcode {
	return makeOp(0xa000 | nnn&0xfff)
}

// MakeOpRand creates a random-AND-immediate instruction.
func MakeOpRand(x int, nn uint8) Opcode {
	return makeOp(0xc000 | uint16(x&0xf)<<8 | uint16(nn))
}

// MakeOpDraw creates a sprite draw of n rows at (vx, vy).
func MakeOpDraw(x, y int, n uint8) Opcode {
	return makeOp(0xd000 | uint16(x&0xf)<<8 | uint16(y&0xf)<<4 | uint16(n&0xf))
}

// MakeOpIndexAdd creates an add of a register into the address register.
func MakeOpIndexAdd(x int) Opcode {
	return makeOp(0xf01e | uint16(x&0xf)<<8)
}

// MakeOpStore creates a block store of v0..vx to memory at the address
// register.
func MakeOpStore(x int) Opcode {
	return makeOp(0xf055 | uint16(x&0xf)<<8)
}

// MakeOpLoad creates a block load of v0..vx from memory at the address
// register.
func MakeOpLoad(x int) Opcode {
	return makeOp(0xf065 | uint16(x&0xf)<<8)
}

// String returns the fixed-format mnemonic for the instruction, or the
// literal "unknown" for combinations the machine does not implement.
// Disassembly is advisory and never fails.
func (op Opcode) String() (out string) {
	switch highNib(op.Hi) {
	case 0x0:
		switch op.Lo {
		case 0xe0:
			out = "dclr"
		case 0xee:
			out = "ret"
		}
	case 0x1:
		out = fmt.Sprintf("jmp %03x", op.NNN())
	case 0x2:
		out = fmt.Sprintf("call %03x", op.NNN())
	case 0x3:
		out = fmt.Sprintf("skipifeq v%01x, %02x", op.X(), op.NN())
	case 0x4:
		out = fmt.Sprintf("skipifne v%01x, %02x", op.X(), op.NN())
	case 0x5:
		out = fmt.Sprintf("skipifeq v%01x, v%01x", op.X(), op.Y())
	case 0x6:
		out = fmt.Sprintf("mov v%01x, %02x", op.X(), op.NN())
	case 0x7:
		out = fmt.Sprintf("add v%01x, %02x", op.X(), op.NN())
	case 0x8:
		switch AluOp(lowNib(op.Lo)) {
		case ALU_OP_SET:
			out = fmt.Sprintf("mov v%01x, v%01x", op.X(), op.Y())
		case ALU_OP_OR:
			out = fmt.Sprintf("or v%01x, v%01x", op.X(), op.Y())
		case ALU_OP_AND:
			out = fmt.Sprintf("and v%01x, v%01x", op.X(), op.Y())
		case ALU_OP_XOR:
			out = fmt.Sprintf("xor v%01x, v%01x", op.X(), op.Y())
		case ALU_OP_ADD:
			out = fmt.Sprintf("addwc v%01x, v%01x", op.X(), op.Y())
		case ALU_OP_SUB:
			out = fmt.Sprintf("subwc v%01x, v%01x", op.X(), op.Y())
		case ALU_OP_SHR:
			out = fmt.Sprintf("shr v%01x", op.X())
		case ALU_OP_RSUB:
			out = fmt.Sprintf("subwc v%01x, v%01x, v%01x", op.X(), op.Y(), op.X())
		case ALU_OP_SHL:
			out = fmt.Sprintf("shl v%01x", op.X())
		}
	case 0xa:
		out = fmt.Sprintf("mov i, %03x", op.NNN())
	case 0xc:
		out = fmt.Sprintf("rnd v%01x, %02x", op.X(), op.NN())
	case 0xd:
		out = fmt.Sprintf("draw v%01x, v%01x, %01x", op.X(), op.Y(), op.N())
	case 0xf:
		switch op.Lo {
		case 0x1e:
			out = fmt.Sprintf("add i, v%01x", op.X())
		case 0x55:
			out = fmt.Sprintf("movm i, v0-v%01x", op.X())
		case 0x65:
			out = fmt.Sprintf("movm v0-v%01x, i", op.X())
		}
	}

	if len(out) == 0 {
		out = "unknown"
	}

	return
}
