package chip8

import (
	"errors"

	"chiper/translate"
)

var f = translate.From

var (
	// Machine errors
	ErrHalt        = errors.New(f("halted"))
	ErrRomTooLarge = errors.New(f("rom too large"))

	// Assembler errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrByteSyntax      = errors.New(f(".byte syntax"))
	ErrOpcodeMissing   = errors.New(f("operand missing"))
	ErrOpcodeExtraArgs = errors.New(f("excessive arguments"))
	ErrOpcodeInvalid   = errors.New(f("opcode invalid"))
	ErrRegisterInvalid = errors.New(f("register invalid"))
	ErrValueRange      = errors.New(f("value out of range"))
)

// ErrOpcode reports an opcode the execution engine does not implement,
// with the program counter it was fetched from. Execution must halt; the
// engine never silently skips an unknown instruction.
type ErrOpcode struct {
	Pc uint16
	Hi uint8
	Lo uint8
}

func (eo ErrOpcode) Error() string {
	return f("pc 0x%03x: unimplemented opcode 0x%02x%02x", eo.Pc, eo.Hi, eo.Lo)
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrAddress reports address arithmetic that left the memory array. The
// original hardware leaves this undefined; bounds-checked storage makes
// it a distinct fatal defect here.
type ErrAddress struct {
	Pc   uint16
	Addr uint16
}

func (ea ErrAddress) Error() string {
	return f("pc 0x%03x: address 0x%04x out of range", ea.Pc, ea.Addr)
}

func (ea ErrAddress) Is(err error) (ok bool) {
	_, ok = err.(ErrAddress)
	return
}

// ErrLabelMissing reports an unresolved jump label after assembly.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrSyntax wraps an assembler error with its source location.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
