package chip8

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assemble(t *testing.T, source string) (prog *Program, err error) {
	t.Helper()

	asm := &Assembler{}
	return asm.Parse(strings.NewReader(source))
}

func TestAssembler_Basic(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t, `
		mov v0, 5
		add v0, 3
		halt
	`)
	assert.NoError(err)

	// halt encodes as a jump to its own address
	assert.Equal([]byte{0x60, 0x05, 0x70, 0x03, 0x12, 0x04}, prog.Binary())
}

func TestAssembler_Encodings(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		source string
		bytes  []byte
	}){
		{"dclr", []byte{0x00, 0xe0}},
		{"ret", []byte{0x00, 0xee}},
		{"jmp 0x234", []byte{0x12, 0x34}},
		{"call 0x345", []byte{0x23, 0x45}},
		{"skipifeq v1, 0xab", []byte{0x31, 0xab}},
		{"skipifne v1, 0xab", []byte{0x41, 0xab}},
		{"skipifeq v1, v2", []byte{0x51, 0x20}},
		{"mov v1, 0x42", []byte{0x61, 0x42}},
		{"add v1, 0x03", []byte{0x71, 0x03}},
		{"mov v1, v2", []byte{0x81, 0x20}},
		{"or v1, v2", []byte{0x81, 0x21}},
		{"and v1, v2", []byte{0x81, 0x22}},
		{"xor v1, v2", []byte{0x81, 0x23}},
		{"addwc v1, v2", []byte{0x81, 0x24}},
		{"subwc v1, v2", []byte{0x81, 0x25}},
		{"subwc v1, v2, v1", []byte{0x81, 0x27}},
		{"shr v1", []byte{0x81, 0x06}},
		{"shl v1", []byte{0x81, 0x0e}},
		{"mov i, 0x123", []byte{0xa1, 0x23}},
		{"rnd v1, 0x0f", []byte{0xc1, 0x0f}},
		{"draw v1, v2, 5", []byte{0xd1, 0x25}},
		{"add i, v1", []byte{0xf1, 0x1e}},
		{"movm i, v0-v3", []byte{0xf3, 0x55}},
		{"movm v0-v3, i", []byte{0xf3, 0x65}},
		{".byte 0x12, 0x34, 255", []byte{0x12, 0x34, 0xff}},
	}

	for _, entry := range table {
		prog, err := assemble(t, entry.source)
		if assert.NoError(err, entry.source) {
			assert.Equal(entry.bytes, prog.Binary(), entry.source)
		}
	}
}

func TestAssembler_Labels(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t, `
	loop:	add v1, 1
		jmp loop
	`)
	assert.NoError(err)
	assert.Equal([]byte{0x71, 0x01, 0x12, 0x00}, prog.Binary())
}

func TestAssembler_ForwardLabel(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t, `
		call sub
		halt
	sub:	ret
	`)
	assert.NoError(err)
	assert.Equal([]byte{0x22, 0x04, 0x12, 0x02, 0x00, 0xee}, prog.Binary())
}

func TestAssembler_Equates(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t, `
		.equ SPEED 0x21
		mov v2, SPEED
		mov v3, SCREEN_HEIGHT
	`)
	assert.NoError(err)
	assert.Equal([]byte{0x62, 0x21, 0x63, 0x20}, prog.Binary())
}

func TestAssembler_Predefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("SPEED", "7")

	prog, err := asm.Parse(strings.NewReader("mov v0, SPEED"))
	assert.NoError(err)
	assert.Equal([]byte{0x60, 0x07}, prog.Binary())
}

func TestAssembler_Expression(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t, `
		.equ MARGIN 2
		mov v0, $(SCREEN_WIDTH - 1)
		mov v1, $(MARGIN * 8 + 1)
	`)
	assert.NoError(err)
	assert.Equal([]byte{0x60, 0x3f, 0x61, 0x11}, prog.Binary())
}

func TestAssembler_Comments(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t, `
	; full line comment
		mov v0, 1	; trailing comment
	`)
	assert.NoError(err)
	assert.Equal([]byte{0x60, 0x01}, prog.Binary())
	assert.Equal(3, prog.LineAt(MEMORY_START))
	assert.Equal(0, prog.LineAt(0x300))
}

func TestAssembler_Reuse(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(".equ A 1\nx: mov v0, A"))
	assert.NoError(err)
	assert.Equal([]byte{0x60, 0x01}, prog.Binary())

	// equates and labels reset between runs
	prog, err = asm.Parse(strings.NewReader(".equ A 2\nx: mov v0, A"))
	assert.NoError(err)
	assert.Equal([]byte{0x60, 0x02}, prog.Binary())
}

func TestAssembler_Errors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		source string
		expect error
	}){
		{"mov", ErrOpcodeMissing},
		{"mov v0, 1, 2", ErrOpcodeExtraArgs},
		{"mov vz, 1", ErrRegisterInvalid},
		{"mov v0, 0x100", ErrValueRange},
		{"draw v0, v1, 0x10", ErrValueRange},
		{"jmp 0x1000", ErrValueRange},
		{"bogus v0", ErrOpcodeInvalid},
		{"skipifne v0, v1", ErrOpcodeInvalid},
		{"subwc v1, v2, v3", ErrOpcodeInvalid},
		{".equ A", ErrEquateSyntax},
		{".equ A 1\n.equ A 2", ErrEquateDuplicate},
		{"x: ret\nx: ret", ErrLabelDuplicate},
		{".byte", ErrByteSyntax},
		{"movm i, v1-v3", ErrRegisterInvalid},
		{"jmp nowhere", ErrLabelMissing("nowhere")},
	}

	for _, entry := range table {
		_, err := assemble(t, entry.source)
		assert.ErrorIs(err, entry.expect, entry.source)

		var es *ErrSyntax
		assert.ErrorAs(err, &es, entry.source)
	}
}

func TestAssembler_ErrorLocation(t *testing.T) {
	assert := assert.New(t)

	_, err := assemble(t, "mov v0, 1\nmov vz, 2")

	var es *ErrSyntax
	assert.ErrorAs(err, &es)
	assert.Equal(2, es.LineNo)
	assert.Equal("mov vz, 2", es.Line)
}

func TestAssembler_Roundtrip(t *testing.T) {
	assert := assert.New(t)

	// every emitted statement disassembles back to its mnemonic form
	prog, err := assemble(t, `
		dclr
		mov v0, 08
		mov v1, 04
		mov i, 0x300
		draw v0, v1, 2
	`)
	assert.NoError(err)

	bin := prog.Binary()
	for n := 0; n+1 < len(bin); n += 2 {
		op := Opcode{Hi: bin[n], Lo: bin[n+1]}
		assert.NotEqual("unknown", op.String(), "%04x", op.Word())
	}
}
