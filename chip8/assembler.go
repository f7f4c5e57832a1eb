package chip8

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":              "0",
	"SCREEN_WIDTH":        fmt.Sprintf("%#v", SCREEN_WIDTH),
	"SCREEN_HEIGHT":       fmt.Sprintf("%#v", SCREEN_HEIGHT),
	"MEMORY_START":        fmt.Sprintf("%#v", MEMORY_START),
	"SCREEN_MEMORY_START": fmt.Sprintf("%#v", SCREEN_MEMORY_START),
}

// Assembler is a single pass assembler for the CHIP-8 instruction set.
//
// Lines hold at most one label, one instruction or directive, and a ';'
// comment. Directives: `.equ NAME VALUE` and `.byte B...`. Instruction
// mnemonics match the disassembly format of Opcode.String. Compile-time
// $(...) expressions are evaluated with all integer equates predeclared.
type Assembler struct {
	Verbose    bool        // If set, verbosely logs the assembler actions.
	Statements []Statement // List of generated statements.

	predefine map[string]string // Predefines
	Label     map[string]uint16 // Map of jump labels to load addresses.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the numeric value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint16, err error) {
	v64, err := strconv.ParseUint(word, 0, 16)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = uint16(v64)

	return
}

// regOf decodes a register operand of the form v0..vf.
func regOf(word string) (reg int, ok bool) {
	if len(word) != 2 || word[0] != 'v' {
		return
	}

	v64, err := strconv.ParseUint(word[1:], 16, 8)
	if err != nil {
		return
	}

	return int(v64), true
}

// regRangeOf decodes a block-transfer register range of the form v0-vx.
func regRangeOf(word string) (reg int, ok bool) {
	lo, hi, found := strings.Cut(word, "-")
	if !found || lo != "v0" {
		return
	}

	return regOf(hi)
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint16, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value16 uint16
		value16, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(value16))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint16(st_int64)
	return
}

// parseLine expands a source line into instruction words.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	re := regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	// Operand commas and tabs are decorative.
	line = strings.ReplaceAll(line, ",", " ")
	line = strings.ReplaceAll(line, "\t", " ")

	words = slices.DeleteFunc(strings.Split(line, " "), func(a string) bool { return len(a) == 0 })

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]uint16, 16)
		}
		asm.Label[label] = asm.currentAddr()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	return
}

// currentAddr gets the load address for the next statement.
func (asm *Assembler) currentAddr() uint16 {
	if len(asm.Statements) == 0 {
		return MEMORY_START
	}

	last := asm.Statements[len(asm.Statements)-1]

	return last.Addr + uint16(len(last.Bytes))
}

// Parse parses an input stream into a Program containing statements.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Statements = asm.Statements[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}
	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of jump labels.
	for n := range asm.Statements {
		st := &asm.Statements[n]

		if len(st.LinkLabel) == 0 {
			continue
		}
		addr, ok := asm.Label[st.LinkLabel]
		if !ok {
			err = ErrLabelMissing(st.LinkLabel)
			return
		}
		st.Bytes[0] = st.Bytes[0]&0xf0 | uint8(addr>>8)&0x0f
		st.Bytes[1] = uint8(addr & 0xff)
	}

	prog = &Program{
		Statements: slices.Clone(asm.Statements),
	}

	return
}

// addrOperand resolves a 12-bit address operand: either a numeric value
// or a label to be linked after the full input has been parsed.
func (asm *Assembler) addrOperand(word string) (nnn uint16, label string, err error) {
	nnn, err = asm.valueOf(word)
	if err == nil {
		if nnn > 0xfff {
			err = ErrValueRange
		}
		return
	}

	// Not a number; defer to the linker.
	err = nil
	label = word

	return
}

// byteOperand resolves an 8-bit immediate operand.
func (asm *Assembler) byteOperand(word string) (nn uint8, err error) {
	value, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if value > 0xff {
		err = ErrValueRange
		return
	}

	nn = uint8(value)

	return
}

// nibOperand resolves a 4-bit immediate operand.
func (asm *Assembler) nibOperand(word string) (n uint8, err error) {
	value, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if value > 0xf {
		err = ErrValueRange
		return
	}

	n = uint8(value)

	return
}

// parseWords encodes the words of a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var data []byte
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	defer func() {
		if len(data) == 0 {
			return
		}
		st := Statement{LineNo: lineno, Addr: asm.currentAddr(), Words: words, Bytes: data, LinkLabel: label}
		asm.Statements = append(asm.Statements, st)
	}()

	emit := func(op Opcode) {
		data = append(data, op.Hi, op.Lo)
	}

	narg := func(want int) (err error) {
		switch {
		case len(words)-1 < want:
			err = ErrOpcodeMissing
		case len(words)-1 > want:
			err = ErrOpcodeExtraArgs
		}
		return
	}

	regArg := func(word string) (reg int, err error) {
		reg, ok := regOf(word)
		if !ok {
			err = ErrRegisterInvalid
		}
		return
	}

	switch words[0] {
	case ".byte":
		if len(words) < 2 {
			err = ErrByteSyntax
			return
		}
		for _, word := range words[1:] {
			var b uint8
			b, err = asm.byteOperand(word)
			if err != nil {
				return
			}
			data = append(data, b)
		}
	case "dclr":
		if err = narg(0); err != nil {
			return
		}
		emit(MakeOpClear())
	case "ret":
		if err = narg(0); err != nil {
			return
		}
		emit(MakeOpReturn())
	case "halt":
		// self-jump, the conventional stop-here marker
		if err = narg(0); err != nil {
			return
		}
		emit(MakeOpJump(asm.currentAddr()))
	case "jmp":
		if err = narg(1); err != nil {
			return
		}
		var nnn uint16
		nnn, label, err = asm.addrOperand(words[1])
		if err != nil {
			return
		}
		emit(MakeOpJump(nnn))
	case "call":
		if err = narg(1); err != nil {
			return
		}
		var nnn uint16
		nnn, label, err = asm.addrOperand(words[1])
		if err != nil {
			return
		}
		emit(MakeOpCall(nnn))
	case "skipifeq", "skipifne":
		if err = narg(2); err != nil {
			return
		}
		var x int
		x, err = regArg(words[1])
		if err != nil {
			return
		}
		y, isReg := regOf(words[2])
		if isReg {
			if words[0] == "skipifne" {
				err = ErrOpcodeInvalid
				return
			}
			emit(MakeOpSkipEqReg(x, y))
			return
		}
		var nn uint8
		nn, err = asm.byteOperand(words[2])
		if err != nil {
			return
		}
		if words[0] == "skipifeq" {
			emit(MakeOpSkipEq(x, nn))
		} else {
			emit(MakeOpSkipNe(x, nn))
		}
	case "mov":
		if err = narg(2); err != nil {
			return
		}
		if words[1] == "i" {
			var nnn uint16
			nnn, label, err = asm.addrOperand(words[2])
			if err != nil {
				return
			}
			emit(MakeOpIndex(nnn))
			return
		}
		var x int
		x, err = regArg(words[1])
		if err != nil {
			return
		}
		y, isReg := regOf(words[2])
		if isReg {
			emit(MakeOpAlu(ALU_OP_SET, x, y))
			return
		}
		var nn uint8
		nn, err = asm.byteOperand(words[2])
		if err != nil {
			return
		}
		emit(MakeOpMove(x, nn))
	case "add":
		if err = narg(2); err != nil {
			return
		}
		if words[1] == "i" {
			var x int
			x, err = regArg(words[2])
			if err != nil {
				return
			}
			emit(MakeOpIndexAdd(x))
			return
		}
		var x int
		x, err = regArg(words[1])
		if err != nil {
			return
		}
		var nn uint8
		nn, err = asm.byteOperand(words[2])
		if err != nil {
			return
		}
		emit(MakeOpAdd(x, nn))
	case "or", "and", "xor", "addwc":
		if err = narg(2); err != nil {
			return
		}
		var x, y int
		x, err = regArg(words[1])
		if err != nil {
			return
		}
		y, err = regArg(words[2])
		if err != nil {
			return
		}
		alu := map[string]AluOp{
			"or":    ALU_OP_OR,
			"and":   ALU_OP_AND,
			"xor":   ALU_OP_XOR,
			"addwc": ALU_OP_ADD,
		}[words[0]]
		emit(MakeOpAlu(alu, x, y))
	case "subwc":
		// subwc vx, vy        -> vx = vx - vy
		// subwc vx, vy, vx    -> vx = vy - vx
		if len(words) != 3 && len(words) != 4 {
			err = ErrOpcodeMissing
			return
		}
		var x, y int
		x, err = regArg(words[1])
		if err != nil {
			return
		}
		y, err = regArg(words[2])
		if err != nil {
			return
		}
		if len(words) == 4 {
			if words[3] != words[1] {
				err = ErrOpcodeInvalid
				return
			}
			emit(MakeOpAlu(ALU_OP_RSUB, x, y))
			return
		}
		emit(MakeOpAlu(ALU_OP_SUB, x, y))
	case "shr", "shl":
		if err = narg(1); err != nil {
			return
		}
		var x int
		x, err = regArg(words[1])
		if err != nil {
			return
		}
		if words[0] == "shr" {
			emit(MakeOpAlu(ALU_OP_SHR, x, 0))
		} else {
			emit(MakeOpAlu(ALU_OP_SHL, x, 0))
		}
	case "rnd":
		if err = narg(2); err != nil {
			return
		}
		var x int
		x, err = regArg(words[1])
		if err != nil {
			return
		}
		var nn uint8
		nn, err = asm.byteOperand(words[2])
		if err != nil {
			return
		}
		emit(MakeOpRand(x, nn))
	case "draw":
		if err = narg(3); err != nil {
			return
		}
		var x, y int
		x, err = regArg(words[1])
		if err != nil {
			return
		}
		y, err = regArg(words[2])
		if err != nil {
			return
		}
		var n uint8
		n, err = asm.nibOperand(words[3])
		if err != nil {
			return
		}
		emit(MakeOpDraw(x, y, n))
	case "movm":
		if err = narg(2); err != nil {
			return
		}
		if words[1] == "i" {
			x, ok := regRangeOf(words[2])
			if !ok {
				err = ErrRegisterInvalid
				return
			}
			emit(MakeOpStore(x))
			return
		}
		x, ok := regRangeOf(words[1])
		if !ok || words[2] != "i" {
			err = ErrRegisterInvalid
			return
		}
		emit(MakeOpLoad(x))
	default:
		err = ErrOpcodeInvalid
		return
	}

	return
}
