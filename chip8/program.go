package chip8

// Statement is one assembled source line: its source line number, load
// address, parsed words, and encoded bytes.
type Statement struct {
	LineNo    int
	Addr      uint16
	Words     []string
	Bytes     []byte
	LinkLabel string
}

// Program is an assembled listing, kept alongside the binary so
// diagnostic tooling can map addresses back to source lines.
type Program struct {
	Statements []Statement
}

// Binary returns the ROM image, suitable for loading at MEMORY_START.
func (prog *Program) Binary() (bin []byte) {
	for _, st := range prog.Statements {
		bin = append(bin, st.Bytes...)
	}

	return
}

// LineAt returns the source line number of the statement covering addr,
// or 0 when no statement covers it.
func (prog *Program) LineAt(addr uint16) (lineno int) {
	for _, st := range prog.Statements {
		if addr >= st.Addr && addr < st.Addr+uint16(len(st.Bytes)) {
			lineno = st.LineNo
			break
		}
	}

	return
}
