package screen

import (
	"bufio"
	"fmt"
	"io"

	"chiper/chip8"
)

// Terminal renders onto an ANSI terminal, one character cell per pixel.
// Pixel writes are buffered and flushed on present.
type Terminal struct {
	out *bufio.Writer
}

var _ chip8.Screen = (*Terminal)(nil)

// NewTerminal creates a terminal renderer writing to out.
func NewTerminal(out io.Writer) (term *Terminal) {
	term = &Terminal{
		out: bufio.NewWriter(out),
	}

	return
}

// Clear blanks the terminal.
func (term *Terminal) Clear() {
	fmt.Fprint(term.out, "\033[2J")
}

// DrawPx places a block character at the pixel's cell.
func (term *Terminal) DrawPx(x, y int) {
	fmt.Fprintf(term.out, "\033[%d;%dH█", y+1, x+1)
}

// ClearPx blanks the pixel's cell.
func (term *Terminal) ClearPx(x, y int) {
	fmt.Fprintf(term.out, "\033[%d;%dH ", y+1, x+1)
}

// Present parks the cursor below the display and flushes.
func (term *Terminal) Present() {
	fmt.Fprintf(term.out, "\033[%d;1H", chip8.SCREEN_HEIGHT+1)
	term.out.Flush()
}
