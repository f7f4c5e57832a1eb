package screen

import (
	"chiper/chip8"
)

// Headless discards all rendering, for runs where only machine memory
// state matters.
type Headless struct{}

var _ chip8.Screen = (*Headless)(nil)

func (h *Headless) Clear() {}

func (h *Headless) DrawPx(x, y int) {}

func (h *Headless) ClearPx(x, y int) {}

func (h *Headless) Present() {}
