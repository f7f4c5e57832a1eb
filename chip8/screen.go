package chip8

// Screen is the rendering capability the machine draws through. It is a
// write-only projection of framebuffer memory; the machine never reads
// pixel state back from it. Coordinates are 0-based, x in
// [0, SCREEN_WIDTH), y in [0, SCREEN_HEIGHT).
type Screen interface {
	// Clear logically blanks the output surface.
	Clear()
	// DrawPx sets a pixel on.
	DrawPx(x, y int)
	// ClearPx sets a pixel off.
	ClearPx(x, y int)
	// Present flushes the frame for display.
	Present()
}
