package screen

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"chiper/chip8"
)

// Window renders into a desktop window via Ebitengine. The machine runs
// on its own goroutine and draws through the Screen capability; the
// window mirrors those calls into a pixel buffer that is presented each
// frame. Run must be called on the main goroutine and owns it until the
// window closes.
type Window struct {
	mu    sync.Mutex
	pix   [chip8.SCREEN_WIDTH * chip8.SCREEN_HEIGHT]bool
	frame []byte // RGBA copy of pix as of the last present
	done  bool
}

var _ chip8.Screen = (*Window)(nil)
var _ ebiten.Game = (*Window)(nil)

// NewWindow creates a window renderer scaled up from the native 64x32.
func NewWindow(title string, scale int) (win *Window) {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(chip8.SCREEN_WIDTH*scale, chip8.SCREEN_HEIGHT*scale)

	win = &Window{
		frame: make([]byte, chip8.SCREEN_WIDTH*chip8.SCREEN_HEIGHT*4),
	}
	for n := range chip8.SCREEN_WIDTH * chip8.SCREEN_HEIGHT {
		win.frame[n*4+3] = 0xff
	}

	return
}

// Clear blanks the pixel buffer.
func (win *Window) Clear() {
	win.mu.Lock()
	defer win.mu.Unlock()

	clear(win.pix[:])
}

// DrawPx sets a pixel on.
func (win *Window) DrawPx(x, y int) {
	win.mu.Lock()
	defer win.mu.Unlock()

	win.pix[y*chip8.SCREEN_WIDTH+x] = true
}

// ClearPx sets a pixel off.
func (win *Window) ClearPx(x, y int) {
	win.mu.Lock()
	defer win.mu.Unlock()

	win.pix[y*chip8.SCREEN_WIDTH+x] = false
}

// Present publishes the pixel buffer to the next drawn frame.
func (win *Window) Present() {
	win.mu.Lock()
	defer win.mu.Unlock()

	for n, on := range win.pix {
		val := uint8(0x00)
		if on {
			val = 0xff
		}
		win.frame[n*4+0] = val
		win.frame[n*4+1] = val
		win.frame[n*4+2] = val
	}
}

// Close tells the window loop to exit after the current frame.
func (win *Window) Close() {
	win.mu.Lock()
	defer win.mu.Unlock()

	win.done = true
}

// Run services the window until it is closed.
func (win *Window) Run() (err error) {
	return ebiten.RunGame(win)
}

// Update implements ebiten.Game.
func (win *Window) Update() (err error) {
	win.mu.Lock()
	defer win.mu.Unlock()

	if win.done {
		return ebiten.Termination
	}

	return
}

// Draw implements ebiten.Game.
func (win *Window) Draw(dst *ebiten.Image) {
	win.mu.Lock()
	defer win.mu.Unlock()

	dst.WritePixels(win.frame)
}

// Layout implements ebiten.Game; Ebitengine scales the native
// resolution up to the window size.
func (win *Window) Layout(outsideWidth, outsideHeight int) (width, height int) {
	return chip8.SCREEN_WIDTH, chip8.SCREEN_HEIGHT
}
