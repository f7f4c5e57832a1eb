// Package screen provides rendering backends implementing the machine's
// Screen capability: a desktop window, an ANSI terminal, and a headless
// sink. All backends are write-only projections; the framebuffer in
// machine memory remains the pixel state of record.
package screen
