// Package chip8 implements the CHIP-8 virtual machine and assembler.
//
// The machine consists of sixteen 8-bit data registers (v0-vf, with vf
// doubling as the carry/borrow/shift/collision flag), a 16-bit address
// register (i), a program counter, a stack pointer, and 4 KiB of unified
// memory that also backs the call stack and the 64x32 monochrome
// framebuffer. Rendering is delegated to an injected Screen capability.
//
// The assembler provides a small line-oriented assembly language for the
// CHIP-8 instruction set, supporting labels, equates, raw data bytes, and
// compile-time expression evaluation.
package chip8
