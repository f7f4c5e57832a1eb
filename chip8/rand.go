package chip8

// xorshift advances a 64-bit xorshift generator state.
// https://en.wikipedia.org/wiki/Xorshift
func xorshift(state uint64) uint64 {
	state ^= state << 13
	state ^= state >> 7
	state ^= state << 17
	return state
}

// rand returns the next value from the machine's generator. The returned
// value is persisted as the seed for the next call; the generator is
// never reset mid-run.
func (ch *Chip8) rand() (value uint64) {
	value = xorshift(ch.seed)
	ch.seed = value
	return
}
