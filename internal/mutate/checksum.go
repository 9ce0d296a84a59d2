package mutate

import "math/bits"

// windowChecksum digests one window of bytes into a u64.
//
// Each byte is rotated by its window-local index before being folded in,
// so the digest is position-sensitive: swapping two bytes changes it. The
// rotated value is XORed and the raw value added, both with wraparound.
// Fast equality pre-check only, not cryptographic.
func windowChecksum(window []byte) uint64 {
	var sum uint64
	for i, b := range window {
		sum ^= bits.RotateLeft64(uint64(b), i%64)
		sum += uint64(b)
	}
	return sum
}

// rollingChecksum accumulates window digests across a stream. Window
// boundaries matter: two streams compare equal only when fed the same
// bytes in the same window sizes, which the verifier guarantees by reading
// both files in lockstep.
type rollingChecksum struct {
	sum uint64
}

// add folds one window into the accumulator with wraparound.
func (c *rollingChecksum) add(window []byte) {
	c.sum += windowChecksum(window)
}

// sum64 returns the accumulated digest.
func (c *rollingChecksum) sum64() uint64 {
	return c.sum
}
