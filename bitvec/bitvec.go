// Package bitvec implements a little-endian sequence of up to 64 bits, as
// used for the DCF input domain (α and x).
//
// It is a thin wrapper around github.com/bits-and-blooms/bitset, which
// already is a pointer to backing words plus a bit length, and is a direct
// requirement of this module.
package bitvec

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// MaxWidth is the largest bit width this system's DCF domain supports.
const MaxWidth = 64

// Bits is a fixed-width, little-endian bit sequence: Bit(0) is the least
// significant bit.
type Bits struct {
	set   *bitset.BitSet
	width int
}

// New allocates a zeroed Bits of the given width (0 < width <= MaxWidth).
func New(width int) (Bits, error) {
	if width <= 0 || width > MaxWidth {
		return Bits{}, fmt.Errorf("bitvec: width %d out of range (0, %d]", width, MaxWidth)
	}
	return Bits{set: bitset.New(uint(width)), width: width}, nil
}

// FromUint64 packs the low `width` bits of v into a Bits value.
func FromUint64(v uint64, width int) (Bits, error) {
	b, err := New(width)
	if err != nil {
		return Bits{}, err
	}
	for i := 0; i < width; i++ {
		if (v>>uint(i))&1 == 1 {
			b.set.Set(uint(i))
		}
	}
	return b, nil
}

// Width returns the number of bits in b.
func (b Bits) Width() int {
	return b.width
}

// Bit returns bit i (0 = least significant) as 0 or 1.
func (b Bits) Bit(i int) uint8 {
	if i < 0 || i >= b.width {
		panic(fmt.Sprintf("bitvec: bit index %d out of range [0, %d)", i, b.width))
	}
	if b.set.Test(uint(i)) {
		return 1
	}
	return 0
}

// MSBFirst returns b's bits ordered from most significant to least
// significant — the traversal order the DCF Gen/Eval tree walk uses.
func (b Bits) MSBFirst() []uint8 {
	out := make([]uint8, b.width)
	for i := 0; i < b.width; i++ {
		out[b.width-1-i] = b.Bit(i)
	}
	return out
}

// MaskFor returns the bitmask covering exactly the low `width` bits.
func MaskFor(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(width)) - 1
}

// Uint64 reconstructs the unsigned integer value of b.
func (b Bits) Uint64() uint64 {
	var v uint64
	for i := 0; i < b.width; i++ {
		if b.Bit(i) == 1 {
			v |= 1 << uint(i)
		}
	}
	return v
}
