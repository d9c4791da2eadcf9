// Package prg implements the deterministic seed-expansion function the DCF
// tree walk uses and the CSPRNG the dealer draws fresh correlated
// randomness from.
//
// The two are deliberately distinct types: Context.Expand is the public,
// deterministic function both parties' Eval calls run identically; CSPRNG
// is the dealer-only source of the initial secret seeds, the mask r, and
// Beaver-triple randomness, and must never be derived from data either
// party can predict.
package prg

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"

	ctrdrbg "github.com/sixafter/aes-ctr-drbg"
)

// Context is an explicit handle for the tree-expansion PRG, rather than a
// process-wide singleton installed once at startup. Safe for concurrent use
// by many goroutines: Expand holds no mutable state of its own.
type Context struct {
	lambda int // seed/child width in bytes
}

// NewContext creates a PRG context for seeds of the given byte width.
func NewContext(lambda int) (*Context, error) {
	if lambda <= 0 {
		return nil, fmt.Errorf("prg: lambda must be positive, got %d", lambda)
	}
	return &Context{lambda: lambda}, nil
}

// Free is a lifecycle bookend with nothing left to release — there is no
// global slot to zero once the PRG context is just a value the caller
// owns — kept so callers ported from a prg_init/prg_free pairing have a
// direct home for the teardown call.
func (c *Context) Free() {}

// Expand deterministically expands a λ-byte seed into two λ-byte child
// seeds and two control bits, using the seed as an AES key over an
// all-zero IV in CTR mode — an AES-based keyed-permutation construction,
// following the dpf.PRG/optreedpf.splitPRGOutput pairing this package is
// grounded on.
//
// Output layout, matching optreedpf's splitPRGOutput: childL (λ bytes) ||
// ctrlL (1 byte, LSB significant) || childR (λ bytes) || ctrlR (1 byte).
func (c *Context) Expand(seed []byte) (childL, childR []byte, ctrlL, ctrlR byte, err error) {
	if len(seed) != c.lambda {
		return nil, nil, 0, 0, fmt.Errorf("prg: seed length must be %d, got %d", c.lambda, len(seed))
	}

	block, err := aes.NewCipher(seed)
	if err != nil {
		return nil, nil, 0, 0, fmt.Errorf("prg: aes cipher: %w", err)
	}

	outLen := 2 * (c.lambda + 1)
	out := make([]byte, outLen)
	iv := make([]byte, aes.BlockSize)
	stream := cipher.NewCTR(block, iv)
	stream.XORKeyStream(out, out)

	childL = out[:c.lambda]
	ctrlL = out[c.lambda] & 1
	childR = out[c.lambda+1 : 2*c.lambda+1]
	ctrlR = out[2*c.lambda+1] & 1
	return childL, childR, ctrlL, ctrlR, nil
}

// CSPRNG returns a fresh cryptographically secure io.Reader for sampling
// dealer-side randomness (initial DCF seeds, the Cmp mask r, Beaver
// triples), grounded on the same AES-CTR-DRBG construction
// github.com/sixafter/nanoid sources its own entropy from.
func CSPRNG() (io.Reader, error) {
	r, err := ctrdrbg.NewReader()
	if err != nil {
		return nil, fmt.Errorf("prg: failed to construct csprng: %w", err)
	}
	return r, nil
}

// RandomSeed draws a fresh, uniformly random byte slice of the given
// length from r.
func RandomSeed(r io.Reader, length int) ([]byte, error) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("prg: random seed generation: %w", err)
	}
	return buf, nil
}
