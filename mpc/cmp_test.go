package mpc

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcf-retrieval/group"
	"dcf-retrieval/prg"
)

func newCmpTestContext(t *testing.T) *prg.Context {
	t.Helper()
	ctx, err := prg.NewContext(group.Lambda)
	require.NoError(t, err)
	return ctx
}

func runCmp(t *testing.T, ctx *prg.Context, csprng io.Reader, xL, xR, x uint64) uint64 {
	t.Helper()
	k0, k1, err := CmpDealer(xL, xR, ctx, csprng)
	require.NoError(t, err)

	x0, err := randomElement(csprng)
	require.NoError(t, err)
	x1 := group.Sub(group.FromUint64(x), x0)

	share0, share1, err := CmpEval(ctx, k0, k1, x0, x1)
	require.NoError(t, err)
	return group.Add(share0, share1).Uint64()
}

// TestCmpNonWrap reproduces the non-wrap interval-membership scenario:
// (xL, xR) = (100, 200), where 201 lies outside the interval despite being
// above xL, which the old single-threshold API could not express.
func TestCmpNonWrap(t *testing.T) {
	ctx := newCmpTestContext(t)
	csprng, err := prg.CSPRNG()
	require.NoError(t, err)

	assert.Equal(t, uint64(1), runCmp(t, ctx, csprng, 100, 200, 150))
	assert.Equal(t, uint64(0), runCmp(t, ctx, csprng, 100, 200, 99))
	assert.Equal(t, uint64(0), runCmp(t, ctx, csprng, 100, 200, 201))
}

// forcedMaskReader returns the given bytes for exactly the first Read
// call (CmpDealer's mask r draw) and delegates every subsequent Read to
// rest, letting a test pin r to a specific value while leaving every other
// draw CmpDealer makes genuinely random.
type forcedMaskReader struct {
	first []byte
	rest  io.Reader
	used  bool
}

func (f *forcedMaskReader) Read(p []byte) (int, error) {
	if !f.used {
		f.used = true
		return copy(p, f.first), nil
	}
	return f.rest.Read(p)
}

func maskSeedFor(r uint64) []byte {
	seed := make([]byte, group.Lambda)
	binary.LittleEndian.PutUint64(seed[:8], r)
	return seed
}

// TestCmpWrap reproduces the wrap scenario: (xL, xR) chosen with a forced
// mask r so that xL+r < p <= xR+r, and checks that an x strictly between
// xL and xR still reconstructs to 1 despite the low threshold wrapping
// past the high one.
func TestCmpWrap(t *testing.T) {
	ctx := newCmpTestContext(t)
	real, err := prg.CSPRNG()
	require.NoError(t, err)

	const (
		xL = 60
		xR = 100
		r  = group.P - 80 // xL+r = p-20 < p; xR+r = p+20 wraps to 20.
	)
	forced := func() io.Reader { return &forcedMaskReader{first: maskSeedFor(r), rest: real} }

	assert.Equal(t, uint64(1), runCmp(t, ctx, forced(), xL, xR, 80))
	assert.Equal(t, uint64(1), runCmp(t, ctx, forced(), xL, xR, 65))
	assert.Equal(t, uint64(0), runCmp(t, ctx, forced(), xL, xR, 50))
	assert.Equal(t, uint64(0), runCmp(t, ctx, forced(), xL, xR, 150))
}

func TestCmpFullDomainAgainstThreshold(t *testing.T) {
	ctx := newCmpTestContext(t)
	csprng, err := prg.CSPRNG()
	require.NoError(t, err)
	const (
		xL = 137
		xR = 256
	)

	for x := 0; x < 256; x++ {
		want := uint64(0)
		if uint64(x) >= xL && uint64(x) < xR {
			want = 1
		}
		got := runCmp(t, ctx, csprng, xL, xR, uint64(x))
		assert.Equalf(t, want, got, "x=%d", x)
	}
}

func TestCmpDealerRejectsInvertedThresholds(t *testing.T) {
	ctx := newCmpTestContext(t)
	csprng, err := prg.CSPRNG()
	require.NoError(t, err)

	_, _, err = CmpDealer(200, 100, ctx, csprng)
	assert.Error(t, err)
}
