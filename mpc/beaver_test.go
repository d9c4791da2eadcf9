package mpc

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcf-retrieval/group"
	"dcf-retrieval/prg"
)

func splitShares(t *testing.T, csprng io.Reader, values []uint64) (share0, share1 []group.Element) {
	t.Helper()
	share0 = make([]group.Element, len(values))
	share1 = make([]group.Element, len(values))
	for i, v := range values {
		s0, err := randomElement(csprng)
		require.NoError(t, err)
		full := group.FromUint64(v)
		share0[i] = s0
		share1[i] = group.Sub(full, s0)
	}
	return share0, share1
}

func reconstruct(shares ...group.Element) uint64 {
	sum := group.Zero()
	for _, s := range shares {
		sum = group.Add(sum, s)
	}
	return sum.Uint64()
}

func TestDotProductShareKnownVectors(t *testing.T) {
	csprng, err := prg.CSPRNG()
	require.NoError(t, err)

	a := []uint64{1, 2, 3, 4}
	b := []uint64{5, 6, 7, 8}

	a0, a1 := splitShares(t, csprng, a)
	b0, b1 := splitShares(t, csprng, b)

	t0, t1, err := GenTriple(len(a), csprng)
	require.NoError(t, err)

	share0, share1, err := DotProductShare(a0, b0, a1, b1, t0, t1)
	require.NoError(t, err)

	assert.Equal(t, uint64(70), reconstruct(share0, share1))
}

func TestDotProductShareWraps(t *testing.T) {
	csprng, err := prg.CSPRNG()
	require.NoError(t, err)

	pMinus1 := group.P - 1
	a0, a1 := splitShares(t, csprng, []uint64{pMinus1})
	b0, b1 := splitShares(t, csprng, []uint64{pMinus1})

	t0, t1, err := GenTriple(1, csprng)
	require.NoError(t, err)

	share0, share1, err := DotProductShare(a0, b0, a1, b1, t0, t1)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), reconstruct(share0, share1))
}

func TestDotProductShareReusingTripleMatchesFresh(t *testing.T) {
	csprng, err := prg.CSPRNG()
	require.NoError(t, err)

	a0, a1 := splitShares(t, csprng, []uint64{3})
	b0, b1 := splitShares(t, csprng, []uint64{9})
	t0, t1, err := GenTriple(1, csprng)
	require.NoError(t, err)

	share0, share1, err := DotProductShareReusingTriple(a0, b0, a1, b1, t0, t1)
	require.NoError(t, err)
	assert.Equal(t, uint64(27), reconstruct(share0, share1))
}

func TestGenTripleRejectsNonPositiveLength(t *testing.T) {
	csprng, err := prg.CSPRNG()
	require.NoError(t, err)
	_, _, err = GenTriple(0, csprng)
	require.Error(t, err)
}
