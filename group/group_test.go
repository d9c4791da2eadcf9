package group

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBytesRejectsWrongLength(t *testing.T) {
	_, err := FromBytes(make([]byte, Lambda-1))
	require.Error(t, err)
}

func TestFromBytesCanonicalizesNonCanonicalInput(t *testing.T) {
	b := make([]byte, Lambda)
	v := P + 41
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}

	e, err := FromBytes(b)
	require.NoError(t, err)
	assert.Equal(t, uint64(41), e.Uint64())
}

func TestAddCanonicalizesUpperBytes(t *testing.T) {
	a := FromUint64(5)
	b := FromUint64(7)
	sum := Add(a, b)
	for _, by := range sum[8:] {
		assert.Zero(t, by)
	}
	assert.Equal(t, uint64(12), sum.Uint64())
}

func TestAddWraps(t *testing.T) {
	a := FromUint64(P - 1)
	b := FromUint64(2)
	assert.Equal(t, uint64(1), Add(a, b).Uint64())
}

func TestNegZeroIsZero(t *testing.T) {
	assert.Equal(t, uint64(0), Neg(Zero()).Uint64())
}

func TestNegRoundTrip(t *testing.T) {
	a := FromUint64(123456789)
	assert.Equal(t, uint64(0), Add(a, Neg(a)).Uint64())
}

func TestMulKnownValues(t *testing.T) {
	a := FromUint64(6)
	b := FromUint64(7)
	assert.Equal(t, uint64(42), Mul(a, b).Uint64())
}

func TestFieldClosure(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		a := FromUint64(rng.Uint64() % P)
		b := FromUint64(rng.Uint64() % P)

		assert.Less(t, Add(a, b).Uint64(), P)
		assert.Less(t, Sub(a, b).Uint64(), P)
		assert.Less(t, Mul(a, b).Uint64(), P)
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(FromUint64(9), FromUint64(9)))
	assert.False(t, Equal(FromUint64(9), FromUint64(10)))
}
