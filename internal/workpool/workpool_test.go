package workpool

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunComputesAllIndices(t *testing.T) {
	out, err := Run(10, 4, func(i int) (interface{}, error) {
		return i * i, nil
	})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		assert.Equal(t, i*i, out[i])
	}
}

func TestRunPropagatesError(t *testing.T) {
	sentinel := errors.New("boom")
	_, err := Run(5, 2, func(i int) (interface{}, error) {
		if i == 3 {
			return nil, sentinel
		}
		return i, nil
	})
	require.ErrorIs(t, err, sentinel)
}

func TestRunZeroItems(t *testing.T) {
	out, err := Run(0, 2, func(i int) (interface{}, error) {
		t.Fatal("should not be called")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestRunDefaultsWorkers(t *testing.T) {
	out, err := Run(3, 0, func(i int) (interface{}, error) {
		return i, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{0, 1, 2}, out)
}
