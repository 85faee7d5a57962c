package jumphash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashRange(t *testing.T) {
	for key := uint64(0); key < 1000; key++ {
		b := Hash(key, 10)
		require.GreaterOrEqual(t, b, 0)
		require.Less(t, b, 10)
	}
}

func TestHashDeterministic(t *testing.T) {
	for key := uint64(0); key < 100; key++ {
		require.Equal(t, Hash(key, 7), Hash(key, 7))
	}
}

func TestHashSingleBucket(t *testing.T) {
	require.Zero(t, Hash(12345, 1))
	require.Zero(t, Hash(12345, 0))
}

func TestHashMinimalMovement(t *testing.T) {
	// Growing from 9 to 10 buckets should move roughly 1/10 of keys.
	moved := 0
	const keys = 10000
	for key := uint64(0); key < keys; key++ {
		if Hash(key, 9) != Hash(key, 10) {
			moved++
		}
	}
	require.InDelta(t, keys/10, moved, keys/20)
}
