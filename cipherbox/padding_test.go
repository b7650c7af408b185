package cipherbox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddPadding_Shape(t *testing.T) {
	for _, blockSize := range []int{8, 16} {
		for length := 0; length < 40; length++ {
			plain := make([]byte, length)
			padded := addPadding(plain, blockSize)
			require.Equal(t, 0, len(padded)%blockSize)
			require.Greater(t, len(padded), 0)

			v := int(padded[len(padded)-1])
			require.LessOrEqual(t, v+1, blockSize)
			for i := 0; i <= v; i++ {
				require.Equal(t, byte(v), padded[len(padded)-1-i])
			}
		}
	}
}

func TestAddThenRemovePadding_RoundTrip(t *testing.T) {
	for _, blockSize := range []int{8, 16} {
		for length := 0; length < 40; length++ {
			plain := make([]byte, length)
			for i := range plain {
				plain[i] = byte(i)
			}
			padded := addPadding(plain, blockSize)
			newLen, ok := removePadding(padded, 0, blockSize, VersionTLS12)
			require.True(t, ok)
			require.Equal(t, plain, padded[:newLen])
		}
	}
}
