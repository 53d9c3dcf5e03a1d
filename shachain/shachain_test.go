package shachain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSecretDeterministic(t *testing.T) {
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(i)
	}

	s1 := Secret(seed, FirstCommitIndex)
	s2 := Secret(seed, FirstCommitIndex)
	require.Equal(t, s1, s2)
}

func TestSecretVariesByIndex(t *testing.T) {
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(i)
	}

	s1 := Secret(seed, FirstCommitIndex)
	s2 := Secret(seed, FirstCommitIndex-1)
	require.NotEqual(t, s1, s2)
}

func TestPerCommitPointDeterministic(t *testing.T) {
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(0xAA)
	}

	p1, err := PerCommitPoint(seed, FirstCommitIndex)
	require.NoError(t, err)
	p2, err := PerCommitPoint(seed, FirstCommitIndex)
	require.NoError(t, err)

	require.True(t, p1.IsEqual(p2))
}
