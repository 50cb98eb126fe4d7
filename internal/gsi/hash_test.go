package gsi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_Deterministic(t *testing.T) {
	s1, err := Normalize(fullPayload(), "secret")
	require.NoError(t, err)
	s2, err := Normalize(fullPayload(), "secret")
	require.NoError(t, err)

	h1, err := Hash(s1)
	require.NoError(t, err)
	h2, err := Hash(s2)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // hex sha256
}

func TestHash_ChangesWithContent(t *testing.T) {
	s1, err := Normalize(fullPayload(), "secret")
	require.NoError(t, err)

	p := fullPayload()
	p.Player.Gold = 2151
	s2, err := Normalize(p, "secret")
	require.NoError(t, err)

	h1, _ := Hash(s1)
	h2, _ := Hash(s2)
	assert.NotEqual(t, h1, h2)
}

func TestHash_NilBlocksDifferFromZeroBlocks(t *testing.T) {
	p := fullPayload()
	p.Hero = nil
	s1, err := Normalize(p, "secret")
	require.NoError(t, err)

	p = fullPayload()
	p.Hero = &RawHero{}
	s2, err := Normalize(p, "secret")
	require.NoError(t, err)

	h1, _ := Hash(s1)
	h2, _ := Hash(s2)
	assert.NotEqual(t, h1, h2)
}
