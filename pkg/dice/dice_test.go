package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomReplaysSeed(t *testing.T) {
	a, b := NewRandom(42), NewRandom(42)
	for i := 0; i < 100; i++ {
		v := a.Roll()
		require.Equal(t, v, b.Roll())
		require.True(t, v >= 1 && v <= Faces, "roll %d out of range", v)
	}
	assert.Equal(t, int64(42), a.Seed())
}

func TestRandomIsFair(t *testing.T) {
	tally := Audit(NewRandom(1), 60000)
	assert.Equal(t, 60000, tally.Total())

	chi2, p := tally.Fairness()
	assert.Greater(t, p, 0.001, "chi2=%.2f", chi2)
}

func TestFairnessDetectsLoadedDie(t *testing.T) {
	src, err := NewScript(6, 6, 6, 1)
	require.NoError(t, err)

	loaded := Audit(src, 600)
	_, p := loaded.Fairness()
	assert.Less(t, p, 1e-6)

	var empty Tally
	_, p = empty.Fairness()
	assert.Equal(t, 1.0, p)
}

func TestScript(t *testing.T) {
	src, err := NewScript(3, 1, 5)
	require.NoError(t, err)

	var got []int
	for i := 0; i < 5; i++ {
		got = append(got, src.Roll())
	}
	assert.Equal(t, []int{3, 1, 5, 3, 1}, got)

	_, err = NewScript()
	assert.Error(t, err)
	_, err = NewScript(1, 7)
	assert.Error(t, err)
}

func TestNewSeed(t *testing.T) {
	a, err := NewSeed()
	require.NoError(t, err)
	b, err := NewSeed()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
