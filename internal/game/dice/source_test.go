package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/evolution/internal/game/dice"
)

func TestCryptoSource_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 1000).Draw(rt, "n")
		v := src.Intn(n)
		if v < 0 || v >= n {
			rt.Fatalf("Intn(%d) = %d out of range", n, v)
		}
	})
}

func TestCryptoSource_PanicsOnNonPositive(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 50; i++ {
		require.Equal(t, a.Intn(100), b.Intn(100))
	}
}

func TestSeededSource_ZeroSeedUsable(t *testing.T) {
	a := dice.NewSeededSource(0)
	b := dice.NewSeededSource(1)
	assert.Equal(t, a.Intn(1000), b.Intn(1000))
	assert.Panics(t, func() { a.Intn(-1) })
}

func TestPick(t *testing.T) {
	src := dice.NewSeededSource(7)
	assert.Equal(t, -1, dice.Pick(src, 0))
	v := dice.Pick(src, 3)
	assert.GreaterOrEqual(t, v, 0)
	assert.Less(t, v, 3)
}

func TestLoggedSource_LogsDraw(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	src := dice.NewLoggedSource(dice.NewSeededSource(3), zap.New(core))
	v := src.Intn(10)
	assert.GreaterOrEqual(t, v, 0)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "random draw", entry.Message)
	assert.EqualValues(t, 10, entry.ContextMap()["n"])
	assert.EqualValues(t, v, entry.ContextMap()["result"])
}
