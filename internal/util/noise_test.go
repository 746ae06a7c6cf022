package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoise_DeterministicAndBounded(t *testing.T) {
	a := NewNoise(42)
	b := NewNoise(42)

	for i := 0; i < 100; i++ {
		x, y, z := float64(i)*0.13, float64(i)*0.07, float64(i)*0.31
		va := a.Sample3D(x, y, z)
		assert.Equal(t, va, b.Sample3D(x, y, z), "Одинаковый сид даёт одинаковый шум")
		assert.GreaterOrEqual(t, va, 0.0)
		assert.LessOrEqual(t, va, 1.0)

		v2 := a.Sample2D(x, y)
		assert.GreaterOrEqual(t, v2, 0.0)
		assert.LessOrEqual(t, v2, 1.0)
	}
	assert.Equal(t, int64(42), a.Seed())
}
