package bandit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetaStaysInOpenInterval(t *testing.T) {
	s := NewSampler(NewSource(42))

	params := [][2]float64{
		{1, 1},
		{0.5, 0.5},
		{0.05, 3},
		{1, 1000},
		{1000, 1},
		{0, -3},
		{25, 75},
	}
	for _, p := range params {
		for i := 0; i < 2000; i++ {
			x := s.Beta(p[0], p[1])
			require.Greater(t, x, 0.0, "Beta(%v,%v)", p[0], p[1])
			require.Less(t, x, 1.0, "Beta(%v,%v)", p[0], p[1])
		}
	}
}

func TestBetaMean(t *testing.T) {
	s := NewSampler(NewSource(7))

	const n = 20000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += s.Beta(2, 5)
	}
	assert.InDelta(t, 2.0/7.0, sum/n, 0.01)
}

func TestGammaMean(t *testing.T) {
	s := NewSampler(NewSource(11))

	for _, shape := range []float64{0.5, 1, 3, 10} {
		const n = 20000
		sum := 0.0
		for i := 0; i < n; i++ {
			g := s.Gamma(shape)
			require.False(t, math.IsNaN(g))
			require.GreaterOrEqual(t, g, 0.0)
			sum += g
		}
		assert.InDelta(t, shape, sum/n, 0.05*shape+0.02, "shape %v", shape)
	}
}

func TestRandnMoments(t *testing.T) {
	s := NewSampler(NewSource(3))

	const n = 20000
	var sum, sq float64
	for i := 0; i < n; i++ {
		x := s.Randn()
		require.False(t, math.IsInf(x, 0))
		sum += x
		sq += x * x
	}
	mean := sum / n
	assert.InDelta(t, 0, mean, 0.03)
	assert.InDelta(t, 1, sq/n-mean*mean, 0.05)
}

func TestRandnSurvivesZeroDraw(t *testing.T) {
	s := NewSampler(script(0, 0))
	x := s.Randn()
	assert.False(t, math.IsInf(x, 0))
	assert.False(t, math.IsNaN(x))
}

func TestSameSeedReplays(t *testing.T) {
	a := NewSampler(NewSource(99))
	b := NewSampler(NewSource(99))
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Beta(3, 4), b.Beta(3, 4))
	}
}

func TestIntn(t *testing.T) {
	s := NewSampler(script(0, 0.3333, 0.34, 0.9999, 0.5))
	assert.Equal(t, 0, s.Intn(3))
	assert.Equal(t, 0, s.Intn(3))
	assert.Equal(t, 1, s.Intn(3))
	assert.Equal(t, 2, s.Intn(3))
	assert.Equal(t, 0, s.Intn(1))
}
