package bandit

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// Source yields uniform draws in [0, 1).
type Source interface {
	Float64() float64
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSource returns a goroutine-safe PCG source. The same seed replays the same draws.
func NewSource(seed uint64) Source {
	return &lockedSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewTimeSource seeds a source from the wall clock.
func NewTimeSource() Source {
	return NewSource(uint64(time.Now().UnixNano()))
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// Sampler draws from the distributions the bandits need.
type Sampler struct {
	src Source
}

func NewSampler(src Source) *Sampler {
	if src == nil {
		src = NewTimeSource()
	}
	return &Sampler{src: src}
}

func (s *Sampler) Uniform() float64 {
	return s.src.Float64()
}

// Intn picks uniformly from [0, n).
func (s *Sampler) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	i := int(s.src.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Randn draws a standard normal with Box-Muller.
func (s *Sampler) Randn() float64 {
	// 1-u maps [0,1) to (0,1] so the log stays finite
	u1 := 1 - s.src.Float64()
	u2 := s.src.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// Gamma draws from Gamma(shape, 1) using Marsaglia-Tsang.
func (s *Sampler) Gamma(shape float64) float64 {
	if shape < 1 {
		u := 1 - s.src.Float64()
		return s.Gamma(shape+1) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = s.Randn()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := s.src.Float64()
		x2 := x * x
		if u < 1-0.0331*x2*x2 {
			return d * v
		}
		if math.Log(u) < 0.5*x2+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

// Beta draws from Beta(alpha, beta). Non-positive parameters are treated as 1.
// The result always lies in the open interval (0, 1).
func (s *Sampler) Beta(alpha, beta float64) float64 {
	if !(alpha > 0) {
		alpha = 1
	}
	if !(beta > 0) {
		beta = 1
	}
	ga := s.Gamma(alpha)
	gb := s.Gamma(beta)

	r := ga / (ga + gb)
	switch {
	case math.IsNaN(r):
		return 0.5
	case r <= 0:
		return math.SmallestNonzeroFloat64
	case r >= 1:
		return math.Nextafter(1, 0)
	}
	return r
}
