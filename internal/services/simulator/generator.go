package simulator

import (
	"math/rand"
	"sync"
)

// Generator produces a bounded random walk for one quantity, so consecutive
// samples drift plausibly instead of jumping around.
type Generator struct {
	mu    sync.Mutex
	value float64
	min   float64
	max   float64
	step  float64
	rnd   *rand.Rand
}

func NewGenerator(start, min, max, step float64, seed int64) *Generator {
	if start < min {
		start = min
	}
	if start > max {
		start = max
	}
	return &Generator{
		value: start,
		min:   min,
		max:   max,
		step:  step,
		rnd:   rand.New(rand.NewSource(seed)),
	}
}

// Next advances the walk one step and returns the new value.
func (g *Generator) Next() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value += (g.rnd.Float64()*2 - 1) * g.step
	if g.value < g.min {
		g.value = g.min
	}
	if g.value > g.max {
		g.value = g.max
	}
	return g.value
}
