package engine

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// lockedRand is a PCG source safe for use from several goroutines.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a seeded random source. A zero seed picks one from the clock.
func NewRand(seed uint64) domain.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}
