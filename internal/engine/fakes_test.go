package engine

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

var testEpoch = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testEpoch }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedRand replays queued values. An exhausted queue yields 0.
type scriptedRand struct {
	mu     sync.Mutex
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.floats) == 0 {
		return 0
	}
	f := r.floats[0]
	r.floats = r.floats[1:]
	return f
}

func (r *scriptedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return min(v, n-1)
}

func (r *scriptedRand) pushFloats(fs ...float64) {
	r.mu.Lock()
	r.floats = append(r.floats, fs...)
	r.mu.Unlock()
}

func (r *scriptedRand) pushInts(is ...int) {
	r.mu.Lock()
	r.ints = append(r.ints, is...)
	r.mu.Unlock()
}

// manualScheduler queues callbacks until the test fires them.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	delay time.Duration
	fn    func()
	done  bool
}

func (t *manualTask) Cancel() bool {
	if t.done {
		return false
	}
	t.done = true
	return true
}

func (s *manualScheduler) After(d time.Duration, fn func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTask{delay: d, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// live returns the delays of callbacks that are still armed.
func (s *manualScheduler) live() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []time.Duration
	for _, t := range s.tasks {
		if !t.done {
			out = append(out, t.delay)
		}
	}
	return out
}

// fireAll runs armed callbacks, including any they arm, and returns how many
// ran.
func (s *manualScheduler) fireAll() int {
	fired := 0
	for {
		s.mu.Lock()
		var next *manualTask
		for _, t := range s.tasks {
			if !t.done {
				next = t
				break
			}
		}
		if next != nil {
			next.done = true
		}
		s.mu.Unlock()

		if next == nil {
			return fired
		}
		next.fn()
		fired++
	}
}

// fireOnce runs only the callbacks armed right now.
func (s *manualScheduler) fireOnce() int {
	s.mu.Lock()
	var armed []*manualTask
	for _, t := range s.tasks {
		if !t.done {
			t.done = true
			armed = append(armed, t)
		}
	}
	s.mu.Unlock()

	for _, t := range armed {
		t.fn()
	}
	return len(armed)
}

// recordingSink keeps every emitted event.
type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) Emit(evt domain.Event) {
	s.mu.Lock()
	s.events = append(s.events, evt)
	s.mu.Unlock()
}

func (s *recordingSink) types() []domain.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.EventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

func trendAt(name string, heat int) domain.TrendItem {
	return domain.TrendItem{
		Name:      name,
		Category:  domain.CategoryStyle,
		Zone:      domain.ZoneOf(heat),
		HeatScore: heat,
	}
}
