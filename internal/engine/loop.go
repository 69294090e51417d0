package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// Task is a handle to a delayed callback.
type Task interface {
	// Cancel prevents the callback from running. It reports false when the
	// callback already ran or was already cancelled.
	Cancel() bool
}

// Scheduler runs callbacks after a delay inside the engine's serialized
// context.
type Scheduler interface {
	After(d time.Duration, fn func()) Task
}

// Loop is a single-goroutine actor. Every function handed to Do or scheduled
// with After runs on the goroutine executing Run, one at a time.
type Loop struct {
	tasks   chan func()
	stopped chan struct{}
	stop    sync.Once
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[*timerTask]struct{}
}

// NewLoop creates a loop whose inbox holds up to buffer queued functions.
func NewLoop(buffer int, logger *slog.Logger) *Loop {
	if buffer <= 0 {
		buffer = 64
	}
	return &Loop{
		tasks:   make(chan func(), buffer),
		stopped: make(chan struct{}),
		logger:  logger.With(slog.String("component", "engine_loop")),
		pending: make(map[*timerTask]struct{}),
	}
}

// Run executes queued functions until ctx is cancelled. Outstanding timers are
// cancelled on return.
func (l *Loop) Run(ctx context.Context) error {
	defer l.shutdown()
	l.logger.InfoContext(ctx, "engine_loop: started")
	for {
		select {
		case <-ctx.Done():
			l.logger.InfoContext(ctx, "engine_loop: stopping", slog.Int("pending_timers", l.Pending()))
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Do runs fn on the loop and waits for it to finish. It must not be called
// from inside the loop. A caller that gives up before fn starts gets ctx.Err()
// and fn never runs; once fn has started Do waits for it, so a nil error is
// returned exactly when fn ran.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	select {
	case <-l.stopped:
		return domain.ErrEngineStopped
	default:
	}

	var state atomic.Int32 // doQueued, doRunning or doAbandoned
	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		if ctx.Err() != nil || !state.CompareAndSwap(doQueued, doRunning) {
			return
		}
		fn()
	}

	select {
	case l.tasks <- wrapped:
	case <-l.stopped:
		return domain.ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	// abandon claims the queued closure so it becomes a no-op. It fails when
	// fn has already started, in which case the outcome must be awaited.
	abandon := func() bool {
		return state.CompareAndSwap(doQueued, doAbandoned)
	}

	select {
	case <-done:
	case <-l.stopped:
		if abandon() {
			return domain.ErrEngineStopped
		}
		<-done
	case <-ctx.Done():
		if abandon() {
			return ctx.Err()
		}
		<-done
	}
	if state.Load() != doRunning {
		// The loop saw the cancelled context first.
		return ctx.Err()
	}
	return nil
}

const (
	doQueued int32 = iota
	doRunning
	doAbandoned
)

// Post queues fn without waiting. It reports false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.stopped:
		return false
	}
}

// After arms a timer that re-enters the loop to run fn. Cancel is honoured up
// to the moment fn starts.
func (l *Loop) After(d time.Duration, fn func()) Task {
	t := &timerTask{loop: l}

	l.mu.Lock()
	l.pending[t] = struct{}{}
	l.mu.Unlock()

	t.mu.Lock()
	t.timer = time.AfterFunc(d, func() {
		if t.isCancelled() {
			return
		}
		l.Post(func() {
			if !t.markFired() {
				return
			}
			fn()
		})
	})
	t.mu.Unlock()
	return t
}

// Pending returns the number of armed timers.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

func (l *Loop) forget(t *timerTask) {
	l.mu.Lock()
	delete(l.pending, t)
	l.mu.Unlock()
}

func (l *Loop) shutdown() {
	l.stop.Do(func() {
		close(l.stopped)

		l.mu.Lock()
		armed := make([]*timerTask, 0, len(l.pending))
		for t := range l.pending {
			armed = append(armed, t)
		}
		l.mu.Unlock()

		for _, t := range armed {
			t.Cancel()
		}
	})
}

// timerTask is the Task returned by Loop.After.
type timerTask struct {
	loop  *Loop
	mu    sync.Mutex
	timer *time.Timer
	done  bool // fired or cancelled
}

func (t *timerTask) Cancel() bool {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return false
	}
	t.done = true
	if t.timer != nil {
		t.timer.Stop()
	}
	t.mu.Unlock()

	t.loop.forget(t)
	return true
}

func (t *timerTask) isCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// markFired flips the task to done and reports whether it was still live.
func (t *timerTask) markFired() bool {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return false
	}
	t.done = true
	t.mu.Unlock()

	t.loop.forget(t)
	return true
}
