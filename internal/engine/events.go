// Package engine implements the trend economy: the coin ledger, the trend
// catalog, prediction and submission lifecycles, scoring, and the simulation
// clock that drives them. All mutable state is owned by a single event loop.
package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// emitter stamps and forwards events to an optional sink.
type emitter struct {
	sink domain.EventSink
	now  func() time.Time
}

func newEmitter(sink domain.EventSink, now func() time.Time) emitter {
	if now == nil {
		now = time.Now
	}
	return emitter{sink: sink, now: now}
}

func (e emitter) clock() time.Time {
	if e.now == nil {
		return time.Now()
	}
	return e.now()
}

func (e emitter) emit(evt domain.Event) {
	if e.sink == nil {
		return
	}
	evt.ID = uuid.New().String()
	evt.At = e.clock()
	e.sink.Emit(evt)
}

func (e emitter) trend(typ domain.EventType, t domain.TrendItem) {
	e.emit(domain.Event{Type: typ, Trend: &t})
}

func (e emitter) prediction(typ domain.EventType, p domain.Prediction) {
	e.emit(domain.Event{Type: typ, Prediction: &p})
}

func (e emitter) submission(typ domain.EventType, s domain.Submission) {
	e.emit(domain.Event{Type: typ, Submission: &s})
}
