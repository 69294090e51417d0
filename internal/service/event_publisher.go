package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

const flushTimeout = 5 * time.Second

// EventNotifier announces engine events on chat channels.
type EventNotifier interface {
	NotifyEvent(ctx context.Context, evt domain.Event) error
}

// EventPublisher receives engine events on a buffered channel and fans them
// out to the bus, the audit log, the history store, the persisted balance and
// the notifier. Every port is optional. Emit never blocks the engine: when the
// buffer is full the event is dropped and counted.
type EventPublisher struct {
	events   chan domain.Event
	bus      domain.SignalBus
	audit    domain.AuditStore
	history  domain.HistoryStore
	state    domain.StateStore
	notifier EventNotifier
	logger   *slog.Logger
	dropped  atomic.Int64
}

// NewEventPublisher creates an EventPublisher. Nil ports are skipped.
func NewEventPublisher(
	bus domain.SignalBus,
	audit domain.AuditStore,
	history domain.HistoryStore,
	state domain.StateStore,
	notifier EventNotifier,
	buffer int,
	logger *slog.Logger,
) *EventPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &EventPublisher{
		events:   make(chan domain.Event, buffer),
		bus:      bus,
		audit:    audit,
		history:  history,
		state:    state,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "event_publisher")),
	}
}

var _ domain.EventSink = (*EventPublisher)(nil)

// Emit queues an event without blocking.
func (p *EventPublisher) Emit(evt domain.Event) {
	select {
	case p.events <- evt:
	default:
		n := p.dropped.Add(1)
		p.logger.Warn("event_publisher: buffer full, event dropped",
			slog.String("event", string(evt.Type)),
			slog.Int64("dropped_total", n),
		)
	}
}

// Dropped returns the number of events lost to a full buffer.
func (p *EventPublisher) Dropped() int64 { return p.dropped.Load() }

// Run drains the buffer until ctx is cancelled, then flushes what is left.
func (p *EventPublisher) Run(ctx context.Context) error {
	p.logger.InfoContext(ctx, "event_publisher: started", slog.Int("buffer", cap(p.events)))
	for {
		select {
		case <-ctx.Done():
			p.flush(context.WithoutCancel(ctx))
			return ctx.Err()
		case evt := <-p.events:
			p.Handle(ctx, evt)
		}
	}
}

func (p *EventPublisher) flush(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	flushed := 0
	for {
		select {
		case evt := <-p.events:
			p.Handle(ctx, evt)
			flushed++
		default:
			if flushed > 0 {
				p.logger.InfoContext(ctx, "event_publisher: flushed", slog.Int("events", flushed))
			}
			return
		}
	}
}

// Handle delivers one event to every configured port. Failures are logged
// and never stop the remaining deliveries.
func (p *EventPublisher) Handle(ctx context.Context, evt domain.Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		p.warn(ctx, "marshal event failed", evt, err)
		return
	}

	if p.bus != nil {
		if err := p.bus.Publish(ctx, domain.ChannelEngine, payload); err != nil {
			p.warn(ctx, "publish event failed", evt, err)
		}
		if err := p.bus.StreamAppend(ctx, domain.StreamEngine, payload); err != nil {
			p.warn(ctx, "stream append failed", evt, err)
		}
	}

	if p.audit != nil {
		if err := p.audit.Log(ctx, string(evt.Type), auditDetail(evt)); err != nil {
			p.warn(ctx, "audit log failed", evt, err)
		}
	}

	if p.history != nil {
		switch {
		case evt.Prediction != nil:
			if err := p.history.UpsertPrediction(ctx, *evt.Prediction); err != nil {
				p.warn(ctx, "history upsert failed", evt, err)
			}
		case evt.Submission != nil:
			if err := p.history.UpsertSubmission(ctx, *evt.Submission); err != nil {
				p.warn(ctx, "history upsert failed", evt, err)
			}
		}
	}

	if p.state != nil && evt.Ledger != nil {
		if err := p.state.Set(ctx, domain.StateBalance, strconv.Itoa(evt.Ledger.Balance)); err != nil {
			p.warn(ctx, "persist balance failed", evt, err)
		}
	}

	if p.notifier != nil {
		if err := p.notifier.NotifyEvent(ctx, evt); err != nil {
			p.warn(ctx, "notify failed", evt, err)
		}
	}

	p.logger.DebugContext(ctx, "event_publisher: event delivered",
		slog.String("event_id", evt.ID),
		slog.String("event", string(evt.Type)),
	)
}

// auditDetail flattens evt into the audit row's detail column: the event id
// and time plus whichever payload the event carries.
func auditDetail(evt domain.Event) map[string]any {
	detail := map[string]any{
		"id": evt.ID,
		"at": evt.At,
	}
	switch {
	case evt.Ledger != nil:
		detail["ledger"] = *evt.Ledger
	case evt.Trend != nil:
		detail["trend"] = *evt.Trend
	case evt.Prediction != nil:
		detail["prediction"] = *evt.Prediction
	case evt.Submission != nil:
		detail["submission"] = *evt.Submission
	}
	return detail
}

func (p *EventPublisher) warn(ctx context.Context, msg string, evt domain.Event, err error) {
	p.logger.WarnContext(ctx, "event_publisher: "+msg,
		slog.String("event_id", evt.ID),
		slog.String("event", string(evt.Type)),
		slog.String("error", err.Error()),
	)
}
