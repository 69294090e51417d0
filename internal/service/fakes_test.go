package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/alanyoungcy/trendsonar/internal/domain"
	"github.com/alanyoungcy/trendsonar/internal/engine"
)

var testEpoch = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedNow(t time.Time) func() time.Time { return func() time.Time { return t } }

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// fixedRand returns the same draw every time, capped to the requested range.
type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) IntN(n int) int   { return min(r.n, n-1) }

type fakeBus struct {
	mu         sync.Mutex
	published  map[string][][]byte
	streamed   map[string][][]byte
	publishErr error
}

func newFakeBus() *fakeBus {
	return &fakeBus{published: map[string][][]byte{}, streamed: map[string][][]byte{}}
}

func (b *fakeBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published[channel] = append(b.published[channel], payload)
	return nil
}

func (b *fakeBus) Subscribe(context.Context, string) (<-chan []byte, error) {
	return make(chan []byte), nil
}

func (b *fakeBus) StreamAppend(_ context.Context, stream string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.streamed[stream] = append(b.streamed[stream], payload)
	return nil
}

func (b *fakeBus) StreamRead(context.Context, string, string, int) ([]domain.StreamMessage, error) {
	return nil, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (n *fakeNotifier) NotifyEvent(_ context.Context, evt domain.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, evt)
	return n.err
}

type credit struct {
	amount int
	reason string
}

type fakeCrediter struct {
	balance int
	credits []credit
	err     error
}

func (c *fakeCrediter) Credit(_ context.Context, amount int, reason string) (int, error) {
	if c.err != nil {
		return c.balance, c.err
	}
	c.balance += amount
	c.credits = append(c.credits, credit{amount, reason})
	return c.balance, nil
}

type fakeSource struct {
	score engine.Score
	preds []domain.Prediction
	subs  []domain.Submission
	err   error
}

func (s *fakeSource) Score(context.Context) (engine.Score, error) { return s.score, s.err }

func (s *fakeSource) Predictions(context.Context) ([]domain.Prediction, error) {
	return s.preds, s.err
}

func (s *fakeSource) Submissions(_ context.Context, status domain.SubmissionStatus) ([]domain.Submission, error) {
	if status == "" {
		return s.subs, s.err
	}
	var out []domain.Submission
	for _, sub := range s.subs {
		if sub.Status == status {
			out = append(out, sub)
		}
	}
	return out, s.err
}

type fakeSnapshotter struct {
	snap engine.Snapshot
	err  error
}

func (s fakeSnapshotter) Snapshot(context.Context) (engine.Snapshot, error) { return s.snap, s.err }

type putCall struct {
	key         string
	body        []byte
	contentType string
}

type fakeBlob struct {
	puts []putCall
	err  error
}

func (b *fakeBlob) Put(_ context.Context, key string, data io.Reader, contentType string) error {
	if b.err != nil {
		return b.err
	}
	body, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	b.puts = append(b.puts, putCall{key, body, contentType})
	return nil
}

// failingState wraps a state store and fails every Set.
type failingState struct {
	domain.StateStore
	err error
}

func (s failingState) Set(context.Context, string, string) error { return s.err }
