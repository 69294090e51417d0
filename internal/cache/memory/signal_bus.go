// Package memory provides an in-process SignalBus for runs without Redis.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

const (
	defaultStreamMaxLen = 10000
	subscriberBuffer    = 128
)

// SignalBus implements domain.SignalBus inside one process. Publish drops
// messages for subscribers whose buffer is full. Streams keep the newest
// maxLen entries with ids of the form "<seq>-0".
type SignalBus struct {
	mu      sync.Mutex
	subs    map[string]map[chan []byte]struct{}
	streams map[string][]domain.StreamMessage
	seq     uint64
	maxLen  int
}

// NewSignalBus creates a SignalBus. maxLen <= 0 uses the default cap.
func NewSignalBus(maxLen int) *SignalBus {
	if maxLen <= 0 {
		maxLen = defaultStreamMaxLen
	}
	return &SignalBus{
		subs:    make(map[string]map[chan []byte]struct{}),
		streams: make(map[string][]domain.StreamMessage),
		maxLen:  maxLen,
	}
}

var _ domain.SignalBus = (*SignalBus)(nil)

// Publish delivers payload to every current subscriber of channel.
func (b *SignalBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[channel] {
		select {
		case ch <- append([]byte(nil), payload...):
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of payloads published to channel until ctx is
// cancelled.
func (b *SignalBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte, subscriberBuffer)

	b.mu.Lock()
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[chan []byte]struct{})
	}
	b.subs[channel][ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs[channel], ch)
		close(ch)
		b.mu.Unlock()
	}()
	return ch, nil
}

// StreamAppend adds payload to stream, evicting the oldest entries past
// maxLen.
func (b *SignalBus) StreamAppend(_ context.Context, stream string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	entries := append(b.streams[stream], domain.StreamMessage{
		ID:      strconv.FormatUint(b.seq, 10) + "-0",
		Payload: append([]byte(nil), payload...),
	})
	if over := len(entries) - b.maxLen; over > 0 {
		entries = append(entries[:0:0], entries[over:]...)
	}
	b.streams[stream] = entries
	return nil
}

// StreamRead returns up to count entries with ids after lastID.
func (b *SignalBus) StreamRead(_ context.Context, stream string, lastID string, count int) ([]domain.StreamMessage, error) {
	after, err := parseSeq(lastID)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.StreamMessage
	for _, m := range b.streams[stream] {
		if count > 0 && len(out) == count {
			break
		}
		seq, _ := parseSeq(m.ID)
		if seq > after {
			out = append(out, m)
		}
	}
	return out, nil
}

func parseSeq(id string) (uint64, error) {
	if id == "" || id == "$" {
		return 0, nil
	}
	head, _, _ := strings.Cut(id, "-")
	n, err := strconv.ParseUint(head, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("memory: invalid stream id %q: %w", id, err)
	}
	return n, nil
}
