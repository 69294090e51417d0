package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

func TestSignalBus_PublishSubscribe(t *testing.T) {
	bus := NewSignalBus(0)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := bus.Subscribe(ctx, domain.ChannelEngine)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), domain.ChannelEngine, []byte(`{"type":"ledger.credit"}`)))
	require.NoError(t, bus.Publish(context.Background(), "ch:other", []byte(`ignored`)))

	select {
	case got := <-ch:
		assert.JSONEq(t, `{"type":"ledger.credit"}`, string(got))
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}

	cancel()
	require.Eventually(t, func() bool {
		_, open := <-ch
		return !open
	}, time.Second, 5*time.Millisecond)
}

func TestSignalBus_Stream(t *testing.T) {
	bus := NewSignalBus(3)
	ctx := context.Background()
	for _, p := range []string{"a", "b", "c", "d"} {
		require.NoError(t, bus.StreamAppend(ctx, domain.StreamEngine, []byte(p)))
	}

	all, err := bus.StreamRead(ctx, domain.StreamEngine, "0", 10)
	require.NoError(t, err)
	require.Len(t, all, 3, "oldest entry evicted")
	assert.Equal(t, "2-0", all[0].ID)
	assert.Equal(t, "b", string(all[0].Payload))

	after, err := bus.StreamRead(ctx, domain.StreamEngine, "3-0", 10)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "d", string(after[0].Payload))

	limited, err := bus.StreamRead(ctx, domain.StreamEngine, "", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	_, err = bus.StreamRead(ctx, domain.StreamEngine, "bogus", 1)
	require.Error(t, err)
}
