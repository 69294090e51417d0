package redis

import (
	"crypto/tls"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientKey(t *testing.T) {
	assert.Equal(t, "ch:engine", (&Client{}).Key("ch:engine"))
	assert.Equal(t, "trendsonar:ch:engine", (&Client{prefix: "trendsonar"}).Key("ch:engine"))
}

func TestClientConfigOptions(t *testing.T) {
	opts := ClientConfig{Addr: "cache:6379", DB: 2, PoolSize: 4}.options()
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Nil(t, opts.TLSConfig)

	opts = ClientConfig{Addr: "cache:6380", TLSEnabled: true}.options()
	require.NotNil(t, opts.TLSConfig)
	assert.Equal(t, uint16(tls.VersionTLS12), opts.TLSConfig.MinVersion)
}

func TestStateStoreKey(t *testing.T) {
	c := &Client{prefix: "trendsonar"}
	assert.Equal(t, "trendsonar:state:default", NewStateStore(c, "").key)
	assert.Equal(t, "trendsonar:state:alice", NewStateStore(c, "alice").key)
}

func TestHasPattern(t *testing.T) {
	assert.False(t, hasPattern("ch:engine"))
	assert.True(t, hasPattern("ch:*"))
	assert.True(t, hasPattern("ch:[ab]"))
}

func TestDecodeMessages(t *testing.T) {
	msgs := decodeMessages([]redis.XMessage{
		{ID: "1-0", Values: map[string]any{"payload": `{"type":"ledger.credit"}`}},
		{ID: "2-0", Values: map[string]any{"payload": []byte(`{}`)}},
		{ID: "3-0", Values: map[string]any{"other": "x"}},
		{ID: "4-0", Values: map[string]any{"payload": 7}},
	})

	require.Len(t, msgs, 2)
	assert.Equal(t, "1-0", msgs[0].ID)
	assert.JSONEq(t, `{"type":"ledger.credit"}`, string(msgs[0].Payload))
	assert.Equal(t, "2-0", msgs[1].ID)
}

func TestSignalBusDefaultMaxLen(t *testing.T) {
	assert.Equal(t, defaultStreamMaxLen, NewSignalBus(&Client{}, 0).maxLen)
	assert.Equal(t, int64(500), NewSignalBus(&Client{}, 500).maxLen)
}
