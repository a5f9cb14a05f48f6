package client

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzu-sync/yuzu/jsonvalue"
	"github.com/yuzu-sync/yuzu/wire"
)

// newExternalClient wires a Client in external mode and returns a
// handle to every message it would have sent, so a test can drive the
// "server" side by hand without a real transport.
func newExternalClient(t *testing.T) (*Client, *[]wire.CompleteRequest) {
	t.Helper()
	var mu sync.Mutex
	var requests []wire.CompleteRequest

	c, err := New(Options{
		ExternalTransport: true,
		OnMessage: func(buf []byte) error {
			msg, err := wire.Decode(buf)
			require.NoError(t, err)
			if req, ok := msg.(wire.CompleteRequest); ok {
				mu.Lock()
				requests = append(requests, req)
				mu.Unlock()
			}
			return nil
		},
	})
	require.NoError(t, err)
	return c, &requests
}

func TestConstructionRequiresAddressOrExternal(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestExternalTransportRequiresOnMessage(t *testing.T) {
	_, err := New(Options{ExternalTransport: true})
	require.Error(t, err)
}

func TestConnectSendsCompleteRequest(t *testing.T) {
	c, requests := newExternalClient(t)
	require.NoError(t, c.Connect(context.Background()))
	assert.Len(t, *requests, 1)
}

func TestHandleServerMessageCompleteReplaceAndNotifiesAll(t *testing.T) {
	c, _ := newExternalClient(t)

	var notified int
	c.Root().Subscribe(func(jsonvalue.Value, jsonvalue.Path) { notified++ })

	state, err := jsonvalue.From(map[string]any{"count": 3})
	require.NoError(t, err)
	buf, err := wire.Marshal(wire.NewCompleteReply(state))
	require.NoError(t, err)

	c.HandleServerMessage(buf)

	v, err := c.At("count").Value()
	require.NoError(t, err)
	assert.Equal(t, float64(3), v.Number())
	assert.Equal(t, 1, notified)
}

func TestHandleServerMessagePatchNotifiesPrefixMatch(t *testing.T) {
	c, _ := newExternalClient(t)

	var fired int
	c.At("user").Subscribe(func(jsonvalue.Value, jsonvalue.Path) { fired++ })

	buf, err := wire.Marshal(wire.NewPatchMessage(wire.Patch{
		Path:  jsonvalue.PathOf("user", "name"),
		Value: jsonvalue.String("ash"),
	}))
	require.NoError(t, err)
	c.HandleServerMessage(buf)

	assert.Equal(t, 1, fired)
	v, err := c.At("user", "name").Value()
	require.NoError(t, err)
	assert.Equal(t, "ash", v.String())
}

func TestHandleServerMessagePatchBatchNotifiesEachListenerOnce(t *testing.T) {
	c, _ := newExternalClient(t)

	var fired int
	c.At("user").Subscribe(func(jsonvalue.Value, jsonvalue.Path) { fired++ })

	buf, err := wire.Marshal(wire.NewPatchBatchMessage([]wire.Patch{
		{Path: jsonvalue.PathOf("user", "name"), Value: jsonvalue.String("ash")},
		{Path: jsonvalue.PathOf("user", "age"), Value: jsonvalue.Number(4)},
	}))
	require.NoError(t, err)
	c.HandleServerMessage(buf)

	assert.Equal(t, 1, fired)
}

func TestExternalModeIsConnectedAlwaysFalse(t *testing.T) {
	c, _ := newExternalClient(t)
	require.NoError(t, c.Connect(context.Background()))
	assert.False(t, c.IsConnected())
}

func TestExternalModeDisconnectReconnectAreNoOps(t *testing.T) {
	c, _ := newExternalClient(t)
	c.Disconnect()
	assert.NoError(t, c.Reconnect())
	assert.False(t, c.IsConnected())
}

func TestUnknownMessageTypeIgnoredByClient(t *testing.T) {
	c, _ := newExternalClient(t)
	assert.NotPanics(t, func() {
		c.HandleServerMessage([]byte(`{"type":"mystery"}`))
	})
}

func TestMalformedMessageIgnoredByClient(t *testing.T) {
	c, _ := newExternalClient(t)
	assert.NotPanics(t, func() {
		c.HandleServerMessage([]byte(`not json`))
	})
}
