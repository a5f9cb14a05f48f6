package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzu-sync/yuzu/client"
	"github.com/yuzu-sync/yuzu/jsonvalue"
	"github.com/yuzu-sync/yuzu/server"
)

// TestEndToEndHandshakeAndPatchBroadcast drives a real client over a
// real WebSocket against a real server, exercising the full wire
// protocol round trip (spec §8: "after processing any complete
// message, the client's state equals the server's state").
func TestEndToEndHandshakeAndPatchBroadcast(t *testing.T) {
	srv, err := server.New(server.Options{
		Initial:   map[string]any{"count": 0},
		ServerRef: &http.Server{},
	})
	require.NoError(t, err)
	defer srv.Close()

	httpSrv := httptest.NewServer(srv.Handler())
	defer httpSrv.Close()
	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + server.DefaultPath

	c, err := client.New(client.Options{Address: wsURL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	defer c.Disconnect()

	notified := make(chan struct{}, 8)
	c.Root().Subscribe(func(jsonvalue.Value, jsonvalue.Path) {
		select {
		case notified <- struct{}{}:
		default:
		}
	})

	require.Eventually(t, func() bool {
		v, err := c.At("count").Value()
		return err == nil && v.Number() == 0
	}, 2*time.Second, 10*time.Millisecond, "client should receive the initial complete snapshot")

	require.NoError(t, srv.State.Set(jsonvalue.PathOf("count"), 42))

	require.Eventually(t, func() bool {
		v, err := c.At("count").Value()
		return err == nil && v.Number() == 42
	}, 2*time.Second, 10*time.Millisecond, "client should apply the broadcast patch")

	select {
	case <-notified:
	case <-time.After(time.Second):
		t.Fatal("subscriber was never notified")
	}

	assert.True(t, c.IsConnected())
}
