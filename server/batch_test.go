package server

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzu-sync/yuzu/jsonvalue"
	"github.com/yuzu-sync/yuzu/wire"
)

func TestBatcherZeroDelaySendsSynchronously(t *testing.T) {
	var sent []wire.Patch
	b := newBatcher(0, func(p wire.Patch) { sent = append(sent, p) }, func([]wire.Patch) {
		t.Fatal("sendBatch should not be called with delay 0")
	})

	p := wire.Patch{Path: jsonvalue.PathOf("a"), Value: jsonvalue.Number(1)}
	b.Add(p)
	require.Len(t, sent, 1)
	assert.Equal(t, p, sent[0])
}

func TestBatcherCoalescesWithinWindow(t *testing.T) {
	var mu sync.Mutex
	var batches [][]wire.Patch
	done := make(chan struct{})

	b := newBatcher(20*time.Millisecond, func(wire.Patch) {
		t.Fatal("sendPatch should not be called with delay > 0")
	}, func(ps []wire.Patch) {
		mu.Lock()
		batches = append(batches, ps)
		mu.Unlock()
		close(done)
	})

	b.Add(wire.Patch{Path: jsonvalue.PathOf("a"), Value: jsonvalue.Number(1)})
	b.Add(wire.Patch{Path: jsonvalue.PathOf("b"), Value: jsonvalue.Number(2)})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("batch never flushed")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 2)
	assert.Equal(t, jsonvalue.PathOf("a"), batches[0][0].Path)
	assert.Equal(t, jsonvalue.PathOf("b"), batches[0][1].Path)
}

func TestBatcherCloseDropsBufferedPatches(t *testing.T) {
	b := newBatcher(time.Hour, func(wire.Patch) {}, func([]wire.Patch) {
		t.Fatal("sendBatch must not fire after Close")
	})

	b.Add(wire.Patch{Path: jsonvalue.PathOf("a"), Value: jsonvalue.Number(1)})
	b.Close()

	// Closed: further Add calls are silently dropped too.
	b.Add(wire.Patch{Path: jsonvalue.PathOf("b"), Value: jsonvalue.Number(2)})
}
