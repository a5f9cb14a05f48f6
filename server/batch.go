package server

import (
	"sync"
	"time"

	"github.com/yuzu-sync/yuzu/wire"
)

// batcher coalesces patches within a time window into a single
// patch-batch message (spec §4.2). Its buffer-until-timer-or-flush
// shape is the same one other_examples/hazyhaar-chrc__debounce.go uses
// for DOM mutation records, generalized here to Yuzu's two-mode
// contract: delay 0 sends every patch synchronously and immediately;
// delay > 0 buffers until a single one-shot timer fires.
type batcher struct {
	delay time.Duration

	mu    sync.Mutex
	buf   []wire.Patch
	timer *time.Timer
	closed bool

	sendPatch func(wire.Patch)
	sendBatch func([]wire.Patch)
}

func newBatcher(delay time.Duration, sendPatch func(wire.Patch), sendBatch func([]wire.Patch)) *batcher {
	return &batcher{delay: delay, sendPatch: sendPatch, sendBatch: sendBatch}
}

// Add accepts one observed patch. With delay 0 it is forwarded
// synchronously as a "patch" message. With delay > 0, the first patch
// to arrive while the buffer is empty starts a single timer; later
// patches append to the same buffer without resetting it (spec §4.2).
func (b *batcher) Add(p wire.Patch) {
	if b.delay <= 0 {
		b.sendPatch(p)
		return
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.buf = append(b.buf, p)
	startTimer := b.timer == nil
	if startTimer {
		b.timer = time.AfterFunc(b.delay, b.flush)
	}
	b.mu.Unlock()
}

// flush drains the buffer into one patch-batch message, preserving
// insertion order, and clears the timer so the next patch starts a
// fresh cycle (spec §4.2).
func (b *batcher) flush() {
	b.mu.Lock()
	if len(b.buf) == 0 {
		b.timer = nil
		b.mu.Unlock()
		return
	}
	patches := b.buf
	b.buf = nil
	b.timer = nil
	b.mu.Unlock()

	b.sendBatch(patches)
}

// Close stops any pending timer and drops buffered patches: per spec
// §4.2, "if the server closes with patches still buffered, they are
// dropped — clients will acquire the missing deltas via the next
// complete handshake."
func (b *batcher) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.buf = nil
}
