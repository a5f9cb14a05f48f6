package client

import (
	"sync"

	"github.com/yuzu-sync/yuzu/jsonvalue"
)

// ListenerFunc receives the current value at its listener's path, plus
// a triggering path: the patch's path for a single patch, the
// listener's own path for a patch batch, and the empty path for a
// complete reload (spec §3, §4.3).
type ListenerFunc func(value jsonvalue.Value, triggeringPath jsonvalue.Path)

type listenerRecord struct {
	path jsonvalue.Path
	fn   ListenerFunc
}

// registry is the client-side subscription registry (spec §4.3): an
// insertion-ordered collection of (path, listener) pairs, matched by
// path-prefix.
type registry struct {
	mu    sync.Mutex
	read  func(jsonvalue.Path) (jsonvalue.Value, error)
	items []*listenerRecord
}

func newRegistry(read func(jsonvalue.Path) (jsonvalue.Value, error)) *registry {
	return &registry{read: read}
}

// add appends a record and returns a Subscription whose teardown
// removes this exact record (spec §4.3: "add(path, fn) → handle").
func (r *registry) add(path jsonvalue.Path, fn ListenerFunc) *Subscription {
	rec := &listenerRecord{path: path.Clone(), fn: fn}
	r.mu.Lock()
	r.items = append(r.items, rec)
	r.mu.Unlock()

	return newSubscription(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, v := range r.items {
			if v == rec {
				r.items = append(r.items[:i], r.items[i+1:]...)
				return
			}
		}
	})
}

// notifySingle fires every listener whose path is a prefix of p, in
// insertion order (spec §4.3: notifySingle).
func (r *registry) notifySingle(p jsonvalue.Path) {
	for _, rec := range r.snapshot() {
		if rec.path.HasPrefix(p) {
			r.invoke(rec, p)
		}
	}
}

// notifyBatch fires each matched listener at most once, reporting the
// listener's own path as the trigger — not one of the batch's actual
// triggers, since a single invocation can't faithfully attribute one
// of several (spec §4.3, documented quirk carried over from the
// source).
func (r *registry) notifyBatch(paths []jsonvalue.Path) {
	records := r.snapshot()
	fired := make(map[*listenerRecord]bool, len(records))
	for _, rec := range records {
		if fired[rec] {
			continue
		}
		for _, p := range paths {
			if rec.path.HasPrefix(p) {
				fired[rec] = true
				r.invoke(rec, rec.path)
				break
			}
		}
	}
}

// notifyAll fires every listener with triggering path [] (spec §4.3,
// used on complete reload).
func (r *registry) notifyAll() {
	for _, rec := range r.snapshot() {
		r.invoke(rec, jsonvalue.Path{})
	}
}

// snapshot copies the listener list so Fire-time mutation (a listener
// unsubscribing itself or another) doesn't race the iteration, the
// same defensive copy other_examples/withgalaxy-galaxy__mapstore.go
// takes before invoking its own subscriber list.
func (r *registry) snapshot() []*listenerRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*listenerRecord, len(r.items))
	copy(out, r.items)
	return out
}

// invoke reads the listener's own path with readPathExisting semantics
// (spec §4.3): a path that no longer exists is silently skipped, and a
// panicking listener is swallowed without being logged, so one bad
// subscriber never breaks a broadcast (spec §4.3, §7).
func (r *registry) invoke(rec *listenerRecord, triggeringPath jsonvalue.Path) {
	defer func() { _ = recover() }()

	value, err := r.read(rec.path)
	if err != nil {
		return
	}
	rec.fn(value, triggeringPath)
}
