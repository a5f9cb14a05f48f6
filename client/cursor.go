package client

import "github.com/yuzu-sync/yuzu/jsonvalue"

// Cursor is the client's subscribable projection (spec §4.4): a
// read-only, path-bound view where every readable container also
// carries a Subscribe operation. As on the server, this is the
// explicit structurally-typed wrapper design note §9 prescribes in
// place of a transparent proxy — Child descends, Value reads, and
// Subscribe registers a listener at exactly the path this cursor was
// reached by.
type Cursor struct {
	client *Client
	path   jsonvalue.Path
}

// Child returns a cursor one level deeper. Reading the same path twice
// yields two Cursors that behave identically but need not share
// identity (spec §4.4).
func (c *Cursor) Child(key string) *Cursor {
	return &Cursor{client: c.client, path: c.path.Child(key)}
}

// Path returns the path this cursor is bound to.
func (c *Cursor) Path() jsonvalue.Path { return c.path }

// Value reads the current value at this cursor's path (readPathExisting).
func (c *Cursor) Value() (jsonvalue.Value, error) {
	return c.client.state.get(c.path)
}

// Subscribe registers fn at this cursor's path and returns a handle to
// unregister it (spec §4.4/§4.3). Subscribing at the root path (an
// empty-path Cursor, i.e. Client.Root()) fires for every patch and on
// every complete ("onAny", spec §8).
func (c *Cursor) Subscribe(fn ListenerFunc) *Subscription {
	return c.client.registry.add(c.path, fn)
}
