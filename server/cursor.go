package server

import "github.com/yuzu-sync/yuzu/jsonvalue"

// Cursor is a path-bound view over a State, the explicit
// wrapper-builder design note §9 specifies for environments without
// first-class proxies: instead of a transparent interposer that
// intercepts arbitrary field access, a Cursor carries its path
// explicitly and descends via Child.
type Cursor struct {
	state *State
	path  jsonvalue.Path
}

// Child returns a cursor one level deeper, mirroring reading a nested
// container through the transparent interposer (spec §4.1: "reading a
// nested container recursively constructs another interposer with the
// extended path").
func (c *Cursor) Child(key string) *Cursor {
	return &Cursor{state: c.state, path: c.path.Child(key)}
}

// Path returns the path this cursor is bound to.
func (c *Cursor) Path() jsonvalue.Path { return c.path }

// Value reads the current value at this cursor's path.
func (c *Cursor) Value() (jsonvalue.Value, error) {
	return c.state.Get(c.path)
}

// Set assigns value at this cursor's path, same as State.Set(c.Path(), value).
func (c *Cursor) Set(value any) error {
	return c.state.Set(c.path, value)
}

// Delete removes the keyed entry this cursor points at.
func (c *Cursor) Delete() error {
	return c.state.Delete(c.path)
}
