package server

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/yuzu-sync/yuzu/jsonvalue"
	"github.com/yuzu-sync/yuzu/wire"
)

// tracker wraps the authoritative state tree so every write is
// observable (spec §4.1). It is the server-side mutation tracker: a
// single mutex serializes all reads/writes, replacing the teacher's
// reflect-proxy-free environment's "transparent interposer" with the
// explicit wrapper design note §9 prescribes for languages without
// first-class proxies. Both State's explicit Set/Push/Delete methods
// and Cursor's path-bound sugar funnel through apply, so both emit the
// identical patch stream.
type tracker struct {
	mu      sync.Mutex
	root    jsonvalue.Value
	onPatch func(wire.Patch)
}

func newTracker(initial jsonvalue.Value, onPatch func(wire.Patch)) *tracker {
	return &tracker{root: initial, onPatch: onPatch}
}

// snapshot returns the current tree, used to service a complete
// request (spec §4.5: "reflects the state as of the moment the request
// was serviced").
func (t *tracker) snapshot() jsonvalue.Value {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root
}

// apply performs one observed write: new value V at path P, emitting
// exactly one patch {path: P, value: V} (spec §4.1). Root replacement
// (empty path) is supported the same way.
func (t *tracker) apply(path jsonvalue.Path, value jsonvalue.Value) error {
	t.mu.Lock()
	newRoot, err := jsonvalue.Set(t.root, path, value)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	t.root = newRoot
	t.mu.Unlock()

	if t.onPatch != nil {
		t.onPatch(wire.Patch{Path: path.Clone(), Value: value})
	}
	return nil
}

// read implements readPathExisting for server-side callers (e.g.
// Cursor.Value()); a missing segment is an error (spec §4.3).
func (t *tracker) read(path jsonvalue.Path) (jsonvalue.Value, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return jsonvalue.Get(t.root, path)
}

// State is the live, observable object producers mutate in place of a
// plain in-memory tree (spec §4.1). Every exported method is the
// "ordinary assignment" the spec describes.
type State struct {
	t *tracker
}

// Set assigns a single value at path, as if by ordinary property
// assignment. value is converted with jsonvalue.From, so plain Go
// values (structs, maps, slices, primitives) are accepted directly.
func (s *State) Set(path jsonvalue.Path, value any) error {
	v, err := jsonvalue.From(value)
	if err != nil {
		return fmt.Errorf("server: Set %s: %w", path, err)
	}
	return s.t.apply(path, v)
}

// Delete removes a keyed entry by assigning it Absent (spec §4.1's
// "removing a keyed entry is expressed by setting its value to
// absent"). There is no separate delete opcode on the wire.
func (s *State) Delete(path jsonvalue.Path) error {
	return s.t.apply(path, jsonvalue.Absent)
}

// Push appends values to the array at path, emitting one patch per
// appended element followed by one patch for the new length — the
// "chatty" sequence spec §4.1's edge cases document for push(10,11) on
// a 5-element array.
func (s *State) Push(path jsonvalue.Path, values ...any) error {
	arr, err := s.t.read(path)
	if err != nil {
		return err
	}
	if !arr.IsArray() {
		return fmt.Errorf("server: Push %s: not an array", path)
	}
	n := arr.Len()
	for i, val := range values {
		v, err := jsonvalue.From(val)
		if err != nil {
			return fmt.Errorf("server: Push %s: %w", path, err)
		}
		if err := s.t.apply(path.Child(strconv.Itoa(n+i)), v); err != nil {
			return err
		}
	}
	return s.t.apply(path.Child("length"), jsonvalue.Number(float64(n+len(values))))
}

// Pop removes the last element of the array at path, emitting a single
// patch at [...,"length"] with the shortened length (spec §4.1: array
// mutators go through the same write trap as any other assignment).
func (s *State) Pop(path jsonvalue.Path) error {
	arr, err := s.t.read(path)
	if err != nil {
		return err
	}
	if !arr.IsArray() || arr.Len() == 0 {
		return fmt.Errorf("server: Pop %s: empty or not an array", path)
	}
	return s.t.apply(path.Child("length"), jsonvalue.Number(float64(arr.Len()-1)))
}

// Splice replaces the whole array at path with a spliced copy: start
// elements skipped, deleteCount removed, then values inserted. This is
// a whole-subtree replacement, so it emits a single patch carrying the
// new array (spec §4.1: "writes that replace a whole sub-tree emit a
// single patch at the replaced path").
func (s *State) Splice(path jsonvalue.Path, start, deleteCount int, values ...any) error {
	arr, err := s.t.read(path)
	if err != nil {
		return err
	}
	if !arr.IsArray() {
		return fmt.Errorf("server: Splice %s: not an array", path)
	}
	items := arr.ArrayItems()
	if start < 0 || start > len(items) {
		return fmt.Errorf("server: Splice %s: start %d out of range", path, start)
	}
	end := start + deleteCount
	if end > len(items) {
		end = len(items)
	}
	inserted := make([]jsonvalue.Value, len(values))
	for i, val := range values {
		v, err := jsonvalue.From(val)
		if err != nil {
			return fmt.Errorf("server: Splice %s: %w", path, err)
		}
		inserted[i] = v
	}
	next := append([]jsonvalue.Value{}, items[:start]...)
	next = append(next, inserted...)
	next = append(next, items[end:]...)
	return s.t.apply(path, jsonvalue.Array(next...))
}

// Get implements readPathExisting for producers that want to read back
// the current value at a path.
func (s *State) Get(path jsonvalue.Path) (jsonvalue.Value, error) {
	return s.t.read(path)
}

// At returns a path-bound Cursor rooted at path, the explicit
// wrapper-builder sugar design note §9 calls for in place of a
// transparent proxy.
func (s *State) At(path ...string) *Cursor {
	return &Cursor{state: s, path: jsonvalue.PathOf(path...)}
}

