package client

import (
	"sync"

	"github.com/yuzu-sync/yuzu/jsonvalue"
	"github.com/yuzu-sync/yuzu/wire"
)

// localState is the client's local mirror of the server's tree (spec
// §4.4's patch applier). A single mutex guards it, matching the
// event-loop-cooperative model spec §5 asks for: every apply happens
// on the connection's single receive goroutine.
type localState struct {
	mu   sync.Mutex
	root jsonvalue.Value
}

func newLocalState() *localState {
	return &localState{root: jsonvalue.Object(nil)}
}

// replace atomically swaps in an entirely new tree, for a complete
// message (spec §4.4: "the entire state is replaced atomically").
func (l *localState) replace(v jsonvalue.Value) {
	l.mu.Lock()
	l.root = v
	l.mu.Unlock()
}

// apply walks to path[:len-1] and assigns path[len-1] = value, or
// replaces the whole tree for the empty path (spec §4.4).
func (l *localState) apply(p wire.Patch) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	newRoot, err := jsonvalue.Set(l.root, p.Path, p.Value)
	if err != nil {
		return err
	}
	l.root = newRoot
	return nil
}

func (l *localState) get(path jsonvalue.Path) (jsonvalue.Value, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return jsonvalue.Get(l.root, path)
}
