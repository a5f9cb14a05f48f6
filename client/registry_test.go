package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzu-sync/yuzu/jsonvalue"
)

func newTestRegistry(t *testing.T, initial any) *registry {
	t.Helper()
	v, err := jsonvalue.From(initial)
	require.NoError(t, err)
	state := newLocalState()
	state.replace(v)
	return newRegistry(state.get)
}

func TestNotifySingleFiresOnlyPrefixMatches(t *testing.T) {
	r := newTestRegistry(t, map[string]any{"a": map[string]any{"b": 1}, "c": 2})

	var firedA, firedC int
	r.add(jsonvalue.PathOf("a"), func(jsonvalue.Value, jsonvalue.Path) { firedA++ })
	r.add(jsonvalue.PathOf("c"), func(jsonvalue.Value, jsonvalue.Path) { firedC++ })

	r.notifySingle(jsonvalue.PathOf("a", "b"))
	assert.Equal(t, 1, firedA)
	assert.Equal(t, 0, firedC)
}

func TestNotifyBatchFiresEachListenerAtMostOnce(t *testing.T) {
	r := newTestRegistry(t, map[string]any{"a": map[string]any{"b": 1, "c": 2}})

	var fired int
	r.add(jsonvalue.PathOf("a"), func(jsonvalue.Value, jsonvalue.Path) { fired++ })

	r.notifyBatch([]jsonvalue.Path{jsonvalue.PathOf("a", "b"), jsonvalue.PathOf("a", "c")})
	assert.Equal(t, 1, fired)
}

func TestNotifyBatchSkipsListenerWithNoMatch(t *testing.T) {
	r := newTestRegistry(t, map[string]any{"a": 1, "z": 2})

	var fired int
	r.add(jsonvalue.PathOf("z"), func(jsonvalue.Value, jsonvalue.Path) { fired++ })

	r.notifyBatch([]jsonvalue.Path{jsonvalue.PathOf("a")})
	assert.Equal(t, 0, fired)
}

func TestNotifyAllFiresEveryListenerWithEmptyTriggerPath(t *testing.T) {
	r := newTestRegistry(t, map[string]any{"a": 1})

	var fired int
	var trigger jsonvalue.Path
	r.add(jsonvalue.PathOf("a"), func(_ jsonvalue.Value, p jsonvalue.Path) { fired++; trigger = p })

	r.notifyAll()
	assert.Equal(t, 1, fired)
	assert.True(t, trigger.Equal(jsonvalue.Path{}))
}

func TestUnsubscribeStopsFurtherNotifications(t *testing.T) {
	r := newTestRegistry(t, map[string]any{"a": 1})

	var fired int
	sub := r.add(jsonvalue.PathOf("a"), func(jsonvalue.Value, jsonvalue.Path) { fired++ })
	r.notifySingle(jsonvalue.PathOf("a"))
	sub.Unsubscribe()
	r.notifySingle(jsonvalue.PathOf("a"))

	assert.Equal(t, 1, fired)

	// Idempotent: a second Unsubscribe never panics or double-fires teardown.
	sub.Unsubscribe()
	assert.True(t, sub.Closed())
}

func TestInvokeSwallowsListenerPanic(t *testing.T) {
	r := newTestRegistry(t, map[string]any{"a": 1, "b": 2})

	var fired int
	r.add(jsonvalue.PathOf("a"), func(jsonvalue.Value, jsonvalue.Path) { panic("boom") })
	r.add(jsonvalue.PathOf("b"), func(jsonvalue.Value, jsonvalue.Path) { fired++ })

	assert.NotPanics(t, func() {
		r.notifySingle(jsonvalue.PathOf("a"))
		r.notifySingle(jsonvalue.PathOf("b"))
	})
	assert.Equal(t, 1, fired)
}

func TestInvokeSkipsListenerWhosePathNoLongerExists(t *testing.T) {
	r := newTestRegistry(t, map[string]any{"a": 1})

	var fired int
	r.add(jsonvalue.PathOf("missing"), func(jsonvalue.Value, jsonvalue.Path) { fired++ })

	r.notifyAll()
	assert.Equal(t, 0, fired)
}
