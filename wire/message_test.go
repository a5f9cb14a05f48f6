package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzu-sync/yuzu/jsonvalue"
)

func TestDecodeCompleteRequest(t *testing.T) {
	buf, err := Marshal(NewCompleteRequest())
	require.NoError(t, err)

	msg, err := Decode(buf)
	require.NoError(t, err)
	_, ok := msg.(CompleteRequest)
	assert.True(t, ok)
}

func TestDecodeCompleteReplyDisambiguatedByStateField(t *testing.T) {
	state, err := jsonvalue.From(map[string]any{"k": 1})
	require.NoError(t, err)
	buf, err := Marshal(NewCompleteReply(state))
	require.NoError(t, err)

	msg, err := Decode(buf)
	require.NoError(t, err)
	reply, ok := msg.(CompleteReply)
	require.True(t, ok)
	assert.Equal(t, float64(1), reply.State.ObjectFields()["k"].Number())
}

func TestDecodePatchMessage(t *testing.T) {
	buf, err := Marshal(NewPatchMessage(Patch{Path: jsonvalue.PathOf("a"), Value: jsonvalue.Number(1)}))
	require.NoError(t, err)

	msg, err := Decode(buf)
	require.NoError(t, err)
	patchMsg, ok := msg.(PatchMessage)
	require.True(t, ok)
	assert.Equal(t, jsonvalue.PathOf("a"), patchMsg.Patch.Path)
}

func TestDecodePatchBatchPreservesOrder(t *testing.T) {
	patches := []Patch{
		{Path: jsonvalue.PathOf("a"), Value: jsonvalue.Number(1)},
		{Path: jsonvalue.PathOf("b"), Value: jsonvalue.Number(2)},
	}
	buf, err := Marshal(NewPatchBatchMessage(patches))
	require.NoError(t, err)

	msg, err := Decode(buf)
	require.NoError(t, err)
	batch, ok := msg.(PatchBatchMessage)
	require.True(t, ok)
	require.Len(t, batch.Patches, 2)
	assert.Equal(t, jsonvalue.PathOf("a"), batch.Patches[0].Path)
	assert.Equal(t, jsonvalue.PathOf("b"), batch.Patches[1].Path)
}

func TestDecodeUnknownTypeReturnsSentinelError(t *testing.T) {
	_, err := Decode([]byte(`{"type":"mystery"}`))
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestDecodeMalformedJSONErrors(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownType)
}
