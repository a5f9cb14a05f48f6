// Package wire defines the four message shapes exchanged between a
// Yuzu server and its clients (spec §6), and the Transport interface
// external callers implement to supply their own bidirectional,
// string-framed channel in place of the built-in WebSocket transport
// (spec §4.6).
//
// Messages are modeled the way the teacher's server/common/types.go
// models its own wire structs: a Type discriminator field plus one
// struct per message, detected by decoding Type first and then the
// full struct.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/yuzu-sync/yuzu/jsonvalue"
)

// Type is the "type" discriminator of a message; TypeComplete is shared
// by the complete request and the complete reply.
type Type string

const (
	TypeComplete   Type = "complete"
	TypePatch      Type = "patch"
	TypePatchBatch Type = "patch-batch"
)

// Envelope is decoded first to discover Type before unmarshaling the
// full message, mirroring common.MsgType in the teacher.
type Envelope struct {
	Type Type `json:"type"`
}

// CompleteRequest is sent client -> server (spec §6).
type CompleteRequest struct {
	Type Type `json:"type"`
}

func NewCompleteRequest() CompleteRequest {
	return CompleteRequest{Type: TypeComplete}
}

// CompleteReply is sent server -> client, targeted at the requester
// only, carrying the full state as of service time (spec §4.5).
type CompleteReply struct {
	Type  Type            `json:"type"`
	State jsonvalue.Value `json:"state"`
}

func NewCompleteReply(state jsonvalue.Value) CompleteReply {
	return CompleteReply{Type: TypeComplete, State: state}
}

// Patch is one incremental change (spec §3).
type Patch struct {
	Path  jsonvalue.Path  `json:"path"`
	Value jsonvalue.Value `json:"value"`
}

// PatchMessage is sent server -> client, broadcast (spec §6).
type PatchMessage struct {
	Type  Type  `json:"type"`
	Patch Patch `json:"patch"`
}

func NewPatchMessage(p Patch) PatchMessage {
	return PatchMessage{Type: TypePatch, Patch: p}
}

// PatchBatchMessage is sent server -> client, broadcast, and must be
// applied atomically from the client's perspective (spec §6).
type PatchBatchMessage struct {
	Type    Type    `json:"type"`
	Patches []Patch `json:"patches"`
}

func NewPatchBatchMessage(patches []Patch) PatchBatchMessage {
	out := make([]Patch, len(patches))
	copy(out, patches)
	return PatchBatchMessage{Type: TypePatchBatch, Patches: out}
}

// Decode inspects buf's "type" field and returns one of CompleteRequest,
// CompleteReply, PatchMessage, or PatchBatchMessage. Per spec §6,
// "Unknown message types MUST be ignored without error" — Decode
// reports that case as ErrUnknownType rather than a hard failure, so
// callers can choose to log-and-skip.
func Decode(buf []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(buf, &env); err != nil {
		return nil, fmt.Errorf("wire: malformed message: %w", err)
	}
	switch env.Type {
	case TypeComplete:
		// Ambiguous between request (no state field) and reply. Decode
		// favors the reply shape when a "state" key is present.
		var probe struct {
			State *json.RawMessage `json:"state"`
		}
		_ = json.Unmarshal(buf, &probe)
		if probe.State != nil {
			var reply CompleteReply
			if err := json.Unmarshal(buf, &reply); err != nil {
				return nil, fmt.Errorf("wire: malformed complete reply: %w", err)
			}
			return reply, nil
		}
		var req CompleteRequest
		if err := json.Unmarshal(buf, &req); err != nil {
			return nil, fmt.Errorf("wire: malformed complete request: %w", err)
		}
		return req, nil
	case TypePatch:
		var msg PatchMessage
		if err := json.Unmarshal(buf, &msg); err != nil {
			return nil, fmt.Errorf("wire: malformed patch: %w", err)
		}
		return msg, nil
	case TypePatchBatch:
		var msg PatchBatchMessage
		if err := json.Unmarshal(buf, &msg); err != nil {
			return nil, fmt.Errorf("wire: malformed patch batch: %w", err)
		}
		return msg, nil
	default:
		return nil, ErrUnknownType
	}
}

// ErrUnknownType is returned by Decode for any message whose "type"
// field isn't one of the known message types.
var ErrUnknownType = fmt.Errorf("wire: unknown message type")

// Marshal is a thin wrapper so callers don't need to import
// encoding/json directly for the common case of sending one of the
// typed messages above.
func Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}
