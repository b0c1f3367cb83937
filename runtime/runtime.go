// Package runtime supplies a crdt.Replica with the two things spec.md §6
// says it must not own itself: a source of globally unique ids, and a way
// to get an encoded operation to every other replica. It is the transport
// layer split out of the teacher's single appserver, generalized into a
// small interface with two implementations: Local (in-process, for tests
// and the demo) and WebSocket (a client transport over a websocket).
package runtime

import "textweave/internal/id"

// Runtime is the collaborator crdt.Replica is built against (see
// crdt.Runtime, which this satisfies).
type Runtime interface {
	GetUID() id.ID
	SendPrimitive(data []byte)
}

// Receiver is implemented by whatever drives a Runtime's inbound side —
// in practice always a *crdt.Replica. Kept as a narrow interface here so
// this package doesn't import crdt.
type Receiver interface {
	ReceivePrimitive(data []byte, meta any) error
}

// Meta is the causal-delivery bookkeeping a Runtime attaches to every
// message it delivers to a Receiver: which replica sent it, and that
// sender's own per-message sequence number. crdt.Replica treats it as
// opaque. Local and WebSocket both fill it in; WebSocket also checks it
// against a VersionVector to skip duplicates and log gaps, while Local
// delivers synchronously in send order and does no such check.
type Meta struct {
	From string
	Seq  uint64
}
