package runtime

import (
	"log"
	"sync"

	"textweave/internal/id"
)

// Hub is an in-process switchboard connecting any number of replicas,
// generalizing the manual crdt1/crdt2 wiring the teacher's multi-user
// tests did by hand into an actual Runtime a demo or test can Join
// replicas onto.
type Hub struct {
	mu        sync.Mutex
	receivers map[string]Receiver
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{receivers: make(map[string]Receiver)}
}

// Join registers tag on the hub with recv as its inbound handler (normally
// a *crdt.Replica) and returns tag's Runtime handle.
func (h *Hub) Join(tag string, recv Receiver) *Local {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.receivers[tag] = recv
	return &Local{
		hub:    h,
		tag:    tag,
		gen:    id.NewGenerator(tag),
		logger: log.New(log.Writer(), "[runtime:"+tag+"] ", log.LstdFlags),
	}
}

// Leave removes tag from the hub; it stops receiving further sends.
func (h *Hub) Leave(tag string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.receivers, tag)
}

// Local is a Hub-backed Runtime for one replica. It never echoes a
// replica's own sends back to itself: local edits apply directly to local
// state (crdt.Replica.Insert does this before ever calling SendPrimitive),
// the same split as the teacher's LocalInsert versus Apply.
type Local struct {
	hub    *Hub
	tag    string
	gen    *id.Generator
	seq    uint64
	logger *log.Logger
}

func (l *Local) GetUID() id.ID { return l.gen.Next() }

// SendPrimitive fans data out to every other replica currently joined to
// the hub, tagging delivery with this replica's next sequence number so
// each receiver's VersionVector can enforce FIFO-per-sender order. The
// registry is copied out under lock before any receiver is called, so a
// receiver that joins or leaves the hub from within its own
// ReceivePrimitive can't deadlock on the hub mutex.
func (l *Local) SendPrimitive(data []byte) {
	l.seq++
	seq := l.seq

	l.hub.mu.Lock()
	recvs := make(map[string]Receiver, len(l.hub.receivers))
	for tag, recv := range l.hub.receivers {
		if tag != l.tag {
			recvs[tag] = recv
		}
	}
	l.hub.mu.Unlock()

	meta := Meta{From: l.tag, Seq: seq}
	for tag, recv := range recvs {
		if err := recv.ReceivePrimitive(data, meta); err != nil {
			l.logger.Printf("delivery to %s failed: %v", tag, err)
		}
	}
}
