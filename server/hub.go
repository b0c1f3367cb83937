package server

import (
	"context"
	"log"
	"sync"

	"textweave/crdt"
	"textweave/internal/id"
	"textweave/store"
)

// docHub owns exactly one document's *crdt.Replica and every websocket
// connection currently attached to it, generalizing appserver.AppServer
// (one global textCRDT, one clients map) to one hub per document. It
// implements crdt.Runtime itself: the hub IS the document's authoritative
// replica's runtime, minting ids and fanning out every op it applies to
// every attached connection.
//
// GetUID and SendPrimitive assume the caller already holds mu — the only
// caller is apply, which takes the lock for the whole edit. This is what
// turns spec.md §5's single-threaded cooperative concurrency model (no
// interleaving within one message handler) into a concrete guarantee in a
// server fielding concurrent connections: every edit to this document,
// whatever connection it arrived on, is serialized through mu.
type docHub struct {
	mu      sync.Mutex
	docID   string
	replica *crdt.Replica
	gen     *id.Generator
	seq     uint64
	conns   map[*connection]bool
	logger  *log.Logger

	oplog *store.OpLog // nil if the server was started without persistence
}

func newDocHub(docID string, oplog *store.OpLog) *docHub {
	h := &docHub{
		docID:  docID,
		gen:    id.NewGenerator("server-" + docID),
		conns:  make(map[*connection]bool),
		logger: log.New(log.Writer(), "[server:"+docID+"] ", log.LstdFlags),
		oplog:  oplog,
	}
	h.replica = crdt.NewReplica(h)
	if oplog != nil {
		if err := oplog.Replay(context.Background(), docID, func(payload []byte) error {
			return h.replica.ReceivePrimitive(payload, nil)
		}); err != nil {
			h.logger.Printf("replay: %v", err)
		}
	}
	return h
}

func (h *docHub) GetUID() id.ID { return h.gen.Next() }

// SendPrimitive fans data out to every attached connection and, if this
// server was started with persistence, appends it to the document's
// durable operation log — every local edit this hub applies passes through
// here exactly once, so this is the log's one write path. Operations
// replayed from the log in newDocHub go through ReceivePrimitive and are
// not sent or appended again.
func (h *docHub) SendPrimitive(data []byte) {
	h.seq++
	seq := h.seq
	for c := range h.conns {
		c.send(opMsg{Type: "op", Seq: seq, Op: data})
	}
	if h.oplog != nil {
		if err := h.oplog.Append(context.Background(), h.docID, data); err != nil {
			h.logger.Printf("oplog append: %v", err)
		}
	}
}

// join attaches c to the hub and sends it the document's current text as a
// single sync message — the "synthetic bulk-insert" a freshly connected
// client needs before it can apply incremental op messages meaningfully.
func (h *docHub) join(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = true
	c.send(syncMsg{Type: "sync", Text: h.replica.String()})
	h.logger.Printf("session %s joined (%d attached)", c.session, len(h.conns))
}

func (h *docHub) leave(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, c)
	h.logger.Printf("session %s left (%d attached)", c.session, len(h.conns))
}

// apply dispatches a client's edit intent to the document's replica. This
// is the hub's single write path: it holds mu for the whole call so
// GetUID/SendPrimitive, invoked synchronously underneath replica.Insert or
// replica.Delete, never need their own locking.
func (h *docHub) apply(msg clientMsg) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	switch msg.Type {
	case "insert":
		err = h.replica.Insert(msg.Index, msg.Value)
	case "delete":
		count := msg.Count
		if count == 0 {
			count = 1
		}
		err = h.replica.Delete(msg.Index, count)
	default:
		h.logger.Printf("unknown client message type %q", msg.Type)
		return
	}
	if err != nil {
		h.logger.Printf("apply %s at %d: %v", msg.Type, msg.Index, err)
	}
}

func (h *docHub) text() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.replica.String()
}
