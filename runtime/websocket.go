package runtime

import (
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"textweave/internal/id"
)

// frame is the envelope a WebSocket runtime exchanges with its peer: an
// encoded crdt.Operation plus the sender tag and sequence number
// VersionVector needs, mirroring the teacher's appserver.Message but
// narrowed to exactly what a Runtime — rather than a whole application
// server — needs to move across the wire.
type frame struct {
	From string `json:"from"`
	Seq  uint64 `json:"seq"`
	Op   []byte `json:"op"`
}

// WebSocket is a Runtime that dials a single websocket endpoint and
// exchanges frames over it, adapted from the teacher's appserver_test.go
// dial pattern and generalized from a test helper into a real client
// transport. The endpoint must relay frames between replicas; the server
// package's /ws route does not: it reads index-based edit messages and
// sends sync/op messages, not frames.
type WebSocket struct {
	conn *websocket.Conn
	tag  string
	gen  *id.Generator

	mu  sync.Mutex
	seq uint64
}

// DialWebSocket connects to addr (a ws:// or wss:// URL) and identifies
// this replica as tag. recv is driven from a background read loop for as
// long as the connection stays open.
func DialWebSocket(addr, tag string, recv Receiver) (*WebSocket, error) {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("runtime: dial %s: %w", addr, err)
	}
	w := &WebSocket{conn: conn, tag: tag, gen: id.NewGenerator(tag)}
	go w.readLoop(recv)
	return w, nil
}

func (w *WebSocket) readLoop(recv Receiver) {
	vv := NewVersionVector()
	for {
		var f frame
		if err := w.conn.ReadJSON(&f); err != nil {
			log.Printf("runtime: websocket %s closed: %v", w.tag, err)
			return
		}
		if f.From == w.tag {
			continue
		}
		if vv.IsDuplicate(f.From, f.Seq) {
			continue
		}
		if err := vv.Advance(f.From, f.Seq); err != nil {
			log.Printf("runtime: websocket %s: %v", w.tag, err)
		}
		if err := recv.ReceivePrimitive(f.Op, Meta{From: f.From, Seq: f.Seq}); err != nil {
			log.Printf("runtime: websocket %s: apply failed: %v", w.tag, err)
		}
	}
}

func (w *WebSocket) GetUID() id.ID { return w.gen.Next() }

func (w *WebSocket) SendPrimitive(data []byte) {
	w.mu.Lock()
	w.seq++
	seq := w.seq
	f := frame{From: w.tag, Seq: seq, Op: data}
	err := w.conn.WriteJSON(f)
	w.mu.Unlock()
	if err != nil {
		log.Printf("runtime: websocket %s: send failed: %v", w.tag, err)
	}
}

// Close closes the underlying connection.
func (w *WebSocket) Close() error { return w.conn.Close() }
