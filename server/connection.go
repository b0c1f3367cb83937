package server

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// clientMsg is the edit intent a browser sends: a plain index/value pair,
// never a CRDT id — the hub's replica is the one party that knows ids.
type clientMsg struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
	Value string `json:"value"`
	Count int    `json:"count,omitempty"`
}

// syncMsg carries a freshly joined connection's full-document snapshot.
type syncMsg struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// opMsg carries one applied operation, wire-encoded by crdt.EncodeOperation,
// to every attached connection.
type opMsg struct {
	Type string `json:"type"`
	Seq  uint64 `json:"seq"`
	Op   []byte `json:"op"`
}

// connection wraps one upgraded websocket, generalizing appserver's bare
// *websocket.Conn map key into a type that also owns an outbound queue and
// a session identity, grounded in sumanthd032-CollabText's per-connection
// session ids (google/uuid) used for causal/presence metadata.
type connection struct {
	ws      *websocket.Conn
	session uuid.UUID
	out     chan []byte
	logger  *log.Logger
}

func newConnection(ws *websocket.Conn, logger *log.Logger) *connection {
	return &connection{
		ws:      ws,
		session: uuid.New(),
		out:     make(chan []byte, 64),
		logger:  logger,
	}
}

func (c *connection) send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Printf("session %s: marshal: %v", c.session, err)
		return
	}
	select {
	case c.out <- data:
	default:
		c.logger.Printf("session %s: output buffer full, dropping message", c.session)
	}
}

// pump runs the read and write loops concurrently via errgroup.Group — the
// concurrent-pump idiom the pack's pgx/redis-backed servers use instead of
// two bare goroutines and a done channel — and returns once both have
// exited. readPump closing the outbound queue ends writePump; a writePump
// error cancels the context, but readPump keeps reading until the websocket
// read itself fails.
func (c *connection) pump(ctx context.Context, onClientMsg func(clientMsg)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.readPump(onClientMsg) })
	g.Go(func() error { return c.writePump(ctx) })
	return g.Wait()
}

func (c *connection) readPump(onClientMsg func(clientMsg)) error {
	defer close(c.out)
	for {
		var msg clientMsg
		if err := c.ws.ReadJSON(&msg); err != nil {
			return err
		}
		onClientMsg(msg)
	}
}

func (c *connection) writePump(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data, ok := <-c.out:
			if !ok {
				return nil
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return err
			}
		}
	}
}
