// Package server hosts the collaboration service: an HTTP+websocket
// front end (gorilla/mux, gorilla/websocket) that bridges any number of
// connected clients to one crdt.Replica per document, generalizing
// appserver.AppServer's single global document into a map of documents.
package server

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"textweave/store"
)

// Server hosts one docHub per document, lazily created on first use.
// Persistence and presence are both optional: a Server started without
// them (the common case for tests) behaves exactly like the
// teacher's in-memory-only AppServer.
type Server struct {
	mu       sync.Mutex
	docs     map[string]*docHub
	upgrader websocket.Upgrader
	logger   *log.Logger

	oplog    *store.OpLog
	presence *store.Presence
}

// New returns an empty Server.
func New() *Server {
	return &Server{
		docs: make(map[string]*docHub),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: log.New(log.Writer(), "[server] ", log.LstdFlags),
	}
}

// WithOpLog enables durable persistence: every document created after this
// call replays its history from log on first access and appends every
// applied operation to it afterward.
func (s *Server) WithOpLog(log *store.OpLog) *Server {
	s.oplog = log
	return s
}

// WithPresence enables presence tracking for connected sessions.
func (s *Server) WithPresence(p *store.Presence) *Server {
	s.presence = p
	return s
}

// Router builds the gorilla/mux route table described in SPEC_FULL.md §B.2.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/docs/{id}/text", s.handleDocText).Methods(http.MethodGet)
	return r
}

// Serve starts listening on addr, mirroring appserver.Serve's signature.
func (s *Server) Serve(addr string) error {
	s.logger.Printf("starting on %s", addr)
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) hub(docID string) *docHub {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.docs[docID]
	if !ok {
		h = newDocHub(docID, s.oplog)
		s.docs[docID] = h
	}
	return h
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	docID := r.URL.Query().Get("doc")
	if docID == "" {
		docID = "default"
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	h := s.hub(docID)
	c := newConnection(conn, h.logger)
	h.join(c)
	defer h.leave(c)

	ctx := context.Background()
	if s.presence != nil {
		sessionID := c.session.String()
		if err := s.presence.Touch(ctx, docID, sessionID); err != nil {
			h.logger.Printf("presence touch: %v", err)
		}
		defer func() {
			if err := s.presence.Forget(ctx, docID, sessionID); err != nil {
				h.logger.Printf("presence forget: %v", err)
			}
		}()
	}

	if err := c.pump(ctx, h.apply); err != nil {
		h.logger.Printf("session %s: %v", c.session, err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleDocText(w http.ResponseWriter, r *http.Request) {
	docID := mux.Vars(r)["id"]
	h := s.hub(docID)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(h.text()))
}
