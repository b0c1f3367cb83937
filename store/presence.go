package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Presence is a purely advisory, TTL-based registry of which replica
// sessions are currently attached to which document — never consulted by
// crdt, which doesn't have a notion of "online". Grounded on
// sumanthd032-CollabText/server's redis.Client wiring, generalized from a
// pub/sub relay into a SETEX-based presence registry.
type Presence struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPresence connects to the redis instance at addr.
func NewPresence(addr string, ttl time.Duration) *Presence {
	return &Presence{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// Ping verifies connectivity.
func (p *Presence) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("store: presence ping: %w", err)
	}
	return nil
}

func key(docID, sessionID string) string {
	return fmt.Sprintf("doc:%s:replica:%s", docID, sessionID)
}

// Touch marks sessionID as live on docID for the presence TTL, renewing it
// on every call — a client is expected to call this periodically (or on
// every inbound message) for as long as its connection stays open.
func (p *Presence) Touch(ctx context.Context, docID, sessionID string) error {
	if err := p.client.Set(ctx, key(docID, sessionID), 1, p.ttl).Err(); err != nil {
		return fmt.Errorf("store: presence touch: %w", err)
	}
	return nil
}

// Forget removes sessionID's presence entry immediately, for a clean
// disconnect rather than waiting out the TTL.
func (p *Presence) Forget(ctx context.Context, docID, sessionID string) error {
	if err := p.client.Del(ctx, key(docID, sessionID)).Err(); err != nil {
		return fmt.Errorf("store: presence forget: %w", err)
	}
	return nil
}

// Live returns the session ids currently present on docID.
func (p *Presence) Live(ctx context.Context, docID string) ([]string, error) {
	pattern := key(docID, "*")
	keys, err := p.client.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("store: presence live: %w", err)
	}
	sessions := make([]string, 0, len(keys))
	prefix := fmt.Sprintf("doc:%s:replica:", docID)
	for _, k := range keys {
		sessions = append(sessions, k[len(prefix):])
	}
	return sessions, nil
}

// Close releases the underlying redis client.
func (p *Presence) Close() error { return p.client.Close() }
