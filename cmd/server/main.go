// Command server starts the collaboration service described in
// SPEC_FULL.md §B.2, optionally backed by Postgres persistence and Redis
// presence, following the teacher's flag-and-env-var configuration style
// (no config-file framework appears anywhere in the example pack).
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"textweave/server"
	"textweave/store"
)

func main() {
	addr := flag.String("addr", envOr("ADDR", ":8080"), "listen address")
	dsn := flag.String("postgres", os.Getenv("DATABASE_URL"), "postgres DSN for op-log persistence; empty disables it")
	redisAddr := flag.String("redis", os.Getenv("REDIS_ADDR"), "redis address for presence tracking; empty disables it")
	flag.Parse()

	ctx := context.Background()
	s := server.New()

	if *dsn != "" {
		oplog, err := store.NewOpLog(ctx, *dsn)
		if err != nil {
			log.Fatalf("connect op-log: %v", err)
		}
		defer oplog.Close()
		s.WithOpLog(oplog)
	}

	if *redisAddr != "" {
		presence := store.NewPresence(*redisAddr, 30*time.Second)
		if err := presence.Ping(ctx); err != nil {
			log.Fatalf("connect presence store: %v", err)
		}
		defer presence.Close()
		s.WithPresence(presence)
	}

	if err := s.Serve(*addr); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
