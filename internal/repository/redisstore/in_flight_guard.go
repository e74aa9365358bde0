// Package redisstore holds repository pieces backed by Redis.
package redisstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "memory:inflight:"

// releaseScript deletes the slot only while it still carries the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// InFlightGuard shares the per-document slot across every API instance. Each
// acquire stores a fresh token so a run that outlived the TTL cannot free the
// slot of a newer run.
type InFlightGuard struct {
	rdb    *redis.Client
	ttl    time.Duration
	tokens sync.Map // uuid.UUID -> string
}

func NewInFlightGuard(rdb *redis.Client, ttl time.Duration) *InFlightGuard {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &InFlightGuard{rdb: rdb, ttl: ttl}
}

func key(documentId uuid.UUID) string {
	return keyPrefix + documentId.String()
}

func (g *InFlightGuard) Acquire(ctx context.Context, documentId uuid.UUID) (bool, error) {
	token := uuid.NewString()
	ok, err := g.rdb.SetNX(ctx, key(documentId), token, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	if ok {
		g.tokens.Store(documentId, token)
	}
	return ok, nil
}

// Release is a no-op when this instance holds no token for documentId.
func (g *InFlightGuard) Release(ctx context.Context, documentId uuid.UUID) error {
	token, ok := g.tokens.LoadAndDelete(documentId)
	if !ok {
		return nil
	}
	if err := releaseScript.Run(ctx, g.rdb, []string{key(documentId)}, token).Err(); err != nil {
		return fmt.Errorf("redis release: %w", err)
	}
	return nil
}
