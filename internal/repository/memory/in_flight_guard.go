package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// InFlightGuard is a process-local guard. Entries expire after ttl so a
// crashed run cannot block its document forever.
type InFlightGuard struct {
	cache *cache.Cache
}

func NewInFlightGuard(ttl time.Duration) *InFlightGuard {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &InFlightGuard{
		cache: cache.New(ttl, time.Minute),
	}
}

// Acquire relies on cache.Add failing when the key is already present.
func (g *InFlightGuard) Acquire(ctx context.Context, documentId uuid.UUID) (bool, error) {
	if err := g.cache.Add(documentId.String(), time.Now(), cache.DefaultExpiration); err != nil {
		return false, nil
	}
	return true, nil
}

func (g *InFlightGuard) Release(ctx context.Context, documentId uuid.UUID) error {
	g.cache.Delete(documentId.String())
	return nil
}
