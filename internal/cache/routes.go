package cache

import (
	"context"
	"log"
	"time"

	"github.com/passbi/transport_catalogue/internal/models"
)

// defaultLockWait bounds how long a request waits for another instance
// computing the same route
const defaultLockWait = 2 * time.Second

// Routes layers the local LRU in front of Redis. Either layer may be absent.
type Routes struct {
	local   *Local
	store   *Store
	maxWait time.Duration
}

// NewRoutes creates a layered route cache. local and store may be nil.
func NewRoutes(local *Local, store *Store) *Routes {
	return &Routes{local: local, store: store, maxWait: defaultLockWait}
}

// Get looks a route up locally, then in Redis
func (r *Routes) Get(ctx context.Context, key string) (*models.RouteInfo, bool) {
	if r == nil {
		return nil, false
	}
	if route, ok := r.local.Get(key); ok {
		return route, true
	}
	if r.store == nil {
		return nil, false
	}

	route, err := r.store.GetRoute(ctx, key)
	if err != nil {
		log.Printf("Warning: route cache read failed: %v", err)
		return nil, false
	}
	if route == nil {
		return nil, false
	}
	r.local.Set(key, route)
	return route, true
}

// Set stores a route in both layers
func (r *Routes) Set(ctx context.Context, key string, route *models.RouteInfo) {
	if r == nil {
		return
	}
	r.local.Set(key, route)
	if r.store == nil {
		return
	}
	if err := r.store.SetRoute(ctx, key, route); err != nil {
		log.Printf("Warning: route cache write failed: %v", err)
	}
}

// GetOrCompute returns a cached route or computes and caches it.
// While one instance computes a route, others sharing Redis wait for its
// result instead of computing it again. A nil route from compute means
// no route exists and is not cached.
func (r *Routes) GetOrCompute(ctx context.Context, key string, compute func() (*models.RouteInfo, error)) (*models.RouteInfo, error) {
	if route, ok := r.Get(ctx, key); ok {
		return route, nil
	}

	if r != nil && r.store != nil {
		acquired, err := r.store.AcquireLock(ctx, key)
		switch {
		case err != nil:
			log.Printf("Warning: route lock failed: %v", err)
		case acquired:
			defer func() {
				if err := r.store.ReleaseLock(ctx, key); err != nil {
					log.Printf("Warning: route unlock failed: %v", err)
				}
			}()
		default:
			route, err := r.store.WaitForLock(ctx, key, r.maxWait)
			if err == nil && route != nil {
				r.local.Set(key, route)
				return route, nil
			}
		}
	}

	route, err := compute()
	if err != nil || route == nil {
		return route, err
	}
	r.Set(ctx, key, route)
	return route, nil
}
