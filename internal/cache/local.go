package cache

import (
	"time"

	"github.com/bluele/gcache"
	"github.com/passbi/transport_catalogue/internal/models"
)

// Local is an in-process LRU of computed routes.
// A nil *Local is a valid, always-empty cache.
type Local struct {
	routes gcache.Cache
}

// NewLocal creates an LRU holding up to size routes, each expiring after ttl.
// It returns nil when size is not positive.
func NewLocal(size int, ttl time.Duration) *Local {
	if size <= 0 {
		return nil
	}

	builder := gcache.New(size).LRU()
	if ttl > 0 {
		builder = builder.Expiration(ttl)
	}
	return &Local{routes: builder.Build()}
}

// Get returns a cached route
func (l *Local) Get(key string) (*models.RouteInfo, bool) {
	if l == nil {
		return nil, false
	}
	value, err := l.routes.Get(key)
	if err != nil {
		return nil, false
	}
	route, ok := value.(*models.RouteInfo)
	return route, ok
}

// Set caches a route
func (l *Local) Set(key string, route *models.RouteInfo) {
	if l == nil {
		return
	}
	l.routes.Set(key, route)
}
