package cache

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/passbi/transport_catalogue/internal/models"
	"github.com/redis/go-redis/v9"
)

var (
	client     *redis.Client
	clientOnce sync.Once
	clientErr  error
)

// ErrLockTimeout is returned when a route being computed elsewhere does not appear in time
var ErrLockTimeout = errors.New("timeout waiting for lock")

// Config holds Redis configuration
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
	MutexTTL time.Duration
}

// LoadConfigFromEnv loads Redis configuration from environment variables
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, _ := time.ParseDuration(getEnv("CACHE_TTL", "10m"))
	mutexTTL, _ := time.ParseDuration(getEnv("CACHE_MUTEX_TTL", "5s"))

	return &Config{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     port,
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
		TTL:      ttl,
		MutexTTL: mutexTTL,
	}
}

// GetClient returns the global Redis client (singleton pattern)
func GetClient() (*redis.Client, error) {
	clientOnce.Do(func() {
		config := LoadConfigFromEnv()

		opts := &redis.Options{
			Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
			Password:     config.Password,
			DB:           config.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 2,
		}

		// Managed Redis providers require TLS
		if getEnv("REDIS_TLS_ENABLED", "false") == "true" {
			opts.TLSConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}

		client = redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			clientErr = fmt.Errorf("failed to connect to Redis: %w", err)
			return
		}
	})

	return client, clientErr
}

// Close closes the Redis client
func Close() {
	if client != nil {
		client.Close()
	}
}

// RouteKey generates a cache key for a route query.
// The fingerprint identifies the network and routing settings the route was computed on,
// so a rebuilt network never serves stale trips.
func RouteKey(fingerprint, from, to string) string {
	data := fmt.Sprintf("%s\x00%s", from, to)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("route:%s:%x", fingerprint, hash[:8])
}

// LockKey generates a mutex lock key
func LockKey(routeKey string) string {
	return fmt.Sprintf("lock:%s", routeKey)
}

// Store keeps computed routes in Redis
type Store struct {
	client   redis.UniversalClient
	ttl      time.Duration
	mutexTTL time.Duration
}

// NewStore wraps a Redis client
func NewStore(client redis.UniversalClient, config *Config) *Store {
	return &Store{client: client, ttl: config.TTL, mutexTTL: config.MutexTTL}
}

// GetRoute retrieves a cached route. A miss returns nil, nil.
func (s *Store) GetRoute(ctx context.Context, key string) (*models.RouteInfo, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // cache miss
	}
	if err != nil {
		return nil, err
	}

	var route models.RouteInfo
	if err := json.Unmarshal(data, &route); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached route: %w", err)
	}

	return &route, nil
}

// SetRoute caches a route
func (s *Store) SetRoute(ctx context.Context, key string, route *models.RouteInfo) error {
	data, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("failed to marshal route: %w", err)
	}

	return s.client.Set(ctx, key, data, s.ttl).Err()
}

// AcquireLock attempts to acquire a distributed lock
// Returns true if lock was acquired, false if already locked
func (s *Store) AcquireLock(ctx context.Context, routeKey string) (bool, error) {
	return s.client.SetNX(ctx, LockKey(routeKey), "1", s.mutexTTL).Result()
}

// ReleaseLock releases a distributed lock
func (s *Store) ReleaseLock(ctx context.Context, routeKey string) error {
	return s.client.Del(ctx, LockKey(routeKey)).Err()
}

// WaitForLock waits for another instance to finish computing a route and
// returns what it cached. The result is nil if the lock was released
// without a cached route.
func (s *Store) WaitForLock(ctx context.Context, routeKey string, maxWait time.Duration) (*models.RouteInfo, error) {
	lockKey := LockKey(routeKey)
	deadline := time.Now().Add(maxWait)

	for time.Now().Before(deadline) {
		exists, err := s.client.Exists(ctx, lockKey).Result()
		if err != nil {
			return nil, err
		}

		if exists == 0 {
			return s.GetRoute(ctx, routeKey)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}

	return nil, ErrLockTimeout
}

// HealthCheck performs a health check on the Redis connection
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis ping failed: %w", err)
	}
	return nil
}

// Stats returns Redis stats
func (s *Store) Stats(ctx context.Context) (map[string]interface{}, error) {
	info, err := s.client.Info(ctx, "stats").Result()
	if err != nil {
		return nil, err
	}

	poolStats := s.client.PoolStats()

	return map[string]interface{}{
		"info":        info,
		"hits":        poolStats.Hits,
		"misses":      poolStats.Misses,
		"timeouts":    poolStats.Timeouts,
		"total_conns": poolStats.TotalConns,
		"idle_conns":  poolStats.IdleConns,
		"stale_conns": poolStats.StaleConns,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
