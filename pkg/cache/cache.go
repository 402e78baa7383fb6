package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisclient "github.com/roomatlas/pg-marketplace/pkg/redis"
)

// Manager handles caching operations with JSON serialization
type Manager struct {
	redis *redisclient.Client
}

// NewManager creates a new cache manager
func NewManager(redis *redisclient.Client) *Manager {
	return &Manager{redis: redis}
}

// Get retrieves a cached value and unmarshals it into result
func (m *Manager) Get(ctx context.Context, key string, result interface{}) error {
	data, err := m.redis.GetString(ctx, key)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(data), result)
}

// Set marshals and caches a value with expiration
func (m *Manager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return m.redis.SetWithExpiration(ctx, key, string(data), ttl)
}

// Delete removes keys from cache
func (m *Manager) Delete(ctx context.Context, keys ...string) error {
	return m.redis.Delete(ctx, keys...)
}

// CacheKeys defines common cache key patterns
type CacheKeys struct{}

var Keys = CacheKeys{}

// RiskDashboard returns the cache key for the admin risk dashboard
func (k CacheKeys) RiskDashboard(limit int) string {
	return fmt.Sprintf("risk:dashboard:%d", limit)
}

// OwnerRisk returns the cache key for an owner risk summary
func (k CacheKeys) OwnerRisk(ownerID string) string {
	return fmt.Sprintf("risk:owner:%s", ownerID)
}

// Property returns the cache key for a single property
func (k CacheKeys) Property(propertyID string) string {
	return fmt.Sprintf("property:%s", propertyID)
}

// PropertySearch returns the cache key for a search result page
func (k CacheKeys) PropertySearch(city string, limit, offset int) string {
	return fmt.Sprintf("property:search:%s:%d:%d", city, limit, offset)
}

// TTL defines common cache TTL durations
type CacheTTL struct{}

var TTL = CacheTTL{}

func (t CacheTTL) Dashboard() time.Duration { return time.Minute }
func (t CacheTTL) Short() time.Duration     { return 5 * time.Minute }
func (t CacheTTL) Medium() time.Duration    { return 15 * time.Minute }
func (t CacheTTL) Long() time.Duration      { return time.Hour }
