// Package cache provides the short-lived TTL cache backing fetch
// cooldowns. This is deliberately separate from the durable store: a
// cooldown that evaporates on restart costs at most one extra request.
package cache

import (
	"time"
)

// CacheService represents a generic TTL cache
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
