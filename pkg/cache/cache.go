// Package cache is a JSON key-value cache backed by Redis. When Redis is
// not connected it degrades to an in-process map with the same TTL
// semantics, so sessions and read-through caches keep working in
// development and in tests.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/emberwick/storefront/config"
)

var RDB *redis.Client
var Ctx = context.Background()

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

var (
	memMu sync.RWMutex
	mem   = map[string]memoryEntry{}
)

// Connect initialises the Redis client and verifies the connection with a ping.
// Returns an error so the caller can react (log warning, fall back, or abort).
func Connect() error {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	if err := RDB.Ping(Ctx).Err(); err != nil {
		RDB = nil // fall back to the in-process map
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	return nil
}

// Get retrieves a cached value by key and unmarshals into dest.
// Returns true on a cache hit, false on miss or error.
func Get(key string, dest interface{}) bool {
	var raw []byte

	if RDB != nil {
		val, err := RDB.Get(Ctx, key).Result()
		if err != nil {
			return false
		}
		raw = []byte(val)
	} else {
		memMu.RLock()
		entry, ok := mem[key]
		memMu.RUnlock()
		if !ok || time.Now().After(entry.expiresAt) {
			return false
		}
		raw = entry.data
	}

	return json.Unmarshal(raw, dest) == nil
}

// Set stores value under key for the given TTL.
func Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if RDB != nil {
		return RDB.Set(Ctx, key, data, ttl).Err()
	}

	memMu.Lock()
	mem[key] = memoryEntry{data: data, expiresAt: time.Now().Add(ttl)}
	memMu.Unlock()
	return nil
}

// Del removes one or more keys.
func Del(keys ...string) error {
	if RDB != nil {
		return RDB.Del(Ctx, keys...).Err()
	}

	memMu.Lock()
	for _, k := range keys {
		delete(mem, k)
	}
	memMu.Unlock()
	return nil
}

// Forget is an alias for Del (Laravel-style).
func Forget(key string) error {
	return Del(key)
}

// Flush clears the in-process fallback map. Used by tests.
func Flush() {
	memMu.Lock()
	mem = map[string]memoryEntry{}
	memMu.Unlock()
}
