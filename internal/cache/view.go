package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// LocalViewCache keeps views in an in-process LRU. Each process has its own
// copy, so use RedisViewCache when several API instances share a store.
type LocalViewCache struct {
	lru *LRUCache[[]byte]

	mu   sync.Mutex
	gens map[string]int64
}

var _ ViewCache = (*LocalViewCache)(nil)

func NewLocalViewCache(maxSize int, ttl time.Duration) *LocalViewCache {
	return &LocalViewCache{lru: NewLRUCache[[]byte](maxSize, ttl), gens: make(map[string]int64)}
}

// LRU exposes the backing cache so a Manager can clean it.
func (c *LocalViewCache) LRU() *LRUCache[[]byte] {
	return c.lru
}

func userPrefix(userID string) string {
	return "user:" + userID + ":"
}

func (c *LocalViewCache) Generation(_ context.Context, userID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[userID], nil
}

func (c *LocalViewCache) Get(_ context.Context, userID, key string, dst any) (bool, error) {
	raw, ok := c.lru.Get(userPrefix(userID) + key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.lru.Delete(userPrefix(userID) + key)
		return false, nil
	}
	return true, nil
}

func (c *LocalViewCache) Set(_ context.Context, userID string, gen int64, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[userID] != gen {
		return nil
	}
	c.lru.Set(userPrefix(userID)+key, raw)
	return nil
}

func (c *LocalViewCache) InvalidateUser(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[userID]++
	c.lru.DeletePrefix(userPrefix(userID))
	return nil
}

// NopViewCache never stores anything.
type NopViewCache struct{}

func (NopViewCache) Generation(context.Context, string) (int64, error)      { return 0, nil }
func (NopViewCache) Get(context.Context, string, string, any) (bool, error) { return false, nil }
func (NopViewCache) Set(context.Context, string, int64, string, any) error  { return nil }
func (NopViewCache) InvalidateUser(context.Context, string) error           { return nil }
