// Package entredis provides a Redis-backed result cache for the entkit
// engine, for deployments where several processes share one admin surface
// and should share cached pages and invalidations too.
package entredis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/entkit/entkit"
)

// =====================================
// Redis Cache Store
// =====================================

// DefaultKeyNamespace prefixes every cache key so an engine can share a
// Redis database with other applications.
const DefaultKeyNamespace = "entkit"

// Config holds the Redis connection settings of a cache store.
type Config struct {
	Addr     string
	Password string
	DB       int

	// TTL is the freshness window of cached entries. Non-positive takes
	// entkit.DefaultCacheTTL.
	TTL time.Duration

	// Namespace prefixes every key. Empty takes DefaultKeyNamespace.
	Namespace string
}

// Store implements entkit.CacheStore over Redis. Values are stored as JSON;
// entity-wide invalidation walks the slug's key space with SCAN so it never
// blocks the server the way KEYS would.
type Store struct {
	client    *redis.Client
	ttl       time.Duration
	namespace string
}

// New creates a store with its own Redis client and verifies the connection.
func New(config Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", config.Addr, err)
	}

	return NewWithClient(client, config), nil
}

// NewWithClient wraps an existing client. The caller keeps ownership of the
// client's lifecycle.
func NewWithClient(client *redis.Client, config Config) *Store {
	ttl := config.TTL
	if ttl <= 0 {
		ttl = entkit.DefaultCacheTTL
	}
	namespace := config.Namespace
	if namespace == "" {
		namespace = DefaultKeyNamespace
	}
	return &Store{client: client, ttl: ttl, namespace: namespace}
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) listKey(key string) string {
	return s.namespace + ":list:" + key
}

func (s *Store) detailKey(slug, id string) string {
	return s.namespace + ":detail:" + entkit.DetailCacheKey(slug, id)
}

// GetList implements entkit.CacheStore.
func (s *Store) GetList(ctx context.Context, key string) (entkit.ListResult, bool) {
	data, err := s.client.Get(ctx, s.listKey(key)).Bytes()
	if err != nil {
		return entkit.ListResult{}, false
	}
	var result entkit.ListResult
	if err := json.Unmarshal(data, &result); err != nil {
		return entkit.ListResult{}, false
	}
	return result, true
}

// SetList implements entkit.CacheStore. Marshal failures drop the entry
// silently: the cache is a convenience, never a correctness dependency.
func (s *Store) SetList(ctx context.Context, key string, result entkit.ListResult) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	s.client.Set(ctx, s.listKey(key), data, s.ttl)
}

// GetDetail implements entkit.CacheStore.
func (s *Store) GetDetail(ctx context.Context, slug, id string) (entkit.Record, bool) {
	data, err := s.client.Get(ctx, s.detailKey(slug, id)).Bytes()
	if err != nil {
		return nil, false
	}
	var record entkit.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false
	}
	return record, true
}

// SetDetail implements entkit.CacheStore.
func (s *Store) SetDetail(ctx context.Context, slug, id string, record entkit.Record) {
	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	s.client.Set(ctx, s.detailKey(slug, id), data, s.ttl)
}

// InvalidateEntity implements entkit.CacheStore. Both the slug's list keys
// ("slug|...") and detail keys ("slug#...") are dropped.
func (s *Store) InvalidateEntity(ctx context.Context, slug string) {
	patterns := []string{
		s.namespace + ":list:" + slug + "|*",
		s.namespace + ":detail:" + slug + "#*",
	}
	for _, pattern := range patterns {
		s.deleteByPattern(ctx, pattern)
	}
}

// InvalidateDetail implements entkit.CacheStore.
func (s *Store) InvalidateDetail(ctx context.Context, slug, id string) {
	s.client.Del(ctx, s.detailKey(slug, id))
}

func (s *Store) deleteByPattern(ctx context.Context, pattern string) {
	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		s.client.Del(ctx, keys...)
	}
}
