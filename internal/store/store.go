// Package store persists small client-side values (team description
// overrides, the session token) behind a pluggable key/value interface.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// KV is the persistence contract every backend implements. A missing key is
// reported with ok == false, not an error.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend
type Options struct {
	Backend    string
	SQLitePath string
	RedisURL   string
	Namespace  string
}

// Open creates the backend named by opts.Backend
func Open(opts Options) (KV, error) {
	switch strings.ToLower(opts.Backend) {
	case "", "sqlite":
		return NewSQLite(opts.SQLitePath)
	case "redis":
		return NewRedis(opts.RedisURL, opts.Namespace)
	case "memory":
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
}

// MemoryKV keeps values for the lifetime of the process
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemory() *MemoryKV {
	return &MemoryKV{m: make(map[string]string)}
}

func (s *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemoryKV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemoryKV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *MemoryKV) Close() error { return nil }
