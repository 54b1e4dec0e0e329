package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ProfAvery/flowy-servers/application/ports"
)

// ErrWrongType mirrors Redis' WRONGTYPE reply: a hash command hit a list or
// the other way round.
var ErrWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

// KVStore is an in-process ports.KeyValueStore with Redis semantics. It is
// used for local development and tests.
type KVStore struct {
	mu     sync.RWMutex
	hashes map[string]map[string]string
	lists  map[string][]string
	closed bool
}

// NewKVStore creates an empty in-memory store
func NewKVStore() *KVStore {
	return &KVStore{
		hashes: make(map[string]map[string]string),
		lists:  make(map[string][]string),
	}
}

// HSet sets a hash field
func (s *KVStore) HSet(ctx context.Context, key, field, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("memory store closed: %w", ports.ErrStoreUnavailable)
	}
	if _, isList := s.lists[key]; isList {
		return ErrWrongType
	}

	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string)
		s.hashes[key] = h
	}
	h[field] = value
	return nil
}

// HGet reads a hash field
func (s *KVStore) HGet(ctx context.Context, key, field string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", false, fmt.Errorf("memory store closed: %w", ports.ErrStoreUnavailable)
	}
	if _, isList := s.lists[key]; isList {
		return "", false, ErrWrongType
	}

	v, ok := s.hashes[key][field]
	return v, ok, nil
}

// Del removes a key of any type
func (s *KVStore) Del(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("memory store closed: %w", ports.ErrStoreUnavailable)
	}
	delete(s.hashes, key)
	delete(s.lists, key)
	return nil
}

// RPush appends values to a list
func (s *KVStore) RPush(ctx context.Context, key string, values ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(values) == 0 {
		return errors.New("ERR wrong number of arguments for 'rpush' command")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("memory store closed: %w", ports.ErrStoreUnavailable)
	}
	if _, isHash := s.hashes[key]; isHash {
		return ErrWrongType
	}

	s.lists[key] = append(s.lists[key], values...)
	return nil
}

// LRange returns a copy of the whole list
func (s *KVStore) LRange(ctx context.Context, key string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("memory store closed: %w", ports.ErrStoreUnavailable)
	}
	if _, isHash := s.hashes[key]; isHash {
		return nil, ErrWrongType
	}

	out := make([]string, len(s.lists[key]))
	copy(out, s.lists[key])
	return out, nil
}

// Ping reports whether the store is open
func (s *KVStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("memory store closed: %w", ports.ErrStoreUnavailable)
	}
	return nil
}

// Close marks the store closed; later calls fail as unavailable
func (s *KVStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Len returns the number of keys held, for tests and diagnostics
func (s *KVStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hashes) + len(s.lists)
}
