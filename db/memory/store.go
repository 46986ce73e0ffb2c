package memory

import (
	"context"
	"sync"

	appDb "github.com/navbryce/feed-be/db"
)

type entry struct {
	value    []byte
	metadata appDb.Metadata
	version  appDb.Version
}

// Store is a process-local KVStore, used for tests and the "memory" backend.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	clock   appDb.Version
}

func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, _, err := s.GetWithMetadata(ctx, key)
	return value, err
}

func (s *Store) GetWithMetadata(ctx context.Context, key string) ([]byte, appDb.Metadata, error) {
	e, err := s.GetEntry(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	return e.Value, e.Metadata, nil
}

func (s *Store) GetEntry(_ context.Context, key string) (*appDb.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, appDb.ErrKeyNotFound
	}
	return &appDb.Entry{
		Value:    copyBytes(e.value),
		Metadata: copyMetadata(e.metadata),
		Version:  e.version,
	}, nil
}

func (s *Store) Put(_ context.Context, key string, value []byte, metadata appDb.Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(key, value, metadata)
	return nil
}

func (s *Store) CompareAndSwap(_ context.Context, key string, value []byte, metadata appDb.Metadata, expected appDb.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := appDb.NoVersion
	if e, ok := s.entries[key]; ok {
		current = e.version
	}
	if current != expected {
		return appDb.ErrVersionConflict
	}
	s.setLocked(key, value, metadata)
	return nil
}

func (s *Store) setLocked(key string, value []byte, metadata appDb.Metadata) {
	s.clock++
	s.entries[key] = &entry{
		value:    copyBytes(value),
		metadata: copyMetadata(metadata),
		version:  s.clock,
	}
}

func (s *Store) Close() error {
	return nil
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}

func copyMetadata(m appDb.Metadata) appDb.Metadata {
	if m == nil {
		return nil
	}
	out := make(appDb.Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
