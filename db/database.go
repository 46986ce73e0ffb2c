package db

import (
	"context"
)

// Metadata is the small set of string tags stored next to a value (e.g. an image's content type).
type Metadata map[string]string

// Version stamps an entry. Zero means the key does not exist.
type Version uint64

const NoVersion Version = 0

type Entry struct {
	Value    []byte
	Metadata Metadata
	Version  Version
}

// KVStore is the key-value collaborator every component is handed explicitly.
// Get and GetWithMetadata return ErrKeyNotFound for absent keys.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	GetWithMetadata(ctx context.Context, key string) ([]byte, Metadata, error)
	Put(ctx context.Context, key string, value []byte, metadata Metadata) error
	VersionedStore
	Close() error
}

// VersionedStore backs read-modify-write cycles with optimistic concurrency.
type VersionedStore interface {
	// GetEntry returns the entry and its current version, or ErrKeyNotFound.
	GetEntry(ctx context.Context, key string) (*Entry, error)
	// CompareAndSwap writes value only if the key is still at expected. NoVersion means "must not exist yet".
	// A lost race is reported as ErrVersionConflict.
	CompareAndSwap(ctx context.Context, key string, value []byte, metadata Metadata, expected Version) error
}
