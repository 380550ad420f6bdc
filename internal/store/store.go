// Package store persists whole keyed JSON documents. The member list
// (with embedded loans) is one document; the cheque log is another.
// Reads and writes are whole-document, which is what makes every
// mutation in the service an atomic commit from the reader's view.
package store

import (
	"context"
	"errors"
	"sync"
)

// ErrKeyNotFound is returned by Get when no document exists under the
// key. Callers generally treat it as an empty collection.
var ErrKeyNotFound = errors.New("document key not found")

// DocumentStore is the persistence port: a keyed store of opaque
// documents. A single-writer lock or version check would live behind
// this interface if multiple writers ever appear.
type DocumentStore interface {
	// Get retrieves the document stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the document stored under key.
	Put(ctx context.Context, key string, doc []byte) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// MemoryStore is an in-process DocumentStore used in tests and as a
// scratch backend.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(doc))
	copy(out, doc)
	return out, nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(doc))
	copy(stored, doc)
	s.docs[key] = stored
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
