package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ruteri/cfn-rsakey-provider/interfaces"
)

// MemoryEntry is a secret held by MemoryStore together with its write options.
type MemoryEntry struct {
	Value       []byte
	KeyAlias    string
	Description string
}

// MemoryStore keeps secrets in process memory. It backs local runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]MemoryEntry
	log     *slog.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(log *slog.Logger) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]MemoryEntry),
		log:     log,
	}
}

// Put stores a copy of value under name, failing with ErrAlreadyExists
// when name is taken and opts.Overwrite is false.
func (s *MemoryStore) Put(ctx context.Context, name string, value []byte, opts interfaces.PutOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists && !opts.Overwrite {
		return fmt.Errorf("%w: %s", interfaces.ErrAlreadyExists, name)
	}

	s.entries[name] = MemoryEntry{
		Value:       append([]byte(nil), value...),
		KeyAlias:    opts.KeyAlias,
		Description: opts.Description,
	}

	s.log.Debug("Stored secret in memory", slog.String("name", name), slog.Bool("overwrite", opts.Overwrite))
	return nil
}

// Get returns a copy of the value stored under name.
func (s *MemoryStore) Get(ctx context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrNotFound, name)
	}
	return append([]byte(nil), entry.Value...), nil
}

// Delete removes name. Missing names are not an error.
func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, name)
	return nil
}

// Entry returns the stored entry for name, including its write options.
func (s *MemoryStore) Entry(name string) (MemoryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[name]
	return entry, ok
}

// Available always reports true.
func (s *MemoryStore) Available(ctx context.Context) bool {
	return true
}

// Name returns a unique identifier for this store.
func (s *MemoryStore) Name() string {
	return "memory"
}

// LocationURI returns the URI that identifies this store.
func (s *MemoryStore) LocationURI() string {
	return "memory://"
}
