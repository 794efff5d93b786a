package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemStore is an in-memory, thread-safe DocumentStore. It mirrors the
// FileStore layout (documents marshaled to JSON, collections as
// slash-separated paths) so tests exercise the same serialization the
// file backend performs.
type MemStore struct {
	updMu sync.Mutex // serializes Update cycles

	mu   sync.RWMutex
	docs map[string]map[string][]byte // collection -> key -> raw JSON
}

func NewMemStore() *MemStore {
	return &MemStore{
		docs: make(map[string]map[string][]byte),
	}
}

func (m *MemStore) Put(_ context.Context, collection, key string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document %s/%s: %w", collection, key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	col, ok := m.docs[collection]
	if !ok {
		col = make(map[string][]byte)
		m.docs[collection] = col
	}
	col[key] = data
	return nil
}

func (m *MemStore) Get(_ context.Context, collection, key string, out any) error {
	m.mu.RLock()
	raw, ok := m.docs[collection][key]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode document %s/%s: %w", collection, key, err)
	}
	return nil
}

func (m *MemStore) List(_ context.Context, collection string) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	col := m.docs[collection]
	keys := make([]string, 0, len(col))
	for key := range col {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// Defensive copies; the internal buffers are never handed out.
	docs := make([][]byte, 0, len(keys))
	for _, key := range keys {
		raw := make([]byte, len(col[key]))
		copy(raw, col[key])
		docs = append(docs, raw)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs, nil
}

// Keys reports direct document keys plus the first path segment of any
// nested sub-collection, matching directory listing semantics.
func (m *MemStore) Keys(_ context.Context, collection string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	for key := range m.docs[collection] {
		seen[key] = struct{}{}
	}
	prefix := collection + "/"
	for col := range m.docs {
		if !strings.HasPrefix(col, prefix) {
			continue
		}
		child, _, _ := strings.Cut(strings.TrimPrefix(col, prefix), "/")
		if child != "" {
			seen[child] = struct{}{}
		}
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Update serializes every read-modify-write cycle behind one mutex. A
// per-document lock map like the FileStore's would also work; a single
// lock is enough for a test fake.
func (m *MemStore) Update(ctx context.Context, collection, key string, apply UpdateFunc) error {
	m.updMu.Lock()
	defer m.updMu.Unlock()

	m.mu.RLock()
	raw := m.docs[collection][key]
	m.mu.RUnlock()

	doc, err := apply(raw)
	if err != nil {
		return err
	}
	return m.Put(ctx, collection, key, doc)
}
