package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStore is a DocumentStore backed by pretty-printed JSON files under
// a root directory. Each document lives at <root>/<collection>/<key>.json
// and each Keys call is a plain directory scan, so reads cost O(n) in the
// number of stored documents.
type FileStore struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-document update locks
}

// NewFileStore opens (creating if necessary) a file-backed document
// store rooted at dir. An empty dir falls back to "./data".
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "./data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &FileStore{
		root:  dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Root returns the data directory the store writes under.
func (s *FileStore) Root() string { return s.root }

func (s *FileStore) Put(_ context.Context, collection, key string, doc any) error {
	path, err := s.docPath(collection, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create collection directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document %s/%s: %w", collection, key, err)
	}

	// Write to a temp file first so readers never observe a half-written
	// document.
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write document %s/%s: %w", collection, key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to persist document %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, collection, key string, out any) error {
	path, err := s.docPath(collection, key)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to read document %s/%s: %w", collection, key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode document %s/%s: %w", collection, key, err)
	}
	return nil
}

// List returns the raw contents of every document directly inside the
// collection. A collection that was never written to is empty, not an
// error.
func (s *FileStore) List(_ context.Context, collection string) ([][]byte, error) {
	dir, err := s.collectionPath(collection)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan collection %s: %w", collection, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var docs [][]byte
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read document %s: %w", entry.Name(), err)
		}
		docs = append(docs, data)
	}
	return docs, nil
}

// Keys lists the member names of a collection: document keys plus the
// names of nested sub-collections, in ascending order.
func (s *FileStore) Keys(_ context.Context, collection string) ([]string, error) {
	dir, err := s.collectionPath(collection)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan collection %s: %w", collection, err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			keys = append(keys, name)
			continue
		}
		if strings.HasSuffix(name, ".json") {
			keys = append(keys, strings.TrimSuffix(name, ".json"))
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Update runs a read-modify-write cycle under a per-document lock.
// apply sees nil when the document does not exist yet.
func (s *FileStore) Update(ctx context.Context, collection, key string, apply UpdateFunc) error {
	path, err := s.docPath(collection, key)
	if err != nil {
		return err
	}

	lock := s.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	var raw []byte
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		raw = data
	case os.IsNotExist(err):
		raw = nil
	default:
		return fmt.Errorf("failed to read document %s/%s: %w", collection, key, err)
	}

	doc, err := apply(raw)
	if err != nil {
		return err
	}
	return s.Put(ctx, collection, key, doc)
}

func (s *FileStore) lockFor(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[path] = lock
	}
	return lock
}

func (s *FileStore) collectionPath(collection string) (string, error) {
	parts := strings.Split(collection, "/")
	clean := make([]string, 0, len(parts)+1)
	clean = append(clean, s.root)
	for _, part := range parts {
		safe, err := SanitizeKey(part)
		if err != nil {
			return "", fmt.Errorf("invalid collection %q: %w", collection, err)
		}
		clean = append(clean, safe)
	}
	return filepath.Join(clean...), nil
}

func (s *FileStore) docPath(collection, key string) (string, error) {
	dir, err := s.collectionPath(collection)
	if err != nil {
		return "", err
	}
	safe, err := SanitizeKey(key)
	if err != nil {
		return "", fmt.Errorf("invalid key %q: %w", key, err)
	}
	return filepath.Join(dir, safe+".json"), nil
}

// SanitizeKey maps a client-supplied identifier (session ids come
// straight off the wire) onto a single safe path component. Separators
// are flattened to underscores, so a key can never add hierarchy
// levels; callers embedding a key into a collection path must sanitize
// it first.
func SanitizeKey(part string) (string, error) {
	if part == "" || part == "." || part == ".." {
		return "", fmt.Errorf("empty or reserved path component")
	}
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, part)
	if strings.Trim(safe, ".") == "" {
		return "", fmt.Errorf("component reduces to dots only")
	}
	return safe, nil
}
