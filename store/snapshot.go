package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoSnapshot is returned by a Snapshotter when a collection has never been
// persisted. The store treats it as an empty collection.
var ErrNoSnapshot = errors.New("snapshot not found")

// Snapshotter persists whole collections. Every Save replaces the prior
// snapshot; there is no incremental append format.
type Snapshotter interface {
	Load(name string, v any) error
	Save(name string, v any) error
}

// FileSnapshotter keeps one JSON file per collection under dir. Saves go
// through a temp file and rename so a crash mid-write never leaves a torn
// snapshot behind.
type FileSnapshotter struct {
	dir string
}

func NewFileSnapshotter(dir string) (*FileSnapshotter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileSnapshotter{dir: dir}, nil
}

func (f *FileSnapshotter) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

func (f *FileSnapshotter) Load(name string, v any) error {
	data, err := os.ReadFile(f.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNoSnapshot
		}
		return err
	}
	return json.Unmarshal(data, v)
}

func (f *FileSnapshotter) Save(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path(name))
}

// MemorySnapshotter holds snapshots in memory. Used by tests.
type MemorySnapshotter struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemorySnapshotter() *MemorySnapshotter {
	return &MemorySnapshotter{data: make(map[string][]byte)}
}

func (m *MemorySnapshotter) Load(name string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[name]
	if !ok {
		return ErrNoSnapshot
	}
	return json.Unmarshal(data, v)
}

func (m *MemorySnapshotter) Save(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[name] = data
	m.mu.Unlock()
	return nil
}
