package storage

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"prompt-keeper/library"
)

var collectionFiles = map[string]string{
	library.CollectionFolders: "folders.json",
	library.CollectionPrompts: "prompts.json",
	library.CollectionPresets: "presets.json",
}

// CollectionForFile maps a data file name back to its collection.
func CollectionForFile(name string) (string, bool) {
	base := filepath.Base(name)
	for c, f := range collectionFiles {
		if f == base {
			return c, true
		}
	}
	return "", false
}

// FileStore keeps each collection in its own JSON file under a data
// directory. Collections are cached in memory; every mutation rewrites the
// whole file atomically before the cache is updated.
type FileStore struct {
	mu      sync.RWMutex
	dir     string
	folders []library.Folder
	prompts []library.Prompt
	presets []library.Preset
	// sums holds the checksum of each file as last written or loaded.
	sums map[string][sha256.Size]byte
}

var _ library.Store = (*FileStore)(nil)

// NewFileStore loads the collections found in dir. Missing files start
// empty. Returns an error on unexpected I/O failures or malformed JSON.
func NewFileStore(dir string) (*FileStore, error) {
	s := &FileStore{dir: dir, sums: make(map[string][sha256.Size]byte)}
	for c := range collectionFiles {
		if _, err := s.load(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Dir returns the data directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Reload re-reads one collection from disk after an external edit and
// reports whether its content differed from the cache. A file identical to
// the store's own last write is skipped. A malformed file leaves the cached
// collection in place.
func (s *FileStore) Reload(collection string) (bool, error) {
	if _, ok := collectionFiles[collection]; !ok {
		return false, fmt.Errorf("unknown collection %q", collection)
	}
	return s.load(collection)
}

func (s *FileStore) load(collection string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(collection))
	missing := errors.Is(err, os.ErrNotExist)
	if err != nil && !missing {
		return false, fmt.Errorf("load %s: %w", collection, err)
	}
	sum := sha256.Sum256(data)
	if prev, ok := s.sums[collection]; ok && prev == sum {
		return false, nil
	}

	switch collection {
	case library.CollectionFolders:
		var v []library.Folder
		if v, err = decodeCollection[library.Folder](data, missing); err == nil {
			s.folders = v
		}
	case library.CollectionPrompts:
		var v []library.Prompt
		if v, err = decodeCollection[library.Prompt](data, missing); err == nil {
			for i := range v {
				if v[i].Tags == nil {
					v[i].Tags = []string{}
				}
			}
			s.prompts = v
		}
	case library.CollectionPresets:
		var v []library.Preset
		if v, err = decodeCollection[library.Preset](data, missing); err == nil {
			s.presets = v
		}
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", collection, err)
	}
	s.sums[collection] = sum
	return true, nil
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collectionFiles[collection])
}

// Close is a no-op; every write is already on disk.
func (s *FileStore) Close() error {
	return nil
}

// --- Folders ---

func (s *FileStore) ListFolders(ctx context.Context) ([]library.Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]library.Folder, len(s.folders))
	copy(out, s.folders)
	return out, nil
}

func (s *FileStore) PutFolder(ctx context.Context, f library.Folder) (library.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := upsert(s.folders, f, func(x library.Folder) string { return x.ID })
	if err := s.write(library.CollectionFolders, next); err != nil {
		return library.Folder{}, err
	}
	s.folders = next
	return f, nil
}

func (s *FileStore) RemoveFolder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, removed := remove(s.folders, id, func(x library.Folder) string { return x.ID })
	if !removed {
		return nil
	}
	if err := s.write(library.CollectionFolders, next); err != nil {
		return err
	}
	s.folders = next
	return nil
}

// --- Prompts ---

func (s *FileStore) ListPrompts(ctx context.Context) ([]library.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]library.Prompt, len(s.prompts))
	for i, p := range s.prompts {
		out[i] = clonePrompt(p)
	}
	return out, nil
}

func (s *FileStore) PutPrompt(ctx context.Context, p library.Prompt) (library.Prompt, error) {
	p = clonePrompt(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	next := upsert(s.prompts, p, func(x library.Prompt) string { return x.ID })
	if err := s.write(library.CollectionPrompts, next); err != nil {
		return library.Prompt{}, err
	}
	s.prompts = next
	return clonePrompt(p), nil
}

func (s *FileStore) RemovePrompt(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, removed := remove(s.prompts, id, func(x library.Prompt) string { return x.ID })
	if !removed {
		return nil
	}
	if err := s.write(library.CollectionPrompts, next); err != nil {
		return err
	}
	s.prompts = next
	return nil
}

// --- Presets ---

func (s *FileStore) ListPresets(ctx context.Context, promptID string) ([]library.Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]library.Preset, 0, len(s.presets))
	for _, p := range s.presets {
		if promptID != "" && p.PromptID != promptID {
			continue
		}
		out = append(out, clonePreset(p))
	}
	return out, nil
}

func (s *FileStore) PutPreset(ctx context.Context, p library.Preset) (library.Preset, error) {
	p = clonePreset(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	next := upsert(s.presets, p, func(x library.Preset) string { return x.ID })
	if err := s.write(library.CollectionPresets, next); err != nil {
		return library.Preset{}, err
	}
	s.presets = next
	return clonePreset(p), nil
}

func (s *FileStore) RemovePreset(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, removed := remove(s.presets, id, func(x library.Preset) string { return x.ID })
	if !removed {
		return nil
	}
	if err := s.write(library.CollectionPresets, next); err != nil {
		return err
	}
	s.presets = next
	return nil
}

// decodeCollection decodes a JSON array. A missing file is an empty
// collection.
func decodeCollection[T any](data []byte, missing bool) ([]T, error) {
	if missing {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// write stores v as the collection's file and remembers its checksum.
// Callers hold the write lock.
func (s *FileStore) write(collection string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := writeAtomic(s.path(collection), data); err != nil {
		return err
	}
	s.sums[collection] = sha256.Sum256(data)
	return nil
}

// writeAtomic writes to a temp file then renames it over path.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// upsert returns a new slice with item replacing the element of the same id
// in place, or appended when there is none.
func upsert[T any](items []T, item T, id func(T) string) []T {
	next := make([]T, 0, len(items)+1)
	replaced := false
	for _, x := range items {
		if id(x) == id(item) {
			next = append(next, item)
			replaced = true
			continue
		}
		next = append(next, x)
	}
	if !replaced {
		next = append(next, item)
	}
	return next
}

func remove[T any](items []T, target string, id func(T) string) ([]T, bool) {
	next := make([]T, 0, len(items))
	removed := false
	for _, x := range items {
		if id(x) == target {
			removed = true
			continue
		}
		next = append(next, x)
	}
	return next, removed
}

func clonePrompt(p library.Prompt) library.Prompt {
	tags := make([]string, len(p.Tags))
	copy(tags, p.Tags)
	p.Tags = tags
	return p
}

func clonePreset(p library.Preset) library.Preset {
	values := make(map[string]string, len(p.Values))
	for k, v := range p.Values {
		values[k] = v
	}
	p.Values = values
	return p
}
