package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"tint/internal/logger"
)

// FileStore persists keys as a JSON object in a single file. Writes go
// through a temp file plus rename so readers never observe a torn file.
// Watch starts an fsnotify loop that reloads the file when another process
// rewrites it and reports the diff to OnChange subscribers; the store's own
// writes produce an empty diff and stay silent.
type FileStore struct {
	path string

	mu   sync.Mutex
	data map[string]string

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup

	subMu  sync.Mutex
	subs   map[int]func(map[string]string)
	nextID int

	closed bool
}

// OpenFileStore opens or creates a file-backed store at path. A missing
// file is treated as an empty store; it is created on the first write.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		data: make(map[string]string),
		subs: make(map[int]func(map[string]string)),
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read store file: %w", err)
	}

	data := make(map[string]string)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("failed to parse store file: %w", err)
		}
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// flush writes the current data atomically. Callers hold s.mu.
func (s *FileStore) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tint-store-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, s.path)
}

// Get returns the stored values for the requested keys. Absent keys are
// omitted from the result.
func (s *FileStore) Get(keys []string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := s.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// Set writes one key and flushes the file.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.flush()
}

// Remove deletes the given keys and flushes when any existed.
func (s *FileStore) Remove(keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := false
	for _, k := range keys {
		if _, ok := s.data[k]; ok {
			delete(s.data, k)
			removed = true
		}
	}
	if !removed {
		return nil
	}
	return s.flush()
}

// OnChange registers a callback invoked with externally changed keys.
// The returned function unregisters the callback.
func (s *FileStore) OnChange(fn func(changed map[string]string)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// Reload re-reads the file and notifies subscribers about keys whose
// values differ from the in-memory view. The watch loop calls this on
// file events; it is exported so callers can force a resync.
func (s *FileStore) Reload() {
	raw, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to reload store file", "path", s.path, "error", err)
		return
	}

	next := make(map[string]string)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &next); err != nil {
			logger.Warn("Ignoring malformed store file", "path", s.path, "error", err)
			return
		}
	}

	s.mu.Lock()
	changed := make(map[string]string)
	for k, v := range next {
		if s.data[k] != v {
			changed[k] = v
		}
	}
	for k := range s.data {
		if _, ok := next[k]; !ok {
			changed[k] = ""
		}
	}
	s.data = next
	s.mu.Unlock()

	if len(changed) > 0 {
		s.notify(changed)
	}
}

// Watch starts the fsnotify loop. The parent directory is watched rather
// than the file itself because atomic rename replaces the inode.
func (s *FileStore) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return err
	}

	s.watcher = w
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.watchLoop()
	return nil
}

func (s *FileStore) watchLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename) || event.Op.Has(fsnotify.Remove) {
				s.Reload()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Store watcher error", "path", s.path, "error", err)
		}
	}
}

// Close stops the watcher if running. The file itself needs no teardown.
func (s *FileStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.watcher != nil {
		close(s.done)
		err := s.watcher.Close()
		s.wg.Wait()
		return err
	}
	return nil
}

func (s *FileStore) notify(changed map[string]string) {
	s.subMu.Lock()
	fns := make([]func(map[string]string), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(changed)
	}
}
