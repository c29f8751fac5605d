package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mfeher/webdispatch/internal/model"
)

// FileStore persists the queue image as a single JSON document. Writes go to
// a temp file in the same directory followed by os.Rename, so a concurrent
// Load never observes a half-written image. A missing or unreadable image is
// not fatal: Load degrades to an empty state.
//
// The mutex serializes load-mutate-save sequences within this process; the
// store is designed for a single dispatching process.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (model.QueueState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}

func (s *FileStore) Save(state model.QueueState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(state)
}

func (s *FileStore) AppendMessage(m model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.load()
	st.Messages = append(st.Messages, m)
	return s.save(st)
}

func (s *FileStore) UpdateMessage(id string, mutate func(*model.Message)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.load()
	for i := range st.Messages {
		if st.Messages[i].ID == id {
			mutate(&st.Messages[i])
			return true, s.save(st)
		}
	}
	return false, nil
}

func (s *FileStore) ClearMessages() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.load()
	n := len(st.Messages)
	st.Messages = []model.Message{}
	return n, s.save(st)
}

func (s *FileStore) AddPairing(code string, createdAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.load()
	st.Pairings[code] = model.Pairing{CreatedAt: createdAt}
	return s.save(st)
}

// load reads the persisted image, self-healing to empty on any read or
// decode failure. Callers hold s.mu.
func (s *FileStore) load() model.QueueState {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("queue image unreadable, starting empty", "path", s.path, "error", err)
		}
		return model.EmptyState()
	}

	var st model.QueueState
	if err := json.Unmarshal(b, &st); err != nil {
		slog.Warn("queue image corrupt, starting empty", "path", s.path, "error", err)
		return model.EmptyState()
	}

	if st.Messages == nil {
		st.Messages = []model.Message{}
	}
	if st.Pairings == nil {
		st.Pairings = map[string]model.Pairing{}
	}
	return st
}

// save atomically replaces the persisted image. Callers hold s.mu.
func (s *FileStore) save(state model.QueueState) error {
	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode queue image: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".queue-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp image: %w", err)
	}

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp image: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace queue image: %w", err)
	}
	return nil
}
