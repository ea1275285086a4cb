package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const sessionExt = ".session.json"

// FileStore keeps one JSON file per session, so a single server keeps its
// sessions across restarts without Redis.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore opens dir, creating it if needed. An empty dir means
// <user cache dir>/vizlab/sessions.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("locate cache dir: %w", err)
		}
		dir = filepath.Join(base, "vizlab", "sessions")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) file(id string) string { return filepath.Join(s.dir, id+sessionExt) }

func (s *FileStore) Get(ctx context.Context, id string) (*Session, error) {
	if !ValidID(id) {
		return nil, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := readSession(s.file(id))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if sess.IsExpired() {
		return nil, ErrExpired
	}
	return sess, nil
}

// Set replaces the session file through a rename, so a crash never leaves
// a truncated session behind.
func (s *FileStore) Set(ctx context.Context, sess *Session) error {
	if !ValidID(sess.ID) {
		return fmt.Errorf("invalid session id %q", sess.ID)
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tmp := s.file(sess.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session %s: %w", sess.ID, err)
	}
	if err := os.Rename(tmp, s.file(sess.ID)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if !ValidID(id) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.file(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// Cleanup removes expired and unreadable session files.
func (s *FileStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	now := time.Now()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), sessionExt) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(s.dir, e.Name())
		sess, err := readSession(path)
		if err != nil || now.After(sess.ExpiresAt) {
			os.Remove(path)
		}
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Dir returns the session directory.
func (s *FileStore) Dir() string { return s.dir }

func readSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return &sess, nil
}

var _ Store = (*FileStore)(nil)
