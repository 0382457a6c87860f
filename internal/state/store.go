package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileName is the canonical state file inside the data directory.
const FileName = "sent.json"

// FileMode is the permission the state file is written with.
const FileMode fs.FileMode = 0o644

// Store reads and writes SeenState as JSON under a data directory.
//
// Writes go to a sibling temp file which is renamed over the canonical
// file, so readers only ever observe a complete state.
type Store struct {
	dir    string
	path   string
	log    zerolog.Logger
	rename func(oldpath, newpath string) error
}

// NewStore creates a store rooted at dataDir.
func NewStore(dataDir string, log zerolog.Logger) *Store {
	return &Store{
		dir:    dataDir,
		path:   filepath.Join(dataDir, FileName),
		log:    log,
		rename: os.Rename,
	}
}

// Path returns the canonical state file path.
func (s *Store) Path() string { return s.path }

// Load returns the persisted state. A missing file yields an empty state;
// an unreadable or malformed one is logged and also yields an empty state.
func (s *Store) Load() SeenState {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return SeenState{}
	}
	if err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("failed to read state file, starting fresh")
		return SeenState{}
	}

	var st SeenState
	if err := json.Unmarshal(data, &st); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("failed to parse state file, starting fresh")
		return SeenState{}
	}
	if st == nil {
		st = SeenState{}
	}
	return st
}

// Save atomically replaces the state file with st.
func (s *Store) Save(st SeenState) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", s.dir, err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+FileName+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := tmp.Chmod(FileMode); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod temp state file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := s.rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace state file: %w", err)
	}
	if err := syncDir(s.dir); err != nil {
		s.log.Debug().Err(err).Str("dir", s.dir).Msg("sync data dir after rename")
	}
	return nil
}

// syncDir flushes the directory entry so a completed rename survives a crash.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
