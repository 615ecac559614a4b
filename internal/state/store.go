package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileStore persists State as a single JSON document.
type FileStore struct {
	path   string
	logger zerolog.Logger
}

// NewFileStore builds a store rooted at path.
func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger.With().Str("component", "state_store").Logger(),
	}
}

// Load reads the persisted state. A missing file, unreadable file, or corrupt
// document all yield a fresh zero state: first-ever runs and damaged files
// bootstrap identically. Fields absent from an older file keep their zero
// values.
func (f *FileStore) Load() *State {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warn().Err(err).Str("path", f.path).Msg("读取状态文件失败，使用默认状态")
		}
		return &State{}
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		f.logger.Warn().Err(err).Str("path", f.path).Msg("状态文件损坏，使用默认状态")
		return &State{}
	}
	return &st
}

// Save writes the state atomically: marshal to a temp file in the same
// directory, then rename over the target, so a kill mid-write never leaves a
// truncated document behind.
func (f *FileStore) Save(st *State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// Path exposes the backing file location.
func (f *FileStore) Path() string {
	return f.path
}
