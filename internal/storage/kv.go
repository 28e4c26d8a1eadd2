// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/ZeynTheCreator/ZurkAi/internal/util"
)

// =============================================================================
// KV INTERFACE
// =============================================================================

// KV is a string-keyed durable blob store. Each write is independent
// and last-write-wins; no transactions span keys.
type KV interface {
	// Get returns the blob for key. The second result is false when the
	// key is absent.
	Get(key string) ([]byte, bool, error)

	// Set stores the blob under key, replacing any previous value.
	Set(key string, value []byte) error

	// Delete removes the key. Removing an absent key is a no-op.
	Delete(key string) error

	// Close releases backend resources.
	Close() error
}

// Well-known keys.
const (
	KeyChatHistory   = "zurk-chat-history"
	KeyActiveChatID  = "zurk-active-chat-id"
	KeyCustomPersona = "zurk-custom-persona"
)

// =============================================================================
// FILE BACKEND
// =============================================================================

// keyPattern restricts keys to names that are safe as file names.
var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// FileKV stores one JSON-ish blob file per key under a directory,
// written atomically so a crash never leaves a torn value.
type FileKV struct {
	dir string
}

// NewFileKV creates a file-backed KV rooted at dir, creating the
// directory if needed.
func NewFileKV(dir string) (*FileKV, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory is empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

// Dir returns the backing directory.
func (f *FileKV) Dir() string { return f.dir }

func (f *FileKV) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *FileKV) Get(key string) ([]byte, bool, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

func (f *FileKV) Set(key string, value []byte) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(path, value, 0644)
}

func (f *FileKV) Delete(key string) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (f *FileKV) Close() error { return nil }
