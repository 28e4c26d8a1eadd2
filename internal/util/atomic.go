// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWriteFile persists data to path via a temp file and rename, so a
// crash mid-write leaves either the previous contents or the new contents
// on disk, never a truncated file.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}

	tmp, err := stageTemp(filepath.Dir(target), data, perm)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit %s: %w", path, err)
	}
	return nil
}

// stageTemp writes data to a synced temp file in dir and returns its path.
// The temp file lives in dir so the later rename never crosses filesystems.
func stageTemp(dir string, data []byte, perm os.FileMode) (string, error) {
	f, err := os.CreateTemp(dir, ".zurk-*")
	if err != nil {
		return "", fmt.Errorf("stage temp file: %w", err)
	}
	name := f.Name()

	write := func() error {
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("write temp file: %w", err)
		}
		if err := f.Sync(); err != nil {
			return fmt.Errorf("sync temp file: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close temp file: %w", err)
		}
		return os.Chmod(name, perm)
	}

	if err := write(); err != nil {
		f.Close()
		os.Remove(name)
		return "", err
	}
	return name, nil
}
