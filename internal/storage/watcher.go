// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// HISTORY WATCHER
// =============================================================================

// Watcher observes the storage directory and reports when another
// process rewrites the chat history, so a running UI can reload its
// session list. Events are debounced: rapid write bursts (the atomic
// temp-write-then-rename dance) collapse into one notification.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange func()
	debounce time.Duration

	mu      sync.Mutex
	pending bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcher watches dir and invokes onChange after history mutations.
func NewWatcher(dir string, debounce time.Duration, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		watcher:  fsw,
		onChange: onChange,
		debounce: debounce,
		ctx:      ctx,
		cancel:   cancel,
	}
	go w.processEvents()
	go w.processPending()
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isHistoryEvent(event) {
				continue
			}
			w.mu.Lock()
			w.pending = true
			w.mu.Unlock()
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the UI just misses a reload.
		}
	}
}

func (w *Watcher) processPending() {
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.mu.Lock()
			fire := w.pending
			w.pending = false
			w.mu.Unlock()
			if fire && w.onChange != nil {
				w.onChange()
			}
		}
	}
}

// isHistoryEvent reports whether the event touches the history blob.
func isHistoryEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	return strings.HasPrefix(name, KeyChatHistory)
}
