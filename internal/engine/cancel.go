// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"sync"
)

// cancelManager holds the single cancellation token slot for the
// in-flight generation. It is accessed from the submitting goroutine
// and from whichever goroutine asks for cancellation, so every access
// is mutex-guarded. Always use as a pointer; copying would copy the
// mutex.
type cancelManager struct {
	mu         sync.Mutex
	cancelFunc context.CancelFunc
}

func newCancelManager() *cancelManager {
	return &cancelManager{}
}

// start creates the context for a new generation and stores its cancel
// function, replacing (and cancelling) any leftover one.
func (cm *cancelManager) start() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cm.mu.Lock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
	}
	cm.cancelFunc = cancel
	cm.mu.Unlock()
	return ctx
}

// cancel signals the in-flight generation. Idempotent; safe with no
// generation running.
func (cm *cancelManager) cancel() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
		cm.cancelFunc = nil
	}
}

// clear cancels (to release the context) and drops the slot.
func (cm *cancelManager) clear() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
		cm.cancelFunc = nil
	}
}
