// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"
	"time"
)

func TestStreamingBufferBatchFlush(t *testing.T) {
	sb := NewStreamingBufferWithConfig(3, 30)

	sb.Write("a")
	sb.Write("b")
	if _, ok := sb.Flush(); ok {
		t.Error("buffer should not flush below the batch threshold")
	}

	sb.Write("c")
	content, ok := sb.Flush()
	if !ok {
		t.Fatal("buffer should flush at the batch threshold")
	}
	if content != "abc" {
		t.Errorf("flushed content = %q, want %q", content, "abc")
	}
	if sb.Pending() != 0 {
		t.Errorf("Pending() after flush = %d, want 0", sb.Pending())
	}
}

func TestStreamingBufferTimeFlush(t *testing.T) {
	sb := NewStreamingBufferWithConfig(100, 60)

	sb.Write("slow token")
	time.Sleep(25 * time.Millisecond)

	content, ok := sb.Flush()
	if !ok {
		t.Fatal("buffer should flush after the frame interval")
	}
	if content != "slow token" {
		t.Errorf("flushed content = %q", content)
	}
}

func TestStreamingBufferEmptyNeverFlushes(t *testing.T) {
	sb := NewStreamingBuffer()
	if _, ok := sb.Flush(); ok {
		t.Error("empty buffer should not flush")
	}
	if _, ok := sb.ForceFlush(); ok {
		t.Error("empty buffer should not force-flush")
	}
}

func TestStreamingBufferForceFlush(t *testing.T) {
	sb := NewStreamingBufferWithConfig(100, 1)

	sb.Write("partial")
	content, ok := sb.ForceFlush()
	if !ok {
		t.Fatal("ForceFlush should ignore thresholds")
	}
	if content != "partial" {
		t.Errorf("forced content = %q, want %q", content, "partial")
	}
}

func TestStreamingBufferReset(t *testing.T) {
	sb := NewStreamingBufferWithConfig(2, 30)

	sb.Write("discard")
	sb.Write("me")
	sb.Reset()

	if sb.Pending() != 0 {
		t.Errorf("Pending() after reset = %d, want 0", sb.Pending())
	}
	if _, ok := sb.Flush(); ok {
		t.Error("reset buffer should have nothing to flush")
	}
}

func TestStreamingBufferConfigClamping(t *testing.T) {
	sb := NewStreamingBufferWithConfig(0, 999)

	if sb.batchSize != 15 {
		t.Errorf("batchSize = %d, want default 15", sb.batchSize)
	}
	if sb.maxFPS != 30 {
		t.Errorf("maxFPS = %d, want default 30", sb.maxFPS)
	}
}

func TestProgramSinkWithoutProgram(t *testing.T) {
	sink := NewProgramSink()

	// Events before SetProgram must be safely dropped.
	sink.SessionChanged(nil)
	sink.StreamChunk("id", "chunk")
	sink.MessageAppended(nil, nil)
	sink.MessageFinalized(nil, nil)
	sink.TitleChanged(nil)
	sink.StateChanged(0)
}
