// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/ZeynTheCreator/ZurkAi/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoContent means the service returned no usable candidate.
	ErrNoContent = errors.New("service returned no content")

	// ErrNoImage means an image request succeeded but produced no image.
	ErrNoImage = errors.New("no image was generated")
)

// =============================================================================
// REQUEST / RESULT TYPES
// =============================================================================

// Turn is one prior exchange entry replayed as conversation history.
type Turn struct {
	Sender model.Sender
	Text   string
}

// Request describes a chat turn: the directive derived from the
// session's mode, the replayed history, and the outgoing prompt text.
// Document framing, when present, is already applied to History and
// Prompt by the caller.
type Request struct {
	SystemInstruction string
	UseWebSearch      bool
	History           []Turn
	Prompt            string
}

// Reply is a completed text response. References carries the raw
// grounding citations for search-grounded calls, in arrival order and
// not yet deduplicated.
type Reply struct {
	Text       string
	References []model.GroundingReference
}

// Blob is binary content handed to a multimodal call.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Image is a generated image.
type Image struct {
	MIMEType string
	Data     []byte
}

// DataURI renders the image as an inline data URI for storage in a
// message's ImageURL.
func (i *Image) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MIMEType, base64.StdEncoding.EncodeToString(i.Data))
}

// =============================================================================
// SERVICE INTERFACE
// =============================================================================

// Service is the boundary to the generative service. Implementations
// must honor ctx cancellation between streamed increments.
type Service interface {
	// StreamChat sends a turn over the replayed transcript and streams
	// the reply, invoking onChunk for each increment in arrival order.
	// The returned Reply holds the full accumulated text. On error,
	// including cancellation, chunks already delivered remain valid.
	StreamChat(ctx context.Context, req *Request, onChunk func(string)) (*Reply, error)

	// GroundedChat sends a non-streaming turn with web-search grounding
	// enabled; the Reply may carry citation references.
	GroundedChat(ctx context.Context, req *Request) (*Reply, error)

	// DescribeImage sends a one-shot multimodal request (image + text),
	// bypassing the transcript.
	DescribeImage(ctx context.Context, prompt string, img Blob) (*Reply, error)

	// GenerateImage produces one image for the prompt.
	GenerateImage(ctx context.Context, prompt string) (*Image, error)

	// Title summarizes a first exchange into a short (four words or
	// fewer) session title.
	Title(ctx context.Context, userText, replyText string) (string, error)
}
