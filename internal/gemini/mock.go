// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ZeynTheCreator/ZurkAi/internal/model"
)

// =============================================================================
// SCRIPTED SERVICE (TEST DOUBLE)
// =============================================================================

// ScriptedReply is one canned text response.
type ScriptedReply struct {
	Text       string
	References []model.GroundingReference
	Err        error

	// ChunkSize splits Text into increments of this many runes when
	// streamed. Zero streams the whole text as one chunk.
	ChunkSize int
}

// ScriptedImage is one canned image response.
type ScriptedImage struct {
	Image *Image
	Err   error
}

// ScriptedService implements Service from canned responses, recording
// every request it receives. Replies and images are consumed in order;
// running out of script is an error so tests fail loudly.
type ScriptedService struct {
	mu sync.Mutex

	Replies []ScriptedReply
	Images  []ScriptedImage

	// TitleText is returned by every Title call; TitleErr wins if set.
	TitleText string
	TitleErr  error

	// Recorded requests, in call order.
	StreamRequests   []*Request
	GroundedRequests []*Request
	DescribeRequests []*Request
	ImagePrompts     []string
	TitleCalls       [][2]string
}

var _ Service = (*ScriptedService)(nil)

func (s *ScriptedService) nextReply() (ScriptedReply, error) {
	if len(s.Replies) == 0 {
		return ScriptedReply{}, fmt.Errorf("scripted service: no replies left")
	}
	reply := s.Replies[0]
	s.Replies = s.Replies[1:]
	return reply, nil
}

func (s *ScriptedService) StreamChat(ctx context.Context, req *Request, onChunk func(string)) (*Reply, error) {
	s.mu.Lock()
	s.StreamRequests = append(s.StreamRequests, req)
	reply, err := s.nextReply()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if reply.Err != nil {
		return nil, reply.Err
	}

	var full strings.Builder
	for _, chunk := range splitChunks(reply.Text, reply.ChunkSize) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		full.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Reply{Text: full.String()}, nil
}

func (s *ScriptedService) GroundedChat(ctx context.Context, req *Request) (*Reply, error) {
	s.mu.Lock()
	s.GroundedRequests = append(s.GroundedRequests, req)
	reply, err := s.nextReply()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return &Reply{Text: reply.Text, References: reply.References}, nil
}

func (s *ScriptedService) DescribeImage(ctx context.Context, prompt string, img Blob) (*Reply, error) {
	s.mu.Lock()
	s.DescribeRequests = append(s.DescribeRequests, &Request{Prompt: prompt})
	reply, err := s.nextReply()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return &Reply{Text: reply.Text}, nil
}

func (s *ScriptedService) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	s.mu.Lock()
	s.ImagePrompts = append(s.ImagePrompts, prompt)
	if len(s.Images) == 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("scripted service: no images left")
	}
	scripted := s.Images[0]
	s.Images = s.Images[1:]
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if scripted.Err != nil {
		return nil, scripted.Err
	}
	if scripted.Image == nil {
		return nil, ErrNoImage
	}
	return scripted.Image, nil
}

func (s *ScriptedService) Title(ctx context.Context, userText, replyText string) (string, error) {
	s.mu.Lock()
	s.TitleCalls = append(s.TitleCalls, [2]string{userText, replyText})
	s.mu.Unlock()

	if s.TitleErr != nil {
		return "", s.TitleErr
	}
	if s.TitleText == "" {
		return "Untitled Chat", nil
	}
	return s.TitleText, nil
}

// splitChunks cuts text into rune chunks of the given size.
func splitChunks(text string, size int) []string {
	if size <= 0 || len(text) == 0 {
		if text == "" {
			return nil
		}
		return []string{text}
	}
	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
