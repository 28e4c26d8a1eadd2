// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/ZeynTheCreator/ZurkAi/internal/model"
	"github.com/ZeynTheCreator/ZurkAi/internal/util"
)

// =============================================================================
// CLIENT
// =============================================================================

// Default model identifiers.
const (
	DefaultChatModel  = "gemini-2.5-flash"
	DefaultImageModel = "imagen-3.0-generate-002"
)

// titleInputLimit bounds the prompt and reply excerpts sent to title
// generation.
const titleInputLimit = 100

// ClientConfig configures the real Gemini client.
type ClientConfig struct {
	APIKey            string
	ChatModel         string
	ImageModel        string
	RequestsPerMinute int
}

// Client implements Service against the Gemini API. Every call passes
// through a shared rate limiter.
type Client struct {
	client     *genai.Client
	chatModel  string
	imageModel string
	limiter    *rate.Limiter
}

// NewClient creates a Gemini-backed Service.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = DefaultImageModel
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}

	return &Client{
		client:     gc,
		chatModel:  chatModel,
		imageModel: imageModel,
		limiter:    rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
	}, nil
}

// =============================================================================
// SERVICE IMPLEMENTATION
// =============================================================================

func (c *Client) StreamChat(ctx context.Context, req *Request, onChunk func(string)) (*Reply, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	contents := buildContents(req)
	var full strings.Builder
	for resp, err := range c.client.Models.GenerateContentStream(ctx, c.chatModel, contents, chatConfig(req)) {
		if err != nil {
			return nil, err
		}
		// Cancellation is checked between increments; text streamed so
		// far stays with the caller.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunk := resp.Text()
		if chunk == "" {
			continue
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

func (c *Client) GroundedChat(ctx context.Context, req *Request) (*Reply, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.chatModel, buildContents(req), chatConfig(req))
	if err != nil {
		return nil, err
	}
	text := resp.Text()
	if text == "" {
		return nil, ErrNoContent
	}
	return &Reply{Text: text, References: groundingReferences(resp)}, nil
}

func (c *Client) DescribeImage(ctx context.Context, prompt string, img Blob) (*Reply, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: img.MIMEType, Data: img.Data}},
			{Text: prompt},
		},
	}}
	resp, err := c.client.Models.GenerateContent(ctx, c.chatModel, contents, nil)
	if err != nil {
		return nil, err
	}
	text := resp.Text()
	if text == "" {
		return nil, ErrNoContent
	}
	return &Reply{Text: text}, nil
}

func (c *Client) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.client.Models.GenerateImages(ctx, c.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
		AspectRatio:    "1:1",
	})
	if err != nil {
		return nil, err
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, ErrNoImage
	}
	generated := resp.GeneratedImages[0].Image
	mimeType := generated.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return &Image{MIMEType: mimeType, Data: generated.ImageBytes}, nil
}

func (c *Client) Title(ctx context.Context, userText, replyText string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(
		"Summarize this conversation into a short, 4-word or less title. Do not use quotes.\nUser: %s\nAI: %s",
		util.ClampRunes(userText, titleInputLimit),
		util.ClampRunes(replyText, titleInputLimit),
	)
	resp, err := c.client.Models.GenerateContent(ctx, c.chatModel, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	title := strings.ReplaceAll(strings.TrimSpace(resp.Text()), `"`, "")
	if title == "" {
		return "", ErrNoContent
	}
	return title, nil
}

// =============================================================================
// REQUEST TRANSLATION
// =============================================================================

// buildContents converts replayed history plus the outgoing prompt into
// the wire transcript. History turns without text were already filtered
// by the caller.
func buildContents(req *Request) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := genai.RoleUser
		if turn.Sender == model.SenderAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: turn.Text}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: req.Prompt}},
	})
	return contents
}

// chatConfig maps the resolved directive onto the request config:
// either a system instruction or the search tool, never both.
func chatConfig(req *Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.UseWebSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
		return cfg
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemInstruction}},
		}
	}
	return cfg
}

// groundingReferences extracts raw web citations from a response.
// Deduplication happens in the model layer.
func groundingReferences(resp *genai.GenerateContentResponse) []model.GroundingReference {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	chunks := resp.Candidates[0].GroundingMetadata.GroundingChunks
	refs := make([]model.GroundingReference, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		refs = append(refs, model.GroundingReference{
			URI:   chunk.Web.URI,
			Title: chunk.Web.Title,
		})
	}
	if len(refs) == 0 {
		return nil
	}
	return refs
}
