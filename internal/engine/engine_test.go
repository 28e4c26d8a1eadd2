// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZeynTheCreator/ZurkAi/internal/gemini"
	"github.com/ZeynTheCreator/ZurkAi/internal/model"
	"github.com/ZeynTheCreator/ZurkAi/internal/persona"
	"github.com/ZeynTheCreator/ZurkAi/internal/storage"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

// recordingSink captures engine events. OnChunk, when set, runs inside
// the streaming callback, which lets tests cancel mid-stream.
type recordingSink struct {
	mu        sync.Mutex
	chunks    []string
	appended  []*model.Message
	finalized []*model.Message
	states    []State
	OnChunk   func(chunk string)
}

func (r *recordingSink) SessionChanged(*model.Session) {}

func (r *recordingSink) MessageAppended(_ *model.Session, msg *model.Message) {
	r.mu.Lock()
	r.appended = append(r.appended, msg)
	r.mu.Unlock()
}

func (r *recordingSink) StreamChunk(_, chunk string) {
	r.mu.Lock()
	r.chunks = append(r.chunks, chunk)
	hook := r.OnChunk
	r.mu.Unlock()
	if hook != nil {
		hook(chunk)
	}
}

func (r *recordingSink) MessageFinalized(_ *model.Session, msg *model.Message) {
	r.mu.Lock()
	r.finalized = append(r.finalized, msg)
	r.mu.Unlock()
}

func (r *recordingSink) TitleChanged(*model.Session) {}

func (r *recordingSink) StateChanged(state State) {
	r.mu.Lock()
	r.states = append(r.states, state)
	r.mu.Unlock()
}

func newTestEngine(t *testing.T, svc gemini.Service) (*Engine, *storage.Store, *recordingSink) {
	t.Helper()
	kv, err := storage.NewFileKV(t.TempDir())
	require.NoError(t, err)
	store := storage.NewStore(kv)
	sink := &recordingSink{}
	return New(store, svc, persona.New(""), sink), store, sink
}

// gatedService blocks StreamChat until released, so tests can observe
// the in-flight state.
type gatedService struct {
	*gemini.ScriptedService
	release chan struct{}
}

func (g *gatedService) StreamChat(ctx context.Context, req *gemini.Request, onChunk func(string)) (*gemini.Reply, error) {
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.ScriptedService.StreamChat(ctx, req, onChunk)
}

func awaitState(t *testing.T, e *Engine, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if e.CurrentState() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("engine never reached state %v", want)
}

// =============================================================================
// STREAMED TURNS
// =============================================================================

func TestSubmitTurn_StreamedExchange(t *testing.T) {
	svc := &gemini.ScriptedService{
		Replies:   []gemini.ScriptedReply{{Text: "Hi there! How can I help?", ChunkSize: 5}},
		TitleText: "Friendly Greeting",
	}
	e, store, sink := newTestEngine(t, svc)
	sess, err := e.StartNewSession(model.ModeZurk, "", "")
	require.NoError(t, err)

	require.NoError(t, e.SubmitTurn("Hello", nil))
	e.WaitForTitles()

	stored, err := store.Get(sess.ID)
	require.NoError(t, err)
	require.Len(t, stored.Messages, 2)
	assert.Equal(t, model.SenderUser, stored.Messages[0].Sender)
	assert.Equal(t, "Hello", stored.Messages[0].Text)
	assert.Equal(t, model.SenderAssistant, stored.Messages[1].Sender)
	assert.Equal(t, "Hi there! How can I help?", stored.Messages[1].Text)

	// Title replaced the placeholder exactly once.
	assert.Equal(t, "Friendly Greeting", stored.Title)
	assert.Len(t, svc.TitleCalls, 1)

	// Increments arrived in order and rebuild the reply.
	assert.Equal(t, "Hi there! How can I help?", strings.Join(sink.chunks, ""))

	// The system instruction came from the mode policy.
	require.Len(t, svc.StreamRequests, 1)
	assert.Contains(t, svc.StreamRequests[0].SystemInstruction, "ZurkAI")
}

func TestSubmitTurn_DocumentFraming(t *testing.T) {
	svc := &gemini.ScriptedService{
		Replies:   []gemini.ScriptedReply{{Text: "A concise summary."}},
		TitleText: "PDF Summary",
	}
	e, store, _ := newTestEngine(t, svc)
	sess, _ := e.StartNewSession(model.ModeZurk, "", "")
	require.NoError(t, e.AttachDocument("report.pdf", "PDF body"))

	require.NoError(t, e.SubmitTurn("Summarize", nil))
	e.WaitForTitles()

	require.Len(t, svc.StreamRequests, 1)
	want := "--- PDF Content ---\nPDF body\n\n--- User Prompt ---\nSummarize"
	assert.Equal(t, want, svc.StreamRequests[0].Prompt)

	// The stored reply is the model's raw output, no document echo.
	stored, _ := store.Get(sess.ID)
	require.Len(t, stored.Messages, 2)
	assert.Equal(t, "A concise summary.", stored.Messages[1].Text)
	// The stored user message keeps the raw prompt.
	assert.Equal(t, "Summarize", stored.Messages[0].Text)
}

func TestSubmitTurn_DocumentFramingInReplay(t *testing.T) {
	svc := &gemini.ScriptedService{
		Replies: []gemini.ScriptedReply{{Text: "first"}, {Text: "second"}},
	}
	e, _, _ := newTestEngine(t, svc)
	sess, _ := e.StartNewSession(model.ModeZurk, "", "")
	sess.Title = "Docs"
	require.NoError(t, e.AttachDocument("doc.pdf", "BODY"))

	require.NoError(t, e.SubmitTurn("one", nil))
	require.NoError(t, e.SubmitTurn("two", nil))

	require.Len(t, svc.StreamRequests, 2)
	history := svc.StreamRequests[1].History
	require.Len(t, history, 2)
	assert.Equal(t, "--- PDF Content ---\nBODY\n\n--- User Prompt ---\none", history[0].Text)
	assert.Equal(t, "first", history[1].Text)

	// After detaching, turns go out raw again.
	require.NoError(t, e.ClearDocument())
	svc.Replies = append(svc.Replies, gemini.ScriptedReply{Text: "third"})
	require.NoError(t, e.SubmitTurn("three", nil))
	assert.Equal(t, "three", svc.StreamRequests[2].Prompt)
}

func TestSubmitTurn_CancelMidStream(t *testing.T) {
	svc := &gemini.ScriptedService{
		Replies: []gemini.ScriptedReply{{Text: "abcdefghij", ChunkSize: 2}},
	}
	e, store, sink := newTestEngine(t, svc)
	sess, _ := e.StartNewSession(model.ModeZurk, "", "")

	var once sync.Once
	sink.OnChunk = func(string) {
		sink.mu.Lock()
		n := len(sink.chunks)
		sink.mu.Unlock()
		if n >= 2 {
			once.Do(e.CancelActive)
		}
	}

	require.NoError(t, e.SubmitTurn("go", nil))

	stored, _ := store.Get(sess.ID)
	require.Len(t, stored.Messages, 2)
	reply := stored.Messages[1]
	assert.True(t, strings.HasSuffix(reply.Text, StopMarker), "reply = %q", reply.Text)
	// Previously streamed text is never dropped.
	assert.True(t, strings.HasPrefix(reply.Text, "abcd"), "reply = %q", reply.Text)
	// Cancellation is not an error message.
	assert.NotContains(t, reply.Text, "Error:")
	// No title request for a cancelled turn.
	assert.Empty(t, svc.TitleCalls)
	assert.Equal(t, StateIdle, e.CurrentState())
}

func TestSubmitTurn_ServiceFailure(t *testing.T) {
	svc := &gemini.ScriptedService{
		Replies: []gemini.ScriptedReply{
			{Err: errors.New("connection reset")},
			{Text: "recovered"},
		},
	}
	e, store, _ := newTestEngine(t, svc)
	sess, _ := e.StartNewSession(model.ModeZurk, "", "")
	sess.Title = "Kept"

	require.NoError(t, e.SubmitTurn("hi", nil))

	stored, _ := store.Get(sess.ID)
	require.Len(t, stored.Messages, 2)
	assert.Equal(t, "Error: connection reset", stored.Messages[1].Text)

	// The session stays usable; no automatic retry happened.
	require.NoError(t, e.SubmitTurn("again", nil))
	stored, _ = store.Get(sess.ID)
	assert.Len(t, stored.Messages, 4)
	assert.Equal(t, "recovered", stored.Messages[3].Text)
}

func TestSubmitTurn_RejectsEmpty(t *testing.T) {
	e, _, _ := newTestEngine(t, &gemini.ScriptedService{})
	e.StartNewSession(model.ModeZurk, "", "")
	assert.ErrorIs(t, e.SubmitTurn("   ", nil), ErrEmptyTurn)
}

func TestSubmitTurn_NoService(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)
	e.Bootstrap()
	assert.ErrorIs(t, e.SubmitTurn("hello", nil), ErrNoService)
	// Browsing still works.
	assert.NotNil(t, e.Active())
}

func TestSubmitTurn_BusyIgnored(t *testing.T) {
	gated := &gatedService{
		ScriptedService: &gemini.ScriptedService{
			Replies: []gemini.ScriptedReply{{Text: "done"}},
		},
		release: make(chan struct{}),
	}
	e, _, _ := newTestEngine(t, gated)
	sess, _ := e.StartNewSession(model.ModeZurk, "", "")
	sess.Title = "Busy"

	done := make(chan error, 1)
	go func() { done <- e.SubmitTurn("first", nil) }()
	awaitState(t, e, StateAwaitingResponse)

	assert.ErrorIs(t, e.SubmitTurn("second", nil), ErrBusy)

	close(gated.release)
	require.NoError(t, <-done)
	assert.Equal(t, StateIdle, e.CurrentState())
}

// =============================================================================
// IMAGE TURNS
// =============================================================================

func TestSubmitTurn_ImageDirective(t *testing.T) {
	svc := &gemini.ScriptedService{
		Images: []gemini.ScriptedImage{
			{Image: &gemini.Image{MIMEType: "image/jpeg", Data: []byte{1, 2, 3}}},
		},
	}
	e, store, _ := newTestEngine(t, svc)
	sess, _ := e.StartNewSession(model.ModeZurk, "", "")

	require.NoError(t, e.SubmitTurn("/image a red fox", nil))

	stored, _ := store.Get(sess.ID)
	require.Len(t, stored.Messages, 2)
	assert.Equal(t, "/image a red fox", stored.Messages[0].Text)

	reply := stored.Messages[1]
	assert.Equal(t, "Image for: a red fox", reply.Text)
	assert.True(t, strings.HasPrefix(reply.ImageURL, "data:image/jpeg;base64,"))

	// No transcript turn happened.
	assert.Empty(t, svc.StreamRequests)
	assert.Equal(t, []string{"a red fox"}, svc.ImagePrompts)
	// The image path never auto-titles.
	assert.Empty(t, svc.TitleCalls)
}

func TestSubmitTurn_ImageRefused(t *testing.T) {
	svc := &gemini.ScriptedService{Images: []gemini.ScriptedImage{{Image: nil}}}
	e, store, _ := newTestEngine(t, svc)
	sess, _ := e.StartNewSession(model.ModeZurk, "", "")

	require.NoError(t, e.SubmitTurn("/image something odd", nil))

	stored, _ := store.Get(sess.ID)
	require.Len(t, stored.Messages, 2)
	assert.Equal(t, "Sorry, I couldn't generate an image for that.", stored.Messages[1].Text)
	assert.Empty(t, stored.Messages[1].ImageURL)
}

func TestSubmitTurn_ImageFailure(t *testing.T) {
	svc := &gemini.ScriptedService{
		Images: []gemini.ScriptedImage{{Err: errors.New("quota exceeded")}},
	}
	e, store, _ := newTestEngine(t, svc)
	sess, _ := e.StartNewSession(model.ModeZurk, "", "")

	require.NoError(t, e.SubmitTurn("/image a fox", nil))

	stored, _ := store.Get(sess.ID)
	require.Len(t, stored.Messages, 2)
	assert.Equal(t, "Image generation failed: quota exceeded", stored.Messages[1].Text)
}

func TestSubmitTurn_NewsModeChainsImage(t *testing.T) {
	svc := &gemini.ScriptedService{
		Replies: []gemini.ScriptedReply{
			{Text: "Markets rallied today.\n/image sunset over hills"},
		},
		Images: []gemini.ScriptedImage{
			{Image: &gemini.Image{MIMEType: "image/jpeg", Data: []byte{9}}},
		},
		TitleText: "Market Rally",
	}
	e, store, _ := newTestEngine(t, svc)
	sess, _ := e.StartNewSession(model.ModeNews, "", "")

	require.NoError(t, e.SubmitTurn("markets today, with a picture", nil))
	e.WaitForTitles()

	stored, _ := store.Get(sess.ID)
	require.Len(t, stored.Messages, 3)

	// The directive line is stripped from the stored text.
	assert.Equal(t, "Markets rallied today.", stored.Messages[1].Text)

	// A chained image entry follows in the same turn.
	assert.NotEmpty(t, stored.Messages[2].ImageURL)
	assert.Equal(t, "Image for: sunset over hills", stored.Messages[2].Text)
	assert.Equal(t, []string{"sunset over hills"}, svc.ImagePrompts)
}

// =============================================================================
// GROUNDED & MULTIMODAL TURNS
// =============================================================================

func TestSubmitTurn_GroundedDedupesReferences(t *testing.T) {
	svc := &gemini.ScriptedService{
		Replies: []gemini.ScriptedReply{{
			Text: "Grounded answer.",
			References: []model.GroundingReference{
				{URI: "https://a.example", Title: "A"},
				{URI: "https://b.example", Title: "B"},
				{URI: "https://a.example", Title: "A dup"},
				{URI: "https://c.example", Title: "C"},
			},
		}},
		TitleText: "Grounded Question",
	}
	e, store, _ := newTestEngine(t, svc)
	sess, _ := e.StartNewSession(model.ModeWebSearch, "", "")

	require.NoError(t, e.SubmitTurn("what happened today", nil))
	e.WaitForTitles()

	require.Len(t, svc.GroundedRequests, 1)
	assert.True(t, svc.GroundedRequests[0].UseWebSearch)
	assert.Empty(t, svc.StreamRequests)

	stored, _ := store.Get(sess.ID)
	require.Len(t, stored.Messages, 2)
	refs := stored.Messages[1].References
	require.Len(t, refs, 3)
	assert.Equal(t, "https://a.example", refs[0].URI)
	assert.Equal(t, "https://b.example", refs[1].URI)
	assert.Equal(t, "https://c.example", refs[2].URI)
}

func TestSubmitTurn_MultimodalAttachment(t *testing.T) {
	svc := &gemini.ScriptedService{
		Replies:   []gemini.ScriptedReply{{Text: "That is a fox."}},
		TitleText: "Fox Photo",
	}
	e, store, _ := newTestEngine(t, svc)
	sess, _ := e.StartNewSession(model.ModeZurk, "", "")

	blob := &gemini.Blob{MIMEType: "image/png", Data: []byte{1}}
	require.NoError(t, e.SubmitTurn("what is this", blob))
	e.WaitForTitles()

	require.Len(t, svc.DescribeRequests, 1)
	assert.Empty(t, svc.StreamRequests, "multimodal turns bypass the transcript")

	stored, _ := store.Get(sess.ID)
	require.Len(t, stored.Messages, 2)
	assert.True(t, strings.HasPrefix(stored.Messages[0].ImageURL, "data:image/png;base64,"))
	assert.Equal(t, "That is a fox.", stored.Messages[1].Text)
}

// slowTitleService holds every Title call until the gate opens, so a
// pending title goroutine can be made to overlap the next turn.
type slowTitleService struct {
	*gemini.ScriptedService
	gate chan struct{}
}

func (s *slowTitleService) Title(ctx context.Context, userText, replyText string) (string, error) {
	select {
	case <-s.gate:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return s.ScriptedService.Title(ctx, userText, replyText)
}

// A title still in flight when the next turn runs must not erase that
// turn's persisted messages, and the placeholder is replaced once.
func TestSubmitTurn_PendingTitleKeepsLaterMessages(t *testing.T) {
	svc := &slowTitleService{
		ScriptedService: &gemini.ScriptedService{
			Replies: []gemini.ScriptedReply{
				{Text: "First reply.", ChunkSize: 4},
				{Text: "Second reply.", ChunkSize: 4},
			},
			TitleText: "Fox Trivia",
		},
		gate: make(chan struct{}),
	}
	e, store, _ := newTestEngine(t, svc)
	sess, err := e.StartNewSession(model.ModeZurk, "", "")
	require.NoError(t, err)

	require.NoError(t, e.SubmitTurn("first", nil))
	require.NoError(t, e.SubmitTurn("second", nil))

	close(svc.gate)
	e.WaitForTitles()

	stored, err := store.Get(sess.ID)
	require.NoError(t, err)
	require.Len(t, stored.Messages, 4, "title update erased a later turn's messages")
	assert.Equal(t, "second", stored.Messages[2].Text)
	assert.Equal(t, "Second reply.", stored.Messages[3].Text)
	assert.Equal(t, "Fox Trivia", stored.Title)
}

func TestSubmitTurn_GodModeCreateRewrite(t *testing.T) {
	svc := &gemini.ScriptedService{
		Replies:   []gemini.ScriptedReply{{Text: "Let there be dragons."}},
		TitleText: "Dragon Genesis",
	}
	e, store, _ := newTestEngine(t, svc)
	sess, _ := e.StartNewSession(model.ModeGod, "", "")

	require.NoError(t, e.SubmitTurn("/create a dragon", nil))
	e.WaitForTitles()

	require.Len(t, svc.StreamRequests, 1)
	assert.Contains(t, svc.StreamRequests[0].Prompt, "primordial deity")
	assert.Contains(t, svc.StreamRequests[0].Prompt, "a dragon")

	// The stored user message carries the rewritten petition too.
	stored, _ := store.Get(sess.ID)
	assert.Contains(t, stored.Messages[0].Text, "primordial deity")
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

func TestStartNewSession_CancelsInFlight(t *testing.T) {
	gated := &gatedService{
		ScriptedService: &gemini.ScriptedService{
			Replies: []gemini.ScriptedReply{{Text: "never delivered"}},
		},
		release: make(chan struct{}),
	}
	e, store, _ := newTestEngine(t, gated)
	old, _ := e.StartNewSession(model.ModeZurk, "", "")
	old.Title = "Old"

	done := make(chan error, 1)
	go func() { done <- e.SubmitTurn("hanging question", nil) }()
	awaitState(t, e, StateAwaitingResponse)

	fresh, err := e.StartNewSession(model.ModeCoder, "", "")
	require.NoError(t, err)
	require.NoError(t, <-done)

	// The abandoned turn settled into the old session, not the new one.
	freshStored, _ := store.Get(fresh.ID)
	assert.Empty(t, freshStored.Messages)

	oldStored, _ := store.Get(old.ID)
	require.Len(t, oldStored.Messages, 2)
	assert.True(t, strings.HasSuffix(oldStored.Messages[1].Text, StopMarker))

	assert.Equal(t, fresh.ID, store.ActiveID())
}

func TestEditAndResubmit_ForksWithoutMutatingSource(t *testing.T) {
	svc := &gemini.ScriptedService{
		Replies:   []gemini.ScriptedReply{{Text: "r1"}, {Text: "r2"}, {Text: "r3"}},
		TitleText: "Title",
	}
	e, store, _ := newTestEngine(t, svc)
	sess, _ := e.StartNewSession(model.ModeZurk, "", "")
	require.NoError(t, e.SubmitTurn("question one", nil))
	require.NoError(t, e.SubmitTurn("question two", nil))
	e.WaitForTitles()

	source, _ := store.Get(sess.ID)
	require.Len(t, source.Messages, 4)
	editTarget := source.Messages[2] // "question two"

	require.NoError(t, e.EditAndResubmit(editTarget.ID, "question two, revised"))
	e.WaitForTitles()

	// The original session kept all four messages.
	source, _ = store.Get(sess.ID)
	assert.Len(t, source.Messages, 4)

	fork := e.Active()
	require.NotEqual(t, sess.ID, fork.ID)
	assert.Equal(t, "Title (edited)", fork.Title)

	forkStored, _ := store.Get(fork.ID)
	require.Len(t, forkStored.Messages, 4)
	assert.Equal(t, "question one", forkStored.Messages[0].Text)
	assert.Equal(t, "r1", forkStored.Messages[1].Text)
	assert.Equal(t, "question two, revised", forkStored.Messages[2].Text)
	assert.Equal(t, "r3", forkStored.Messages[3].Text)
}

func TestEditAndResubmit_UnknownMessageIsNoOp(t *testing.T) {
	e, store, _ := newTestEngine(t, &gemini.ScriptedService{})
	sess, _ := e.StartNewSession(model.ModeZurk, "", "")

	require.NoError(t, e.EditAndResubmit("msg_missing", "text"))
	assert.Equal(t, sess.ID, e.Active().ID)
	assert.Len(t, store.Sessions(), 1)
}

func TestDeleteSession_AlwaysLeavesOneActive(t *testing.T) {
	e, store, _ := newTestEngine(t, &gemini.ScriptedService{})
	first, _ := e.StartNewSession(model.ModeZurk, "", "")
	second, _ := e.StartNewSession(model.ModeCoder, "", "")
	require.Equal(t, second.ID, store.ActiveID())

	// Deleting the active session promotes the most recent remaining.
	require.NoError(t, e.DeleteSession(second.ID))
	assert.Equal(t, first.ID, e.Active().ID)
	assert.Equal(t, first.ID, store.ActiveID())

	// Deleting the last session creates a fresh default.
	require.NoError(t, e.DeleteSession(first.ID))
	active := e.Active()
	require.NotNil(t, active)
	assert.Equal(t, model.ModeZurk, active.Mode)
	assert.Equal(t, model.TitlePlaceholder, active.Title)
	assert.Len(t, store.Sessions(), 1)
	assert.Equal(t, active.ID, store.ActiveID())
}

func TestBootstrap_CorruptStoreDegradesToFresh(t *testing.T) {
	kv, err := storage.NewFileKV(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, kv.Set(storage.KeyChatHistory, []byte("not json at all")))
	require.NoError(t, kv.Set(storage.KeyActiveChatID, []byte("ghost")))

	store := storage.NewStore(kv)
	e := New(store, &gemini.ScriptedService{}, persona.New(""), nil)

	sess := e.Bootstrap()
	require.NotNil(t, sess)
	assert.Equal(t, model.TitlePlaceholder, sess.Title)
	assert.Len(t, store.Sessions(), 1)
}

func TestStartNewSession_DeveloperUnavailable(t *testing.T) {
	e, _, _ := newTestEngine(t, &gemini.ScriptedService{})
	_, err := e.StartNewSession(model.ModeDeveloper, "", "")
	assert.ErrorIs(t, err, persona.ErrModeUnavailable)
}

func TestStartNewSession_CustomPersonaFallsBackToSaved(t *testing.T) {
	svc := &gemini.ScriptedService{Replies: []gemini.ScriptedReply{{Text: "arr"}}}
	e, store, _ := newTestEngine(t, svc)
	require.NoError(t, store.SetCustomPersona("You are a pirate."))

	sess, err := e.StartNewSession(model.ModeCustom, "", "")
	require.NoError(t, err)
	assert.Equal(t, "You are a pirate.", sess.CustomPersona)
	sess.Title = "Pirate"

	require.NoError(t, e.SubmitTurn("ahoy", nil))
	require.Len(t, svc.StreamRequests, 1)
	assert.Equal(t, "You are a pirate.", svc.StreamRequests[0].SystemInstruction)
}

// =============================================================================
// TITLES
// =============================================================================

func TestTitle_OnlyReplacesPlaceholder(t *testing.T) {
	svc := &gemini.ScriptedService{
		Replies:   []gemini.ScriptedReply{{Text: "one"}, {Text: "two"}},
		TitleText: "Auto Title",
	}
	e, store, _ := newTestEngine(t, svc)
	sess, _ := e.StartNewSession(model.ModeZurk, "", "")

	// A manually set title is never overwritten.
	require.NoError(t, store.Update(sess.ID, func(s *model.Session) {
		s.Title = "Manual Title"
	}))
	sess.Title = "Manual Title"

	require.NoError(t, e.SubmitTurn("hi", nil))
	e.WaitForTitles()

	stored, _ := store.Get(sess.ID)
	assert.Equal(t, "Manual Title", stored.Title)
	assert.Empty(t, svc.TitleCalls)
}

func TestTitle_SetAtMostOnce(t *testing.T) {
	svc := &gemini.ScriptedService{
		Replies:   []gemini.ScriptedReply{{Text: "one"}, {Text: "two"}},
		TitleText: "Auto Title",
	}
	e, store, _ := newTestEngine(t, svc)
	sess, _ := e.StartNewSession(model.ModeZurk, "", "")

	require.NoError(t, e.SubmitTurn("first", nil))
	e.WaitForTitles()
	require.NoError(t, e.SubmitTurn("second", nil))
	e.WaitForTitles()

	stored, _ := store.Get(sess.ID)
	assert.Equal(t, "Auto Title", stored.Title)
	assert.Len(t, svc.TitleCalls, 1)
}

func TestTitle_FailureKeepsPlaceholder(t *testing.T) {
	svc := &gemini.ScriptedService{
		Replies:  []gemini.ScriptedReply{{Text: "reply"}},
		TitleErr: fmt.Errorf("title service down"),
	}
	e, store, _ := newTestEngine(t, svc)
	sess, _ := e.StartNewSession(model.ModeZurk, "", "")

	require.NoError(t, e.SubmitTurn("hello", nil))
	e.WaitForTitles()

	stored, _ := store.Get(sess.ID)
	assert.Equal(t, model.TitlePlaceholder, stored.Title)
}
