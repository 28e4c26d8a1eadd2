// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ZeynTheCreator/ZurkAi/internal/gemini"
	"github.com/ZeynTheCreator/ZurkAi/internal/model"
	"github.com/ZeynTheCreator/ZurkAi/internal/persona"
	"github.com/ZeynTheCreator/ZurkAi/internal/storage"
)

// =============================================================================
// CONSTANTS & ERRORS
// =============================================================================

const (
	// imagePrefix routes a prompt to image generation.
	imagePrefix = "/image "

	// StopMarker finalizes a reply the user stopped mid-stream.
	StopMarker = "\n\n-- Generation stopped by user --"

	// documentFraming wraps a user prompt with attached document text.
	documentFraming = "--- PDF Content ---\n%s\n\n--- User Prompt ---\n%s"

	// titleTimeout bounds the background auto-title request.
	titleTimeout = 30 * time.Second
)

// newsImageDirective finds an embedded image directive in a news-mode
// reply. It matches to the end of the line.
var newsImageDirective = regexp.MustCompile(`/image\s+(.*)`)

var (
	// ErrBusy means a generation is already in flight; the submission
	// is ignored.
	ErrBusy = errors.New("a generation is already in flight")

	// ErrEmptyTurn means the turn carried neither text nor an
	// attachment.
	ErrEmptyTurn = errors.New("a turn needs text or an attachment")

	// ErrNoService means no API key is configured. Generation is
	// disabled; history browsing still works.
	ErrNoService = errors.New("no API key configured, generation is disabled")
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine drives the active conversation. Construct with New; svc may
// be nil when no credential is available, which disables generation
// but leaves sessions browsable.
type Engine struct {
	store  *storage.Store
	svc    gemini.Service
	policy *persona.Policy
	sink   Sink

	cancelMgr *cancelManager

	mu           sync.Mutex
	state        State
	active       *model.Session
	directive    persona.Directive
	directiveErr error

	inFlight sync.WaitGroup
	titleWG  sync.WaitGroup
}

// New creates an Engine. A nil sink discards events.
func New(store *storage.Store, svc gemini.Service, policy *persona.Policy, sink Sink) *Engine {
	if sink == nil {
		sink = NopSink{}
	}
	return &Engine{
		store:     store,
		svc:       svc,
		policy:    policy,
		sink:      sink,
		cancelMgr: newCancelManager(),
	}
}

// SetSink replaces the event sink. Call before submitting turns; the
// frontends install their sink right after construction.
func (e *Engine) SetSink(sink Sink) {
	if sink == nil {
		sink = NopSink{}
	}
	e.mu.Lock()
	e.sink = sink
	e.mu.Unlock()
}

// Store exposes the session repository for read-side consumers
// (session lists, export).
func (e *Engine) Store() *storage.Store { return e.store }

// Policy exposes the persona policy (mode availability checks).
func (e *Engine) Policy() *persona.Policy { return e.policy }

// Active returns the active session.
func (e *Engine) Active() *model.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// CurrentState returns the generation state.
func (e *Engine) CurrentState() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// Bootstrap restores the persisted active session, falling back to the
// most recent session, then to a fresh default one. There is always
// exactly one active session afterwards.
func (e *Engine) Bootstrap() *model.Session {
	if id := e.store.ActiveID(); id != "" {
		if sess, err := e.store.Get(id); err == nil {
			e.activate(sess)
			return sess
		}
	}
	if sessions := e.store.Sessions(); len(sessions) > 0 {
		e.activate(sessions[0])
		return sessions[0]
	}
	sess, _ := e.StartNewSession(model.ModeZurk, "", "")
	return sess
}

// LoadSession makes the session with the given id active. An unknown
// id falls back silently to a fresh default session.
func (e *Engine) LoadSession(id string) *model.Session {
	sess, err := e.store.Get(id)
	if err != nil {
		fresh, _ := e.StartNewSession(model.ModeZurk, "", "")
		return fresh
	}
	e.activate(sess)
	return sess
}

// StartNewSession cancels any in-flight generation, creates a session
// and makes it active. For custom mode an empty persona falls back to
// the saved persona text.
func (e *Engine) StartNewSession(mode model.Mode, customPersona, title string) (*model.Session, error) {
	if !e.policy.Available(mode) {
		return nil, fmt.Errorf("%w: %s", persona.ErrModeUnavailable, mode)
	}
	e.cancelAndWait()

	if mode == model.ModeCustom && strings.TrimSpace(customPersona) == "" {
		customPersona = e.store.CustomPersona()
	}
	sess := model.NewSession(mode, customPersona)
	if title != "" {
		sess.Title = title
	}
	if err := e.store.Create(sess); err != nil {
		return nil, err
	}
	e.activate(sess)
	return sess, nil
}

// DeleteSession removes a session. Deleting the active one promotes
// the most recent remaining session, or creates a fresh default, so
// exactly one session is active afterwards. Unknown ids are no-ops.
func (e *Engine) DeleteSession(id string) error {
	e.mu.Lock()
	wasActive := e.active != nil && e.active.ID == id
	e.mu.Unlock()

	if wasActive {
		e.cancelAndWait()
	}
	if err := e.store.Delete(id); err != nil {
		return err
	}
	if !wasActive {
		return nil
	}

	if promoted := e.store.ActiveID(); promoted != "" {
		if sess, err := e.store.Get(promoted); err == nil {
			e.activate(sess)
			return nil
		}
	}
	_, err := e.StartNewSession(model.ModeZurk, "", "")
	return err
}

// ForkAt creates a forked session seeded with the history strictly
// before the given message and switches to it. Returns the forked
// message's text (for prefilling an input) and whether the fork
// happened; unknown message ids are no-ops.
func (e *Engine) ForkAt(messageID string) (string, bool) {
	e.mu.Lock()
	active := e.active
	e.mu.Unlock()
	if active == nil {
		return "", false
	}

	idx := active.FindMessage(messageID)
	if idx < 0 {
		return "", false
	}
	prefill := active.Messages[idx].Text

	fork := active.Fork(messageID)
	e.cancelAndWait()
	if err := e.store.Create(fork); err != nil {
		return "", false
	}
	e.activate(fork)
	return prefill, true
}

// EditAndResubmit forks at the given message, switches to the fork and
// submits the replacement prompt (or the original text when empty).
func (e *Engine) EditAndResubmit(messageID, prompt string) error {
	original, ok := e.ForkAt(messageID)
	if !ok {
		return nil
	}
	if strings.TrimSpace(prompt) == "" {
		prompt = original
	}
	return e.SubmitTurn(prompt, nil)
}

// activate installs sess as the active session, resolving its
// directive and persisting the choice.
func (e *Engine) activate(sess *model.Session) {
	e.cancelAndWait()
	directive, err := e.policy.Resolve(sess.Mode, sess.CustomPersona)

	e.mu.Lock()
	e.active = sess
	e.directive = directive
	e.directiveErr = err
	e.mu.Unlock()

	e.store.SetActiveID(sess.ID)
	e.sink.SessionChanged(sess)
}

// cancelAndWait cancels any in-flight generation and waits for it to
// settle, so no message from an abandoned turn lands in a newly
// activated session.
func (e *Engine) cancelAndWait() {
	e.cancelMgr.cancel()
	e.inFlight.Wait()
}

// CancelActive signals the in-flight generation, if any. Idempotent.
func (e *Engine) CancelActive() {
	e.cancelMgr.cancel()
}

// =============================================================================
// DOCUMENT CONTEXT & PERSONA
// =============================================================================

// AttachDocument attaches extracted document text to the active
// session. It stays attached, injected into every user turn, until
// ClearDocument.
func (e *Engine) AttachDocument(name, text string) error {
	e.mu.Lock()
	active := e.active
	e.mu.Unlock()
	if active == nil {
		return nil
	}
	doc := &model.DocumentContext{Name: name, Text: text}
	active.Document = doc
	return e.store.Update(active.ID, func(s *model.Session) {
		s.Document = doc
	})
}

// ClearDocument detaches the document context from the active session.
func (e *Engine) ClearDocument() error {
	e.mu.Lock()
	active := e.active
	e.mu.Unlock()
	if active == nil {
		return nil
	}
	active.Document = nil
	return e.store.Update(active.ID, func(s *model.Session) {
		s.Document = nil
	})
}

// SetCustomPersona saves the persona text and, when the active session
// is in custom mode, applies it to the session.
func (e *Engine) SetCustomPersona(text string) error {
	if err := e.store.SetCustomPersona(text); err != nil {
		return err
	}

	e.mu.Lock()
	active := e.active
	e.mu.Unlock()
	if active == nil || active.Mode != model.ModeCustom {
		return nil
	}

	active.CustomPersona = text
	directive, err := e.policy.Resolve(model.ModeCustom, text)

	e.mu.Lock()
	e.directive = directive
	e.directiveErr = err
	e.mu.Unlock()

	return e.store.Update(active.ID, func(s *model.Session) {
		s.CustomPersona = text
	})
}

// =============================================================================
// TURN SUBMISSION
// =============================================================================

// SubmitTurn runs one user turn against the active session. It blocks
// until the turn settles; callers wanting a responsive UI run it in a
// goroutine and consume Sink events. Submissions while a generation is
// in flight return ErrBusy and are otherwise ignored.
func (e *Engine) SubmitTurn(prompt string, attachment *gemini.Blob) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" && attachment == nil {
		return ErrEmptyTurn
	}

	e.mu.Lock()
	if e.active == nil {
		e.mu.Unlock()
		return fmt.Errorf("no active session")
	}
	if e.svc == nil {
		e.mu.Unlock()
		return ErrNoService
	}
	if e.directiveErr != nil {
		err := e.directiveErr
		e.mu.Unlock()
		return err
	}
	if e.state != StateIdle {
		e.mu.Unlock()
		return ErrBusy
	}
	e.state = StateAwaitingResponse
	e.inFlight.Add(1)
	sess := e.active
	directive := e.directive
	e.mu.Unlock()

	e.sink.StateChanged(StateAwaitingResponse)
	ctx := e.cancelMgr.start()

	defer func() {
		e.cancelMgr.clear()
		e.mu.Lock()
		e.state = StateIdle
		e.mu.Unlock()
		e.sink.StateChanged(StateIdle)
		e.inFlight.Done()
	}()

	prompt = persona.RewriteGodCreate(sess.Mode, prompt)

	// History is replayed from the messages before this turn.
	history := replayTurns(sess)

	var imageURL string
	if attachment != nil {
		img := gemini.Image{MIMEType: attachment.MIMEType, Data: attachment.Data}
		imageURL = img.DataURI()
	}
	userMsg, err := model.NewUserMessage(prompt, imageURL)
	if err != nil {
		return err
	}
	e.appendMessage(sess, userMsg)

	outgoing := prompt
	if sess.Document != nil {
		outgoing = fmt.Sprintf(documentFraming, sess.Document.Text, prompt)
	}

	switch {
	case strings.HasPrefix(prompt, imagePrefix):
		e.imageTurn(ctx, sess, strings.TrimSpace(prompt[len(imagePrefix):]))
	case directive.UseWebSearch:
		e.groundedTurn(ctx, sess, directive, history, outgoing)
	case attachment != nil:
		e.multimodalTurn(ctx, sess, prompt, *attachment)
	default:
		e.streamedTurn(ctx, sess, directive, history, outgoing)
	}
	return nil
}

// streamedTurn runs the plain-text streaming path.
func (e *Engine) streamedTurn(ctx context.Context, sess *model.Session, directive persona.Directive, history []gemini.Turn, outgoing string) {
	msg := model.NewStreamingMessage()
	e.sink.MessageAppended(sess, msg)

	req := &gemini.Request{
		SystemInstruction: directive.SystemInstruction,
		History:           history,
		Prompt:            outgoing,
	}
	reply, err := e.svc.StreamChat(ctx, req, func(chunk string) {
		msg.AppendChunk(chunk)
		e.sink.StreamChunk(msg.ID, chunk)
	})
	if err != nil {
		if isCanceled(ctx, err) {
			// Partial output survives, finalized with the stop marker.
			msg.SetText(msg.DisplayText() + StopMarker)
			e.persistFinalized(sess, msg)
			return
		}
		msg.SetText("Error: " + err.Error())
		e.persistFinalized(sess, msg)
		return
	}

	text := reply.Text
	if sess.Mode == model.ModeNews {
		if m := newsImageDirective.FindStringSubmatch(text); m != nil {
			// The directive line is stripped from the stored text and
			// chains an image generation on the same token.
			text = strings.TrimSpace(strings.Replace(text, m[0], "", 1))
			msg.SetText(text)
			e.persistFinalized(sess, msg)
			e.imageTurn(ctx, sess, strings.TrimSpace(m[1]))
			e.maybeTitle(sess, outgoing, text)
			return
		}
	}

	msg.SetText(text)
	e.persistFinalized(sess, msg)
	e.maybeTitle(sess, outgoing, text)
}

// groundedTurn runs the non-streaming web-search path.
func (e *Engine) groundedTurn(ctx context.Context, sess *model.Session, directive persona.Directive, history []gemini.Turn, outgoing string) {
	req := &gemini.Request{
		UseWebSearch: directive.UseWebSearch,
		History:      history,
		Prompt:       outgoing,
	}
	reply, err := e.svc.GroundedChat(ctx, req)
	if err != nil {
		if isCanceled(ctx, err) {
			return
		}
		e.appendMessage(sess, model.NewAssistantMessage("Error: "+err.Error()))
		return
	}

	msg := model.NewAssistantMessage(reply.Text)
	msg.References = model.DedupeReferences(reply.References)
	e.appendMessage(sess, msg)
	e.maybeTitle(sess, outgoing, reply.Text)
}

// multimodalTurn runs the one-shot image+text path, bypassing the
// transcript.
func (e *Engine) multimodalTurn(ctx context.Context, sess *model.Session, prompt string, img gemini.Blob) {
	reply, err := e.svc.DescribeImage(ctx, prompt, img)
	if err != nil {
		if isCanceled(ctx, err) {
			return
		}
		e.appendMessage(sess, model.NewAssistantMessage("Error: "+err.Error()))
		return
	}
	e.appendMessage(sess, model.NewAssistantMessage(reply.Text))
	e.maybeTitle(sess, prompt, reply.Text)
}

// imageTurn runs one image generation and appends the outcome.
func (e *Engine) imageTurn(ctx context.Context, sess *model.Session, desc string) {
	img, err := e.svc.GenerateImage(ctx, desc)
	switch {
	case err == nil:
		e.appendMessage(sess, model.NewImageMessage("Image for: "+desc, img.DataURI()))
	case errors.Is(err, gemini.ErrNoImage):
		e.appendMessage(sess, model.NewAssistantMessage("Sorry, I couldn't generate an image for that."))
	case isCanceled(ctx, err):
		// A cancelled image request appends nothing.
	default:
		e.appendMessage(sess, model.NewAssistantMessage("Image generation failed: "+err.Error()))
	}
}

// =============================================================================
// PERSISTENCE & TITLES
// =============================================================================

// appendMessage adds the message to the in-memory session, persists it
// immediately, and reports it.
func (e *Engine) appendMessage(sess *model.Session, msg *model.Message) {
	sess.Append(msg)
	e.store.AppendMessage(sess.ID, msg)
	e.sink.MessageAppended(sess, msg)
}

// persistFinalized stores a message that streamed through the sink
// already and reports its final form.
func (e *Engine) persistFinalized(sess *model.Session, msg *model.Message) {
	sess.Append(msg)
	e.store.AppendMessage(sess.ID, msg)
	e.sink.MessageFinalized(sess, msg)
}

// maybeTitle asynchronously titles the session after its first
// exchange. Only the placeholder title is ever replaced, and only
// once; failures leave the placeholder in place.
func (e *Engine) maybeTitle(sess *model.Session, promptText, replyText string) {
	// The in-memory title is written by a prior turn's goroutine under
	// e.mu, so the read takes the lock too.
	e.mu.Lock()
	titled := sess.Title != model.TitlePlaceholder
	e.mu.Unlock()
	if titled {
		return
	}
	e.titleWG.Add(1)
	go func() {
		defer e.titleWG.Done()

		ctx, cancel := context.WithTimeout(context.Background(), titleTimeout)
		defer cancel()
		title, err := e.svc.Title(ctx, promptText, replyText)
		if err != nil || title == "" {
			return
		}

		updated := false
		e.store.Update(sess.ID, func(s *model.Session) {
			if s.Title == model.TitlePlaceholder {
				s.Title = title
				updated = true
			}
		})
		if !updated {
			return
		}

		e.mu.Lock()
		if sess.Title == model.TitlePlaceholder {
			sess.Title = title
		}
		e.mu.Unlock()
		e.sink.TitleChanged(sess)
	}()
}

// WaitForTitles blocks until pending auto-title goroutines finish.
func (e *Engine) WaitForTitles() {
	e.titleWG.Wait()
}

// =============================================================================
// HELPERS
// =============================================================================

// replayTurns converts stored history into service turns. Messages
// without text (image-only) are excluded; with a document attached,
// every user turn is framed with the document text.
func replayTurns(sess *model.Session) []gemini.Turn {
	turns := make([]gemini.Turn, 0, len(sess.Messages))
	for _, m := range sess.Messages {
		if m.Text == "" {
			continue
		}
		text := m.Text
		if m.Sender == model.SenderUser && sess.Document != nil {
			text = fmt.Sprintf(documentFraming, sess.Document.Text, m.Text)
		}
		turns = append(turns, gemini.Turn{Sender: m.Sender, Text: text})
	}
	return turns
}

// isCanceled distinguishes cancellation from real failures.
func isCanceled(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) || ctx.Err() != nil
}
