// Package service ties the settings pipeline together: it rebuilds the
// effective keymap from the settings note, hot-swaps the script
// bridge, and applies asynchronous run results back onto note text.
package service

import (
	"strings"
	"sync"
	"time"

	"github.com/shelv/shelv/internal/llm"
	"github.com/shelv/shelv/internal/note"
	"github.com/shelv/shelv/internal/script"
	"github.com/shelv/shelv/internal/settings"
	"github.com/shelv/shelv/internal/settings/keymap"
)

// Fence languages recognized in the settings note.
const (
	SettingsLang = "settings"
	ScriptLang   = "lua"
)

// Engine owns the current effective keymap and the script bridge
// backing it. Rebuild replaces both atomically; readers always see a
// consistent pair.
type Engine struct {
	mu     sync.RWMutex
	bridge *script.Bridge
	snap   *keymap.Snapshot
	runner *llm.Runner

	subs    map[uint64]func(*keymap.Snapshot)
	nextSub uint64

	scriptTimeout time.Duration
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRunner attaches the LLM runner so rebuilds and note edits can
// reconcile in-flight runs.
func WithRunner(r *llm.Runner) EngineOption {
	return func(e *Engine) {
		e.runner = r
	}
}

// WithScriptTimeout bounds script evaluation during rebuilds.
func WithScriptTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.scriptTimeout = d
		}
	}
}

// NewEngine creates an engine holding the default keymap. The first
// Rebuild replaces it with the user's settings.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		subs:          make(map[uint64]func(*keymap.Snapshot)),
		scriptTimeout: script.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.snap = keymap.Build(keymap.Defaults(), settings.DefaultAIConfig(), nil)
	return e
}

// Close releases the engine's script bridge.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bridge != nil {
		e.bridge.Close()
		e.bridge = nil
	}
}

// Snapshot returns the current effective keymap.
func (e *Engine) Snapshot() *keymap.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

// AI returns the currently effective AI configuration.
func (e *Engine) AI() settings.AIConfig {
	return e.Snapshot().AI()
}

// Bridge returns the script bridge behind the current snapshot, or nil
// before the first rebuild.
func (e *Engine) Bridge() *script.Bridge {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.bridge
}

// Rebuild reparses the settings note and swaps in a new snapshot and
// script bridge. Script and settings blocks are processed in document
// order; a failing block is reported in the snapshot's diagnostics and
// the rest of the document still applies.
func (e *Engine) Rebuild(text string) *keymap.Snapshot {
	bridge := script.New(script.WithTimeout(e.scriptTimeout))

	decls := keymap.Defaults()
	ai := settings.DefaultAIConfig()
	var diags []settings.Diagnostic
	order := 0

	for _, b := range note.ExtractBlocks(text) {
		switch b.Lang {
		case ScriptLang:
			if _, err := bridge.EvalModule(b.Body); err != nil {
				diags = append(diags, settings.Diagnostic{
					Offset:  b.Span.Start,
					Message: err.Error(),
					Err:     err,
				})
			}
		case SettingsLang:
			res, err := settings.ParseBlock(b.Body, order, bridge.ModuleCount())
			if err != nil {
				diags = append(diags, settings.Diagnostic{
					Offset:  b.Span.Start,
					Message: err.Error(),
					Err:     err,
				})
				continue
			}
			decls = append(decls, res.Declarations...)
			diags = append(diags, res.Diagnostics...)
			for _, o := range res.AI {
				ai = ai.Apply(o)
			}
			order = res.NextOrder
		}
	}

	snap := keymap.Build(decls, ai, diags)

	e.mu.Lock()
	old := e.bridge
	e.bridge = bridge
	e.snap = snap
	subs := make([]func(*keymap.Snapshot), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.mu.Unlock()

	if old != nil {
		old.Close()
	}
	for _, fn := range subs {
		fn(snap)
	}
	return snap
}

// Subscription is an active snapshot subscription.
type Subscription struct {
	id     uint64
	engine *Engine
}

// Unsubscribe stops delivery to this subscriber.
func (s *Subscription) Unsubscribe() {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	delete(s.engine.subs, s.id)
}

// Subscribe registers fn to run after every rebuild with the fresh
// snapshot. Delivery is synchronous, on the rebuilding goroutine.
func (e *Engine) Subscribe(fn func(*keymap.Snapshot)) *Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return &Subscription{id: id, engine: e}
}

// ApplyMutation writes one completed run's result into its output
// block. A failed run leaves the error message in the block so the
// user sees what happened.
func (e *Engine) ApplyMutation(text string, m llm.Mutation) (string, bool) {
	body := m.Body
	if m.Err != nil {
		body = "error: " + m.Err.Error()
	}
	return note.WriteOutput(text, m.Address, body)
}

// SyncRuns reconciles in-flight runs with the note's current blocks:
// runs whose source block no longer exists are cancelled.
func (e *Engine) SyncRuns(text string) {
	if e.runner == nil {
		return
	}
	valid := make(map[string]bool)
	for _, b := range note.ExtractBlocks(text) {
		if b.Lang == llm.BlockLang {
			valid[note.Address(llm.BlockLang, strings.TrimSpace(b.Body))] = true
		}
	}
	e.runner.Retain(valid)
}
