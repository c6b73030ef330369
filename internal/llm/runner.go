package llm

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shelv/shelv/internal/note"
	"github.com/shelv/shelv/internal/settings"
)

// RunState is the lifecycle of one block's run.
type RunState uint8

const (
	StateIdle RunState = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Mutation is one completed run's result, to be written into the
// output block with the given address. All completions flow through
// the single mutation queue so the note buffer is only ever mutated
// from one logical path.
type Mutation struct {
	RunID   string
	Address string
	Body    string
	Err     error
}

// Triggered reports a started run: the updated note text with the
// output block reset, and the run's identity.
type Triggered struct {
	RunID   string
	Address string
	Text    string
}

// ProviderFactory builds a provider for a configuration. Tests swap
// this for a fake.
type ProviderFactory func(settings.AIConfig) (Provider, error)

// Runner owns the per-block run state machine: Idle until triggered,
// Running while a request is in flight, then Succeeded or Failed.
// Re-triggering a Running block supersedes it: the in-flight request
// is cancelled and a fresh run starts.
type Runner struct {
	mu        sync.Mutex
	runs      map[string]*run // keyed by output block address
	provider  ProviderFactory
	mutations chan Mutation
}

type run struct {
	id     string
	state  RunState
	cancel context.CancelFunc
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithProviderFactory overrides backend selection.
func WithProviderFactory(f ProviderFactory) RunnerOption {
	return func(r *Runner) {
		r.provider = f
	}
}

// NewRunner creates a runner delivering completions on its mutation
// queue.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		runs:      make(map[string]*run),
		provider:  ProviderFor,
		mutations: make(chan Mutation, 16),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mutations is the completion queue. The consumer applies each
// mutation onto the note buffer.
func (r *Runner) Mutations() <-chan Mutation {
	return r.mutations
}

// State returns the run state for an output block address.
func (r *Runner) State(address string) RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rn, ok := r.runs[address]; ok {
		return rn.state
	}
	return StateIdle
}

// RunBlock triggers the run for the source block under the cursor.
// It synchronously resets the block's output block in the returned
// text and starts the request in the background.
func (r *Runner) RunBlock(text string, cursor int, cfg settings.AIConfig) (*Triggered, error) {
	family := note.FamilyBlocks(note.ExtractBlocks(text), BlockLang)
	sourceIdx, ok := findSourceBlock(family, cursor)
	if !ok {
		return nil, ErrNoBlock
	}

	provider, err := r.provider(cfg)
	if err != nil {
		return nil, err
	}

	req := buildConversation(text, family, sourceIdx, cfg)
	newText, address := note.EnsureOutputBlock(text, family, sourceIdx, BlockLang)

	runID := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	r.mu.Lock()
	if prev, ok := r.runs[address]; ok && prev.state == StateRunning {
		prev.cancel()
	}
	r.runs[address] = &run{id: runID, state: StateRunning, cancel: cancel}
	r.mu.Unlock()

	go r.execute(ctx, runID, address, provider, req)

	return &Triggered{RunID: runID, Address: address, Text: newText}, nil
}

// RunPrompt performs an inline prompt request synchronously. The host
// UI calls it off the input thread and applies the parsed response
// itself.
func (r *Runner) RunPrompt(ctx context.Context, pc PromptContext, instruction string, cfg settings.AIConfig) (Response, error) {
	provider, err := r.provider(cfg)
	if err != nil {
		return Response{}, err
	}
	req := BuildPromptRequest(pc, instruction, cfg.SystemPrompt, cfg.UseShelvSystemPrompt, cfg.Model)
	raw, err := provider.Complete(ctx, req)
	if err != nil {
		return Response{}, err
	}
	return ParseResponse(raw), nil
}

func (r *Runner) execute(ctx context.Context, runID, address string, provider Provider, req Request) {
	body, err := provider.Complete(ctx, req)

	r.mu.Lock()
	rn, ok := r.runs[address]
	if !ok || rn.id != runID {
		// Superseded by a newer run; drop the result.
		r.mu.Unlock()
		return
	}
	if ctx.Err() != nil {
		rn.state = StateIdle
		r.mu.Unlock()
		return
	}
	if err != nil {
		rn.state = StateFailed
	} else {
		rn.state = StateSucceeded
	}
	r.mu.Unlock()

	r.mutations <- Mutation{RunID: runID, Address: address, Body: body, Err: err}
}

// Cancel stops the in-flight run for an address, if any.
func (r *Runner) Cancel(address string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rn, ok := r.runs[address]
	if !ok || rn.state != StateRunning {
		return false
	}
	rn.cancel()
	rn.state = StateIdle
	return true
}

// Retain cancels runs whose source block disappeared: the user edited
// or deleted the block mid-flight, so its address is no longer in the
// document.
func (r *Runner) Retain(valid map[string]bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for address, rn := range r.runs {
		if valid[address] {
			continue
		}
		if rn.state == StateRunning {
			rn.cancel()
		}
		delete(r.runs, address)
	}
}
