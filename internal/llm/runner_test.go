package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shelv/shelv/internal/note"
	"github.com/shelv/shelv/internal/settings"
)

// fakeProvider drives Complete from a function, so tests control
// latency and results.
type fakeProvider struct {
	complete func(ctx context.Context, req Request) (string, error)
}

func (p *fakeProvider) Complete(ctx context.Context, req Request) (string, error) {
	return p.complete(ctx, req)
}

func fakeFactory(p Provider) ProviderFactory {
	return func(settings.AIConfig) (Provider, error) { return p, nil }
}

const runnerNote = "Intro prose.\n\n```llm\nwhat is a monad\n```\n"

func waitMutation(t *testing.T, r *Runner) Mutation {
	t.Helper()
	select {
	case m := <-r.Mutations():
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("no mutation delivered")
		return Mutation{}
	}
}

func TestRunBlockSuccess(t *testing.T) {
	var got Request
	p := &fakeProvider{complete: func(_ context.Context, req Request) (string, error) {
		got = req
		return "a monad is a monoid in the category of endofunctors", nil
	}}
	r := NewRunner(WithProviderFactory(fakeFactory(p)))

	cursor := strings.Index(runnerNote, "monad")
	trig, err := r.RunBlock(runnerNote, cursor, settings.DefaultAIConfig())
	if err != nil {
		t.Fatalf("RunBlock: %v", err)
	}
	if !strings.HasPrefix(trig.Address, "llm#") {
		t.Errorf("Address = %q", trig.Address)
	}
	if !strings.Contains(trig.Text, "```"+trig.Address) {
		t.Errorf("triggered text has no output block for %s:\n%s", trig.Address, trig.Text)
	}

	m := waitMutation(t, r)
	if m.RunID != trig.RunID || m.Address != trig.Address {
		t.Errorf("mutation %+v does not match trigger %+v", m, trig)
	}
	if m.Err != nil {
		t.Errorf("Err = %v", m.Err)
	}
	if !strings.Contains(m.Body, "endofunctors") {
		t.Errorf("Body = %q", m.Body)
	}
	if st := r.State(trig.Address); st != StateSucceeded {
		t.Errorf("State = %v, want succeeded", st)
	}

	// The request carries the prose as context and the block body as
	// the question.
	if len(got.Parts) != 2 {
		t.Fatalf("Parts = %+v", got.Parts)
	}
	if got.Parts[0].Kind != PartMarkdown || got.Parts[0].Text != "Intro prose." {
		t.Errorf("Parts[0] = %+v", got.Parts[0])
	}
	if got.Parts[1].Kind != PartQuestion || got.Parts[1].Text != "what is a monad" {
		t.Errorf("Parts[1] = %+v", got.Parts[1])
	}
}

func TestRunBlockFailure(t *testing.T) {
	boom := errors.New("rate limited")
	p := &fakeProvider{complete: func(context.Context, Request) (string, error) {
		return "", boom
	}}
	r := NewRunner(WithProviderFactory(fakeFactory(p)))

	trig, err := r.RunBlock(runnerNote, strings.Index(runnerNote, "monad"), settings.DefaultAIConfig())
	if err != nil {
		t.Fatalf("RunBlock: %v", err)
	}

	m := waitMutation(t, r)
	if !errors.Is(m.Err, boom) {
		t.Errorf("Err = %v", m.Err)
	}
	if st := r.State(trig.Address); st != StateFailed {
		t.Errorf("State = %v, want failed", st)
	}
}

func TestRunBlockCursorOutsideBlock(t *testing.T) {
	r := NewRunner(WithProviderFactory(fakeFactory(&fakeProvider{})))
	if _, err := r.RunBlock(runnerNote, 3, settings.DefaultAIConfig()); !errors.Is(err, ErrNoBlock) {
		t.Errorf("err = %v, want ErrNoBlock", err)
	}
	if _, err := r.RunBlock("no blocks here", 3, settings.DefaultAIConfig()); !errors.Is(err, ErrNoBlock) {
		t.Errorf("err = %v, want ErrNoBlock", err)
	}
}

func TestRunBlockProviderError(t *testing.T) {
	r := NewRunner() // real factory, no token configured
	cfg := settings.DefaultAIConfig()
	if _, err := r.RunBlock(runnerNote, strings.Index(runnerNote, "monad"), cfg); !errors.Is(err, ErrNoToken) {
		t.Errorf("err = %v, want ErrNoToken", err)
	}
}

func TestRetriggerSupersedes(t *testing.T) {
	release := make(chan string)
	p := &fakeProvider{complete: func(ctx context.Context, _ Request) (string, error) {
		select {
		case body := <-release:
			return body, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}}
	r := NewRunner(WithProviderFactory(fakeFactory(p)))
	cfg := settings.DefaultAIConfig()
	cursor := strings.Index(runnerNote, "monad")

	first, err := r.RunBlock(runnerNote, cursor, cfg)
	if err != nil {
		t.Fatalf("first RunBlock: %v", err)
	}
	second, err := r.RunBlock(first.Text, cursor, cfg)
	if err != nil {
		t.Fatalf("second RunBlock: %v", err)
	}
	if second.Address != first.Address {
		t.Fatalf("address changed across re-trigger: %q vs %q", first.Address, second.Address)
	}
	if second.RunID == first.RunID {
		t.Fatal("re-trigger reused the run id")
	}

	release <- "second answer"
	m := waitMutation(t, r)
	if m.RunID != second.RunID {
		t.Errorf("mutation from run %q, want %q", m.RunID, second.RunID)
	}

	// The superseded run was cancelled; it must not deliver.
	select {
	case m := <-r.Mutations():
		t.Errorf("unexpected mutation from superseded run: %+v", m)
	case <-time.After(100 * time.Millisecond):
	}
	if st := r.State(first.Address); st != StateSucceeded {
		t.Errorf("State = %v, want succeeded", st)
	}
}

func TestCancel(t *testing.T) {
	p := &fakeProvider{complete: func(ctx context.Context, _ Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	r := NewRunner(WithProviderFactory(fakeFactory(p)))

	trig, err := r.RunBlock(runnerNote, strings.Index(runnerNote, "monad"), settings.DefaultAIConfig())
	if err != nil {
		t.Fatalf("RunBlock: %v", err)
	}
	if !r.Cancel(trig.Address) {
		t.Fatal("Cancel returned false for a running block")
	}
	if r.Cancel(trig.Address) {
		t.Error("second Cancel returned true")
	}
	if st := r.State(trig.Address); st != StateIdle {
		t.Errorf("State = %v, want idle", st)
	}

	select {
	case m := <-r.Mutations():
		t.Errorf("cancelled run delivered a mutation: %+v", m)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRetainDropsVanishedAddresses(t *testing.T) {
	p := &fakeProvider{complete: func(ctx context.Context, _ Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	r := NewRunner(WithProviderFactory(fakeFactory(p)))

	trig, err := r.RunBlock(runnerNote, strings.Index(runnerNote, "monad"), settings.DefaultAIConfig())
	if err != nil {
		t.Fatalf("RunBlock: %v", err)
	}

	r.Retain(map[string]bool{trig.Address: true})
	if st := r.State(trig.Address); st != StateRunning {
		t.Errorf("State after retaining = %v, want running", st)
	}

	r.Retain(map[string]bool{})
	if st := r.State(trig.Address); st != StateIdle {
		t.Errorf("State after dropping = %v, want idle", st)
	}
}

func TestRunPrompt(t *testing.T) {
	p := &fakeProvider{complete: func(_ context.Context, req Request) (string, error) {
		if len(req.Parts) != 1 || !strings.Contains(req.Parts[0].Text, "translate to french") {
			return "", errors.New("instruction missing from request")
		}
		return `{"reasoning": "r", "selection_replacement": "bonjour", "explanation": "e"}`, nil
	}}
	r := NewRunner(WithProviderFactory(fakeFactory(p)))

	resp, err := r.RunPrompt(context.Background(), PromptContext{Selection: "hello"}, "translate to french", settings.DefaultAIConfig())
	if err != nil {
		t.Fatalf("RunPrompt: %v", err)
	}
	if !resp.Structured || resp.SelectionReplacement != "bonjour" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestConversationIncludesEarlierTurns(t *testing.T) {
	text := "```llm\nfirst question\n```\n"
	blocks := note.FamilyBlocks(note.ExtractBlocks(text), BlockLang)
	withOutput, addr := note.EnsureOutputBlock(text, blocks, 0, BlockLang)
	withOutput, ok := note.WriteOutput(withOutput, addr, "first answer")
	if !ok {
		t.Fatalf("WriteOutput failed for %s", addr)
	}
	full := withOutput + "\n```llm\nfollow up\n```\n"

	family := note.FamilyBlocks(note.ExtractBlocks(full), BlockLang)
	idx, ok := findSourceBlock(family, strings.Index(full, "follow up"))
	if !ok {
		t.Fatal("follow-up block not found")
	}
	req := buildConversation(full, family, idx, settings.DefaultAIConfig())

	want := []Part{
		{Kind: PartQuestion, Text: "first question"},
		{Kind: PartAnswer, Text: "first answer"},
		{Kind: PartQuestion, Text: "follow up"},
	}
	if len(req.Parts) != len(want) {
		t.Fatalf("Parts = %+v", req.Parts)
	}
	for i, p := range want {
		if req.Parts[i] != p {
			t.Errorf("Parts[%d] = %+v, want %+v", i, req.Parts[i], p)
		}
	}
}
