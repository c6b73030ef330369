package note

import (
	"strings"
	"testing"
)

func TestExtractBlocks(t *testing.T) {
	text := "# Notes\n" +
		"```settings\nbind \"Cmd B\" { MarkdownBold; }\n```\n" +
		"prose in between\n" +
		"```lua\nfunction f() return \"x\" end\n```\n" +
		"```\nplain fence\n```\n"

	blocks := ExtractBlocks(text)
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}

	if blocks[0].Lang != "settings" {
		t.Errorf("Lang = %q, want settings", blocks[0].Lang)
	}
	if blocks[0].Body != "bind \"Cmd B\" { MarkdownBold; }\n" {
		t.Errorf("Body = %q", blocks[0].Body)
	}
	if blocks[1].Lang != "lua" {
		t.Errorf("Lang = %q, want lua", blocks[1].Lang)
	}
	if blocks[2].Lang != "" {
		t.Errorf("Lang = %q, want empty", blocks[2].Lang)
	}

	// Spans must reproduce the original slices.
	for i, b := range blocks {
		got := text[b.Span.Start:b.Span.End]
		if !strings.HasPrefix(got, "```") || !strings.HasSuffix(got, "```\n") {
			t.Errorf("block %d span %q does not cover fences", i, got)
		}
		if text[b.BodySpan.Start:b.BodySpan.End] != b.Body {
			t.Errorf("block %d BodySpan does not match Body", i)
		}
	}
}

func TestExtractBlocksUnclosedFence(t *testing.T) {
	text := "```lua\nfunction f() end\n"
	blocks := ExtractBlocks(text)
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].Body != "function f() end\n" {
		t.Errorf("Body = %q", blocks[0].Body)
	}
	if blocks[0].Span.End != len(text) {
		t.Errorf("Span.End = %d, want %d", blocks[0].Span.End, len(text))
	}
}

func TestExtractBlocksNoFences(t *testing.T) {
	if blocks := ExtractBlocks("just prose\nno fences here\n"); blocks != nil {
		t.Errorf("got %v, want nil", blocks)
	}
}

func TestOutputFor(t *testing.T) {
	b := Block{Lang: "llm#1a2b"}
	hash, ok := b.OutputFor("llm")
	if !ok || hash != "1a2b" {
		t.Errorf("OutputFor(llm) = %q, %v", hash, ok)
	}
	if _, ok := b.OutputFor("lua"); ok {
		t.Error("llm output block claimed by lua family")
	}
	if _, ok := (Block{Lang: "llm"}).OutputFor("llm"); ok {
		t.Error("source block mistaken for output block")
	}
}

func TestHashDeterministic(t *testing.T) {
	a, b := Hash("what is a monad?"), Hash("what is a monad?")
	if a != b {
		t.Errorf("Hash not deterministic: %q vs %q", a, b)
	}
	if a == Hash("something else") {
		t.Error("distinct inputs collide (suspicious for this test data)")
	}
	if len(a) == 0 || len(a) > 4 {
		t.Errorf("Hash %q is not 16-bit hex", a)
	}
}

func TestEnsureOutputBlockAppends(t *testing.T) {
	text := "```llm\nwhat is a monad?\n```\ntrailing prose\n"
	family := FamilyBlocks(ExtractBlocks(text), "llm")
	if len(family) != 1 {
		t.Fatalf("got %d family blocks, want 1", len(family))
	}

	got, address := EnsureOutputBlock(text, family, 0, "llm")
	if !strings.HasPrefix(address, "llm#") {
		t.Errorf("address = %q", address)
	}
	want := "```llm\nwhat is a monad?\n```\n\n```" + address + "\n```\ntrailing prose\n"
	if got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestEnsureOutputBlockReuses(t *testing.T) {
	text := "```llm\nwhat is a monad?\n```\n```llm#dead\nstale answer\n```\n"
	family := FamilyBlocks(ExtractBlocks(text), "llm")
	if len(family) != 2 {
		t.Fatalf("got %d family blocks, want 2", len(family))
	}

	got, address := EnsureOutputBlock(text, family, 0, "llm")
	want := "```llm\nwhat is a monad?\n```\n```" + address + "\n```\n"
	if got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
	if strings.Contains(got, "stale answer") {
		t.Error("stale output survived the reset")
	}
}

func TestWriteOutput(t *testing.T) {
	text := "```llm\nq\n```\n```llm#abcd\n```\n"
	got, ok := WriteOutput(text, "llm#abcd", "the answer")
	if !ok {
		t.Fatal("WriteOutput did not find the block")
	}
	want := "```llm\nq\n```\n```llm#abcd\nthe answer\n```\n"
	if got != want {
		t.Errorf("text = %q, want %q", got, want)
	}

	if _, ok := WriteOutput(text, "llm#ffff", "x"); ok {
		t.Error("WriteOutput matched a missing address")
	}
}
