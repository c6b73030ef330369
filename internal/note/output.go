package note

import "strings"

// EnsureOutputBlock resets or creates the output block for the source
// block at sourceIdx. When the next block of the same family is
// already an output block it is reused (its contents cleared and its
// address updated); otherwise an empty output block is inserted right
// after the source block. Returns the new text and the address.
//
// blocks must be the family of interest in document order, e.g. all
// "llm"/"llm#..." blocks, with sourceIdx pointing at the triggered
// source block.
func EnsureOutputBlock(text string, blocks []Block, sourceIdx int, lang string) (string, string) {
	src := blocks[sourceIdx]
	address := Address(lang, strings.TrimSpace(src.Body))

	if sourceIdx+1 < len(blocks) {
		if _, ok := blocks[sourceIdx+1].OutputFor(lang); ok {
			span := blocks[sourceIdx+1].Span
			return Replace(text, span, "```"+address+"\n```\n"), address
		}
	}

	at := Span{Start: src.Span.End, End: src.Span.End}
	return Replace(text, at, "\n```"+address+"\n```\n"), address
}

// WriteOutput writes body into the output block with the given
// address. Returns the updated text and false when no such block
// exists anymore (the user deleted or edited it mid-flight).
func WriteOutput(text, address, body string) (string, bool) {
	for _, b := range ExtractBlocks(text) {
		if b.Lang != address {
			continue
		}
		if body != "" && !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		return Replace(text, b.BodySpan, body), true
	}
	return text, false
}

// FamilyBlocks filters blocks to the source blocks of lang and their
// output blocks, preserving document order.
func FamilyBlocks(blocks []Block, lang string) []Block {
	var out []Block
	for _, b := range blocks {
		if b.Lang == lang {
			out = append(out, b)
			continue
		}
		if _, ok := b.OutputFor(lang); ok {
			out = append(out, b)
		}
	}
	return out
}
