// Package note extracts fenced code blocks from note text and
// maintains the inline output blocks that evaluation results are
// written into.
package note

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Span is a half-open byte range [Start, End) in note text.
type Span struct {
	Start int
	End   int
}

// Len returns the span's length in bytes.
func (s Span) Len() int { return s.End - s.Start }

// Block is one fenced code block. Span covers the whole block
// including both fence lines; BodySpan covers only the content
// between them.
type Block struct {
	// Lang is the fence info string, e.g. "lua", "settings" or
	// "llm#1a2b".
	Lang string

	Body     string
	Span     Span
	BodySpan Span
}

// OutputFor reports whether the block is an output block for the
// given source language, and returns its hash part.
func (b Block) OutputFor(lang string) (string, bool) {
	rest, ok := strings.CutPrefix(b.Lang, lang+"#")
	return rest, ok
}

// ExtractBlocks scans note text for fenced code blocks in document
// order. A fence opens at a line starting with three backticks; the
// rest of that line is the info string. An unclosed fence runs to the
// end of the text.
func ExtractBlocks(text string) []Block {
	var blocks []Block
	pos := 0
	for pos < len(text) {
		lineEnd := lineEndAt(text, pos)
		line := text[pos:lineEnd]
		if !strings.HasPrefix(line, "```") {
			pos = nextLine(text, lineEnd)
			continue
		}

		lang := strings.TrimSpace(line[3:])
		bodyStart := nextLine(text, lineEnd)
		bodyEnd := len(text)
		blockEnd := len(text)

		scan := bodyStart
		for scan < len(text) {
			end := lineEndAt(text, scan)
			if strings.TrimSpace(text[scan:end]) == "```" {
				bodyEnd = scan
				blockEnd = nextLine(text, end)
				break
			}
			scan = nextLine(text, end)
		}

		blocks = append(blocks, Block{
			Lang:     lang,
			Body:     text[bodyStart:bodyEnd],
			Span:     Span{Start: pos, End: blockEnd},
			BodySpan: Span{Start: bodyStart, End: bodyEnd},
		})
		pos = blockEnd
	}
	return blocks
}

// Hash returns the short content hash used to address output blocks,
// as lowercase hex.
func Hash(body string) string {
	h := fnv.New32a()
	h.Write([]byte(body))
	return fmt.Sprintf("%x", uint16(h.Sum32()))
}

// Address builds an output block address like "llm#1a2b" for a source
// body.
func Address(lang, body string) string {
	return lang + "#" + Hash(body)
}

// Replace splices replacement over span and returns the new text.
func Replace(text string, span Span, replacement string) string {
	return text[:span.Start] + replacement + text[span.End:]
}

// lineEndAt returns the index of the newline ending the line starting
// at pos, or the end of the text.
func lineEndAt(text string, pos int) int {
	if i := strings.IndexByte(text[pos:], '\n'); i >= 0 {
		return pos + i
	}
	return len(text)
}

// nextLine returns the index of the first byte of the following line.
func nextLine(text string, lineEnd int) int {
	if lineEnd < len(text) {
		return lineEnd + 1
	}
	return len(text)
}
