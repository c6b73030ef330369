package dispatch

import (
	"strings"

	"github.com/shelv/shelv/internal/note"
)

// toggleInline applies or removes a symmetric inline annotation like
// ** or ~~ around the selection. The toggle is idempotent in both
// directions: annotated content loses the markers, plain content
// gains them.
func toggleInline(ctx EditorContext, marker string) Result {
	text := ctx.Text()
	sel, span := ctx.Selection()
	n := len(marker)

	// Selection includes the markers themselves.
	if len(sel) >= 2*n && strings.HasPrefix(sel, marker) && strings.HasSuffix(sel, marker) {
		inner := sel[n : len(sel)-n]
		ctx.ReplaceRange(span, inner)
		ctx.SetSelection(Span{Start: span.Start, End: span.Start + len(inner)})
		return Success()
	}

	// Markers sit immediately around the selection.
	if span.Start >= n && span.End+n <= len(text) &&
		text[span.Start-n:span.Start] == marker && text[span.End:span.End+n] == marker {
		outer := Span{Start: span.Start - n, End: span.End + n}
		ctx.ReplaceRange(outer, sel)
		ctx.SetSelection(Span{Start: outer.Start, End: outer.Start + len(sel)})
		return Success()
	}

	// No selection: insert an empty annotation with the caret inside.
	if span.Empty() {
		ctx.ReplaceRange(span, marker+marker)
		ctx.SetSelection(Span{Start: span.Start + n, End: span.Start + n})
		return Success()
	}

	// Wrap the selection, keeping the whole annotated run selected.
	ctx.ReplaceRange(span, marker+sel+marker)
	ctx.SetSelection(Span{Start: span.Start, End: span.End + 2*n})
	return Success()
}

// toggleHeading sets, swaps or removes an ATX heading prefix on the
// cursor's line.
func toggleHeading(ctx EditorContext, level int) Result {
	if level < 1 || level > 6 {
		return Errorf("heading level %d out of range", level)
	}
	text := ctx.Text()
	cursor := ctx.Cursor()
	lineStart := strings.LastIndexByte(text[:cursor], '\n') + 1

	prefix := strings.Repeat("#", level) + " "
	line := text[lineStart:]
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	existing := headingPrefixLen(line)
	switch {
	case existing == 0:
		ctx.ReplaceRange(Span{Start: lineStart, End: lineStart}, prefix)
		ctx.SetSelection(Span{Start: cursor + len(prefix), End: cursor + len(prefix)})
	case line[:existing] == prefix:
		// Same level toggles the heading off.
		ctx.ReplaceRange(Span{Start: lineStart, End: lineStart + existing}, "")
		ctx.SetSelection(Span{Start: max(lineStart, cursor-existing), End: max(lineStart, cursor-existing)})
	default:
		// Different level swaps the annotation.
		ctx.ReplaceRange(Span{Start: lineStart, End: lineStart + existing}, prefix)
		at := cursor + len(prefix) - existing
		if at < lineStart {
			at = lineStart
		}
		ctx.SetSelection(Span{Start: at, End: at})
	}
	return Success()
}

// headingPrefixLen returns the length of an ATX heading prefix
// ("## " style, hashes plus one space) at the start of line, or 0.
func headingPrefixLen(line string) int {
	hashes := 0
	for hashes < len(line) && line[hashes] == '#' {
		hashes++
	}
	if hashes == 0 || hashes > 6 || hashes >= len(line) || line[hashes] != ' ' {
		return 0
	}
	return hashes + 1
}

// toggleCodeBlock wraps the selection in a fenced code block, or
// unwraps the block the cursor is inside.
func toggleCodeBlock(ctx EditorContext, lang string) Result {
	text := ctx.Text()
	sel, span := ctx.Selection()

	// Inside an existing block: strip the fences.
	for _, b := range note.ExtractBlocks(text) {
		if span.Start >= b.Span.Start && span.End <= b.Span.End {
			ctx.ReplaceRange(Span{Start: b.Span.Start, End: b.Span.End}, b.Body)
			at := b.Span.Start + len(b.Body)
			ctx.SetSelection(Span{Start: b.Span.Start, End: at})
			return Success()
		}
	}

	before := text[:span.Start]
	after := text[span.End:]

	var open strings.Builder
	if before != "" && !strings.HasSuffix(before, "\n") {
		open.WriteByte('\n')
	}
	open.WriteString("```")
	open.WriteString(lang)
	open.WriteByte('\n')

	var close_ strings.Builder
	if sel != "" && !strings.HasSuffix(sel, "\n") {
		close_.WriteByte('\n')
	}
	close_.WriteString("```")
	if !strings.HasPrefix(after, "\n") {
		close_.WriteByte('\n')
	}

	ctx.ReplaceRange(span, open.String()+sel+close_.String())
	bodyStart := span.Start + open.Len()
	ctx.SetSelection(Span{Start: bodyStart, End: bodyStart + len(sel)})
	return Success()
}
