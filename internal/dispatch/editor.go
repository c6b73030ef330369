package dispatch

// Span is a half-open byte range [Start, End) in the note buffer.
type Span struct {
	Start int
	End   int
}

// Empty reports whether the span selects nothing.
func (s Span) Empty() bool { return s.Start >= s.End }

// EditorContext is the surface the dispatcher mutates. The editor
// widget behind it is an external collaborator; tests and the CLI use
// Buffer.
type EditorContext interface {
	// Text returns the full note buffer.
	Text() string

	// Selection returns the selected text and its span. A collapsed
	// span means no selection; its Start is the cursor.
	Selection() (string, Span)

	// Cursor returns the caret byte position.
	Cursor() int

	// ReplaceRange splices text over the span in one atomic edit.
	ReplaceRange(span Span, text string)

	// SetSelection moves the selection. A collapsed span places the
	// caret.
	SetSelection(span Span)
}

// Buffer is an in-memory EditorContext.
type Buffer struct {
	text string
	sel  Span
}

// NewBuffer creates a buffer with the caret at the start.
func NewBuffer(text string) *Buffer {
	return &Buffer{text: text}
}

func (b *Buffer) Text() string { return b.text }

func (b *Buffer) Selection() (string, Span) {
	if b.sel.Empty() {
		return "", Span{Start: b.sel.Start, End: b.sel.Start}
	}
	return b.text[b.sel.Start:b.sel.End], b.sel
}

func (b *Buffer) Cursor() int { return b.sel.Start }

func (b *Buffer) ReplaceRange(span Span, text string) {
	b.text = b.text[:span.Start] + text + b.text[span.End:]
}

func (b *Buffer) SetSelection(span Span) {
	b.sel = span
}
