package kdl

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// lexer walks the source byte by byte and hands tokens to the parser.
// It never backtracks; the parser pulls one token at a time.
type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

// next returns the next token, collapsing runs of blank lines into a
// single terminator and skipping // comments.
func (l *lexer) next() (token, error) {
	l.skipSpace()

	if l.pos >= len(l.src) {
		return token{kind: tokEOF, offset: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]

	switch {
	case c == '\n' || c == ';':
		l.pos++
		l.skipBlankLines()
		return token{kind: tokTerminator, offset: start}, nil
	case c == '{':
		l.pos++
		return token{kind: tokLBrace, offset: start}, nil
	case c == '}':
		l.pos++
		return token{kind: tokRBrace, offset: start}, nil
	case c == '=':
		l.pos++
		return token{kind: tokEquals, offset: start}, nil
	case c == '"':
		return l.lexString()
	case c == 'r' && l.peekRawString():
		return l.lexRawString()
	case c == '-' || (c >= '0' && c <= '9'):
		return l.lexNumber()
	default:
		return l.lexIdent()
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) skipBlankLines() {
	for {
		l.skipSpace()
		if l.pos < len(l.src) && (l.src[l.pos] == '\n' || l.src[l.pos] == ';') {
			l.pos++
			continue
		}
		return
	}
}

func (l *lexer) lexString() (token, error) {
	start := l.pos
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '"':
			l.pos++
			return token{kind: tokString, text: b.String(), offset: start}, nil
		case '\n':
			return token{}, syntaxErr(l.src, l.pos, "newline in string literal")
		case '\\':
			l.pos++
			if l.pos >= len(l.src) {
				return token{}, syntaxErr(l.src, start, "unterminated string literal")
			}
			esc := l.src[l.pos]
			l.pos++
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case '/':
				b.WriteByte('/')
			default:
				return token{}, syntaxErr(l.src, l.pos-1, "unknown escape \\%c", esc)
			}
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return token{}, syntaxErr(l.src, start, "unterminated string literal")
}

// peekRawString reports whether the cursor sits on an r#"..." opener
// (any number of hashes, including none).
func (l *lexer) peekRawString() bool {
	i := l.pos + 1
	for i < len(l.src) && l.src[i] == '#' {
		i++
	}
	return i < len(l.src) && l.src[i] == '"'
}

func (l *lexer) lexRawString() (token, error) {
	start := l.pos
	l.pos++ // 'r'
	hashes := 0
	for l.pos < len(l.src) && l.src[l.pos] == '#' {
		hashes++
		l.pos++
	}
	l.pos++ // opening quote
	closer := `"` + strings.Repeat("#", hashes)
	end := strings.Index(l.src[l.pos:], closer)
	if end < 0 {
		return token{}, syntaxErr(l.src, start, "unterminated raw string literal")
	}
	text := l.src[l.pos : l.pos+end]
	l.pos += end + len(closer)
	return token{kind: tokRawString, text: text, offset: start}, nil
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	digits := 0
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		digits++
		l.pos++
	}
	if digits == 0 {
		return token{}, syntaxErr(l.src, start, "malformed number")
	}
	return token{kind: tokNumber, text: l.src[start:l.pos], offset: start}, nil
}

func (l *lexer) lexIdent() (token, error) {
	start := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentRune(r) {
			break
		}
		l.pos += size
	}
	if l.pos == start {
		r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
		return token{}, syntaxErr(l.src, start, "unexpected character %q", r)
	}
	text := l.src[start:l.pos]
	if text == "true" || text == "false" {
		return token{kind: tokBool, text: text, offset: start}, nil
	}
	return token{kind: tokIdent, text: text, offset: start}, nil
}

func isIdentRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '_', '-', '.':
		return true
	}
	return false
}
