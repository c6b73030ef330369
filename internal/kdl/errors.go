package kdl

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSyntax is the sentinel all syntax errors wrap. Callers can use
// errors.Is(err, ErrSyntax) without caring about the concrete detail.
var ErrSyntax = errors.New("syntax error")

// SyntaxError reports a malformed document. Offset is the byte
// position of the offending character; Near is a short excerpt of the
// surrounding source for display.
type SyntaxError struct {
	Offset int
	Near   string
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("syntax error at byte %d: %s", e.Offset, e.Msg)
	}
	return fmt.Sprintf("syntax error at byte %d: %s (near %q)", e.Offset, e.Msg, e.Near)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// syntaxErr builds a SyntaxError with context clipped from src around off.
func syntaxErr(src string, off int, format string, args ...any) error {
	const window = 24
	start := off
	if start > len(src) {
		start = len(src)
	}
	end := start + window
	if end > len(src) {
		end = len(src)
	}
	near := src[start:end]
	if i := strings.IndexByte(near, '\n'); i >= 0 {
		near = near[:i]
	}
	return &SyntaxError{
		Offset: off,
		Near:   near,
		Msg:    fmt.Sprintf(format, args...),
	}
}
