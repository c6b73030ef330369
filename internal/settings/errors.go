package settings

import (
	"errors"
	"fmt"
)

// ErrValidation is the sentinel all declaration validation errors
// wrap.
var ErrValidation = errors.New("validation error")

// ValidationError reports one rejected declaration. The declaration is
// dropped; sibling declarations in the same block are unaffected.
type ValidationError struct {
	// Decl identifies the declaration, usually by its shortcut spec.
	Decl string

	// Offset is the byte position of the declaration in its block.
	Offset int

	Reason string
}

func (e *ValidationError) Error() string {
	if e.Decl == "" {
		return fmt.Sprintf("invalid declaration at byte %d: %s", e.Offset, e.Reason)
	}
	return fmt.Sprintf("invalid declaration %q at byte %d: %s", e.Decl, e.Offset, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Diagnostic is a non-fatal problem found while processing a settings
// block, carried alongside the declarations that did succeed.
type Diagnostic struct {
	Offset  int
	Message string
	Err     error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("byte %d: %s", d.Offset, d.Message)
}
