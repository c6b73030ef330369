package script

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolvedExport means no module in scope defines the name.
	ErrUnresolvedExport = errors.New("unresolved export")

	// ErrAmbiguousExport means more than one module defines the name.
	ErrAmbiguousExport = errors.New("export defined by multiple modules")

	// ErrNotCallable means a string export was invoked with an
	// argument.
	ErrNotCallable = errors.New("export is not a function")

	// ErrNotString means a function returned something other than a
	// string.
	ErrNotString = errors.New("function did not return a string")
)

// ScriptError wraps a failure during module evaluation or an exported
// function call. Module is the ordinal of the module involved, or -1
// when resolution itself failed.
type ScriptError struct {
	Module int
	Func   string
	Err    error
}

func (e *ScriptError) Error() string {
	switch {
	case e.Func != "" && e.Module >= 0:
		return fmt.Sprintf("script error in %q (module %d): %v", e.Func, e.Module, e.Err)
	case e.Func != "":
		return fmt.Sprintf("script error in %q: %v", e.Func, e.Err)
	default:
		return fmt.Sprintf("script error in module %d: %v", e.Module, e.Err)
	}
}

func (e *ScriptError) Unwrap() error { return e.Err }
