// Package script evaluates the embedded script blocks of a settings
// document as ordered Lua modules and exposes their exports as
// callable insertion targets.
package script

import (
	"context"
	"sort"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds wall-clock time for one module evaluation or
// one exported-function call. Scripts have no I/O, so anything slower
// is a runaway loop.
const DefaultTimeout = 2 * time.Second

// ExportKind identifies what an exported name is bound to.
type ExportKind uint8

const (
	// ExportFunction is a callable returning a string.
	ExportFunction ExportKind = iota

	// ExportString is a plain string constant.
	ExportString
)

// Export is one name a module defined at its top level.
type Export struct {
	Name string
	Kind ExportKind

	// Module is the ordinal of the defining module.
	Module int

	value lua.LValue
}

// Module is one evaluated script block.
type Module struct {
	// Ordinal is the module's position in document order, starting
	// at 0.
	Ordinal int

	// Exports lists the names the module defined, sorted by name.
	Exports []Export
}

// Bridge owns a single sandboxed Lua state shared by all modules of
// one settings document. Each module is evaluated run-to-completion
// in its own environment table seeded with the fold of all prior
// modules' exports, so redefinitions shadow going forward but are
// never retroactive.
//
// gopher-lua's LState is not goroutine-safe; the mutex serializes all
// access.
type Bridge struct {
	mu      sync.Mutex
	L       *lua.LState
	modules []*Module
	timeout time.Duration
	closed  bool
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithTimeout sets the wall-clock cutoff per evaluation or call.
func WithTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		b.timeout = d
	}
}

// New creates a bridge with a fresh sandboxed Lua state.
func New(opts ...Option) *Bridge {
	b := &Bridge{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(b)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	b.L = L
	return b
}

// Close releases the Lua state. The bridge is unusable afterwards.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		b.L.Close()
	}
}

// ModuleCount returns the number of modules evaluated so far.
func (b *Bridge) ModuleCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.modules)
}

// EvalModule compiles and runs one script block. Top-level functions
// and strings the block defines become its exports. A compile or
// runtime failure yields a ScriptError and the module contributes no
// exports, but earlier modules remain usable.
func (b *Bridge) EvalModule(src string) (*Module, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ordinal := len(b.modules)

	fn, err := b.L.LoadString(src)
	if err != nil {
		return nil, &ScriptError{Module: ordinal, Err: err}
	}

	env := b.newModuleEnv()
	fn.Env = env

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	b.L.SetContext(ctx)
	b.L.Push(fn)
	err = b.L.PCall(0, 0, nil)
	b.L.RemoveContext()
	cancel()
	if err != nil {
		return nil, &ScriptError{Module: ordinal, Err: err}
	}

	mod := &Module{Ordinal: ordinal, Exports: collectExports(env, ordinal)}
	b.modules = append(b.modules, mod)
	return mod, nil
}

// newModuleEnv builds a fresh environment table whose lookups fall
// through to a seed of prior exports (later modules shadow earlier
// ones) and finally to the sandboxed globals.
func (b *Bridge) newModuleEnv() *lua.LTable {
	seed := b.L.NewTable()
	for _, mod := range b.modules {
		for _, exp := range mod.Exports {
			seed.RawSetString(exp.Name, exp.value)
		}
	}

	seedMeta := b.L.NewTable()
	seedMeta.RawSetString("__index", b.L.G.Global)
	b.L.SetMetatable(seed, seedMeta)

	env := b.L.NewTable()
	envMeta := b.L.NewTable()
	envMeta.RawSetString("__index", seed)
	b.L.SetMetatable(env, envMeta)
	return env
}

// collectExports gathers the names a module's environment defines.
// Only functions and strings are exported; other values stay private
// to the module.
func collectExports(env *lua.LTable, ordinal int) []Export {
	var exports []Export
	env.ForEach(func(k, v lua.LValue) {
		name, ok := k.(lua.LString)
		if !ok {
			return
		}
		switch v.(type) {
		case *lua.LFunction:
			exports = append(exports, Export{
				Name:   string(name),
				Kind:   ExportFunction,
				Module: ordinal,
				value:  v,
			})
		case lua.LString:
			exports = append(exports, Export{
				Name:   string(name),
				Kind:   ExportString,
				Module: ordinal,
				value:  v,
			})
		}
	})
	sort.Slice(exports, func(i, j int) bool {
		return exports[i].Name < exports[j].Name
	})
	return exports
}

// Lookup resolves an export by name among the first bound modules
// (bound < 0 searches all). Exactly one module must define the name:
// zero matches is an unresolved reference and several is an ambiguity
// the user has to fix.
func (b *Bridge) Lookup(name string, bound int) (Export, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lookupLocked(name, bound)
}

func (b *Bridge) lookupLocked(name string, bound int) (Export, error) {
	if bound < 0 || bound > len(b.modules) {
		bound = len(b.modules)
	}

	var found []Export
	for _, mod := range b.modules[:bound] {
		for _, exp := range mod.Exports {
			if exp.Name == name {
				found = append(found, exp)
			}
		}
	}
	switch len(found) {
	case 0:
		return Export{}, &ScriptError{Module: -1, Func: name, Err: ErrUnresolvedExport}
	case 1:
		return found[0], nil
	default:
		return Export{}, &ScriptError{Module: -1, Func: name, Err: ErrAmbiguousExport}
	}
}

// Call invokes an exported function and returns its string result.
// selection carries the current selection text when the binding
// declared a selection argument; nil means the function is called
// with no arguments. A string export is returned as-is but cannot
// take a selection.
func (b *Bridge) Call(name string, bound int, selection *string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	exp, err := b.lookupLocked(name, bound)
	if err != nil {
		return "", err
	}

	if exp.Kind == ExportString {
		if selection != nil {
			return "", &ScriptError{Module: exp.Module, Func: name, Err: ErrNotCallable}
		}
		return string(exp.value.(lua.LString)), nil
	}

	nargs := 0
	b.L.Push(exp.value)
	if selection != nil {
		b.L.Push(lua.LString(*selection))
		nargs = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	b.L.SetContext(ctx)
	err = b.L.PCall(nargs, 1, nil)
	b.L.RemoveContext()
	cancel()
	if err != nil {
		return "", &ScriptError{Module: exp.Module, Func: name, Err: err}
	}

	ret := b.L.Get(-1)
	b.L.Pop(1)
	s, ok := ret.(lua.LString)
	if !ok {
		return "", &ScriptError{Module: exp.Module, Func: name, Err: ErrNotString}
	}
	return string(s), nil
}
