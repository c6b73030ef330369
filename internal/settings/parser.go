// Package settings turns parsed settings-block node trees into
// validated keybinding declarations and AI configuration overrides.
package settings

import (
	"fmt"

	"github.com/shelv/shelv/internal/input/key"
	"github.com/shelv/shelv/internal/kdl"
)

// BlockResult is everything one settings block contributed. A block
// with validation problems still yields its valid declarations;
// rejected ones are reported in Diagnostics.
type BlockResult struct {
	Declarations []Declaration
	AI           []*AIOverride
	Diagnostics  []Diagnostic

	// NextOrder is the source order for the first declaration of the
	// following block. Rejected declarations consume an order too, so
	// fixing one never reshuffles its siblings.
	NextOrder int
}

// ParseBlock parses one settings block. startOrder is the source
// order assigned to the block's first declaration; moduleBound is the
// number of script modules evaluated before this block. A syntax
// error fails the whole block; validation errors are per-declaration.
func ParseBlock(src string, startOrder, moduleBound int) (*BlockResult, error) {
	nodes, err := kdl.Parse(src)
	if err != nil {
		return nil, err
	}

	res := &BlockResult{}
	order := startOrder
	for _, n := range nodes {
		switch n.Name {
		case "bind":
			res.addBinding(n, ScopeInApp, order, moduleBound)
			order++
		case "global":
			res.addBinding(n, ScopeGlobal, order, moduleBound)
			order++
		case "ai":
			res.AI = append(res.AI, parseAI(n))
		default:
			// Unknown top-level nodes are ignored for forward
			// compatibility.
		}
	}
	res.NextOrder = order
	return res, nil
}

// addBinding validates one bind/global node. On failure the
// declaration is dropped and a diagnostic recorded; siblings are
// unaffected.
func (r *BlockResult) addBinding(n *kdl.Node, scope Scope, order, moduleBound int) {
	decl, err := parseBinding(n, scope, order, moduleBound)
	if err != nil {
		r.Diagnostics = append(r.Diagnostics, Diagnostic{
			Offset:  n.Offset,
			Message: err.Error(),
			Err:     err,
		})
		return
	}
	r.Declarations = append(r.Declarations, decl)
}

func parseBinding(n *kdl.Node, scope Scope, order, moduleBound int) (Declaration, error) {
	verr := func(decl string, format string, args ...any) error {
		return &ValidationError{Decl: decl, Offset: n.Offset, Reason: fmt.Sprintf(format, args...)}
	}

	arg, ok := n.Arg(0)
	if !ok {
		return Declaration{}, verr("", "%s requires a shortcut string", n.Name)
	}
	spec, ok := arg.AsString()
	if !ok {
		return Declaration{}, verr("", "%s shortcut must be a string, got %s", n.Name, arg.Display())
	}

	shortcut, err := key.ParseShortcut(spec)
	if err != nil {
		return Declaration{}, verr(spec, "bad shortcut: %v", err)
	}

	if len(n.Children) != 1 {
		return Declaration{}, verr(spec, "expected exactly one action, got %d", len(n.Children))
	}
	action, err := resolveAction(n.Children[0])
	if err != nil {
		return Declaration{}, verr(spec, "%v", err)
	}

	if action.GlobalOnly() && scope != ScopeGlobal {
		return Declaration{}, verr(spec, "%s is only valid in a global binding", action.Kind)
	}
	if !action.GlobalOnly() && scope == ScopeGlobal {
		return Declaration{}, verr(spec, "%s is not valid in a global binding", action.Kind)
	}

	return Declaration{
		Scope:       scope,
		Shortcut:    shortcut,
		Action:      action,
		Icon:        n.Prop("icon"),
		Alias:       n.Prop("alias"),
		Description: n.Prop("description"),
		SourceOrder: order,
		ModuleBound: moduleBound,
		Offset:      n.Offset,
	}, nil
}
