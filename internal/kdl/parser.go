// Package kdl parses the brace-delimited settings language used in
// settings code blocks: named nodes with string/number/bool arguments,
// name="value" properties, and nested { ... } children.
package kdl

import "strconv"

// Parse parses a complete document and returns its top-level nodes.
func Parse(src string) ([]*Node, error) {
	p := &parser{lex: newLexer(src), src: src}
	if err := p.advance(); err != nil {
		return nil, err
	}
	nodes, err := p.parseNodes(false)
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, syntaxErr(src, p.tok.offset, "unexpected %s", p.tok.kind)
	}
	return nodes, nil
}

type parser struct {
	lex *lexer
	src string
	tok token
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

// parseNodes reads nodes until EOF, or until '}' when inside a child
// block.
func (p *parser) parseNodes(inBlock bool) ([]*Node, error) {
	var nodes []*Node
	for {
		for p.tok.kind == tokTerminator {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		switch p.tok.kind {
		case tokEOF:
			if inBlock {
				return nil, syntaxErr(p.src, p.tok.offset, "unclosed block, expected '}'")
			}
			return nodes, nil
		case tokRBrace:
			if !inBlock {
				return nil, syntaxErr(p.src, p.tok.offset, "unmatched '}'")
			}
			return nodes, nil
		case tokIdent:
			n, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		default:
			return nil, syntaxErr(p.src, p.tok.offset, "expected node name, got %s", p.tok.kind)
		}
	}
}

func (p *parser) parseNode() (*Node, error) {
	n := &Node{Name: p.tok.text, Offset: p.tok.offset}
	if err := p.advance(); err != nil {
		return nil, err
	}

	// Arguments and properties, until a terminator or a child block.
	for {
		switch p.tok.kind {
		case tokTerminator, tokEOF, tokRBrace:
			if p.tok.kind == tokTerminator {
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
			return n, nil
		case tokLBrace:
			if err := p.advance(); err != nil {
				return nil, err
			}
			children, err := p.parseNodes(true)
			if err != nil {
				return nil, err
			}
			// parseNodes stops on '}'.
			if err := p.advance(); err != nil {
				return nil, err
			}
			n.Children = children
			if p.tok.kind == tokTerminator {
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
			return n, nil
		case tokIdent:
			// Idents are only valid as property names here.
			name := p.tok.text
			nameOff := p.tok.offset
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.kind != tokEquals {
				return nil, syntaxErr(p.src, nameOff, "bare identifier %q, expected a property (name=value) or a quoted string", name)
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			if n.Props == nil {
				n.Props = make(map[string]Value)
			}
			n.Props[name] = v
		case tokString, tokRawString, tokNumber, tokBool:
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			n.Args = append(n.Args, v)
		default:
			return nil, syntaxErr(p.src, p.tok.offset, "unexpected %s in node %q", p.tok.kind, n.Name)
		}
	}
}

func (p *parser) parseValue() (Value, error) {
	t := p.tok
	switch t.kind {
	case tokString, tokRawString:
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueString, Str: t.text}, nil
	case tokNumber:
		i, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return Value{}, syntaxErr(p.src, t.offset, "malformed number %q", t.text)
		}
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueInt, Int: i}, nil
	case tokBool:
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueBool, Bool: t.text == "true"}, nil
	default:
		return Value{}, syntaxErr(p.src, t.offset, "expected a value, got %s", t.kind)
	}
}
