package kdl

import "strconv"

// ValueKind identifies the type of an argument value.
type ValueKind uint8

const (
	ValueString ValueKind = iota
	ValueInt
	ValueBool
)

// Value is a node argument: a quoted or raw string, an integer, or a
// boolean.
type Value struct {
	Kind ValueKind
	Str  string
	Int  int64
	Bool bool
}

// AsString returns the value as a string when it is one.
func (v Value) AsString() (string, bool) {
	return v.Str, v.Kind == ValueString
}

// AsInt returns the value as an integer when it is one.
func (v Value) AsInt() (int64, bool) {
	return v.Int, v.Kind == ValueInt
}

// AsBool returns the value as a boolean when it is one.
func (v Value) AsBool() (bool, bool) {
	return v.Bool, v.Kind == ValueBool
}

// Display renders the value the way it would appear in source.
func (v Value) Display() string {
	switch v.Kind {
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	default:
		return strconv.Quote(v.Str)
	}
}

// Node is one named node in the document tree.
type Node struct {
	Name     string
	Args     []Value
	Props    map[string]Value
	Children []*Node

	// Offset is the byte position of the node name in the source.
	Offset int
}

// Prop returns the string value of a property, or "" when absent or
// not a string.
func (n *Node) Prop(name string) string {
	v, ok := n.Props[name]
	if !ok {
		return ""
	}
	s, _ := v.AsString()
	return s
}

// Arg returns the i'th argument and whether it exists.
func (n *Node) Arg(i int) (Value, bool) {
	if i < 0 || i >= len(n.Args) {
		return Value{}, false
	}
	return n.Args[i], true
}

// Child returns the first child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}
