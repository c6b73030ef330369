package kdl

import "fmt"

// tokenKind identifies the lexical class of a token.
type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokRawString
	tokNumber
	tokBool
	tokEquals
	tokLBrace
	tokRBrace
	tokTerminator // newline or semicolon
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokString:
		return "string"
	case tokRawString:
		return "raw string"
	case tokNumber:
		return "number"
	case tokBool:
		return "boolean"
	case tokEquals:
		return "'='"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokTerminator:
		return "node terminator"
	default:
		return fmt.Sprintf("token(%d)", k)
	}
}

// token is a single lexed unit. Text holds the decoded value for
// strings and the raw spelling for everything else. Offset is the
// byte position of the token's first character in the source.
type token struct {
	kind   tokenKind
	text   string
	offset int
}
